package usecase

import (
	"strings"

	"concierge-agent/internal/domain"
)

// markerPrefix is the sentinel the model is instructed to emit on its own
// line when it recommends a specific product.
const markerPrefix = "RECOMMENDED_PRODUCT:"

// extractCandidateName returns the product name from the first marker line in
// the raw completion text, or false when no usable marker is present.
func extractCandidateName(raw string) (string, bool) {
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, markerPrefix) {
			continue
		}
		candidate := strings.TrimSpace(strings.TrimPrefix(trimmed, markerPrefix))
		if candidate == "" {
			return "", false
		}
		return candidate, true
	}
	return "", false
}

// resolveRecommendation matches the completion's marker against the snapshot.
// Matching is case-insensitive and accepts either string containing the
// other, so a truncated or slightly padded model spelling still resolves.
// The first snapshot item that matches wins. A miss is not an error; the
// answer simply carries no product reference.
func resolveRecommendation(raw string, items []domain.InventoryItem) (domain.InventoryItem, bool) {
	candidate, ok := extractCandidateName(raw)
	if !ok {
		return domain.InventoryItem{}, false
	}
	lowered := strings.ToLower(candidate)

	for _, item := range items {
		name := strings.ToLower(strings.TrimSpace(item.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, lowered) || strings.Contains(lowered, name) {
			return item, true
		}
	}
	return domain.InventoryItem{}, false
}

// sanitizeAnswer strips marker lines and code fence delimiters from the
// completion text before it is shown to the shopper.
func sanitizeAnswer(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, markerPrefix) {
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
