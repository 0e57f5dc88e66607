package usecase

import (
	"fmt"
	"strings"

	"concierge-agent/internal/domain"
)

// maxDigestItems caps how many inventory items are written into the grounding
// digest, keeping the prompt within a predictable token envelope.
const maxDigestItems = 15

const snapshotPlaceholder = "No inventory information is available right now."

// buildPromptMessages assembles the completion conversation for one request:
// a persona system message with the output contract, a grounding digest of
// the current inventory, and the shopper's question verbatim.
func buildPromptMessages(tenant domain.TenantContext, items []domain.InventoryItem, question string) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: "system", Content: buildPersonaPrompt(tenant)},
		{Role: "system", Content: "Current inventory:\n" + groundingDigest(items)},
		{Role: "user", Content: question},
	}
}

func buildPersonaPrompt(tenant domain.TenantContext) string {
	var b strings.Builder

	name := strings.TrimSpace(tenant.PersonaName)
	if name == "" {
		name = "a helpful shopping assistant"
	}
	b.WriteString("You are " + name + ".")
	if desc := strings.TrimSpace(tenant.PersonaDescription); desc != "" {
		b.WriteString(" " + desc)
	}
	b.WriteString("\n\n")
	b.WriteString("Answer the shopper's question using only the inventory listed below. ")
	b.WriteString("Keep answers short and conversational. Use line breaks between paragraphs ")
	b.WriteString("and wrap a recommended product's name in <b></b> tags.\n\n")
	b.WriteString("If exactly one product from the inventory fits the shopper's need, end your ")
	b.WriteString("answer with a separate final line of exactly this form:\n")
	b.WriteString(markerPrefix + "<product name>\n")
	b.WriteString("using the product name exactly as it appears in the inventory. ")
	b.WriteString("If no product fits, or the shopper is not asking for a product, do not add that line.")

	return b.String()
}

// groundingDigest renders one line per inventory item. The completion only
// ever sees what is written here, so every recommendable fact goes on the line.
func groundingDigest(items []domain.InventoryItem) string {
	if len(items) == 0 {
		return snapshotPlaceholder
	}
	if len(items) > maxDigestItems {
		items = items[:maxDigestItems]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		b.WriteString("- " + item.Name)
		if item.Price != nil {
			b.WriteString(fmt.Sprintf(" | price: %.2f", *item.Price))
		} else {
			b.WriteString(" | price unavailable")
		}
		if item.Attributes != "" {
			b.WriteString(" | " + item.Attributes)
		}
		if item.URL != "" {
			b.WriteString(" | " + item.URL)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
