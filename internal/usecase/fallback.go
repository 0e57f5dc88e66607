package usecase

import (
	"context"
	"strings"

	"concierge-agent/internal/domain"
)

// attemptPair addresses one cell of the credential/model matrix by index.
type attemptPair struct {
	credential int
	model      int
}

// attemptPlan flattens the credential/model matrix into a single ordered
// slice: every model under the first credential, then every model under the
// second, and so on. Keeping the plan as data makes the traversal order
// testable on its own and leaves the loop with a single dimension.
func attemptPlan(credentials, models int) []attemptPair {
	if credentials <= 0 || models <= 0 {
		return nil
	}
	plan := make([]attemptPair, 0, credentials*models)
	for c := 0; c < credentials; c++ {
		for m := 0; m < models; m++ {
			plan = append(plan, attemptPair{credential: c, model: m})
		}
	}
	return plan
}

// completeWithFallback walks the attempt plan until a completion yields
// non-empty text. Provider errors and empty completions both advance to the
// next pair; only full exhaustion is reported to the caller.
func (s *ConciergeService) completeWithFallback(ctx context.Context, credentials, models []string, messages []domain.ChatMessage) (string, error) {
	plan := attemptPlan(len(credentials), len(models))

	for _, pair := range plan {
		key := credentials[pair.credential]
		model := models[pair.model]

		text, err := s.completeOnce(ctx, key, model, messages)
		if err != nil {
			s.logger.Warn("completion attempt failed",
				"credential", credentialSuffix(key),
				"model", model,
				"error", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			s.logger.Warn("completion attempt returned empty text",
				"credential", credentialSuffix(key),
				"model", model)
			continue
		}
		return text, nil
	}

	return "", &Error{Code: ErrorExhausted, Reason: "completion_exhausted"}
}

// completeOnce runs a single attempt under its own deadline so that one
// stalled provider call cannot consume the whole request budget.
func (s *ConciergeService) completeOnce(ctx context.Context, key, model string, messages []domain.ChatMessage) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
	defer cancel()
	return s.llm.Complete(attemptCtx, key, model, messages)
}

// credentialSuffix returns the last few characters of a key so logs can tell
// credentials apart without exposing them.
func credentialSuffix(key string) string {
	const keep = 4
	if len(key) <= keep {
		return key
	}
	return "..." + key[len(key)-keep:]
}
