package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"concierge-agent/internal/usecase"
)

// exhaustedApology is the fixed text returned when no provider attempt
// produced an answer.
const exhaustedApology = "Sorry, I can't answer right now. Please try again in a moment."

// UseCase is the service surface the handler depends on.
type UseCase interface {
	Recommend(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type Handler struct {
	uc     UseCase
	logger *slog.Logger
}

// newUUID is a seam for tests.
var newUUID = func() string { return uuid.NewString() }

// NewHandler creates a new Handler.
func NewHandler(uc UseCase, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if logger == nil {
		return nil, errors.New("handler: logger must not be nil")
	}
	return &Handler{uc: uc, logger: logger}, nil
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Text         string  `json:"text"`
	ProductName  *string `json:"productName"`
	ProductURL   *string `json:"productUrl"`
	ProductImage *string `json:"productImage"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Handle processes one API Gateway chat request.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, "X-Correlation-Id")
	if correlationID == "" {
		correlationID = newUUID()
	}
	logger := h.logger.With("correlationId", correlationID)

	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		logger.Warn("malformed request body", "error", err)
		return respondError(correlationID, 400, "INVALID_INPUT", "request body must be valid JSON"), nil
	}

	out, err := h.uc.Recommend(ctx, usecase.ChatInput{
		Message:    req.Message,
		TenantHost: headerValue(event.Headers, "Host"),
	})
	if err != nil {
		return h.respondUseCaseError(logger, correlationID, err), nil
	}

	return respondJSON(correlationID, 200, toChatResponse(out)), nil
}

func (h *Handler) respondUseCaseError(logger *slog.Logger, correlationID string, err error) events.APIGatewayProxyResponse {
	var ue *usecase.Error
	if errors.As(err, &ue) {
		switch ue.Code {
		case usecase.ErrorInvalidInput:
			logger.Warn("request rejected", "reason", ue.Reason)
			return respondError(correlationID, 400, string(ue.Code), ue.Reason)
		case usecase.ErrorExhausted:
			// The shopper still gets a well-formed answer body, just the
			// fixed apology with no product reference.
			logger.Error("all completion attempts exhausted", "error", err)
			return respondJSON(correlationID, 502, chatResponse{Text: exhaustedApology})
		}
	}
	logger.Error("request failed", "error", err)
	return respondError(correlationID, 500, "INTERNAL_ERROR", "")
}

func toChatResponse(out usecase.ChatOutput) chatResponse {
	resp := chatResponse{Text: out.Text}
	if out.ProductName != "" {
		resp.ProductName = &out.ProductName
		if out.ProductURL != "" {
			resp.ProductURL = &out.ProductURL
		}
		if out.ProductImage != "" {
			resp.ProductImage = &out.ProductImage
		}
	}
	return resp
}

func respondJSON(correlationID string, status int, body any) events.APIGatewayProxyResponse {
	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte(`{"error":"INTERNAL_ERROR"}`)
		status = 500
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":     "application/json",
			"X-Correlation-Id": correlationID,
		},
		Body: string(raw),
	}
}

func respondError(correlationID string, status int, code, message string) events.APIGatewayProxyResponse {
	return respondJSON(correlationID, status, errorResponse{Error: code, Message: message})
}

// headerValue looks up a header case-insensitively; API Gateway does not
// normalize header casing.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
