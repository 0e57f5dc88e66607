package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"concierge-agent/internal/domain"
)

// ParamGetter reads configuration from the parameter store.
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
	GetJSON(ctx context.Context, name string, out any) error
}

// CompletionClient performs one chat completion under an explicit credential.
type CompletionClient interface {
	Complete(ctx context.Context, apiKey, model string, messages []domain.ChatMessage) (string, error)
}

// SnapshotFetcher reads the current inventory from a tenant endpoint.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, endpoint string, limit int) ([]domain.InventoryItem, error)
}

// ChatInput is one shopper question addressed to a tenant storefront.
type ChatInput struct {
	Message    string
	TenantHost string
}

// ChatOutput is the answer shown to the shopper. Product fields are empty
// when the answer carries no resolved recommendation.
type ChatOutput struct {
	Text         string
	ProductName  string
	ProductURL   string
	ProductImage string
}

// tenantDoc is the per-tenant entry stored in the parameter store registry.
type tenantDoc struct {
	PersonaName        string `json:"personaName"`
	PersonaDescription string `json:"personaDescription"`
	InventoryEndpoint  string `json:"inventoryEndpoint"`
}

// tokenPayload is the JSON document holding the provider credential pool.
type tokenPayload struct {
	Tokens []string `json:"tokens"`
}

// ConciergeService answers shopper questions with inventory-grounded
// completions, falling back across credentials and models when the provider
// misbehaves.
type ConciergeService struct {
	params  ParamGetter
	llm     CompletionClient
	catalog SnapshotFetcher
	logger  *slog.Logger

	paramPrefix    string
	snapshotLimit  int
	maxMessageLen  int
	attemptTimeout time.Duration

	// Parameter store reads are cached for the lifetime of the process. A
	// failed load leaves the cache empty so the next request retries.
	cacheMu     sync.RWMutex
	cacheLoaded bool
	tenants     map[string]domain.TenantContext
	credentials []string
	models      []string
}

type ServiceOption func(*ConciergeService)

// WithSnapshotLimit caps how many inventory items each request fetches.
func WithSnapshotLimit(limit int) ServiceOption {
	return func(s *ConciergeService) {
		if limit > 0 {
			s.snapshotLimit = limit
		}
	}
}

// WithMaxMessageLength caps the accepted question length in characters.
func WithMaxMessageLength(n int) ServiceOption {
	return func(s *ConciergeService) {
		if n > 0 {
			s.maxMessageLen = n
		}
	}
}

// WithAttemptTimeout bounds each individual completion attempt.
func WithAttemptTimeout(d time.Duration) ServiceOption {
	return func(s *ConciergeService) {
		if d > 0 {
			s.attemptTimeout = d
		}
	}
}

// NewConciergeService creates a new ConciergeService.
func NewConciergeService(params ParamGetter, llm CompletionClient, catalog SnapshotFetcher, logger *slog.Logger, paramPrefix string, opts ...ServiceOption) (*ConciergeService, error) {
	if params == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: completion client must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: snapshot fetcher must not be nil")
	}
	if logger == nil {
		return nil, errors.New("usecase: logger must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: param prefix must not be empty")
	}

	s := &ConciergeService{
		params:         params,
		llm:            llm,
		catalog:        catalog,
		logger:         logger,
		paramPrefix:    paramPrefix,
		snapshotLimit:  maxDigestItems,
		maxMessageLen:  500,
		attemptTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Recommend answers one shopper question. The returned error is always a
// *Error; handlers map its code to a transport status.
func (s *ConciergeService) Recommend(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, &Error{Code: ErrorInvalidInput, Reason: "empty_question"}
	}
	if len(message) > s.maxMessageLen {
		return ChatOutput{}, &Error{Code: ErrorInvalidInput, Reason: "message_too_long"}
	}

	if err := s.ensureConfig(ctx); err != nil {
		return ChatOutput{}, &Error{Code: ErrorInternal, Reason: "config_load_error", Err: err}
	}

	s.cacheMu.RLock()
	tenant, ok := s.tenants[strings.ToLower(strings.TrimSpace(in.TenantHost))]
	credentials := s.credentials
	models := s.models
	s.cacheMu.RUnlock()
	if !ok {
		return ChatOutput{}, &Error{Code: ErrorInvalidInput, Reason: "unknown_tenant"}
	}

	items, err := s.catalog.FetchSnapshot(ctx, tenant.InventoryEndpoint, s.snapshotLimit)
	if err != nil {
		// Grounding is best-effort: the shopper still gets an answer, just
		// one without inventory facts behind it.
		s.logger.Warn("inventory snapshot unavailable", "tenant", in.TenantHost, "error", err)
		items = nil
	}

	messages := buildPromptMessages(tenant, items, message)

	text, err := s.completeWithFallback(ctx, credentials, models, messages)
	if err != nil {
		return ChatOutput{}, err
	}

	out := ChatOutput{Text: sanitizeAnswer(text)}
	if item, found := resolveRecommendation(text, items); found {
		out.ProductName = item.Name
		out.ProductURL = item.URL
		out.ProductImage = item.ImageURL
	}
	return out, nil
}

// ensureConfig loads the tenant registry, credential pool and model list from
// the parameter store on first use. Nothing is cached on failure.
func (s *ConciergeService) ensureConfig(ctx context.Context) error {
	s.cacheMu.RLock()
	loaded := s.cacheLoaded
	s.cacheMu.RUnlock()
	if loaded {
		return nil
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return nil
	}

	var tenantDocs map[string]tenantDoc
	if err := s.params.GetJSON(ctx, s.paramPrefix+"/tenants", &tenantDocs); err != nil {
		return fmt.Errorf("load tenants: %w", err)
	}
	if len(tenantDocs) == 0 {
		return errors.New("tenant registry is empty")
	}

	var tokens tokenPayload
	if err := s.params.GetJSON(ctx, s.paramPrefix+"/provider/credentials", &tokens); err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	var models []string
	if err := s.params.GetJSON(ctx, s.paramPrefix+"/config/models", &models); err != nil {
		return fmt.Errorf("load models: %w", err)
	}

	tenants := make(map[string]domain.TenantContext, len(tenantDocs))
	for host, doc := range tenantDocs {
		tenants[strings.ToLower(strings.TrimSpace(host))] = domain.TenantContext{
			PersonaName:        doc.PersonaName,
			PersonaDescription: doc.PersonaDescription,
			InventoryEndpoint:  doc.InventoryEndpoint,
		}
	}

	s.tenants = tenants
	s.credentials = tokens.Tokens
	s.models = models
	s.cacheLoaded = true
	return nil
}
