package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	app_errors "github.com/spounge-ai/brainstormity/internal/errors"
	"github.com/spounge-ai/brainstormity/internal/service"
)

const (
	RootMessage    = "BrainstormityBrain API is running"
	AdminKeyHeader = "X-Admin-Key"

	defaultMaxBodyBytes = 64 * 1024
)

// Handlers contains the HTTP handlers for the gateway and admin API.
type Handlers struct {
	gateway      *service.Gateway
	registry     *service.KeyRegistry
	classifier   *app_errors.ErrorClassifier
	logger       *slog.Logger
	maxBodyBytes int64
}

func NewHandlers(
	gateway *service.Gateway,
	registry *service.KeyRegistry,
	classifier *app_errors.ErrorClassifier,
	logger *slog.Logger,
	maxBodyBytes int64,
) *Handlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handlers{
		gateway:      gateway,
		registry:     registry,
		classifier:   classifier,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleRoot handles / and answers 404 for any path no other handler claims.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.notFound(w, r)
		return
	}
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.json(w, http.StatusOK, RootResponse{Message: RootMessage})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	report := h.gateway.Health()
	h.json(w, http.StatusOK, HealthResponse{
		Status:                    report.Status,
		ClientInitialized:         report.ClientInitialized,
		ProviderCredentialPresent: report.ProviderCredentialPresent,
	})
}

func (h *Handlers) HandleBrainstorm(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}

	// Without a provider session nothing about the request matters, not even its body.
	if err := h.gateway.Ready(); err != nil {
		h.fail(w, r, err, "brainstorm")
		return
	}

	var req BrainstormRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err, "brainstorm")
		return
	}

	text, err := h.gateway.HandleBrainstorm(r.Context(), bearerToken(r), req.Query)
	if err != nil {
		h.fail(w, r, err, "brainstorm")
		return
	}

	h.json(w, http.StatusOK, BrainstormResponse{Response: text})
}

func (h *Handlers) HandleTest(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}

	probe, err := h.gateway.TestReasoning(r.Context(), bearerToken(r))
	if err != nil {
		h.fail(w, r, err, "test")
		return
	}

	h.json(w, http.StatusOK, TestResponse{
		Question: probe.Question,
		Response: probe.Response,
		Model:    probe.Model,
	})
}

func (h *Handlers) HandleGenerateKey(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}

	issued, err := h.registry.Issue(r.Context(), r.Header.Get(AdminKeyHeader), r.URL.Query().Get("client_name"))
	if err != nil {
		h.fail(w, r, err, "generate_api_key")
		return
	}

	h.json(w, http.StatusOK, GenerateKeyResponse{
		APIKey:     issued.Token,
		ClientName: issued.ClientName.String(),
	})
}

func (h *Handlers) HandleRevokeKey(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}

	// The admin credential is checked before the body is read.
	adminKey := r.Header.Get(AdminKeyHeader)
	if err := h.registry.Authorize(r.Context(), adminKey, service.OpRevoke); err != nil {
		h.fail(w, r, err, "revoke_api_key")
		return
	}

	var req RevokeKeyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err, "revoke_api_key")
		return
	}

	if err := h.registry.Revoke(r.Context(), adminKey, req.APIKey); err != nil {
		h.fail(w, r, err, "revoke_api_key")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header, or "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Helper methods

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return app_errors.WithMessage(app_errors.ErrBadRequest, "Request body exceeds %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return app_errors.WithMessage(app_errors.ErrBadRequest, "Request body is required")
		default:
			return app_errors.WithMessage(app_errors.ErrBadRequest, "Invalid request body: %s", jsonErrorText(err))
		}
	}

	if dec.More() {
		return app_errors.WithMessage(app_errors.ErrBadRequest, "Request body must contain a single JSON object")
	}
	return nil
}

// jsonErrorText keeps decoder messages short and free of the caller's raw input.
func jsonErrorText(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		return "malformed JSON"
	case errors.As(err, &typeErr):
		return "field " + typeErr.Field + " has the wrong type"
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return strings.TrimPrefix(err.Error(), "json: ")
	default:
		return "malformed JSON"
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, operation string) {
	classified := h.classifier.Classify(err, operation)
	status, message := h.classifier.LogAndSanitize(r.Context(), classified)
	h.errorWithCode(w, message, classified.Class.String(), status)
}

func (h *Handlers) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.errorWithCode(w, "method not allowed", "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed)
	return false
}

func (h *Handlers) json(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) errorWithCode(w http.ResponseWriter, message, code string, status int) {
	h.json(w, status, ErrorResponse{Error: message, Code: code})
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	h.errorWithCode(w, "not found", "NOT_FOUND", http.StatusNotFound)
}
