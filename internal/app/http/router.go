package http

import (
	"log/slog"
	"net/http"
)

// NewRouter mounts the handlers and wraps them with request id, logging and panic recovery.
func NewRouter(h *Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", h.HandleRoot)
	mux.HandleFunc("/health", h.HandleHealth)
	mux.HandleFunc("/brainstorm", h.HandleBrainstorm)
	mux.HandleFunc("/test", h.HandleTest)
	mux.HandleFunc("/admin/generate-api-key", h.HandleGenerateKey)
	mux.HandleFunc("/admin/revoke-api-key", h.HandleRevokeKey)

	return Chain(mux,
		RequestID(),
		Logging(logger),
		Recover(logger),
	)
}
