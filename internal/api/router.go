package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sydlexius/tracklink/internal/api/middleware"
	"github.com/sydlexius/tracklink/internal/logging"
	"github.com/sydlexius/tracklink/internal/telegram"
)

// UpdateHandler processes one chat platform update end to end.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update telegram.Update) error
}

// RouterDeps bundles all dependencies needed by the HTTP router.
type RouterDeps struct {
	Relay         UpdateHandler
	LogManager    *logging.Manager
	WebhookSecret string
	Logger        *slog.Logger
	BasePath      string
}

// Router sets up all HTTP routes for the service.
type Router struct {
	relay         UpdateHandler
	logManager    *logging.Manager
	webhookSecret string
	logger        *slog.Logger
	basePath      string
}

// NewRouter creates a new Router with all routes configured.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		relay:         deps.Relay,
		logManager:    deps.LogManager,
		webhookSecret: deps.WebhookSecret,
		logger:        deps.Logger,
		basePath:      deps.BasePath,
	}
}

// Handler returns the fully configured HTTP handler with middleware applied.
func (r *Router) Handler(ctx context.Context) http.Handler {
	secretMw := middleware.WebhookSecret(r.webhookSecret)
	flood := middleware.NewWebhookRateLimiter(ctx)
	mux := http.NewServeMux()
	bp := r.basePath

	mux.HandleFunc("GET "+bp+"/api/v1/health", r.handleHealth)
	mux.HandleFunc("GET "+bp+"/api/v1/logging", r.handleGetLogging)
	mux.Handle("PUT "+bp+"/api/v1/logging", secretMw(http.HandlerFunc(r.handleUpdateLogging)))
	mux.Handle("POST "+bp+"/webhook/telegram",
		secretMw(flood.Middleware(http.HandlerFunc(r.handleTelegramWebhook))))

	// Apply logging to all requests
	return middleware.Logging(r.logger)(middleware.SecurityHeaders(mux))
}
