package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sydlexius/tracklink/internal/api"
	"github.com/sydlexius/tracklink/internal/catalog"
	"github.com/sydlexius/tracklink/internal/catalog/deezer"
	"github.com/sydlexius/tracklink/internal/catalog/spotify"
	"github.com/sydlexius/tracklink/internal/config"
	"github.com/sydlexius/tracklink/internal/event"
	"github.com/sydlexius/tracklink/internal/logging"
	"github.com/sydlexius/tracklink/internal/match"
	"github.com/sydlexius/tracklink/internal/notify"
	"github.com/sydlexius/tracklink/internal/relay"
	"github.com/sydlexius/tracklink/internal/telegram"
	"github.com/sydlexius/tracklink/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("TL_CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Set up structured logging via the logging Manager
	logManager, logger := logging.NewManager(loggingConfig(cfg))
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	// Missing credentials degrade the affected integration instead of
	// aborting startup: the relevant outbound calls fail per message and
	// are logged there.
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		logger.Warn("missing recommended environment variables",
			slog.String("missing", strings.Join(missing, ", ")))
	}

	channelID, channelUsername := splitChannel(cfg.Telegram.ChannelID)

	// Catalog adapters share one rate limiter map
	limiters := catalog.NewRateLimiterMap()
	registry := catalog.NewRegistry()
	registry.Register(spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, limiters, logger))
	registry.Register(deezer.New(limiters, logger))

	active := catalog.Name(cfg.Catalog.Provider)
	searcher := registry.Get(active)
	if searcher == nil {
		return fmt.Errorf("catalog %q not registered", cfg.Catalog.Provider)
	}

	resolver := match.NewResolver(searcher, match.Config{
		ConfidenceThreshold: cfg.Matching.ConfidenceThreshold,
	}, logger)

	messenger := telegram.New(cfg.Telegram.BotToken, logger)

	// Initialize event bus and operator notifications
	eventBus := event.NewBus(logger, 256)
	go eventBus.Start()
	defer eventBus.Stop()

	notifier := notify.New(cfg.Notify.URLs, logger)
	notifier.Register(eventBus)

	relayService := relay.NewService(resolver, messenger, eventBus, relay.Config{
		ChannelID:       channelID,
		ChannelUsername: channelUsername,
		MaxCandidates:   cfg.Matching.MaxCandidates,
		LinkPrefix:      fmt.Sprintf("🎵 Listen on %s: ", active.DisplayName()),
		NotFoundMessage: cfg.Reply.NotFoundMessage,
	}, logger)

	logger.Info("starting tracklink",
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("catalog", string(active)),
	)

	// Set up HTTP router
	router := api.NewRouter(api.RouterDeps{
		Relay:         relayService,
		LogManager:    logManager,
		WebhookSecret: cfg.Telegram.WebhookSecret,
		Logger:        logger,
		BasePath:      cfg.Server.BasePath,
	})

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Re-apply the logging section when the config file changes on disk
	go config.Watch(ctx, configPath, logger, func(next *config.Config) {
		logManager.Reconfigure(loggingConfig(next))
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(ctx),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// loggingConfig maps the logging section of the service config onto the
// logging Manager's own config type.
func loggingConfig(cfg *config.Config) logging.Config {
	return logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FilePath:       cfg.Logging.FilePath,
		FileMaxSizeMB:  cfg.Logging.FileMaxSizeMB,
		FileMaxFiles:   cfg.Logging.FileMaxFiles,
		FileMaxAgeDays: cfg.Logging.FileMaxAgeDays,
	}
}

// splitChannel interprets the configured Telegram channel as a numeric chat
// ID or a channel username. Empty disables chat filtering entirely.
func splitChannel(s string) (id int64, username string) {
	if s == "" {
		return 0, ""
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, ""
	}
	return 0, strings.TrimPrefix(s, "@")
}
