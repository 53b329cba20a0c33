package api

import (
	"encoding/json"
	"net/http"

	"github.com/sydlexius/tracklink/internal/logging"
)

// handleGetLogging reports the active logging configuration.
// GET /api/v1/logging
func (r *Router) handleGetLogging(w http.ResponseWriter, _ *http.Request) {
	if r.logManager == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "logging manager not available"})
		return
	}
	writeJSON(w, http.StatusOK, r.logManager.Config())
}

// handleUpdateLogging applies a logging change to the running process.
// Omitted fields keep their current values. The change is not persisted:
// the config file remains the source of truth and the next reload wins.
// PUT /api/v1/logging
func (r *Router) handleUpdateLogging(w http.ResponseWriter, req *http.Request) {
	if r.logManager == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "logging manager not available"})
		return
	}

	var cfg logging.Config
	if err := json.NewDecoder(req.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	if cfg.Level != "" && !logging.ValidLevel(cfg.Level) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid level; must be debug, info, warn, or error"})
		return
	}
	if cfg.Format != "" && !logging.ValidFormat(cfg.Format) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid format; must be text or json"})
		return
	}

	current := r.logManager.Config()
	if cfg.Level == "" {
		cfg.Level = current.Level
	}
	if cfg.Format == "" {
		cfg.Format = current.Format
	}
	if cfg.FilePath == "" {
		cfg.FilePath = current.FilePath
	}
	if cfg.FileMaxSizeMB == 0 {
		cfg.FileMaxSizeMB = current.FileMaxSizeMB
	}
	if cfg.FileMaxFiles == 0 {
		cfg.FileMaxFiles = current.FileMaxFiles
	}
	if cfg.FileMaxAgeDays == 0 {
		cfg.FileMaxAgeDays = current.FileMaxAgeDays
	}

	r.logManager.Reconfigure(cfg)
	r.logger.Info("logging reconfigured", "config", cfg.String())

	writeJSON(w, http.StatusOK, cfg)
}
