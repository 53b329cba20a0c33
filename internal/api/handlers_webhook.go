package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sydlexius/tracklink/internal/catalog"
	"github.com/sydlexius/tracklink/internal/telegram"
)

// handleTelegramWebhook receives update posts from the Bot API.
// POST /webhook/telegram
//
// Processing is synchronous: Telegram redelivers an update after any non-2xx
// response, so answering 503 while the catalog throttles us turns the
// platform's retry loop into our retry loop.
func (r *Router) handleTelegramWebhook(w http.ResponseWriter, req *http.Request) {
	// Limit request body to 1 MB
	req.Body = http.MaxBytesReader(w, req.Body, 1<<20)

	var update telegram.Update
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON payload"})
		return
	}

	if err := r.relay.HandleUpdate(req.Context(), update); err != nil {
		var rateLimited *catalog.ErrRateLimited
		if errors.As(err, &rateLimited) {
			if rateLimited.RetryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(rateLimited.RetryAfter.Seconds())))
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "catalog rate limited"})
			return
		}
		r.logger.Error("processing update failed", "update_id", update.UpdateID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
