package middleware

import (
	"crypto/subtle"
	"net/http"
)

// SecretHeader is the header Telegram echoes back when the webhook was
// registered with a secret_token.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookSecret returns middleware that rejects requests whose secret header
// does not match the configured value. An empty secret disables the check
// entirely, for setups that restrict access at the network layer instead.
func WebhookSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(SecretHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
