package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

var (
	errMissingKey = errors.New("missing API key")
	errInvalidKey = errors.New("invalid API key")
)

// APIKeyAuth checks the X-API-Key header against the configured keys.
// Requests pass through when RequireAPIKey is off. With RequireAPIKey on and
// no keys configured, every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-Key")
			switch {
			case key == "":
				reject(w, r, errMissingKey, http.StatusUnauthorized)
			case !isValidAPIKey(key, cfg.APIKeys):
				reject(w, r, errInvalidKey, http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, err error, status int) {
	logging.FromContext(r.Context()).Warn("auth rejected",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"error", err.Error(),
	)

	msg := core.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}

// isValidAPIKey compares key against every configured key in constant time,
// whichever one matches.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
