package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/gridkit/internal/logging"
)

// withViewLogging tags the request context with the view from the URL so
// every log line of the request carries view_id.
func withViewLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chi.URLParam(r, "viewID"); id != "" {
			r = r.WithContext(logging.WithView(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
