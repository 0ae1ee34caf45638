package api

import (
	"net/http"
	"strings"

	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/utils"
)

func (app *Application) rateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := app.ratelimiter.GetSourceKey(r)
		if !app.ratelimiter.Allow(key) {
			json.WriteRateLimitError(w, 1)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) enableCors(next http.Handler) http.Handler {
	origins := strings.Join(app.config.HTTP.AllowedOrigins, ", ")
	headers := strings.Join(app.config.HTTP.AllowedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", headers)

		// allow preflight requests from the browser API
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireSession rejects requests without a valid bearer token and
// stashes the user id on the context.
func (app *Application) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := utils.BearerToken(r)
		if token == "" {
			json.WriteError(w, http.StatusUnauthorized, nil, "missing session token")
			return
		}

		userID, err := app.verifier.Verify(token)
		if err != nil {
			json.WriteError(w, http.StatusUnauthorized, err, "invalid session token")
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithUserID(r.Context(), userID)))
	})
}
