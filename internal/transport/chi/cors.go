package chi

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS builds the cross-origin middleware for the browser dashboard. The
// origin list comes from configuration; credentials stay allowed so the
// dashboard can send authenticated requests.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
