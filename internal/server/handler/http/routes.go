package http

import (
	"net/http"

	"passvault/internal/middleware"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the passvault
// API. It applies JSON content-type enforcement, request logging, and
// certificate-based authentication, and mounts the secret and share
// endpoints under /api.
//
// Routes:
//
//	POST   /api/secrets             → secretHandler.Create
//	GET    /api/secrets             → secretHandler.List
//	PUT    /api/secrets/{id}        → secretHandler.Update
//	DELETE /api/secrets/{id}        → secretHandler.Delete
//	POST   /api/shares              → shareHandler.Create
//	GET    /api/shares              → shareHandler.List
//	POST   /api/shares/{id}/accept  → shareHandler.Accept
//	POST   /api/shares/{id}/reject  → shareHandler.Reject
//
// Every route requires a verified client certificate; the certificate's CN
// is resolved to the acting user through users.
func NewRouter(
	secretHandler *SecretHandler,
	shareHandler *ShareHandler,
	users middleware.UserResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))
	// Resolve the authenticated identity from the client certificate
	r.Use(middleware.CertAuth(users))

	r.Route("/api", func(r chi.Router) {
		r.Route("/secrets", func(r chi.Router) {
			r.Post("/", secretHandler.Create)
			r.Get("/", secretHandler.List)
			r.Put("/{id}", secretHandler.Update)
			r.Delete("/{id}", secretHandler.Delete)
		})

		r.Route("/shares", func(r chi.Router) {
			r.Post("/", shareHandler.Create)
			r.Get("/", shareHandler.List)
			r.Post("/{id}/accept", shareHandler.Accept)
			r.Post("/{id}/reject", shareHandler.Reject)
		})
	})

	return r
}
