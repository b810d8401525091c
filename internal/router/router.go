package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"blogsmith-backend/internal/handlers"
	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
	blogHandler *handlers.BlogHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Use(chimiddleware.Timeout(30 * time.Second))
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Blog Routes ────
		r.Route("/blogs", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/generate", blogHandler.Generate)
			r.Get("/", blogHandler.List)
			r.Get("/{id}", blogHandler.Get)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
