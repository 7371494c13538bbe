package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"coach-backend/internal/handlers"
	"coach-backend/internal/middleware"
	"coach-backend/internal/websocket"
)

// Handlers groups everything the route table mounts.
type Handlers struct {
	Chat    *handlers.ChatHandler
	Coach   *handlers.CoachHandler
	Program *handlers.ProgramHandler
	Profile *handlers.ProfileHandler
	Product *handlers.ProductHandler
	Job     *handlers.JobHandler
}

func New(
	jwtAuth *middleware.JWTAuth,
	h Handlers,
	wsHub *websocket.Hub,
	corsOrigin string,
	completionsPerMin int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(corsOrigin))

	// Completion calls are the expensive ones; limited per user.
	llmLimiter := middleware.NewRateLimiter(completionsPerMin, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Token comes as a query parameter; browsers cannot set headers on upgrade.
	r.Get("/ws", wsHub.HandleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtAuth.Middleware)

		// ──── Coach Routes ────
		r.With(llmLimiter.Middleware).Post("/chat", h.Chat.Relay)

		r.Route("/coach", func(r chi.Router) {
			r.With(llmLimiter.Middleware).Post("/messages", h.Coach.SendMessage)
			r.Post("/reset", h.Coach.Reset)
			r.Get("/render", h.Coach.Render)
		})

		r.Get("/conversation", h.Coach.GetConversation)
		r.Put("/conversation", h.Coach.PutConversation)

		// ──── Program Routes ────
		r.Route("/program", func(r chi.Router) {
			r.Get("/", h.Program.Get)
			r.Put("/", h.Program.Put)
			r.Post("/commit", h.Program.Commit)
			r.Get("/stats", h.Program.Stats)
			r.Get("/export", h.Program.Export)

			r.Route("/sessions/{id}", func(r chi.Router) {
				r.Post("/done", h.Program.MarkDone)
				r.Post("/reset", h.Program.Reset)
				r.Delete("/", h.Program.Delete)
			})
		})

		// ──── Profile & Onboarding Routes ────
		r.Get("/profile", h.Profile.Get)
		r.Put("/profile", h.Profile.Put)
		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/questions", h.Profile.Questions)
			r.With(llmLimiter.Middleware).Post("/complete", h.Profile.CompleteOnboarding)
		})

		// ──── Catalog Routes ────
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/{id}", h.Product.Get)
			r.Post("/suggest", h.Product.Suggest)
		})

		r.Route("/parse", func(r chi.Router) {
			r.Post("/sessions", h.Product.ParseSessions)
			r.Post("/message", h.Product.ParseMessage)
		})

		// ──── Job Routes ────
		r.Get("/jobs/{id}", h.Job.GetJob)
	})

	return r
}
