package rest

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type RouterConfig struct {
	AllowedOrigins []string
	// Запросов на отмену с одного IP в минуту; 0 — без ограничения.
	CancelRateLimit int
}

func NewRouter(h *BookingHandler, cfg RouterConfig) *chi.Mux {
	router := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", CancelSecretHeader},
		MaxAge:         300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", h.Health)
		r.Get("/catalog", h.Catalog)

		r.Route("/weeks", func(r chi.Router) {
			r.Get("/", h.ListWeeks)
			r.Get("/{week}/grid", h.WeekGrid)
			r.Get("/{week}/bookings", h.WeekBookings)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListAll)
			r.Post("/", h.Confirm)
			r.Get("/upcoming", h.Upcoming)

			// Перебор секрета отмены ограничивается по IP.
			r.Group(func(r chi.Router) {
				if cfg.CancelRateLimit > 0 {
					r.Use(httprate.LimitByIP(cfg.CancelRateLimit, time.Minute))
				}
				r.Delete("/{slotKey}", h.Cancel)
			})
			r.Get("/{slotKey}/events", h.SlotHistory)
		})

		r.Get("/stats/past", h.PastStats)
	})

	return router
}
