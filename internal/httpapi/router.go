package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"shopmart-be/internal/middleware"
	"shopmart-be/internal/user"
)

func NewRouter(h *Handler, auth *middleware.Auth) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Logging(h.counts))

	r.Get("/health", h.Health)

	// RateLimit sits after RequireAuth on authenticated chains so the
	// bucket is keyed by user id; anonymous routes are keyed by IP.
	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(a chi.Router) {
			a.With(middleware.RateLimit).Post("/register", h.Register)
			a.With(middleware.RateLimit).Post("/login", h.Login)
			a.With(auth.RequireAuth, middleware.RateLimit).Get("/profile", h.Profile)
		})

		api.Route("/products", func(p chi.Router) {
			p.With(middleware.RateLimit).Get("/", h.ListProducts)
			p.With(middleware.RateLimit).Get("/{id}", h.GetProduct)

			p.Group(func(admin chi.Router) {
				admin.Use(auth.RequireAuth, middleware.RateLimit, middleware.RequireRole(user.RoleAdmin))
				admin.Post("/", h.CreateProduct)
				admin.Put("/{id}", h.UpdateProduct)
				admin.Delete("/{id}", h.DeleteProduct)
			})

			p.With(auth.RequireAuth, middleware.RateLimit).Post("/{id}/reviews", h.AddReview)
		})

		api.Route("/orders", func(o chi.Router) {
			o.Use(auth.RequireAuth, middleware.RateLimit)
			o.Post("/", h.PlaceOrder)
			o.Get("/", h.ListMyOrders)
			o.With(middleware.RequireRole(user.RoleAdmin)).Get("/all", h.ListAllOrders)
			o.Get("/{id}", h.GetOrder)
			o.With(middleware.RequireRole(user.RoleAdmin)).Put("/{id}/status", h.UpdateOrderStatus)
		})
	})

	return r
}
