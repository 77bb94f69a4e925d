package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/rosario-store/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса магазина.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/profile", h.GetProfile)

			r.Get("/orders", h.GetMyOrders)
			r.Post("/orders", h.CreateMyOrder)
			r.Put("/orders/{id}", h.UpdateMyOrder)
			r.Delete("/orders/{id}", h.DeleteMyOrder)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/", h.ListProducts)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAdmin)

			r.Post("/", h.CreateProduct)
			r.Post("/import", h.ImportProducts)
			r.Put("/{id}", h.UpdateProduct)
			r.Delete("/{id}", h.DeleteProduct)
			r.Post("/{id}/image", h.AttachProductImage)
		})
	})

	r.Route("/api/checklist", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/pending", h.GetChecklistPending)

		r.Get("/{category}", h.GetChecklist)
		r.Get("/{category}/watch", h.WatchChecklist)
		r.Post("/{category}", h.AddChecklistItem)
		r.Patch("/{category}/{id}", h.ToggleChecklistItem)
		r.Delete("/{category}/{id}", h.DeleteChecklistItem)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)
		r.Use(h.requireAdmin)

		r.Post("/customers", h.CreateCustomer)
		r.Get("/customers", h.ListCustomers)
		r.Get("/customers/{id}", h.GetCustomer)
		r.Delete("/customers/{id}", h.DeleteCustomer)

		r.Get("/customers/{id}/orders", h.GetCustomerOrders)
		r.Post("/customers/{id}/orders", h.AssignOrder)
		r.Post("/customers/{id}/rebates", h.ApplyRebate)
		r.Post("/orders/{id}/payments", h.ApplyPayment)

		r.Get("/orders", h.GetAllOrders)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
