// Package handler exposes the REST API. Handlers decode and authorize;
// all domain decisions live in the services underneath.
package handler

import (
	"net/http"

	"dokan-be/internal/cart"
	"dokan-be/internal/inventory"
	"dokan-be/internal/order"
	"dokan-be/internal/product"
	"dokan-be/internal/promo"
	"dokan-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	orders   order.Service
	pricer   order.Pricer
	products product.Repository
	ledger   inventory.Ledger
	promos   promo.Catalog
	carts    cart.Store
}

func New(
	orders order.Service,
	pricer order.Pricer,
	products product.Repository,
	ledger inventory.Ledger,
	promos promo.Catalog,
	carts cart.Store,
) *Handler {
	return &Handler{
		orders:   orders,
		pricer:   pricer,
		products: products,
		ledger:   ledger,
		promos:   promos,
		carts:    carts,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/promos/active", h.ActivePromos)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", h.CreateOrder)
			r.Get("/", h.ListOrders)
			r.Post("/quote", h.QuoteOrder)
			r.Get("/{orderID}", h.GetOrder)
			r.Post("/{orderID}/cancel", h.CancelOrder)
			r.Patch("/{orderID}/status", h.UpdateOrderStatus)
		})

		r.Route("/stock", func(r chi.Router) {
			r.Post("/check", h.CheckStock)
			r.Post("/reserve", h.ReserveStock)
			r.Post("/bulk", h.BulkUpdateStock)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Put("/", h.PutCart)
			r.Delete("/", h.ClearCart)
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
	}
	return userID, ok
}

// requireAdmin returns false and writes a 403 unless the caller is an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !utils.IsAdmin(r.Context()) {
		utils.WriteJSONError(w, "admin access required", http.StatusForbidden)
		return false
	}
	return true
}
