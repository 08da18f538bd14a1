package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"dokan-be/internal/logger"
	"dokan-be/internal/order"
	"dokan-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var input order.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	input.IdempotencyKey = r.Header.Get("Idempotency-Key")

	o, err := h.orders.Create(r.Context(), userID, input)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, newOrderView(o, false))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.List(r.Context(), userID)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, newOrderViews(orders, false))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	admin := utils.IsAdmin(r.Context())
	o, err := h.orders.Get(r.Context(), userID, chi.URLParam(r, "orderID"), admin)
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, newOrderView(o, admin))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	o, err := h.orders.Cancel(r.Context(), userID, chi.URLParam(r, "orderID"))
	if err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, newOrderView(o, false))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	var body struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), body.Status); err != nil {
		writeOrderError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": string(body.Status)})
}

// writeOrderError maps domain errors to HTTP responses. Validation and
// stock rejections keep their structured payloads so clients can act on
// every problem at once.
func writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *order.ValidationError
	if errors.As(err, &verr) {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"errors": verr.Errors,
		})
		return
	}

	var serr *order.StockError
	if errors.As(err, &serr) {
		utils.WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"error":      serr.Error(),
			"outOfStock": serr.OutOfStock,
			"lowStock":   serr.LowStock,
		})
		return
	}

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, order.ErrForbidden):
		utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrNotCancellable):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	default:
		logger.FromCtx(r.Context()).Error("order request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
