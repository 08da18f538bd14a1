package handler

import (
	"encoding/json"
	"net/http"

	"dokan-be/internal/inventory"
	"dokan-be/internal/logger"
	"dokan-be/internal/utils"

	"go.uber.org/zap"
)

// CheckStock reports availability for a set of variants without mutating
// anything. It is public: storefronts call it while building carts.
func (h *Handler) CheckStock(w http.ResponseWriter, r *http.Request) {
	var reqs []inventory.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(reqs) == 0 {
		utils.WriteJSONError(w, "at least one item is required", http.StatusBadRequest)
		return
	}

	report, err := h.ledger.CheckAvailability(r.Context(), reqs)
	if err != nil {
		logger.FromCtx(r.Context()).Error("stock check failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, report)
}

// ReserveStock earmarks units for an in-flight order. Trusted callers only.
func (h *Handler) ReserveStock(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	var body struct {
		OrderRef string              `json:"orderRef"`
		Items    []inventory.Request `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Items) == 0 {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ledger.Reserve(r.Context(), body.Items, body.OrderRef)
	if err != nil {
		logger.FromCtx(r.Context()).Error("stock reserve failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusConflict
	}
	utils.WriteJSON(w, status, result)
}

// BulkUpdateStock overwrites stock levels variant by variant, as after a
// physical recount. Items fail independently; the response lists both sides.
func (h *Handler) BulkUpdateStock(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if !requireAdmin(w, r) {
		return
	}

	var updates []inventory.StockUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil || len(updates) == 0 {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.ledger.BulkUpdateStock(r.Context(), updates)
	if err != nil {
		logger.FromCtx(r.Context()).Error("bulk stock update failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if !result.OK {
		status = http.StatusMultiStatus
	}
	utils.WriteJSON(w, status, result)
}
