package handler

import (
	"encoding/json"
	"net/http"

	"dokan-be/internal/cart"
	"dokan-be/internal/logger"
	"dokan-be/internal/utils"

	"go.uber.org/zap"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		logger.FromCtx(r.Context()).Error("cart fetch failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []cart.Item{}
	}

	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) PutCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var items []cart.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.carts.Put(r.Context(), userID, items); err != nil {
		logger.FromCtx(r.Context()).Error("cart save failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.carts.Clear(r.Context(), userID); err != nil {
		logger.FromCtx(r.Context()).Error("cart clear failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
