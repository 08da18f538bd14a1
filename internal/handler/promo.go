package handler

import (
	"net/http"
	"time"

	"dokan-be/internal/logger"
	"dokan-be/internal/utils"

	"go.uber.org/zap"
)

// ActivePromos lists the dynamic offers currently applicable, for display
// on the storefront. Static built-in codes are not advertised here.
func (h *Handler) ActivePromos(w http.ResponseWriter, r *http.Request) {
	offers, err := h.promos.GetActive(r.Context())
	if err != nil {
		logger.FromCtx(r.Context()).Error("active promos fetch failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	views := make([]offerView, 0, len(offers))
	for _, o := range offers {
		if !o.CurrentlyValid(now) {
			continue
		}
		views = append(views, newOfferView(o))
	}

	utils.WriteJSON(w, http.StatusOK, views)
}
