package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dokan-be/internal/logger"
	"dokan-be/internal/pricing"
	"dokan-be/internal/utils"

	"go.uber.org/zap"
)

type quoteRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Color     string `json:"color"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	Address   string `json:"address"`
	PromoCode string `json:"promoCode,omitempty"`
}

type quoteIssue struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type quoteResponse struct {
	Subtotal       string       `json:"subtotal"`
	DeliveryCharge string       `json:"deliveryCharge"`
	DiscountAmount string       `json:"discountAmount"`
	TotalAmount    string       `json:"totalAmount"`
	Zone           string       `json:"zone"`
	PromoCode      string       `json:"promoCode,omitempty"`
	PromoReason    string       `json:"promoReason,omitempty"`
	Issues         []quoteIssue `json:"issues,omitempty"`
}

// QuoteOrder prices a prospective order without creating anything. Prices
// come from the product records; malformed or unknown lines are reported
// as issues while the rest of the quote proceeds.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		utils.WriteJSONError(w, "at least one item is required", http.StatusBadRequest)
		return
	}

	ids := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := h.products.GetMany(r.Context(), ids)
	if err != nil {
		logger.FromCtx(r.Context()).Error("quote product fetch failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var issues []quoteIssue
	lineItems := make([]pricing.LineItem, 0, len(req.Items))
	// lineIndex maps each priced line back to its request position, so
	// calculator issues can be reported against the caller's item order.
	lineIndex := make([]int, 0, len(req.Items))
	for i, item := range req.Items {
		p, ok := catalog[item.ProductID]
		if !ok {
			issues = append(issues, quoteIssue{Index: i, Reason: "product not found"})
			continue
		}
		if p.FindVariant(item.Color, item.Size) == nil {
			issues = append(issues, quoteIssue{
				Index:  i,
				Reason: fmt.Sprintf("variant %s/%s not offered", item.Color, item.Size),
			})
			continue
		}
		lineItems = append(lineItems, pricing.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Color:       item.Color,
			Size:        item.Size,
			UnitPrice:   p.EffectivePrice(),
			Quantity:    item.Quantity,
		})
		lineIndex = append(lineIndex, i)
	}

	b, err := h.pricer.Price(r.Context(), lineItems, req.Address, req.PromoCode)
	if errors.Is(err, pricing.ErrNoPriceableItems) {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "no priceable items",
			"issues": issues,
		})
		return
	}
	if err != nil {
		logger.FromCtx(r.Context()).Error("quote pricing failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := quoteResponse{
		Subtotal:       b.Subtotal.StringFixed(2),
		DeliveryCharge: b.DeliveryCharge.StringFixed(2),
		DiscountAmount: b.DiscountAmount.StringFixed(2),
		TotalAmount:    b.TotalAmount.StringFixed(2),
		Zone:           string(b.Zone),
		PromoCode:      b.PromoCode,
		PromoReason:    b.PromoReason,
		Issues:         issues,
	}
	for _, issue := range b.Issues {
		resp.Issues = append(resp.Issues, quoteIssue{Index: lineIndex[issue.Index], Reason: issue.Reason})
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}
