package promo

import "errors"

var ErrOfferNotFound = errors.New("promo offer not found")

// Rejection reasons surfaced to clients. Each failing gate has its own
// reason so the UI can explain exactly why a code was refused.
const (
	ReasonInvalidCode   = "invalid promo code"
	ReasonMinimumOrder  = "minimum order not met"
	ReasonInactive      = "promo code is not active"
	ReasonNotYetValid   = "promo code is not yet valid"
	ReasonExpired       = "promo code has expired"
	ReasonUsageExceeded = "promo code usage limit reached"
)
