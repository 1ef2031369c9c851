package entities

import "quickpark/internal/money"

// Quote is the charge for a reservation window.
type Quote struct {
	Hours int64       `json:"hours"`
	Total money.Cents `json:"totalPrice"`
	Fee   money.Cents `json:"applicationFee"`
}
