package models

import (
	"errors"

	"github.com/google/uuid"
)

// PurchaseRequest is the payload from the client. The nested preview objects
// carry what the shopper last saw: the product price rendered on the page and
// the order total computed client-side. Both are re-checked inside the
// transaction against live data.
type PurchaseRequest struct {
	ProductID  string `json:"id"`
	Amount     int64  `json:"amount"`
	CustomerID string `json:"customerId"`

	PreviewOrder struct {
		TotalPrice int64 `json:"totalPrice"`
	} `json:"previewOrder"`

	ProductViewInClient struct {
		Price int64 `json:"price"`
	} `json:"productViewInClient"`
}

// Validate rejects malformed requests at the boundary, before any
// transaction is opened.
func (r PurchaseRequest) Validate() error {
	if _, err := uuid.Parse(r.ProductID); err != nil {
		return errors.New("valid product id required")
	}
	if _, err := uuid.Parse(r.CustomerID); err != nil {
		return errors.New("valid customer id required")
	}
	if r.Amount <= 0 {
		return errors.New("positive amount required")
	}
	if r.PreviewOrder.TotalPrice < 0 {
		return errors.New("preview total must be non-negative")
	}
	if r.ProductViewInClient.Price < 0 {
		return errors.New("preview price must be non-negative")
	}
	return nil
}

// PurchaseResponse acknowledges a committed purchase.
type PurchaseResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}
