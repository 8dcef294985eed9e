package domain

import "errors"

// Ledger failures deliberately do not distinguish "record missing" from
// "condition not met": both abort the purchase the same way, and the
// conditional update cannot tell them apart without a second read.
var (
	ErrInvalidQuantity = errors.New("positive quantity required")

	ErrInsufficientStock = errors.New("product not found or insufficient inventory")
	ErrInsufficientFunds = errors.New("customer not found or insufficient funds")
	ErrPriceChanged      = errors.New("product price changed")
	ErrTotalMismatch     = errors.New("incorrect order total price")

	// ErrTxConflict is the store's transient serialization conflict. It is
	// the only retryable kind; everything else is terminal.
	ErrTxConflict = errors.New("transaction conflict")

	// Plain read lookups (outside the purchase path) can say "not found"
	// without leaking anything, so they get their own sentinels.
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
)
