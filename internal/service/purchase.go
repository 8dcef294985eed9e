package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/checkoutops/internal/clock"
	"github.com/punchamoorthee/checkoutops/internal/domain"
)

var txConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "checkout_tx_conflict_retries_total",
	Help: "Purchase attempts reissued after a store transaction conflict",
})

// Store is the transactional store the purchase flow runs against. Every
// method called with the WithTx context participates in that transaction;
// nothing becomes durable until WithTx commits.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ReserveInventory(ctx context.Context, productID string, quantity int64) (domain.Product, error)
	ChargeCustomer(ctx context.Context, customerID string, amount int64) error
	CreateOrder(ctx context.Context, order domain.Order) error
}

type PurchaseService struct {
	store Store
	retry RetryPolicy
	clock clock.Clock
}

func NewPurchaseService(store Store, retry RetryPolicy, clk clock.Clock) *PurchaseService {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &PurchaseService{store: store, retry: retry, clock: clk}
}

// PurchaseInput carries one purchase line plus the two client-held snapshots
// that are re-validated against live data inside the transaction.
type PurchaseInput struct {
	ProductID   string
	Quantity    int64
	CustomerID  string
	ClientPrice int64 // product price as last rendered for the shopper
	ClientTotal int64 // order total previewed client-side
}

// Purchase executes the checkout and returns the new order's ID. Each attempt
// runs as one fresh transaction; only a store-reported conflict is retried,
// up to the policy's attempt budget, with a randomized pause in between.
func (s *PurchaseService) Purchase(ctx context.Context, in PurchaseInput) (string, error) {
	if in.Quantity <= 0 {
		return "", domain.ErrInvalidQuantity
	}

	var lastErr error
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		orderID, err := s.purchaseOnce(ctx, in)
		if err == nil {
			return orderID, nil
		}
		lastErr = err
		if !s.retry.ShouldRetry(err, s.retry.MaxAttempts-attempt) {
			return "", err
		}

		txConflictRetries.Inc()
		delay := s.retry.NextDelay()
		log.Printf("purchase conflict on attempt %d/%d, retrying in %s", attempt, s.retry.MaxAttempts, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// purchaseOnce is one end-to-end attempt inside a single transaction.
// Inventory is reserved before the customer is charged so an out-of-stock
// purchase never touches the balance; the price and total checks sit strictly
// between the two decrements so a concurrent price change is caught before
// money moves. Any failure rolls back every partial mutation.
func (s *PurchaseService) purchaseOnce(ctx context.Context, in PurchaseInput) (string, error) {
	var orderID string
	err := s.store.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.store.ReserveInventory(txCtx, in.ProductID, in.Quantity)
		if err != nil {
			return err
		}
		if product.Price != in.ClientPrice {
			return domain.ErrPriceChanged
		}

		totalPrice := product.Price * in.Quantity
		if totalPrice != in.ClientTotal {
			return domain.ErrTotalMismatch
		}

		if err := s.store.ChargeCustomer(txCtx, in.CustomerID, totalPrice); err != nil {
			return err
		}

		order := domain.Order{
			ID:         uuid.NewString(),
			CustomerID: in.CustomerID,
			Items: []domain.OrderItem{{
				Amount:          in.Quantity,
				ProductSnapshot: domain.Snapshot(product),
			}},
			TotalPrice: totalPrice,
			CreatedAt:  s.clock.Now(),
		}
		if err := s.store.CreateOrder(txCtx, order); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return orderID, nil
}
