package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/checkoutops/internal/domain"
)

type Store struct {
	Db *pgxpool.Pool
}

func NewStore(connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{Db: pool}, nil
}

func (s *Store) Close() {
	s.Db.Close()
}

type txKey struct{}

// WithTx runs fn inside a RepeatableRead transaction carried through the
// context. The first error rolls everything back; a serialization conflict at
// any point (statement or commit) surfaces as domain.ErrTxConflict so the
// retry layer can branch on the kind alone.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.Db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("tx begin failed: %w", err)
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return mapConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapConflict(fmt.Errorf("tx commit failed: %w", err))
	}
	return nil
}

func txFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.Db
}

// isSerializationFailure reports whether err is the transient conflict
// Postgres raises when concurrent transactions overlap (40001), or the
// deadlock variant (40P01). These are the only retryable failures.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func mapConflict(err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
	}
	return err
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// ReserveInventory atomically decrements a product's inventory by quantity,
// but only if enough stock exists. It returns the post-decrement row,
// including the live price the caller must validate against the client's
// view. A miss means "no product with enough inventory" and nothing more.
func (s *Store) ReserveInventory(ctx context.Context, productID string, quantity int64) (domain.Product, error) {
	const stmt = `
UPDATE products
SET inventory = inventory - $2, updated_at = now()
WHERE id = $1 AND inventory >= $2
RETURNING id, name, price, inventory, created_at, updated_at`

	var p domain.Product
	err := s.q(ctx).QueryRow(ctx, stmt, productID, quantity).
		Scan(&p.ID, &p.Name, &p.Price, &p.Inventory, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return domain.Product{}, domain.ErrInsufficientStock
		}
		return domain.Product{}, fmt.Errorf("reserve inventory: %w", err)
	}
	return p, nil
}

// ChargeCustomer atomically decrements a customer's balance by amount, but
// only if the balance covers it.
func (s *Store) ChargeCustomer(ctx context.Context, customerID string, amount int64) error {
	const stmt = `
UPDATE customers
SET balance = balance - $2, updated_at = now()
WHERE id = $1 AND balance >= $2`

	tag, err := s.q(ctx).Exec(ctx, stmt, customerID, amount)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("charge customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// CreateOrder persists an immutable order. Line items are stored denormalized
// as JSONB so the embedded product snapshot survives later price changes.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	const stmt = `
INSERT INTO orders (id, customer_id, items, total_price, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err = s.q(ctx).Exec(ctx, stmt, order.ID, order.CustomerID, items, order.TotalPrice, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetProduct retrieves a single product by ID.
func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.q(ctx).QueryRow(ctx,
		"SELECT id, name, price, inventory, created_at, updated_at FROM products WHERE id = $1", id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Inventory, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetCustomer retrieves a single customer by ID.
func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.q(ctx).QueryRow(ctx,
		"SELECT id, name, balance, created_at, updated_at FROM customers WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// GetOrder retrieves a completed order with its line items.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	var items []byte
	err := s.q(ctx).QueryRow(ctx,
		"SELECT id, customer_id, items, total_price, created_at FROM orders WHERE id = $1", id).
		Scan(&o.ID, &o.CustomerID, &items, &o.TotalPrice, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}
