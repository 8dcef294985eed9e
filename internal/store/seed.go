package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
)

// Demo records created on first run. IDs are fixed so clients and the load
// generator can reference them without a discovery step.
const (
	SeedProductID        = "60a7ee5b-22b0-4413-b0c1-39a000000000"
	SeedProductName      = "Logitech MX Anywhere 2S"
	SeedProductPrice     = 999
	SeedProductInventory = 10000

	SeedCustomerBalance = SeedProductPrice * 2500
)

var SeedCustomerIDs = []string{
	"60a7d7d7-d7d7-47d7-87d7-d7d7d7d7d7d6",
	"60a7d7d7-d7d7-47d7-87d7-d7d7d7d7d7d7",
	"60a7d7d7-d7d7-47d7-87d7-d7d7d7d7d7d8",
	"60a7d7d7-d7d7-47d7-87d7-d7d7d7d7d7d9",
}

var seedCustomerNames = []string{
	"bright_lobster81",
	"mellow_falcon07",
	"sly_walrus23",
	"keen_magpie56",
}

// Seed idempotently creates the demo product and customers inside one
// transaction. Existing rows are never touched: each collection is counted
// first and only populated when empty.
func (s *Store) Seed(ctx context.Context) error {
	tx, err := s.Db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("seed tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var numProducts int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&numProducts); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if numProducts == 0 {
		_, err = tx.Exec(ctx,
			"INSERT INTO products (id, name, price, inventory) VALUES ($1, $2, $3, $4)",
			SeedProductID, SeedProductName, SeedProductPrice, SeedProductInventory,
		)
		if err != nil {
			return fmt.Errorf("seed product: %w", err)
		}
		log.Printf("seeded product %s (%s)", SeedProductID, SeedProductName)
	}

	var numCustomers int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&numCustomers); err != nil {
		return fmt.Errorf("count customers: %w", err)
	}
	if numCustomers == 0 {
		for i, id := range SeedCustomerIDs {
			_, err = tx.Exec(ctx,
				"INSERT INTO customers (id, name, balance) VALUES ($1, $2, $3)",
				id, seedCustomerNames[i], SeedCustomerBalance,
			)
			if err != nil {
				return fmt.Errorf("seed customer %s: %w", id, err)
			}
		}
		log.Printf("seeded %d customers", len(SeedCustomerIDs))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("seed tx commit failed: %w", err)
	}
	return nil
}
