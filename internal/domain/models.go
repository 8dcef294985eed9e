package domain

import "time"

// Product is a sellable item. Inventory only ever moves through the store's
// conditional decrement, so it can never go negative.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Inventory int64     `json:"inventory"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Customer holds a spendable balance in minor currency units. Same rule as
// Product: the balance only moves through a conditional decrement.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductSnapshot is the point-in-time copy of a product embedded into an
// order line. Later changes to the live product must not affect it.
type ProductSnapshot struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	Amount          int64           `json:"amount"`
	ProductSnapshot ProductSnapshot `json:"productSnapshot"`
}

// Order is the immutable record of a completed purchase. Nothing updates or
// deletes an order after it is written.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customerId"`
	Items      []OrderItem `json:"items"`
	TotalPrice int64       `json:"totalPrice"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Snapshot copies the fields of p that order lines preserve.
func Snapshot(p Product) ProductSnapshot {
	return ProductSnapshot{ID: p.ID, Name: p.Name, Price: p.Price}
}
