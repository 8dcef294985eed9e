package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/punchamoorthee/checkoutops/internal/domain"
	"github.com/punchamoorthee/checkoutops/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	productID  = "60a7ee5b-22b0-4413-b0c1-39a000000000"
	customerID = "60a7d7d7-d7d7-47d7-87d7-d7d7d7d7d7d6"
)

type fakePurchaser struct {
	gotInput service.PurchaseInput
	orderID  string
	err      error
}

func (f *fakePurchaser) Purchase(_ context.Context, in service.PurchaseInput) (string, error) {
	f.gotInput = in
	if f.err != nil {
		return "", f.err
	}
	return f.orderID, nil
}

type fakeReader struct {
	product  *domain.Product
	customer *domain.Customer
	order    *domain.Order
	err      error
}

func (f *fakeReader) GetProduct(context.Context, string) (*domain.Product, error) {
	return f.product, f.err
}

func (f *fakeReader) GetCustomer(context.Context, string) (*domain.Customer, error) {
	return f.customer, f.err
}

func (f *fakeReader) GetOrder(context.Context, string) (*domain.Order, error) {
	return f.order, f.err
}

func newRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/purchase", h.PurchaseHandler).Methods("POST")
	r.HandleFunc("/products/{id}", h.GetProductHandler).Methods("GET")
	r.HandleFunc("/customers/{id}", h.GetCustomerHandler).Methods("GET")
	r.HandleFunc("/orders/{id}", h.GetOrderHandler).Methods("GET")
	return r
}

func purchaseBody(amount int64, price, total int64) string {
	return `{
		"id": "` + productID + `",
		"amount": ` + jsonInt(amount) + `,
		"customerId": "` + customerID + `",
		"previewOrder": {"totalPrice": ` + jsonInt(total) + `},
		"productViewInClient": {"price": ` + jsonInt(price) + `}
	}`
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func doPurchase(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/purchase", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	return rec
}

func TestPurchaseHandler_Success(t *testing.T) {
	t.Parallel()

	svc := &fakePurchaser{orderID: "order-1"}
	h := NewHandler(&fakeReader{}, svc)

	rec := doPurchase(t, h, purchaseBody(2, 999, 1998))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Message string `json:"message"`
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "purchase successful", resp.Message)
	assert.Equal(t, "order-1", resp.OrderID)

	assert.Equal(t, service.PurchaseInput{
		ProductID:   productID,
		Quantity:    2,
		CustomerID:  customerID,
		ClientPrice: 999,
		ClientTotal: 1998,
	}, svc.gotInput)
}

func TestPurchaseHandler_MalformedBody(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeReader{}, &fakePurchaser{})
	rec := doPurchase(t, h, `{"id": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseHandler_ValidationFailures(t *testing.T) {
	t.Parallel()

	svc := &fakePurchaser{orderID: "order-1"}
	h := NewHandler(&fakeReader{}, svc)

	cases := map[string]string{
		"zero amount":     purchaseBody(0, 999, 0),
		"negative amount": purchaseBody(-1, 999, 999),
		"bad product id":  strings.Replace(purchaseBody(1, 999, 999), productID, "nope", 1),
		"negative price":  purchaseBody(1, -5, 999),
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doPurchase(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPurchaseHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"price changed", domain.ErrPriceChanged, http.StatusConflict},
		{"total mismatch", domain.ErrTotalMismatch, http.StatusConflict},
		{"conflict budget exhausted", &wrappedConflict{}, http.StatusConflict},
		{"matching text without the kind", errors.New(domain.ErrTxConflict.Error()), http.StatusInternalServerError},
		{"store outage", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(&fakeReader{}, &fakePurchaser{err: tc.err})
			rec := doPurchase(t, h, purchaseBody(1, 999, 999))
			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Contains(t, resp, "error")
			if tc.wantStatus != http.StatusInternalServerError {
				// Business rejections surface their message text verbatim.
				assert.Equal(t, tc.err.Error(), resp["error"])
			}
		})
	}
}

// wrappedConflict mimics the store wrapping the conflict sentinel.
type wrappedConflict struct{}

func (*wrappedConflict) Error() string { return "transaction conflict: could not serialize access" }
func (*wrappedConflict) Unwrap() error { return domain.ErrTxConflict }

func TestGetProductHandler(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		h := NewHandler(&fakeReader{product: &domain.Product{
			ID: productID, Name: "MX Anywhere 2S", Price: 999, Inventory: 10,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}}, &fakePurchaser{})

		req := httptest.NewRequest(http.MethodGet, "/products/"+productID, nil)
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var p domain.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, int64(999), p.Price)
	})

	t.Run("not found", func(t *testing.T) {
		h := NewHandler(&fakeReader{err: domain.ErrProductNotFound}, &fakePurchaser{})
		req := httptest.NewRequest(http.MethodGet, "/products/"+productID, nil)
		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetOrderHandler(t *testing.T) {
	t.Parallel()

	order := &domain.Order{
		ID:         "0d9e7f3a-41f2-4a91-9f52-6f4c2e8b1a77",
		CustomerID: customerID,
		Items: []domain.OrderItem{{
			Amount:          1,
			ProductSnapshot: domain.ProductSnapshot{ID: productID, Name: "MX Anywhere 2S", Price: 999},
		}},
		TotalPrice: 999,
		CreatedAt:  time.Now().UTC(),
	}
	h := NewHandler(&fakeReader{order: order}, &fakePurchaser{})

	req := httptest.NewRequest(http.MethodGet, "/orders/"+order.ID, nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(999), got.Items[0].ProductSnapshot.Price)
}

func TestHealthCheckHandler(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeReader{}, &fakePurchaser{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
