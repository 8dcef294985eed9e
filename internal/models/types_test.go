package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validProductID  = "60a7ee5b-22b0-4413-b0c1-39a000000000"
	validCustomerID = "60a7d7d7-d7d7-47d7-87d7-d7d7d7d7d7d6"
)

func validRequest() PurchaseRequest {
	var r PurchaseRequest
	r.ProductID = validProductID
	r.CustomerID = validCustomerID
	r.Amount = 1
	r.PreviewOrder.TotalPrice = 999
	r.ProductViewInClient.Price = 999
	return r
}

func TestPurchaseRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validRequest().Validate())

	t.Run("rejects bad product id", func(t *testing.T) {
		r := validRequest()
		r.ProductID = "not-a-uuid"
		assert.Error(t, r.Validate())
		r.ProductID = ""
		assert.Error(t, r.Validate())
	})

	t.Run("rejects bad customer id", func(t *testing.T) {
		r := validRequest()
		r.CustomerID = "123"
		assert.Error(t, r.Validate())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		r := validRequest()
		r.Amount = 0
		assert.Error(t, r.Validate())
		r.Amount = -2
		assert.Error(t, r.Validate())
	})

	t.Run("rejects negative previews", func(t *testing.T) {
		r := validRequest()
		r.PreviewOrder.TotalPrice = -1
		assert.Error(t, r.Validate())

		r = validRequest()
		r.ProductViewInClient.Price = -1
		assert.Error(t, r.Validate())
	})
}

func TestPurchaseRequest_DecodesClientPayload(t *testing.T) {
	t.Parallel()

	// The exact body shape the storefront sends.
	body := `{
		"id": "` + validProductID + `",
		"amount": 2,
		"customerId": "` + validCustomerID + `",
		"previewOrder": {"totalPrice": 1998},
		"productViewInClient": {"price": 999}
	}`

	var r PurchaseRequest
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.Equal(t, validProductID, r.ProductID)
	assert.Equal(t, int64(2), r.Amount)
	assert.Equal(t, validCustomerID, r.CustomerID)
	assert.Equal(t, int64(1998), r.PreviewOrder.TotalPrice)
	assert.Equal(t, int64(999), r.ProductViewInClient.Price)
	assert.NoError(t, r.Validate())
}
