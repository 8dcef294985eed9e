package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/checkoutops/internal/domain"
	"github.com/punchamoorthee/checkoutops/internal/models"
	"github.com/punchamoorthee/checkoutops/internal/service"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "endpoint"})
)

// Purchaser executes the checkout workflow.
type Purchaser interface {
	Purchase(ctx context.Context, in service.PurchaseInput) (string, error)
}

// RecordReader serves the plain read endpoints.
type RecordReader interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

type Handler struct {
	store   RecordReader
	service Purchaser
}

func NewHandler(s RecordReader, svc Purchaser) *Handler {
	return &Handler{store: s, service: svc}
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/purchase"))
	defer timer.ObserveDuration()

	var req models.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/purchase", "400").Inc()
		respondWithError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		httpRequestsTotal.WithLabelValues("POST", "/purchase", "400").Inc()
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	orderID, err := h.service.Purchase(r.Context(), service.PurchaseInput{
		ProductID:   req.ProductID,
		Quantity:    req.Amount,
		CustomerID:  req.CustomerID,
		ClientPrice: req.ProductViewInClient.Price,
		ClientTotal: req.PreviewOrder.TotalPrice,
	})
	if err != nil {
		code := statusForPurchaseError(err)
		httpRequestsTotal.WithLabelValues("POST", "/purchase", httpStatusLabel(code)).Inc()
		if code == http.StatusInternalServerError {
			respondWithError(w, code, "Internal Server Error")
		} else {
			respondWithError(w, code, err.Error())
		}
		return
	}

	httpRequestsTotal.WithLabelValues("POST", "/purchase", "201").Inc()
	respondWithJSON(w, http.StatusCreated, models.PurchaseResponse{
		Message: "purchase successful",
		OrderID: orderID,
	})
}

// statusForPurchaseError maps the purchase error taxonomy onto HTTP codes:
// failed ledger conditions are unprocessable, stale client state and an
// exhausted conflict budget are conflicts, bad input is a bad request.
func statusForPurchaseError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrPriceChanged),
		errors.Is(err, domain.ErrTotalMismatch),
		errors.Is(err, domain.ErrTxConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			httpRequestsTotal.WithLabelValues("GET", "/products/{id}", "404").Inc()
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		httpRequestsTotal.WithLabelValues("GET", "/products/{id}", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/products/{id}", "200").Inc()
	respondWithJSON(w, http.StatusOK, product)
}

func (h *Handler) GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	customer, err := h.store.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			httpRequestsTotal.WithLabelValues("GET", "/customers/{id}", "404").Inc()
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		httpRequestsTotal.WithLabelValues("GET", "/customers/{id}", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/customers/{id}", "200").Inc()
	respondWithJSON(w, http.StatusOK, customer)
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			httpRequestsTotal.WithLabelValues("GET", "/orders/{id}", "404").Inc()
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		httpRequestsTotal.WithLabelValues("GET", "/orders/{id}", "500").Inc()
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	httpRequestsTotal.WithLabelValues("GET", "/orders/{id}", "200").Inc()
	respondWithJSON(w, http.StatusOK, order)
}

func httpStatusLabel(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "400"
	case http.StatusConflict:
		return "409"
	case http.StatusUnprocessableEntity:
		return "422"
	default:
		return "500"
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}
