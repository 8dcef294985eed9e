package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/punchamoorthee/checkoutops/internal/api"
	"github.com/punchamoorthee/checkoutops/internal/clock"
	"github.com/punchamoorthee/checkoutops/internal/config"
	"github.com/punchamoorthee/checkoutops/internal/service"
	"github.com/punchamoorthee/checkoutops/internal/store"
	"github.com/punchamoorthee/checkoutops/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	st, err := store.NewStore(cfg.DBSource)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer st.Close()

	startupCtx := context.Background()
	if err := migrations.Apply(startupCtx, st.Db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}
	if err := st.Seed(startupCtx); err != nil {
		log.Fatalf("seed database: %v", err)
	}

	// Initialize Layers
	retry := service.RetryPolicy{
		MaxAttempts: cfg.MaxPurchaseAttempts,
		MinDelay:    cfg.RetryDelayMin,
		MaxDelay:    cfg.RetryDelayMax,
	}
	purchaseSvc := service.NewPurchaseService(st, retry, clock.NewSystem())
	handler := api.NewHandler(st, purchaseSvc)

	// Router
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/purchase", handler.PurchaseHandler).Methods("POST")
	r.HandleFunc("/products/{id}", handler.GetProductHandler).Methods("GET")
	r.HandleFunc("/customers/{id}", handler.GetCustomerHandler).Methods("GET")
	r.HandleFunc("/orders/{id}", handler.GetOrderHandler).Methods("GET")

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
