package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/punchamoorthee/checkoutops/internal/store"
)

// Config holds the load generator settings
var (
	targetURL   string
	concurrency int
	duration    time.Duration
	quantity    int64
)

// Metrics
var (
	totalRequests uint64
	success201    uint64 // Orders created
	fail409       uint64 // Stale client state / conflict budget exhausted
	fail422       uint64 // Out of stock / out of funds
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "API Base URL")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.Int64Var(&quantity, "quantity", 1, "Units per purchase")
}

func main() {
	flag.Parse()
	log.Printf("Starting load: workers=%d duration=%s quantity=%d", concurrency, duration, quantity)

	price, err := fetchProductPrice()
	if err != nil {
		log.Fatalf("fetch product price: %v", err)
	}
	log.Printf("Product %s priced at %d", store.SeedProductID, price)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)

	for i := 0; i < concurrency; i++ {
		go worker(&wg, i, price, start)
	}

	wg.Wait()
	printResults(time.Since(start))
}

// fetchProductPrice mirrors a real shopper: read the product page once, then
// purchase against that possibly-stale view.
func fetchProductPrice() (int64, error) {
	resp, err := http.Get(targetURL + "/products/" + store.SeedProductID)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var product struct {
		Price int64 `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return 0, err
	}
	return product.Price, nil
}

func worker(wg *sync.WaitGroup, n int, price int64, start time.Time) {
	defer wg.Done()
	client := &http.Client{Timeout: 15 * time.Second}

	// Spread workers across the seeded customers.
	customerID := store.SeedCustomerIDs[n%len(store.SeedCustomerIDs)]

	for time.Since(start) < duration {
		payload := map[string]interface{}{
			"id":         store.SeedProductID,
			"amount":     quantity,
			"customerId": customerID,
			"previewOrder": map[string]interface{}{
				"totalPrice": price * quantity,
			},
			"productViewInClient": map[string]interface{}{
				"price": price,
			},
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest("POST", targetURL+"/purchase", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			atomic.AddUint64(&failOther, 1)
			continue
		}

		atomic.AddUint64(&totalRequests, 1)
		switch resp.StatusCode {
		case 201:
			atomic.AddUint64(&success201, 1)
		case 409:
			atomic.AddUint64(&fail409, 1)
		case 422:
			atomic.AddUint64(&fail422, 1)
		default:
			atomic.AddUint64(&failOther, 1)
		}
		resp.Body.Close()
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)
	s201 := atomic.LoadUint64(&success201)
	f409 := atomic.LoadUint64(&fail409)
	f422 := atomic.LoadUint64(&fail422)
	fErr := atomic.LoadUint64(&failOther)

	tps := float64(total) / d.Seconds()
	var rejectRate float64
	if total > 0 {
		rejectRate = float64(f409+f422) / float64(total) * 100
	}

	results := map[string]interface{}{
		"duration_sec":      d.Seconds(),
		"total_requests":    total,
		"throughput_tps":    tps,
		"orders_created":    s201,
		"stale_or_conflict": f409,
		"ledger_rejected":   f422,
		"reject_rate_pct":   rejectRate,
		"errors":            fErr,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)
}
