//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:5000")

type product struct {
	ID          int64    `json:"id"`
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int64   `json:"quantity"`
	Description *string  `json:"description"`
}

func TestSystem_E2E_ProductLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	name := fmt.Sprintf("e2e_%d_%d", time.Now().Unix(), rand.Intn(100000))

	var created struct {
		ID int64 `json:"id"`
	}
	doJSON(t, http.MethodPost, baseURL+"/products", map[string]any{
		"name":        name,
		"price":       "9.99",
		"quantity":    "3",
		"description": "e2e",
	}, &created, http.StatusCreated)
	if created.ID == 0 {
		t.Fatalf("product id missing")
	}

	got := findProduct(t, created.ID)
	if got == nil || got.Name == nil || *got.Name != name {
		t.Fatalf("created product not listed: %#v", got)
	}
	if got.Price == nil || *got.Price != 9.99 || got.Quantity == nil || *got.Quantity != 3 {
		t.Fatalf("stored values not coerced: %#v", got)
	}

	doJSON(t, http.MethodPut, baseURL+"/products", map[string]any{
		"id":          created.ID,
		"name":        name + "_v2",
		"price":       19.5,
		"quantity":    7,
		"description": "updated",
	}, nil, http.StatusOK)

	if os.Getenv("E2E_RESTART_API") == "1" {
		restartAPIContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
	}

	got = findProduct(t, created.ID)
	if got == nil || got.Name == nil || *got.Name != name+"_v2" {
		t.Fatalf("update not visible: %#v", got)
	}

	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/products/%d", baseURL, created.ID), nil, nil, http.StatusOK)
	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/products/%d", baseURL, created.ID), nil, nil, http.StatusNotFound)

	if findProduct(t, created.ID) != nil {
		t.Fatalf("deleted product still listed")
	}
}

func TestSystem_E2E_Dashboard(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	for _, path := range []string{"/statistics", "/sales", "/visitors", "/top_products", "/sold_products"} {
		var out any
		doJSON(t, http.MethodGet, baseURL+path, nil, &out, http.StatusOK)
		if out == nil {
			t.Fatalf("%s: empty payload", path)
		}
	}
}

func findProduct(t *testing.T, id int64) *product {
	t.Helper()

	var products []product
	doJSON(t, http.MethodGet, baseURL+"/products", nil, &products, http.StatusOK)
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("%s %s: missing CORS header, got %q", method, url, got)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
