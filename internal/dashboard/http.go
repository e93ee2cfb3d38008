// Package dashboard serves the fixed sample payloads behind the dashboard
// charts. None of them touch the store.
package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ProductBoard/pkg/kit"
)

type Statistics struct {
	Users    int `json:"users"`
	Products int `json:"products"`
	Sales    int `json:"sales"`
	Profit   int `json:"profit"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Visitors struct {
	Day   []int `json:"day"`
	Count []int `json:"count"`
}

type TopProducts struct {
	Product []string `json:"product"`
	Count   []int    `json:"count"`
}

type SoldProducts struct {
	Category []string `json:"category"`
	Count    []int    `json:"count"`
}

func statistics() Statistics {
	return Statistics{Users: 46, Products: 123, Sales: 67, Profit: 23000}
}

func sales() []Point {
	return []Point{
		{X: 50, Y: 7},
		{X: 60, Y: 8},
		{X: 70, Y: 8},
		{X: 80, Y: 9},
		{X: 90, Y: 9},
		{X: 100, Y: 9},
		{X: 110, Y: 10},
		{X: 120, Y: 11},
		{X: 130, Y: 14},
		{X: 140, Y: 14},
		{X: 150, Y: 15},
	}
}

func visitors() Visitors {
	return Visitors{
		Day:   []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		Count: []int{3, 6, 10, 2, 32, 19, 9, 8, 16, 7},
	}
}

func topProducts() TopProducts {
	return TopProducts{
		Product: []string{"Iphone 16", "JBL c15", "Dell XPS 16", "Pixel 8 pro", "LG G8"},
		Count:   []int{3, 6, 10, 2, 32},
	}
}

func soldProducts() SoldProducts {
	return SoldProducts{
		Category: []string{"Phones", "Headphones", "Laptops", "Chargers", "TVs"},
		Count:    []int{23, 67, 12, 60, 15},
	}
}

func Register(r chi.Router) {
	r.Get("/statistics", fixed(statistics))
	r.Get("/sales", fixed(sales))
	r.Get("/visitors", fixed(visitors))
	r.Get("/top_products", fixed(topProducts))
	r.Get("/sold_products", fixed(soldProducts))
}

// fixed builds the payload per request so no handler shares mutable slices.
func fixed[T any](payload func() T) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, payload())
	}
}
