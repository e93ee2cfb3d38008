package dashboard

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_FixedPayloads(t *testing.T) {
	r := chi.NewRouter()
	Register(r)

	tests := []struct {
		path string
		want string
	}{
		{
			path: "/statistics",
			want: `{"users":46,"products":123,"sales":67,"profit":23000}`,
		},
		{
			path: "/sales",
			want: `[{"x":50,"y":7},{"x":60,"y":8},{"x":70,"y":8},{"x":80,"y":9},{"x":90,"y":9},
				{"x":100,"y":9},{"x":110,"y":10},{"x":120,"y":11},{"x":130,"y":14},{"x":140,"y":14},{"x":150,"y":15}]`,
		},
		{
			path: "/visitors",
			want: `{"day":[1,2,3,4,5,6,7,8,9,10],"count":[3,6,10,2,32,19,9,8,16,7]}`,
		},
		{
			path: "/top_products",
			want: `{"product":["Iphone 16","JBL c15","Dell XPS 16","Pixel 8 pro","LG G8"],"count":[3,6,10,2,32]}`,
		},
		{
			path: "/sold_products",
			want: `{"category":["Phones","Headphones","Laptops","Chargers","TVs"],"count":[23,67,12,60,15]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			// twice: the payload must not drift between calls
			for range 2 {
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

				body, err := io.ReadAll(rec.Body)
				require.NoError(t, err)
				assert.JSONEq(t, tc.want, string(body))
			}
		})
	}
}

func TestRegister_OnlyGet(t *testing.T) {
	r := chi.NewRouter()
	Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/statistics", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
