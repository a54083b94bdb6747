package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marketpulse/core/internal/config"
)

func testConfig(baseURL string) *config.Config {
	cfg := config.Load()
	cfg.External.BaseURL = baseURL
	cfg.External.Timeout = 2
	return cfg
}

func TestFetchClient_FetchJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"600000","price":10.5}`))
	}))
	defer srv.Close()

	client := NewFetchClient(testConfig(srv.URL), nil)

	var out struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := client.FetchJSON(srv.URL+"/quote", &out); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.Symbol != "600000" || out.Price != 10.5 {
		t.Errorf("Unexpected payload %+v", out)
	}
}

func TestFetchClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewFetchClient(testConfig(srv.URL), nil)
	if _, err := client.FetchData(srv.URL); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestFetchClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewFetchClient(testConfig(srv.URL), nil)

	for i := 0; i < 5; i++ {
		if _, err := client.FetchData(srv.URL); err == nil {
			t.Fatal("Expected failure from upstream")
		}
	}

	// Breaker is now open: the request fails without hitting upstream.
	hit := false
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	})
	if _, err := client.FetchData(srv.URL); err == nil {
		t.Error("Expected open-breaker error")
	}
	if hit {
		t.Error("Expected no upstream request while breaker is open")
	}
}

func TestFetchClient_PagedURL(t *testing.T) {
	client := NewFetchClient(testConfig("https://data.example.com"), nil)

	got := client.PagedURL("/api/spot", 3, 500)
	want := "https://data.example.com/api/spot?page=3&page_size=500"
	if got != want {
		t.Errorf("PagedURL = %q, want %q", got, want)
	}
}
