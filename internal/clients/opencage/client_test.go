package opencage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akagup/go-emergency-response/internal/config"
	"github.com/akagup/go-emergency-response/internal/models"
)

func testClient(url string) *Client {
	return NewClient(config.GeocoderConfig{
		APIKey:  "key",
		BaseURL: url,
		Timeout: 5 * time.Second,
	})
}

func TestClient_Geocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Rohini, Delhi" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`{"results": [{"geometry": {"lat": 28.7041, "lng": 77.1025}}]}`))
	}))
	defer srv.Close()

	coord, err := testClient(srv.URL).Geocode(context.Background(), "Rohini, Delhi")
	if err != nil {
		t.Fatalf("Geocode failed: %v", err)
	}
	if coord.Latitude != 28.7041 || coord.Longitude != 77.1025 {
		t.Errorf("unexpected coordinate %+v", coord)
	}
}

func TestClient_Geocode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "nowhere at all")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_Geocode_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "Delhi")
	if !errors.Is(err, models.ErrUpstreamUnavailable) {
		t.Errorf("expected ErrUpstreamUnavailable, got %v", err)
	}
}
