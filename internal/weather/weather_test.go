package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newForecastServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing User-Agent on %s", r.URL.Path)
		}
		switch {
		case r.URL.Path == "/search":
			if q := r.URL.Query().Get("q"); q != "Portland" {
				http.Error(w, "unexpected query "+q, http.StatusBadRequest)
				return
			}
			fmt.Fprint(w, `[{"lat":"45.5152","lon":"-122.6784","display_name":"Portland, Oregon"}]`)
		case strings.HasPrefix(r.URL.Path, "/points/"):
			fmt.Fprintf(w, `{"properties":{"forecast":"%s/gridpoints/PQR/112,100/forecast"}}`, srv.URL)
		case strings.HasPrefix(r.URL.Path, "/gridpoints/"):
			fmt.Fprint(w, `{"properties":{"periods":[
				{"name":"This Afternoon","temperature":72,"temperatureUnit":"F",
				 "shortForecast":"Partly Sunny",
				 "detailedForecast":"Partly sunny, with a high near 72."}
			]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	return srv
}

func TestSummary(t *testing.T) {
	srv := newForecastServer(t)
	defer srv.Close()

	client := NewClient(WithBaseURLs(srv.URL, srv.URL))
	got, err := client.Summary(context.Background(), "Portland")
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	want := "This Afternoon in Portland: Partly sunny, with a high near 72."
	if got != want {
		t.Fatalf("Summary() = %q, want %q", got, want)
	}
}

func TestSummaryUnknownLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURLs(srv.URL, srv.URL))
	if _, err := client.Summary(context.Background(), "Atlantis"); err == nil {
		t.Fatalf("Summary() expected error for unknown location")
	}
}

func TestSummaryEmptyLocation(t *testing.T) {
	client := NewClient()
	if _, err := client.Summary(context.Background(), "  "); err == nil {
		t.Fatalf("Summary() expected error for empty location")
	}
}

func TestSummaryForecastServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			fmt.Fprint(w, `[{"lat":"45.5","lon":"-122.6","display_name":"Portland"}]`)
			return
		}
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURLs(srv.URL, srv.URL))
	if _, err := client.Summary(context.Background(), "Portland"); err == nil {
		t.Fatalf("Summary() expected error when forecast service is down")
	}
}

func TestFallbackURL(t *testing.T) {
	if got := FallbackURL("New York"); got != "https://wttr.in/New%20York" {
		t.Fatalf("FallbackURL() = %q", got)
	}
	if got := FallbackURL(""); got != "https://wttr.in" {
		t.Fatalf("FallbackURL(empty) = %q", got)
	}
}
