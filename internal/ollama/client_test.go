package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newStreamServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"models":[{"name":"llama3.2","size":1},{"name":"codellama","size":2}]}`)
		case "/api/generate":
			w.Header().Set("Content-Type", "application/x-ndjson")
			flusher, _ := w.(http.Flusher)
			for i, chunk := range chunks {
				done := i == len(chunks)-1
				fmt.Fprintf(w, `{"response":%q,"done":%v}`+"\n", chunk, done)
				if flusher != nil {
					flusher.Flush()
				}
			}
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClientGenerateStreamsDeltasInOrder(t *testing.T) {
	srv := newStreamServer(t, []string{"Hello", " there", ", friend."})
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	var deltas []string
	full, err := client.Generate(context.Background(), "llama3.2", "greet me", func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if full != "Hello there, friend." {
		t.Fatalf("full text = %q", full)
	}
	if len(deltas) != 3 || deltas[0] != "Hello" || deltas[2] != ", friend." {
		t.Fatalf("deltas = %v", deltas)
	}
}

func TestClientGenerateDeltaErrorAborts(t *testing.T) {
	srv := newStreamServer(t, []string{"one", "two", "three"})
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)

	boom := errors.New("stop now")
	calls := 0
	_, err := client.Generate(context.Background(), "llama3.2", "count", func(string) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Generate() error = %v, want delta handler error", err)
	}
	if calls != 2 {
		t.Fatalf("delta calls = %d, want abort after 2", calls)
	}
}

func TestClientListModels(t *testing.T) {
	srv := newStreamServer(t, nil)
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3.2" {
		t.Fatalf("models = %+v", models)
	}
}

func TestClientHealthy(t *testing.T) {
	srv := newStreamServer(t, nil)
	client := NewClient(srv.URL, time.Second)
	if !client.Healthy(context.Background()) {
		t.Fatalf("Healthy() = false against live server")
	}

	srv.Close()
	if client.Healthy(context.Background()) {
		t.Fatalf("Healthy() = true against closed server")
	}
}
