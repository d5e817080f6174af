package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type historyItem struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop())
}

func TestClient_GetDecodesData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/patient/medical-history" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"h1","condition":"asthma","status":"chronic"}],
			"pagination":{"page":1,"limit":10,"total":1,"pages":1,"hasNext":false,"hasPrev":false}}`))
	})

	var items []historyItem
	env, err := c.Get(context.Background(), "/patient/medical-history", &items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Condition != "asthma" {
		t.Errorf("unexpected items: %+v", items)
	}
	if env.Pagination == nil || env.Pagination.Total != 1 {
		t.Errorf("expected pagination cursor, got %+v", env.Pagination)
	}
}

func TestClient_ServerMessageOnFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"success":false,"error":"records service unavailable"}`))
	})

	_, err := c.Get(context.Background(), "/patient/medical-history", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "records service unavailable") {
		t.Errorf("expected server message in error, got %q", got)
	}
}

func TestClient_UnsuccessfulEnvelopeIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"no such patient"}`))
	})

	env, err := c.Get(context.Background(), "/patient/medical-history", nil)
	if err == nil {
		t.Fatal("expected error for success=false")
	}
	if env == nil || env.ErrorMessage() != "no such patient" {
		t.Errorf("expected envelope with message, got %+v", env)
	}
}

func TestClient_PostSendsJSONBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %s", ct)
		}
		w.Write([]byte(`{"success":true,"data":{"id":"h2","condition":"flu","status":"resolved"}}`))
	})

	var created historyItem
	_, err := c.Post(context.Background(), "/patient/medical-history",
		historyItem{Condition: "flu"}, &created)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "h2" {
		t.Errorf("unexpected created item: %+v", created)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"success":true}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Get(ctx, "/slow", nil); err == nil {
		t.Error("expected context deadline error")
	}
}

func TestLatest_DiscardsStaleCompletions(t *testing.T) {
	var l Latest

	first := l.Begin()
	second := l.Begin()

	// The second (most recent) fetch wins regardless of completion order.
	if l.IsCurrent(first) {
		t.Error("stale token must not be current")
	}
	if !l.IsCurrent(second) {
		t.Error("newest token must be current")
	}

	third := l.Begin()
	if l.IsCurrent(second) {
		t.Error("superseded token must not be current")
	}
	if !l.IsCurrent(third) {
		t.Error("newest token must be current")
	}
}
