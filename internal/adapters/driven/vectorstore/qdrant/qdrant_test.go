package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

func TestStore_Upsert(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/collections/lexcraft/points" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("expected wait=true")
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	store := New(Config{URL: server.URL})
	record := domain.NewVectorRecord(&domain.Chunk{
		ID:       domain.ChunkID("doc.txt", 0),
		SourceID: "doc.txt",
		Text:     "lease clause",
		Tags:     domain.Tags{domain.TagCategory: "leases"},
	}, []float32{0.1, 0.2})

	if err := store.Upsert(context.Background(), []*domain.VectorRecord{record}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points := captured["points"].([]any)
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	point := points[0].(map[string]any)
	if point["id"] != record.ID {
		t.Errorf("point id %v", point["id"])
	}
	payload := point["payload"].(map[string]any)
	if payload["source_id"] != "doc.txt" {
		t.Errorf("payload source_id %v", payload["source_id"])
	}
}

func TestStore_Upsert_Empty(t *testing.T) {
	// No server: an empty upsert must not make a request.
	store := New(Config{URL: "http://localhost:1"})
	if err := store.Upsert(context.Background(), nil); err != nil {
		t.Errorf("empty upsert should be a no-op, got %v", err)
	}
}

func TestStore_Query(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/lexcraft/points/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"result": [
			{"id": "p1", "score": 0.93, "payload": {"source_id": "doc.txt", "text": "lease clause", "tags": {"category": "leases"}}},
			{"id": "p2", "score": 0.71, "payload": {"source_id": "other.txt", "text": "notice text"}}
		]}`))
	}))
	defer server.Close()

	store := New(Config{URL: server.URL})
	results, err := store.Query(context.Background(), []float32{0.1, 0.2}, 5, domain.Filters{
		domain.TagCategory: {"leases"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "p1" || results[0].Score != 0.93 {
		t.Errorf("first result %+v", results[0])
	}
	if results[0].Tags[domain.TagCategory] != "leases" {
		t.Errorf("tags not decoded: %v", results[0].Tags)
	}

	// The filter was translated to a payload match condition.
	filter := captured["filter"].(map[string]any)
	must := filter["must"].([]any)
	cond := must[0].(map[string]any)
	if cond["key"] != "tags.category" {
		t.Errorf("filter key %v", cond["key"])
	}
}

func TestStore_DeleteBySource(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/lexcraft/points/delete" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	store := New(Config{URL: server.URL})
	if err := store.DeleteBySource(context.Background(), "doc.txt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filter := captured["filter"].(map[string]any)
	must := filter["must"].([]any)
	cond := must[0].(map[string]any)
	if cond["key"] != "source_id" {
		t.Errorf("filter key %v", cond["key"])
	}
}

func TestStore_Stats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections/lexcraft/points/count":
			_, _ = w.Write([]byte(`{"result": {"count": 3}}`))
		case "/collections/lexcraft/points/scroll":
			_, _ = w.Write([]byte(`{"result": {"points": [
				{"payload": {"source_id": "a.txt"}},
				{"payload": {"source_id": "a.txt"}},
				{"payload": {"source_id": "b.txt"}}
			], "next_page_offset": null}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	store := New(Config{URL: server.URL})
	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalVectors != 3 {
		t.Errorf("total %d", stats.TotalVectors)
	}
	if stats.PerSource["a.txt"] != 2 || stats.PerSource["b.txt"] != 1 {
		t.Errorf("per source %v", stats.PerSource)
	}
}

func TestStore_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := New(Config{URL: server.URL})
	if err := store.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestStore_APIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret" {
			t.Error("api-key header missing")
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	store := New(Config{URL: server.URL, APIKey: "secret"})
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStore_EnsureCollection_InvalidDimension(t *testing.T) {
	store := New(Config{URL: "http://localhost:1"})
	if err := store.EnsureCollection(context.Background(), 0); err == nil {
		t.Error("expected error for zero dimension")
	}
}
