package fallback

import (
	"reflect"
	"testing"
)

func TestRetriever_Search(t *testing.T) {
	r := New()

	results := r.Search("lease rental agreement deposit", 5)
	if len(results) == 0 {
		t.Fatal("expected matches for lease query")
	}
	if results[0].ID != "builtin-lease-essentials" {
		t.Errorf("best match %s", results[0].ID)
	}
	for _, res := range results {
		if !res.Degraded {
			t.Errorf("result %s not flagged degraded", res.ID)
		}
		if res.Score <= 0 || res.Score > 0.5 {
			t.Errorf("score %f outside (0, 0.5]", res.Score)
		}
	}
}

func TestRetriever_Search_Deterministic(t *testing.T) {
	r := New()

	first := r.Search("termination notice period", 3)
	second := r.Search("termination notice period", 3)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical queries should return identical results")
	}
}

func TestRetriever_Search_TopK(t *testing.T) {
	r := New()

	results := r.Search("the agreement clause party", 2)
	if len(results) > 2 {
		t.Errorf("topK ignored, got %d results", len(results))
	}
}

func TestRetriever_Search_NoMatch(t *testing.T) {
	r := New()

	if results := r.Search("zxqwv", 5); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if results := r.Search("", 5); len(results) != 0 {
		t.Errorf("empty query should return nothing, got %d", len(results))
	}
}
