package extract

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		path string
		want []string
	}{
		{"contract.pdf", []string{".pdf"}},
		{"notes/Lease.MD", []string{".md", ".markdown"}},
		{"brief.docx", []string{".docx"}},
		{"fees.xlsx", []string{".xlsx"}},
		{"plain.txt", []string{".txt", ".text"}},
	}
	for _, tt := range tests {
		got := r.Get(tt.path).SupportedExtensions()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Get(%s) handles %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRegistry_Get_Fallback(t *testing.T) {
	r := DefaultRegistry()

	for _, path := range []string{"unknown.xyz", "no-extension", ""} {
		extractor := r.Get(path)
		if extractor == nil {
			t.Fatalf("Get(%q) returned nil", path)
		}
		if _, ok := extractor.(*PlainText); !ok {
			t.Errorf("Get(%q) should fall back to plain text, got %T", path, extractor)
		}
	}
}

func TestRegistry_List(t *testing.T) {
	r := DefaultRegistry()

	exts := r.List()
	if len(exts) == 0 {
		t.Fatal("expected registered extensions")
	}
	for i := 1; i < len(exts); i++ {
		if exts[i-1] >= exts[i] {
			t.Errorf("extensions not sorted: %v", exts)
		}
	}
}

func TestPlainText_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	content := "Clause one.\r\n\r\n\r\nClause two.\r\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	text, err := (&PlainText{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	want := "Clause one.\n\nClause two."
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func TestPlainText_Extract_Missing(t *testing.T) {
	_, err := (&PlainText{}).Extract(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
