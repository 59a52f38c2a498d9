package extract

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestXlsx_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Service", "Fee"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{"Drafting", "5000"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	text, err := (&Xlsx{}).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	for _, want := range []string{"Sheet: " + sheet, "Service | Fee", "Drafting | 5000"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
}

func TestXlsx_Extract_Missing(t *testing.T) {
	_, err := (&Xlsx{}).Extract(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
