package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"prozon/internal"
	"prozon/internal/util"
)

func tempCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Load(filepath.Join(t.TempDir(), "refs.xlsx"))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadCreatesMissingWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.xlsx")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Fatalf("len=%d", c.Len())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workbook should exist after load: %v", err)
	}
}

func TestUpsertInsertThenUpdate(t *testing.T) {
	c := tempCatalog(t)

	action, err := c.Upsert("12345-1", "E-001", "Widget Bleu", 2.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if action != internal.ActionInserted {
		t.Fatalf("action=%q", action)
	}

	action, err = c.Upsert("12345-1", "E-002", "Widget Bleu v2", 3.0, util.FloatPtr(19.9))
	if err != nil {
		t.Fatal(err)
	}
	if action != internal.ActionUpdated {
		t.Fatalf("action=%q", action)
	}
	if c.Len() != 1 {
		t.Fatalf("len=%d", c.Len())
	}

	rows := c.Lookup("12345-1")
	if len(rows) != 1 {
		t.Fatalf("lookup=%d", len(rows))
	}
	row := rows[0]
	if row.EHSRef != "E-002" || row.ProductName != "Widget Bleu v2" {
		t.Fatalf("row=%+v", row)
	}
	if row.Weight == nil || *row.Weight != 3.0 {
		t.Fatalf("weight=%v", row.Weight)
	}
	if row.Price == nil || *row.Price != 19.9 {
		t.Fatalf("price=%v", row.Price)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	c := tempCatalog(t)
	for i := 0; i < 2; i++ {
		if _, err := c.Upsert("12345-1", "E-001", "Widget", 2.5, util.FloatPtr(10)); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 1 {
		t.Fatalf("len=%d", c.Len())
	}
}

func TestUpsertRawValidation(t *testing.T) {
	c := tempCatalog(t)

	_, err := c.UpsertRaw("12345-1", "E-001", "Widget", "pas-un-nombre", "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatal("table must stay unchanged on validation failure")
	}

	_, err = c.UpsertRaw("12345-1", "E-001", "Widget", "2,5", "12,90")
	if err != nil {
		t.Fatal(err)
	}
	row := c.Lookup("12345-1")[0]
	if row.Weight == nil || *row.Weight != 2.5 {
		t.Fatalf("weight=%v", row.Weight)
	}
	if row.Price == nil || *row.Price != 12.9 {
		t.Fatalf("price=%v", row.Price)
	}
}

func TestLookupMultipleRowsKeepsTableOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.xlsx")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// Two variants under one supplier code, appended directly so the code
	// stays non-unique (Upsert would collapse them).
	c.append(internal.CatalogEntry{ProzonRef: "12345-1", EHSRef: "E-001", ProductName: "Variante A", Weight: util.FloatPtr(2.5)})
	c.append(internal.CatalogEntry{ProzonRef: "12345-1", EHSRef: "E-002", ProductName: "Variante B", Weight: util.FloatPtr(4.0)})
	if err := c.save(); err != nil {
		t.Fatal(err)
	}

	rows := c.Lookup("12345-1")
	if len(rows) != 2 {
		t.Fatalf("lookup=%d", len(rows))
	}
	if rows[0].EHSRef != "E-001" || rows[1].EHSRef != "E-002" {
		t.Fatalf("rows out of order: %+v", rows)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.xlsx")
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Upsert("12345-1", "E-001", "Widget Bleu", 2.5, util.FloatPtr(19.9)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Upsert("54321-2", "E-014", "Câble secteur", 0.3, nil); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("len=%d", reloaded.Len())
	}

	row := reloaded.Lookup("12345-1")[0]
	if row.ProductName != "Widget Bleu" || row.EHSRef != "E-001" {
		t.Fatalf("row=%+v", row)
	}
	if row.Weight == nil || *row.Weight != 2.5 || row.Price == nil || *row.Price != 19.9 {
		t.Fatalf("row=%+v", row)
	}

	second := reloaded.Lookup("54321-2")[0]
	if second.Price != nil {
		t.Fatalf("price should stay absent, got %v", *second.Price)
	}
	if second.Weight == nil || *second.Weight != 0.3 {
		t.Fatalf("weight=%v", second.Weight)
	}
}
