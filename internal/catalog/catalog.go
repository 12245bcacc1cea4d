package catalog

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"prozon/internal"
	"prozon/internal/util"
)

// Canonical column headers of the cross-reference workbook. The header
// spelling is shared with the operators' hand-maintained file, so it is
// checked for presence but never rewritten.
const (
	colProzonRef   = "Références Prozon"
	colProductName = "Noms des produits"
	colEHSRef      = "Références EHS"
	colPrice       = "Prix"
	colWeight      = "poids"
)

var columns = []string{colProzonRef, colProductName, colEHSRef, colPrice, colWeight}

// Catalog is the in-memory cross-reference table: an ordered row list plus
// a code index. Rows sharing a code are kept in table order. Every
// mutation rewrites the whole workbook; the table stays small enough that
// durability wins over write performance.
type Catalog struct {
	path    string
	entries []internal.CatalogEntry
	index   map[string][]int
}

// Load reads the workbook at path. A missing file is not an error: an
// empty table with the canonical columns is created and saved immediately.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path, index: map[string][]int{}}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := c.save(); err != nil {
			return nil, err
		}
		return c, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if len(rows) == 0 {
		return c, nil
	}

	pos := map[string]int{}
	for i, header := range rows[0] {
		pos[strings.TrimSpace(header)] = i
	}
	for _, col := range columns {
		if _, ok := pos[col]; !ok {
			return nil, fmt.Errorf("catalog %s: missing column %q", path, col)
		}
	}

	cell := func(row []string, col string) string {
		if i := pos[col]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	for _, row := range rows[1:] {
		code := cell(row, colProzonRef)
		if code == "" {
			continue
		}
		entry := internal.CatalogEntry{
			ProzonRef:   code,
			ProductName: cell(row, colProductName),
			EHSRef:      cell(row, colEHSRef),
		}
		if v := cell(row, colPrice); v != "" {
			if parsed, err := util.ParseDecimal(v); err == nil {
				entry.Price = util.FloatPtr(parsed)
			}
		}
		if v := cell(row, colWeight); v != "" {
			if parsed, err := util.ParseDecimal(v); err == nil {
				entry.Weight = util.FloatPtr(parsed)
			}
		}
		c.append(entry)
	}

	return c, nil
}

func (c *Catalog) append(entry internal.CatalogEntry) {
	c.entries = append(c.entries, entry)
	c.index[entry.ProzonRef] = append(c.index[entry.ProzonRef], len(c.entries)-1)
}

// Lookup returns every row whose code matches, in table order.
func (c *Catalog) Lookup(code string) []internal.CatalogEntry {
	positions := c.index[code]
	out := make([]internal.CatalogEntry, 0, len(positions))
	for _, i := range positions {
		out = append(out, c.entries[i])
	}
	return out
}

// Entries returns a copy of the full table in order.
func (c *Catalog) Entries() []internal.CatalogEntry {
	out := make([]internal.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Len() int { return len(c.entries) }

// Upsert updates the first row matching code (EHS ref, name, weight, and
// price when provided) or appends a new row, then persists the table.
func (c *Catalog) Upsert(code, ehsRef, name string, weight float64, price *float64) (internal.UpsertAction, error) {
	if strings.TrimSpace(code) == "" {
		return "", &ValidationError{Field: "reference", Value: code}
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return "", &ValidationError{Field: "poids", Value: fmt.Sprint(weight)}
	}
	if price != nil && (math.IsNaN(*price) || math.IsInf(*price, 0)) {
		return "", &ValidationError{Field: "prix", Value: fmt.Sprint(*price)}
	}

	var action internal.UpsertAction
	if positions := c.index[code]; len(positions) > 0 {
		entry := &c.entries[positions[0]]
		entry.EHSRef = ehsRef
		entry.ProductName = name
		entry.Weight = util.FloatPtr(weight)
		if price != nil {
			entry.Price = price
		}
		action = internal.ActionUpdated
	} else {
		c.append(internal.CatalogEntry{
			ProzonRef:   code,
			ProductName: name,
			EHSRef:      ehsRef,
			Price:       price,
			Weight:      util.FloatPtr(weight),
		})
		action = internal.ActionInserted
	}

	if err := c.save(); err != nil {
		return action, err
	}
	return action, nil
}

// UpsertRaw parses operator-supplied weight and price strings before
// touching the table. Price may be empty.
func (c *Catalog) UpsertRaw(code, ehsRef, name, weightRaw, priceRaw string) (internal.UpsertAction, error) {
	weight, err := util.ParseDecimal(weightRaw)
	if err != nil {
		return "", &ValidationError{Field: "poids", Value: weightRaw}
	}

	var price *float64
	if strings.TrimSpace(priceRaw) != "" {
		parsed, err := util.ParseDecimal(priceRaw)
		if err != nil {
			return "", &ValidationError{Field: "prix", Value: priceRaw}
		}
		price = util.FloatPtr(parsed)
	}

	return c.Upsert(code, ehsRef, name, weight, price)
}

func (c *Catalog) save() error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistError{Path: c.path, Err: err}
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}

	for i, entry := range c.entries {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, entry.ProzonRef)
		set(2, entry.ProductName)
		set(3, entry.EHSRef)
		if entry.Price != nil {
			set(4, *entry.Price)
		}
		if entry.Weight != nil {
			set(5, *entry.Weight)
		}
	}

	if err := f.SaveAs(c.path); err != nil {
		return &PersistError{Path: c.path, Err: err}
	}
	return nil
}
