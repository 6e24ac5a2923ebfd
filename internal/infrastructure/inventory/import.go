package inventory

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/saintfish/chardet"
	excelize "github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/kiranascan/backend/internal/domain"
)

// ImportResult summarizes one bulk catalog import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// headerAliases maps the spreadsheet column names merchants actually use
// to canonical catalog fields.
var headerAliases = map[string]string{
	"item name":      "item_name",
	"item_name":      "item_name",
	"name":           "item_name",
	"product":        "item_name",
	"product name":   "item_name",
	"brand":          "brand",
	"brand name":     "brand",
	"category":       "category",
	"unit size":      "unit_size",
	"unit_size":      "unit_size",
	"size":           "unit_size",
	"base price":     "base_price",
	"base_price":     "base_price",
	"cost price":     "base_price",
	"selling price":  "selling_price",
	"selling_price":  "selling_price",
	"price":          "selling_price",
	"mrp":            "mrp",
	"gst":            "gst",
	"gst %":          "gst",
	"gst_percent":    "gst",
	"stock":          "stock_quantity",
	"stock quantity": "stock_quantity",
	"stock_quantity": "stock_quantity",
	"quantity":       "stock_quantity",
	"expiry":         "expiry_date",
	"expiry date":    "expiry_date",
	"expiry_date":    "expiry_date",
}

// ReadCatalogFile parses a .csv or .xlsx catalog export into entries.
// The first row is treated as the header. Rows without an item name are
// reported as skipped, not as a parse failure.
func ReadCatalogFile(r io.Reader, filename string) ([]domain.CatalogEntry, *ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readXLSXRows(r)
	case ".csv":
		rows, err = readCSVRows(r)
	default:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, filename)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, &ImportResult{}, nil
	}

	fields := canonicalHeader(rows[0])
	result := &ImportResult{}
	var entries []domain.CatalogEntry

	for i, row := range rows[1:] {
		record := map[string]string{}
		for c, field := range fields {
			if field == "" || c >= len(row) {
				continue
			}
			record[field] = strings.TrimSpace(row[c])
		}

		entry, err := entryFromRecord(record)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		entries = append(entries, entry)
		result.Imported++
	}
	return entries, result, nil
}

func entryFromRecord(record map[string]string) (domain.CatalogEntry, error) {
	name := record["item_name"]
	if name == "" {
		return domain.CatalogEntry{}, fmt.Errorf("missing item name")
	}

	entry := domain.CatalogEntry{
		ItemName:   name,
		Brand:      record["brand"],
		Category:   record["category"],
		UnitSize:   record["unit_size"],
		ExpiryDate: record["expiry_date"],
	}

	var err error
	if entry.BasePrice, err = parseNumber(record["base_price"]); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("base price: %v", err)
	}
	if entry.SellingPrice, err = parseNumber(record["selling_price"]); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("selling price: %v", err)
	}
	if entry.MRP, err = parseNumber(record["mrp"]); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("mrp: %v", err)
	}
	if entry.GSTPercent, err = parseNumber(record["gst"]); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("gst: %v", err)
	}
	if entry.StockQuantity, err = parseNumber(record["stock_quantity"]); err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("stock quantity: %v", err)
	}
	return entry, nil
}

// parseNumber parses a spreadsheet numeric cell. Empty cells read as zero.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func canonicalHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = headerAliases[strings.ToLower(strings.TrimSpace(h))]
	}
	return out
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	return f.GetRows(sheet)
}

// readCSVRows reads CSV rows, auto-detecting the encoding so exports
// from older spreadsheet tools (Windows-1252/1251) still import cleanly.
func readCSVRows(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(2048)
	cs := "utf-8"
	if len(peek) > 0 {
		if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
			cs = strings.ToLower(det.Charset)
		}
	}

	var dec io.Reader = br
	switch cs {
	case "windows-1252", "cp1252", "iso-8859-1":
		dec = transform.NewReader(br, charmap.Windows1252.NewDecoder())
	case "windows-1251", "cp1251":
		dec = transform.NewReader(br, charmap.Windows1251.NewDecoder())
	default:
		// assume UTF-8
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
