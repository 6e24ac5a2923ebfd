package inventory

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	excelize "github.com/xuri/excelize/v2"

	"github.com/kiranascan/backend/internal/domain"
)

func TestReadCatalogFileCSV(t *testing.T) {
	t.Run("parses rows with aliased headers", func(t *testing.T) {
		csvData := strings.Join([]string{
			"Item Name,Brand,Category,Price,MRP,Stock",
			"Toor Dal,Tata,Pulses,120,135,25",
			"Amul Milk,Amul,Dairy,28,30,40",
		}, "\n")

		entries, result, err := ReadCatalogFile(strings.NewReader(csvData), "catalog.csv")
		if err != nil {
			t.Fatalf("ReadCatalogFile() error = %v", err)
		}
		if result.Imported != 2 || result.Skipped != 0 {
			t.Fatalf("result = %+v, want 2 imported", result)
		}
		if entries[0].ItemName != "Toor Dal" || entries[0].Brand != "Tata" {
			t.Errorf("entries[0] = %+v", entries[0])
		}
		if entries[0].SellingPrice != 120 || entries[0].MRP != 135 || entries[0].StockQuantity != 25 {
			t.Errorf("entries[0] numerics = %+v", entries[0])
		}
		if entries[1].Category != "Dairy" {
			t.Errorf("entries[1].Category = %s, want Dairy", entries[1].Category)
		}
	})

	t.Run("skips rows without an item name", func(t *testing.T) {
		csvData := "Item Name,Price\nMilk,28\n,15\n"

		entries, result, err := ReadCatalogFile(strings.NewReader(csvData), "catalog.csv")
		if err != nil {
			t.Fatalf("ReadCatalogFile() error = %v", err)
		}
		if len(entries) != 1 || result.Skipped != 1 {
			t.Errorf("entries = %d, skipped = %d, want 1 and 1", len(entries), result.Skipped)
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "row 3") {
			t.Errorf("result.Errors = %v, want row 3 reported", result.Errors)
		}
	})

	t.Run("skips rows with bad numbers", func(t *testing.T) {
		csvData := "Item Name,Stock\nMilk,abc\n"

		entries, result, err := ReadCatalogFile(strings.NewReader(csvData), "catalog.csv")
		if err != nil {
			t.Fatalf("ReadCatalogFile() error = %v", err)
		}
		if len(entries) != 0 || result.Skipped != 1 {
			t.Errorf("entries = %d, skipped = %d, want 0 and 1", len(entries), result.Skipped)
		}
	})

	t.Run("empty cells parse as zero", func(t *testing.T) {
		csvData := "Item Name,Price,Stock\nMilk,,\n"

		entries, _, err := ReadCatalogFile(strings.NewReader(csvData), "catalog.csv")
		if err != nil {
			t.Fatalf("ReadCatalogFile() error = %v", err)
		}
		if entries[0].SellingPrice != 0 || entries[0].StockQuantity != 0 {
			t.Errorf("entries[0] = %+v, want zero numerics", entries[0])
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		_, _, err := ReadCatalogFile(strings.NewReader("x"), "catalog.pdf")
		if !errors.Is(err, domain.ErrUnsupportedFile) {
			t.Errorf("ReadCatalogFile() error = %v, want ErrUnsupportedFile", err)
		}
	})
}

func TestReadCatalogFileXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Item Name", "Brand", "Selling Price", "Stock Quantity"},
		{"Basmati Rice", "India Gate", 180, 12},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() error = %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	entries, result, err := ReadCatalogFile(&buf, "catalog.xlsx")
	if err != nil {
		t.Fatalf("ReadCatalogFile() error = %v", err)
	}
	if result.Imported != 1 {
		t.Fatalf("result = %+v, want 1 imported", result)
	}
	if entries[0].ItemName != "Basmati Rice" || entries[0].Brand != "India Gate" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[0].SellingPrice != 180 || entries[0].StockQuantity != 12 {
		t.Errorf("entries[0] numerics = %+v", entries[0])
	}
}
