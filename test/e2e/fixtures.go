package e2e

import (
	"encoding/csv"
	"os"

	"github.com/xuri/excelize/v2"
)

var catalogHeader = []string{"image", "display_name", "description", "category"}

// WriteCatalogCSV writes entries as a catalog CSV file in the format the
// ingestor accepts. Item ids derive from the filename stems.
func WriteCatalogCSV(path string, entries []CatalogEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(catalogHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{e.Filename, e.Metadata.DisplayName, e.Metadata.Description, e.Metadata.Category}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteCatalogXLSX writes entries as a catalog workbook in the format the
// ingestor accepts.
func WriteCatalogXLSX(path string, entries []CatalogEntry) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	writeRow := func(rowIdx int, values []string) error {
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeRow(1, catalogHeader); err != nil {
		return err
	}
	for i, e := range entries {
		row := []string{e.Filename, e.Metadata.DisplayName, e.Metadata.Description, e.Metadata.Category}
		if err := writeRow(i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
