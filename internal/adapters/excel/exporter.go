// Package excel writes dashboard views to spreadsheet files.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/dealerops/internal/ports/secondary"
)

// Exporter writes all sheets into one .xlsx workbook.
type Exporter struct {
	dir string
}

// NewExporter creates a workbook exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes <dir>/<base>.xlsx with one worksheet per sheet, in order.
func (e *Exporter) Export(ctx context.Context, base string, sheets []secondary.ExportSheet) ([]string, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet); err != nil {
			return nil, err
		}
	}

	path := filepath.Join(e.dir, base+".xlsx")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}
	return []string{path}, nil
}

func writeSheet(f *excelize.File, sheet secondary.ExportSheet) error {
	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet.Name, err)
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+1, sheet.Name, err)
		}
	}
	return nil
}

// CSVExporter writes one .csv file per sheet.
type CSVExporter struct {
	dir string
}

// NewCSVExporter creates a CSV exporter writing into dir.
func NewCSVExporter(dir string) *CSVExporter {
	return &CSVExporter{dir: dir}
}

// Export writes <dir>/<base>_<sheet>.csv for each sheet, e.g. dispatch_on_hold.csv.
func (e *CSVExporter) Export(ctx context.Context, base string, sheets []secondary.ExportSheet) ([]string, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("nothing to export")
	}
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var paths []string
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(e.dir, base+"_"+fileSuffix(sheet.Name)+".csv")
		if err := writeCSV(path, sheet); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, sheet secondary.ExportSheet) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(sheet.Headers); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet.Name, err)
	}
	for _, row := range sheet.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", sheet.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return file.Close()
}

// fileSuffix turns "On Hold" into "on_hold".
func fileSuffix(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

var (
	_ secondary.Exporter = (*Exporter)(nil)
	_ secondary.Exporter = (*CSVExporter)(nil)
)
