// Package export writes DataTable views as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/erp/factory/internal/domain/datatable"
)

// ContentTypeXLSX is the MIME type of the produced workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const defaultSheet = "Sheet1"

// WriteXLSX writes a workbook with one sheet: a header row of column labels
// followed by one row per element of rows.
func WriteXLSX[T any](w io.Writer, sheet string, columns []datatable.Column[T], rows []T) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = defaultSheet
	}
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Label
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for r, row := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = cellValue(c, row)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}

// cellValue keeps numbers numeric so they can be summed in the sheet
func cellValue[T any](c datatable.Column[T], row T) any {
	if c.Format != nil {
		return c.Format(row)
	}
	switch v := c.Value(row).(type) {
	case nil:
		return nil
	case int, int64, float64, bool:
		return v
	case decimal.Decimal:
		return v.InexactFloat64()
	case time.Time:
		return datatable.Stringify(v)
	default:
		return datatable.Stringify(v)
	}
}

// Filename builds the download name for an export of table
func Filename(table string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", table, now.Format("20060102-150405"))
}
