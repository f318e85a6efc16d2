// Package export renders transaction lists as CSV or XLSX files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"budget/internal/models"
	"budget/internal/money"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	dateLayout = "2006-01-02 15:04:05"
	sheetName  = "Transactions"

	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// Filename is the attachment name for an export produced at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("transactions_%s.%s", t.Format("20060102"), f)
}

type Row struct {
	Date        time.Time
	Category    string
	Amount      decimal.Decimal
	Description string
}

// ScopeNames maps scope ids to names; unknown ids resolve to
// models.UncategorizedName.
func ScopeNames(scopes []models.Scope) func(string) string {
	names := make(map[string]string, len(scopes))
	for _, s := range scopes {
		names[s.ID] = s.Name
	}
	return func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return models.UncategorizedName
	}
}

func Rows(transactions []models.Transaction, scopeName func(string) string) []Row {
	rows := make([]Row, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, Row{
			Date:        t.Date,
			Category:    scopeName(t.ScopeID),
			Amount:      t.Amount,
			Description: t.Description,
		})
	}
	return rows
}

func header(currency string) []string {
	return []string{"Date", "Category", fmt.Sprintf("Amount (%s)", currency), "Description"}
}

// WriteCSV writes an unquoted header line followed by one line per row
// with every field quoted and embedded quotes doubled.
func WriteCSV(w io.Writer, rows []Row, currency string, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(header(currency), ",") + "\n"); err != nil {
		return err
	}
	for _, row := range rows {
		fields := []string{
			row.Date.In(loc).Format(dateLayout),
			row.Category,
			money.Format(row.Amount),
			row.Description,
		}
		for i, field := range fields {
			fields[i] = quote(field)
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// WriteXLSX writes the same columns as WriteCSV into a single sheet.
// Amounts are stored as numbers with two decimals.
func WriteXLSX(w io.Writer, rows []Row, currency string, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	cols := header(currency)
	headerRow := make([]any, len(cols))
	for i, c := range cols {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			row.Date.In(loc).Format(dateLayout),
			row.Category,
			row.Amount.InexactFloat64(),
			row.Description,
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	if len(rows) > 0 {
		last := fmt.Sprintf("C%d", len(rows)+1)
		if err := f.SetCellStyle(sheetName, "C2", last, amountStyle); err != nil {
			return fmt.Errorf("apply amount style: %w", err)
		}
	}
	_ = f.SetColWidth(sheetName, "A", "A", 20)
	_ = f.SetColWidth(sheetName, "B", "B", 18)
	_ = f.SetColWidth(sheetName, "C", "C", 14)
	_ = f.SetColWidth(sheetName, "D", "D", 40)

	_, err = f.WriteTo(w)
	return err
}

// Write dispatches on format.
func Write(w io.Writer, format Format, rows []Row, currency string, loc *time.Location) error {
	if format == FormatXLSX {
		return WriteXLSX(w, rows, currency, loc)
	}
	return WriteCSV(w, rows, currency, loc)
}
