package analysis

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// exportRow is the flat CSV/XLSX shape of one expense.
type exportRow struct {
	Date        string `csv:"date"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Category    string `csv:"category"`
	Merchant    string `csv:"merchant"`
	Description string `csv:"description"`
}

func toRows(items []*expense.Expense) []*exportRow {
	rows := make([]*exportRow, 0, len(items))
	for _, e := range items {
		rows = append(rows, &exportRow{
			Date:        e.CreatedAt.Format("2006-01-02 15:04"),
			Amount:      money.New(e.AmountMinor, e.CurrencyCode).String(),
			Currency:    e.CurrencyCode,
			Category:    e.Category,
			Merchant:    e.Merchant,
			Description: e.Description,
		})
	}
	return rows
}

// WriteCSV streams the expenses as CSV with a header row.
func WriteCSV(w io.Writer, items []*expense.Expense) error {
	if err := gocsv.Marshal(toRows(items), w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the expenses as a single-sheet workbook.
func WriteXLSX(w io.Writer, items []*expense.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Date", "Amount", "Currency", "Category", "Merchant", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, row := range toRows(items) {
		values := []string{row.Date, row.Amount, row.Currency, row.Category, row.Merchant, row.Description}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
