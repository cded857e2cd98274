// Package importer ingests bank and mobile-wallet statement exports (CSV or
// XLSX) into the expense ledger. It is the bulk counterpart of logging
// expenses one chat message at a time.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/kharcha/internal/domain/textnorm"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// statementRow is a raw CSV row. The tags cover the column names the common
// Bangladeshi bank and bKash exports use; gocsv matches by header name.
type statementRow struct {
	Date            string `csv:"date"`
	TransactionDate string `csv:"transaction date"`
	Tarikh          string `csv:"তারিখ"`

	Description string `csv:"description"`
	Details     string `csv:"details"`
	Particulars string `csv:"particulars"`
	Narration   string `csv:"narration"`
	Biboron     string `csv:"বিবরণ"`

	Amount   string `csv:"amount"`
	Debit    string `csv:"debit"`
	Withdraw string `csv:"withdrawal"`
	Taka     string `csv:"টাকা"`

	Category string `csv:"category"`
	Merchant string `csv:"merchant"`
}

// ParsedRow is one normalized statement line.
type ParsedRow struct {
	Date        time.Time
	Description string
	Merchant    string
	Category    string
	AmountMinor int64
	RawRow      int
}

// RowError records why a statement line was skipped.
type RowError struct {
	Row     int
	Message string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ParseResult holds the parsed lines and per-row failures.
type ParseResult struct {
	Rows    []ParsedRow
	Errors  []RowError
	Skipped int
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// ParseCSV reads a CSV statement. Header names are matched case-insensitively
// and Bengali digits in amounts are accepted.
func ParseCSV(r io.Reader) (*ParseResult, error) {
	var rows []*statementRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	result := &ParseResult{}
	for i, row := range rows {
		parsed, err := normalizeRow(row, i+2) // +2: header line plus 1-based rows
		if err != nil {
			result.Errors = append(result.Errors, *err)
			result.Skipped++
			continue
		}
		result.Rows = append(result.Rows, *parsed)
	}
	return result, nil
}

// ParseXLSX reads the first sheet of an Excel statement. The first row must
// be the header row.
func ParseXLSX(r io.Reader) (*ParseResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(cells) < 2 {
		return &ParseResult{}, nil
	}

	// Re-encode as CSV so both formats share one column-matching path.
	var buf bytes.Buffer
	for _, row := range cells {
		for j, cell := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`"` + strings.ReplaceAll(cell, `"`, `""`) + `"`)
		}
		buf.WriteByte('\n')
	}
	return ParseCSV(&buf)
}

func normalizeRow(row *statementRow, line int) (*ParsedRow, *RowError) {
	dateRaw := coalesce(row.Date, row.TransactionDate, row.Tarikh)
	if dateRaw == "" {
		return nil, &RowError{Row: line, Message: "missing date"}
	}
	date, ok := parseDate(dateRaw)
	if !ok {
		return nil, &RowError{Row: line, Message: "unrecognized date: " + dateRaw}
	}

	amountRaw := coalesce(row.Amount, row.Debit, row.Withdraw, row.Taka)
	if amountRaw == "" {
		// credit-only line (a deposit), not an expense
		return nil, &RowError{Row: line, Message: "no expense amount"}
	}
	m, err := money.NewFromString(cleanAmount(amountRaw), "BDT")
	if err != nil {
		return nil, &RowError{Row: line, Message: "bad amount: " + amountRaw}
	}
	minor := m.Amount()
	if minor < 0 {
		minor = -minor
	}
	if minor == 0 {
		return nil, &RowError{Row: line, Message: "zero amount"}
	}

	return &ParsedRow{
		Date:        date,
		Description: coalesce(row.Description, row.Details, row.Particulars, row.Narration, row.Biboron),
		Merchant:    row.Merchant,
		Category:    strings.ToLower(strings.TrimSpace(row.Category)),
		AmountMinor: minor,
		RawRow:      line,
	}, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(textnorm.TranslateDigits(s))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// cleanAmount strips currency markers, thousands separators, and accounting
// parentheses, and converts Bengali digits.
func cleanAmount(s string) string {
	s = textnorm.TranslateDigits(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "-")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func coalesce(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
