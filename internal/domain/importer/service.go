package importer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/pkg/observability"
	"github.com/FACorreiaa/kharcha/pkg/storage"
)

// maxStatementBytes caps uploads at 10 MB.
const maxStatementBytes = 10 << 20

// Service parses uploaded statements and writes the rows to the ledger.
type Service struct {
	store      expense.Store
	categories expense.Categorizer
	files      storage.Storage // nil skips archiving the original upload
	logger     *slog.Logger
}

// NewService creates the import service.
func NewService(store expense.Store, categories expense.Categorizer, files storage.Storage, logger *slog.Logger) *Service {
	return &Service{store: store, categories: categories, files: files, logger: logger}
}

// Result summarizes one statement import.
type Result struct {
	Imported   int      `json:"imported"`
	Duplicates int      `json:"duplicates"`
	Skipped    int      `json:"skipped"`
	TotalMinor int64    `json:"total_minor"`
	RowErrors  []string `json:"row_errors,omitempty"`
}

// ImportStatement reads a CSV or XLSX statement and inserts each expense row.
// Rows are keyed by a hash of the file content plus the row number, so
// re-uploading the same statement is idempotent.
func (s *Service) ImportStatement(ctx context.Context, userIDHash, filename string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxStatementBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read statement: %w", err)
	}
	if len(data) > maxStatementBytes {
		return nil, fmt.Errorf("statement exceeds %d bytes", maxStatementBytes)
	}

	parsed, err := s.parse(filename, data)
	if err != nil {
		return nil, err
	}

	if s.files != nil {
		if _, err := s.files.Upload(ctx, userIDHash, filename, contentType(filename), bytes.NewReader(data)); err != nil {
			s.logger.WarnContext(ctx, "failed to archive statement", slog.Any("error", err))
		}
	}

	if _, err := s.store.GetOrCreateUser(ctx, userIDHash); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	sum := sha256.Sum256(data)
	fileKey := hex.EncodeToString(sum[:])[:12]

	result := &Result{Skipped: parsed.Skipped}
	for _, rowErr := range parsed.Errors {
		result.RowErrors = append(result.RowErrors, rowErr.Error())
	}

	for _, row := range parsed.Rows {
		correlationID := fmt.Sprintf("import:%s:%d", fileKey, row.RawRow)

		if _, err := s.store.FindByCorrelationID(ctx, userIDHash, correlationID); err == nil {
			result.Duplicates++
			continue
		} else if !errors.Is(err, expense.ErrNotFound) {
			return nil, fmt.Errorf("failed to check for duplicate row: %w", err)
		}

		category := row.Category
		if category == "" {
			category = s.categories.Categorize(strings.ToLower(row.Description))
		}

		e := &expense.Expense{
			UserIDHash:    userIDHash,
			AmountMinor:   row.AmountMinor,
			CurrencyCode:  "BDT",
			Category:      category,
			Description:   row.Description,
			Merchant:      row.Merchant,
			CorrelationID: correlationID,
			CreatedAt:     row.Date,
		}
		if err := s.store.Insert(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to insert row %d: %w", row.RawRow, err)
		}
		result.Imported++
		result.TotalMinor += row.AmountMinor
	}

	observability.ImportRows.WithLabelValues("imported").Add(float64(result.Imported))
	observability.ImportRows.WithLabelValues("duplicate").Add(float64(result.Duplicates))
	observability.ImportRows.WithLabelValues("skipped").Add(float64(result.Skipped))

	s.logger.InfoContext(ctx, "statement imported",
		slog.String("file", filename),
		slog.Int("imported", result.Imported),
		slog.Int("duplicates", result.Duplicates),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// errArchiveDisabled covers stub deployments running without file storage.
var errArchiveDisabled = errors.New("statement archive is not configured")

// ListStatements returns the archived statement uploads for a user.
func (s *Service) ListStatements(ctx context.Context, userIDHash string) ([]*storage.FileInfo, error) {
	if s.files == nil {
		return nil, errArchiveDisabled
	}
	return s.files.List(ctx, userIDHash)
}

// OpenStatement streams one archived statement back to the caller.
func (s *Service) OpenStatement(ctx context.Context, userIDHash string, fileID uuid.UUID) (*storage.FileInfo, io.ReadCloser, error) {
	if s.files == nil {
		return nil, nil, errArchiveDisabled
	}
	info, err := s.files.GetInfo(ctx, userIDHash, fileID)
	if err != nil {
		return nil, nil, err
	}
	r, err := s.files.GetReader(ctx, userIDHash, fileID)
	if err != nil {
		return nil, nil, err
	}
	return info, r, nil
}

// DeleteStatement removes an archived statement file.
func (s *Service) DeleteStatement(ctx context.Context, userIDHash string, fileID uuid.UUID) error {
	if s.files == nil {
		return errArchiveDisabled
	}
	return s.files.Delete(ctx, userIDHash, fileID)
}

func (s *Service) parse(filename string, data []byte) (*ParseResult, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ParseCSV(bytes.NewReader(data))
	case ".xlsx":
		return ParseXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported statement format: %s", filepath.Ext(filename))
	}
}

func contentType(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}
