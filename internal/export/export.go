// Package export serializes result sets to files, either through the
// backend's export endpoint or locally without a network round trip.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/aakanksha-singh-hub/QueryBot/internal/domain"
	"github.com/aakanksha-singh-hub/QueryBot/internal/session"
)

const sheetName = "Data"

// BackendAPI is the slice of the backend client the exporter needs.
type BackendAPI interface {
	Export(ctx context.Context, data domain.ResultSet, format string) ([]byte, error)
}

// Service exports session results through the backend.
type Service struct {
	api     BackendAPI
	dir     string
	timeout time.Duration
}

// NewService creates an exporter writing downloads into dir. timeout bounds
// each backend export call; zero means no bound beyond the caller's context.
func NewService(api BackendAPI, dir string, timeout time.Duration) *Service {
	if dir == "" {
		dir = "."
	}
	return &Service{api: api, dir: dir, timeout: timeout}
}

// Latest exports the session's most recent result set in the given format
// and returns the written file path, named query-results.<format>. With no
// result_set message in the transcript it fails locally with
// session.ErrNoResults and issues no request.
func (s *Service) Latest(ctx context.Context, sess *session.Session, format string) (string, error) {
	rs, ok := sess.LatestResults()
	if !ok {
		return "", session.ErrNoResults
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.api.Export(ctx, rs, format)
	if err != nil {
		// The detail is for diagnostics; the user sees a generic export error.
		log.Error().Err(err).Str("format", format).Msg("export failed")
		return "", fmt.Errorf("export failed: %w", err)
	}

	path := filepath.Join(s.dir, "query-results."+format)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WriteXLSX serializes records directly to a spreadsheet file, for data the
// caller already holds client-side.
func WriteXLSX(rs domain.ResultSet, path string) error {
	f, err := buildXLSX(rs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodeXLSX serializes records as a spreadsheet to w.
func EncodeXLSX(rs domain.ResultSet, w io.Writer) error {
	f, err := buildXLSX(rs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode spreadsheet: %w", err)
	}
	return nil
}

func buildXLSX(rs domain.ResultSet) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to prepare sheet: %w", err)
	}

	cols := rs.Columns()
	for i, col := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, rec := range rs {
		for i, col := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, r+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			v, _ := rec.Get(col)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	return f, nil
}

// WriteCSV serializes records as CSV with a header row.
func WriteCSV(rs domain.ResultSet, w io.Writer) error {
	cw := csv.NewWriter(w)
	cols := rs.Columns()

	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range rs {
		row := make([]string, len(cols))
		for i, col := range cols {
			v, _ := rec.Get(col)
			row[i] = cellString(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellString(v domain.Value) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%v", n)
	default:
		return fmt.Sprintf("%v", n)
	}
}
