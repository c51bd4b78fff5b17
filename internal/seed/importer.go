// Package seed loads the synthetic travel datasets into the relational store.
package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	intdb "travelbot/internal/db"
	"travelbot/internal/repositories"
)

// ErrNoDataset is returned when neither a CSV nor an XLSX file exists for a table.
var ErrNoDataset = errors.New("dataset file not found")

// Importer replaces dataset tables with the contents of their files.
type Importer struct {
	DB      *sql.DB
	Dialect intdb.Dialect
	Dir     string
	Tables  []repositories.Table
	Logger  *zap.Logger
}

func NewImporter(db *sql.DB, d intdb.Dialect, dir string, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{DB: db, Dialect: d, Dir: dir, Tables: repositories.DatasetTables, Logger: logger}
}

// ImportAll imports every table whose file exists. Missing files are
// logged and skipped; the counts map holds rows loaded per table.
func (im *Importer) ImportAll(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, t := range im.Tables {
		n, err := im.ImportTable(ctx, t)
		if errors.Is(err, ErrNoDataset) {
			im.Logger.Warn("dataset missing", zap.String("table", t.Name), zap.String("dir", im.Dir))
			continue
		}
		if err != nil {
			return counts, err
		}
		counts[t.Name] = n
	}
	return counts, nil
}

// TableForPath returns the table fed by the given file, if any.
func (im *Importer) TableForPath(path string) (repositories.Table, bool) {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".csv" && ext != ".xlsx" {
		return repositories.Table{}, false
	}
	name := strings.TrimSuffix(base, filepath.Ext(base))
	for _, t := range im.Tables {
		if strings.EqualFold(t.File, name) {
			return t, true
		}
	}
	return repositories.Table{}, false
}

// ImportTable drops, recreates and fills one table in a single transaction.
func (im *Importer) ImportTable(ctx context.Context, t repositories.Table) (int, error) {
	path, err := im.locate(t)
	if err != nil {
		return 0, err
	}
	header, records, err := readRecords(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	index := columnIndex(header, t.Columns)

	tx, err := im.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, t.DropSQL(im.Dialect)); err != nil {
		return 0, fmt.Errorf("drop %s: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, t.CreateSQL(im.Dialect)); err != nil {
		return 0, fmt.Errorf("create %s: %w", t.Name, err)
	}
	stmt, err := tx.PrepareContext(ctx, t.InsertSQL(im.Dialect))
	if err != nil {
		return 0, fmt.Errorf("prepare %s: %w", t.Name, err)
	}
	defer stmt.Close()

	n := 0
	for _, rec := range records {
		args := make([]any, len(t.Columns))
		for i, c := range t.Columns {
			raw := ""
			if j := index[i]; j >= 0 && j < len(rec) {
				raw = rec[j]
			}
			args[i] = convert(raw, c.Type)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return n, fmt.Errorf("insert %s row %d: %w", t.Name, n+1, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	im.Logger.Info("dataset imported", zap.String("table", t.Name), zap.Int("rows", n), zap.String("file", path))
	return n, nil
}

func (im *Importer) locate(t repositories.Table) (string, error) {
	for _, ext := range []string{".csv", ".xlsx"} {
		p := filepath.Join(im.Dir, t.File+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", t.File, ErrNoDataset)
}

// columnIndex maps each table column to its header position (-1 when absent).
func columnIndex(header []string, cols []repositories.Column) []int {
	pos := map[string]int{}
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	out := make([]int, len(cols))
	for i, c := range cols {
		j, ok := pos[strings.ToLower(c.Name)]
		if !ok {
			j = -1
		}
		out[i] = j
	}
	return out
}

func convert(raw, typ string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch typ {
	case "REAL":
		if f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			return f
		}
		return nil
	case "INTEGER":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return int64(f)
		}
		return nil
	}
	return raw
}

func readRecords(path string) ([]string, [][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return readCSV(f)
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		out = append(out, rec)
	}
	return header, out, nil
}

// readXLSX reads the first sheet; the first row is the header.
func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}
	return rows[0], rows[1:], nil
}
