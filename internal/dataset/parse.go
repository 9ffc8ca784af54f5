// Package dataset manages the current dataset: the persisted pointer, the
// uploads directory, parsing, and the in-memory cache.
package dataset

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotae/internal/models"
)

// allowedExtensions are the upload types the service accepts.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".db":   true,
}

// AllowedFile reports whether the filename has an accepted dataset extension.
func AllowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// LoadTable parses the file at path into a Table based on its extension.
// The first row (or first sheet row, or column names for .db) becomes the header.
func LoadTable(path string) (*models.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".xlsx":
		return loadXLSX(path)
	case ".db":
		return loadSQLiteDB(path)
	default:
		return nil, fmt.Errorf("unsupported dataset type: %s", filepath.Ext(path))
	}
}

func loadCSV(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv %s has no rows", filepath.Base(path))
	}
	return tableFromRecords(filepath.Base(path), records), nil
}

func loadXLSX(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx %s has no sheets", filepath.Base(path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx %s has no rows", filepath.Base(path))
	}
	return tableFromRecords(filepath.Base(path), rows), nil
}

// loadSQLiteDB opens a SQLite file read-only and loads the first user table.
func loadSQLiteDB(path string) (*models.Table, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite dataset: %w", err)
	}
	defer db.Close()

	var tableName string
	err = db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name LIMIT 1`,
	).Scan(&tableName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite dataset %s has no tables", filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("inspect sqlite dataset: %w", err)
	}

	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %q", tableName))
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", tableName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	table := &models.Table{Filename: filepath.Base(path), Columns: columns}
	values := make([]sql.NullString, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// tableFromRecords builds a Table from raw records, padding short rows so every
// row has at least one cell per column. Rows wider than the header keep their
// extra cells rather than losing data.
func tableFromRecords(filename string, records [][]string) *models.Table {
	table := &models.Table{Filename: filename, Columns: records[0]}
	width := len(table.Columns)
	for _, rec := range records[1:] {
		if len(rec) >= width {
			table.Rows = append(table.Rows, rec)
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table
}
