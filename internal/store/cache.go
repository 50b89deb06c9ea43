// Package store provides a SQLite-backed cache for parsed program extracts.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// columnSep joins header names in the datasets table.
const columnSep = "\x1f"

// Cache provides SQLite-backed dataset caching. Entries are keyed by file
// path and only served while the parse fingerprint, the file's mtime and its
// size are unchanged.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version != schemaVersion {
		if _, err := db.Exec(dropSQL); err != nil {
			return fmt.Errorf("dropping old schema: %w", err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached dataset for path if it was stored with the same
// fingerprint, mtime and size. Any read error is treated as a miss.
func (c *Cache) Get(path, fingerprint string, mtimeNs, size int64) (*model.Dataset, bool) {
	var columns string
	var count int
	err := c.db.QueryRow(`SELECT columns, record_count FROM datasets
		WHERE file_path = ? AND fingerprint = ? AND file_mtime_ns = ? AND file_size = ?`,
		path, fingerprint, mtimeNs, size).Scan(&columns, &count)
	if err != nil {
		return nil, false
	}

	ds := &model.Dataset{Records: make([]model.Record, 0, count)}
	if columns != "" {
		ds.Columns = strings.Split(columns, columnSep)
	}

	rows, err := c.db.Query(`SELECT
		program, recipient, id_number, city, subprogram, funding_source,
		amount, duration, year, cluster
		FROM records WHERE file_path = ? ORDER BY row_index`, path)
	if err != nil {
		return nil, false
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r model.Record
		var program string
		var amount, duration sql.NullString
		var cluster sql.NullInt64
		if err := rows.Scan(&program, &r.Recipient, &r.IDNumber, &r.City, &r.Subprogram,
			&r.FundingSource, &amount, &duration, &r.Year, &cluster); err != nil {
			return nil, false
		}
		r.Program = model.Program(program)
		if r.Amount, err = scanDecimal(amount); err != nil {
			return nil, false
		}
		if r.Duration, err = scanDecimal(duration); err != nil {
			return nil, false
		}
		if cluster.Valid {
			r.Cluster = int(cluster.Int64)
			r.HasCluster = true
		}
		ds.Records = append(ds.Records, r)
	}
	if rows.Err() != nil || len(ds.Records) != count {
		return nil, false
	}
	return ds, true
}

// Put stores a dataset for path, replacing any previous entry.
func (c *Cache) Put(path, fingerprint string, mtimeNs, size int64, ds *model.Dataset) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM records WHERE file_path = ?", path); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM datasets WHERE file_path = ?", path); err != nil {
		return err
	}

	program := ""
	if ds.Len() > 0 {
		program = string(ds.Records[0].Program)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO datasets
		(file_path, program, fingerprint, columns, record_count, file_mtime_ns, file_size, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		path, program, fingerprint, strings.Join(ds.Columns, columnSep), ds.Len(), mtimeNs, size, now)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records
		(file_path, row_index, program, recipient, id_number, city, subprogram,
		 funding_source, amount, duration, year, cluster)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range ds.Records {
		var cluster sql.NullInt64
		if r.HasCluster {
			cluster = sql.NullInt64{Int64: int64(r.Cluster), Valid: true}
		}
		_, err = stmt.Exec(path, i, string(r.Program), r.Recipient, r.IDNumber, r.City,
			r.Subprogram, r.FundingSource, decimalValue(r.Amount), decimalValue(r.Duration),
			r.Year, cluster)
		if err != nil {
			return fmt.Errorf("caching row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// DatasetCount returns the number of cached datasets.
func (c *Cache) DatasetCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&count)
	return count, err
}

// Clear drops every cached dataset.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM records"); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM datasets")
	return err
}

// Decimals are stored as text so they round-trip exactly.
func decimalValue(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func scanDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
