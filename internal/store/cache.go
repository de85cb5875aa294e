// Package store provides a SQLite-backed cache for parsed price tables.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed price table caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
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

// Key identifies one cached table: a source file, the worksheet read from
// it (empty for the first sheet or a CSV) and the load mode.
type Key struct {
	Path  string
	Sheet string
	Mode  model.Mode
}

// SourceInfo holds the tracked file state of a cached source.
type SourceInfo struct {
	MtimeNs   int64
	SizeBytes int64
	Dropped   int
	ParsedAt  time.Time
}

// Matches reports whether the tracked state equals the file's current state.
func (s SourceInfo) Matches(mtimeNs, sizeBytes int64) bool {
	return s.MtimeNs == mtimeNs && s.SizeBytes == sizeBytes
}

// GetTrackedSource returns the tracking info for k. ok is false when it was
// never cached.
func (c *Cache) GetTrackedSource(k Key) (info SourceInfo, ok bool, err error) {
	var parsedAt string
	err = c.db.QueryRow(`SELECT mtime_ns, size_bytes, dropped, parsed_at
		FROM sources WHERE source_path = ? AND sheet = ? AND mode = ?`, k.Path, k.Sheet, string(k.Mode)).
		Scan(&info.MtimeNs, &info.SizeBytes, &info.Dropped, &parsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SourceInfo{}, false, nil
	}
	if err != nil {
		return SourceInfo{}, false, err
	}
	info.ParsedAt, _ = time.Parse(time.RFC3339, parsedAt)
	return info, true, nil
}

// SaveTable replaces the cached rows of k with records and updates its
// tracking info.
func (c *Cache) SaveTable(k Key, records []model.PriceRecord, dropped int, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	// Delete old rows for this source
	_, err = tx.Exec("DELETE FROM price_records WHERE source_path = ? AND sheet = ? AND mode = ?",
		k.Path, k.Sheet, string(k.Mode))
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO sources
		(source_path, sheet, mode, mtime_ns, size_bytes, dropped, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.Path, k.Sheet, string(k.Mode), mtimeNs, sizeBytes, dropped, now,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO price_records
		(source_path, sheet, mode, row_idx, line, estado, anio, mes, tipo_combustible, precio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		_, err = stmt.Exec(k.Path, k.Sheet, string(k.Mode), i, r.Line, r.State, r.Year, r.Month, r.FuelType, r.Price.String())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecords reads the cached rows of k in their source order.
func (c *Cache) LoadRecords(k Key) ([]model.PriceRecord, error) {
	rows, err := c.db.Query(`SELECT line, estado, anio, mes, tipo_combustible, precio
		FROM price_records WHERE source_path = ? AND sheet = ? AND mode = ?
		ORDER BY row_idx`, k.Path, k.Sheet, string(k.Mode))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []model.PriceRecord
	for rows.Next() {
		var r model.PriceRecord
		var price string
		if err := rows.Scan(&r.Line, &r.State, &r.Year, &r.Month, &r.FuelType, &price); err != nil {
			return nil, err
		}
		r.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("cached price %q: %w", price, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteSource removes k and its cached rows.
func (c *Cache) DeleteSource(k Key) error {
	_, err := c.db.Exec("DELETE FROM sources WHERE source_path = ? AND sheet = ? AND mode = ?",
		k.Path, k.Sheet, string(k.Mode))
	return err
}

// RecordCount returns the number of cached rows across all sources.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM price_records").Scan(&count)
	return count, err
}
