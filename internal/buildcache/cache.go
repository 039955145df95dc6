// Package buildcache stores compiled modules in SQLite, keyed by a hash of
// everything that affects the output.
package buildcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const table = "outputs"

// columns is the expected layout of the outputs table, name -> type.
var columns = []struct{ name, typ string }{
	{"key", "TEXT"},
	{"name", "TEXT"},
	{"code", "TEXT"},
	{"created", "INTEGER"},
}

type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path. ":memory:" gives a
// private in-process cache. A table with an unexpected layout is rebuilt.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open build cache: %w", err)
	}
	// one connection: an in-memory database is per connection, and
	// concurrent builders serialize their writes here
	db.SetMaxOpenConns(1)
	c := &Cache{db: db}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes parts into a cache key. Parts are length-delimited, so
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached code for key.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var code string
	err := c.db.QueryRowContext(ctx, "SELECT code FROM "+table+" WHERE key = ?", key).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read build cache: %w", err)
	}
	return code, true, nil
}

// Put stores code under key, replacing any previous entry. name is the
// source file it was compiled from, kept for Stats.
func (c *Cache) Put(ctx context.Context, key, name, code string) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO "+table+" (key, name, code, created) VALUES (?, ?, ?, ?)",
		key, name, code, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write build cache: %w", err)
	}
	return nil
}

type Stats struct {
	Entries int
	Bytes   int64
	Sources int // distinct source names
}

func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(code)), 0), COUNT(DISTINCT name) FROM "+table,
	).Scan(&s.Entries, &s.Bytes, &s.Sources)
	if err != nil {
		return Stats{}, fmt.Errorf("read build cache stats: %w", err)
	}
	return s, nil
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear build cache: %w", err)
	}
	return nil
}

func (c *Cache) ensureSchema() error {
	exists, err := c.tableExists()
	if err != nil {
		return err
	}
	if exists {
		ok, err := c.schemaMatches()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if _, err := c.db.Exec("DROP TABLE " + table); err != nil {
			return fmt.Errorf("drop stale build cache table: %w", err)
		}
	}
	return c.createTable()
}

func (c *Cache) tableExists() (bool, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check build cache table: %w", err)
	}
	return count > 0, nil
}

// schemaMatches compares the table's columns with the expected layout.
func (c *Cache) schemaMatches() (bool, error) {
	rows, err := c.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to get build cache table info: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]string)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, fmt.Errorf("failed to scan build cache table info: %w", err)
		}
		existing[strings.ToLower(name)] = strings.ToUpper(colType)
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	if len(existing) != len(columns) {
		return false, nil
	}
	for _, col := range columns {
		if existing[col.name] != col.typ {
			return false, nil
		}
	}
	return true, nil
}

func (c *Cache) createTable() error {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(table)
	b.WriteString(" (")
	for i, col := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col.name)
		b.WriteString(" ")
		b.WriteString(col.typ)
		if col.name == "key" {
			b.WriteString(" PRIMARY KEY")
		} else {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(")")
	if _, err := c.db.Exec(b.String()); err != nil {
		return fmt.Errorf("failed to create build cache table: %w", err)
	}
	return nil
}
