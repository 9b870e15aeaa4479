// Package prefs persists viewer preferences and search history in SQLite.
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver

	"hexview/internal/glyph"
	"hexview/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key    TEXT PRIMARY KEY,
	value  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS search_history (
	pos    INTEGER PRIMARY KEY,
	query  TEXT NOT NULL
);
`

const keyAddressBase = "address_base"

// DB is a preferences database. A nil *DB loads defaults and discards saves.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the preferences database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (p *DB) Close() error {
	if p == nil {
		return nil
	}
	return p.db.Close()
}

// Load reads the stored preferences. Missing values load as zero.
func (p *DB) Load() (store.Preferences, error) {
	var prefs store.Preferences
	if p == nil {
		return prefs, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	var raw string
	err := p.db.QueryRow("SELECT value FROM settings WHERE key = ?", keyAddressBase).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return prefs, fmt.Errorf("read %s: %w", keyAddressBase, err)
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || !glyph.Base(n).Valid() {
			log.Warn().Str("value", raw).Msg("ignoring invalid stored address base")
		} else {
			prefs.AddressBase = glyph.Base(n)
		}
	}

	rows, err := p.db.Query("SELECT query FROM search_history ORDER BY pos")
	if err != nil {
		return prefs, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return prefs, fmt.Errorf("scan history: %w", err)
		}
		prefs.History = append(prefs.History, q)
	}
	return prefs, rows.Err()
}

// Save replaces the stored preferences.
func (p *DB) Save(prefs store.Preferences) error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if prefs.AddressBase.Valid() {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
			keyAddressBase, strconv.Itoa(int(prefs.AddressBase)),
		); err != nil {
			return fmt.Errorf("write %s: %w", keyAddressBase, err)
		}
	}

	if _, err := tx.Exec("DELETE FROM search_history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for i, q := range prefs.History {
		if _, err := tx.Exec("INSERT INTO search_history (pos, query) VALUES (?, ?)", i, q); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
	}

	return tx.Commit()
}
