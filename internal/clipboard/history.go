package clipboard

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/panelkit/panelkit/internal/shell"
)

// History persists text clipboard items across restarts. Only text items
// are stored; images are session-local.
type History struct {
	db    *sql.DB
	limit int
}

// OpenHistory opens (or creates) the history database at path.
func OpenHistory(path string, limit int) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS history (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			mime  TEXT NOT NULL,
			value TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &History{db: db, limit: limit}, nil
}

// Append stores a text item and trims the table to the configured limit.
// Non-text items are ignored.
func (h *History) Append(item shell.ClipboardItem) error {
	if item.Kind != shell.ClipboardText {
		return nil
	}
	if _, err := h.db.Exec(
		`INSERT INTO history (mime, value) VALUES (?, ?)`,
		item.Mime, item.Text,
	); err != nil {
		return fmt.Errorf("appending history item: %w", err)
	}
	if _, err := h.db.Exec(
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
		h.limit,
	); err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}
	return nil
}

// Load returns the stored items oldest first, up to the limit.
func (h *History) Load() ([]shell.ClipboardItem, error) {
	rows, err := h.db.Query(
		`SELECT mime, value FROM history ORDER BY id ASC LIMIT ?`, h.limit)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var items []shell.ClipboardItem
	for rows.Next() {
		var item shell.ClipboardItem
		item.Kind = shell.ClipboardText
		if err := rows.Scan(&item.Mime, &item.Text); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
