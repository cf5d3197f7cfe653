// Package transcript provides the optional exchange log.
// Clean Architecture: Adapter implementing ports.TranscriptLog.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pizza-alchemy/chatbot-go/internal/domain/entities"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id TEXT PRIMARY KEY,
	message TEXT NOT NULL,
	response TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// SQLiteLog appends chat exchanges to a local SQLite database. It is written
// to and never read back by the service, so it cannot leak state into the
// stateless chat flow.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog opens (or creates) the transcript database at path.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating transcript directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating transcript schema: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

// Record appends one exchange. A missing ID gets a fresh UUID.
func (l *SQLiteLog) Record(ctx context.Context, t entities.Transcript) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO transcripts (id, message, response) VALUES (?, ?, ?)",
		t.ID, t.Message, t.Response,
	)
	if err != nil {
		return fmt.Errorf("inserting transcript: %w", err)
	}
	return nil
}

// Count returns the number of recorded exchanges.
func (l *SQLiteLog) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transcripts").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting transcripts: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
