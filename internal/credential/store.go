package credential

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/kelechi-madu/ratesheet/internal/common"
)

// storageKey is the fixed key under which the extraction credential is kept.
const storageKey = "extraction_api_key"

// Store persists the user-supplied credential across sessions in a
// single-file SQLite key/value table. It deliberately does not validate the
// token shape.
//
// Storage failures after Open degrade to "no credential found": reads report
// absent, writes become no-ops. They are logged, never returned. This mirrors
// the session-storage semantics of the original tool and is a documented
// limitation, not a feature.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (creating if needed) the store at path. Use ":memory:" for
// an ephemeral store in tests.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.NewAppError("STORE_OPEN", "open credential store", err)
	}
	// sqlite handles one writer; a single pooled conn avoids lock churn.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS session_kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("STORE_INIT", "init credential store", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save upserts the credential. Errors are swallowed after a WARN log.
func (s *Store) Save(ctx context.Context, token string) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		storageKey, token)
	if err != nil {
		s.logger.Warn("credential.store.save_failed", "error", err)
	}
}

// Load returns the stored credential and whether one was found. Any storage
// error reads as absent.
func (s *Store) Load(ctx context.Context) (string, bool) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_kv WHERE key = ?`, storageKey).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false
	case err != nil:
		s.logger.Warn("credential.store.load_failed", "error", err)
		return "", false
	}
	return value, value != ""
}

// Clear removes the stored credential, if any.
func (s *Store) Clear(ctx context.Context) {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE key = ?`, storageKey); err != nil {
		s.logger.Warn("credential.store.clear_failed", "error", err)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
