package telemetry

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
	"github.com/manvi18ux/assistive-har-system/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

// Repository persists accepted alerts and activity transitions for
// later reporting.
type Repository interface {
	RecordAlert(event alert.Event, receivedAt time.Time) error
	RecordActivity(activity string, timestamp time.Time) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// No-op implementation used when persistence is disabled.
type noopRepository struct{}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry persistence disabled, using no-op repository")
		return &noopRepository{}, nil
	}

	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) RecordAlert(event alert.Event, receivedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
        INSERT INTO alerts (id, kind, message, priority, created_at, received_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING
    `,
		event.ID,
		event.Kind,
		event.Message,
		string(event.Priority),
		event.CreatedAt.Unix(),
		receivedAt.Unix(),
	)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) RecordActivity(activity string, timestamp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
        INSERT INTO activity_log (timestamp, activity) VALUES (?, ?)
    `, timestamp.Unix(), activity)
	if err != nil {
		return errors.New().Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

func (*noopRepository) RecordAlert(_ alert.Event, _ time.Time) error { return nil }

func (*noopRepository) RecordActivity(_ string, _ time.Time) error { return nil }

func (*noopRepository) Close() error { return nil }
