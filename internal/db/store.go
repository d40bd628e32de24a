// Package db persists sessions, messages, health guides and feedback.
package db

import (
	"context"
	"errors"
	"fmt"

	"arogya-intake/internal/config"
	"arogya-intake/pkg"
)

// ErrNotFound is returned when a session or guide does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence contract used by the conversation service.  Each
// call is independent; concurrent writers to the same session are last write
// wins and are serialised by the caller.
type Store interface {
	CreateSession(ctx context.Context, s *pkg.Session) error
	GetSession(ctx context.Context, id string) (*pkg.Session, error)
	UpdateSession(ctx context.Context, id string, u pkg.SessionUpdate) error

	InsertMessage(ctx context.Context, m *pkg.Message) error
	CountMessages(ctx context.Context, sessionID string) (int, error)
	// ListMessages returns the session's messages oldest first.
	ListMessages(ctx context.Context, sessionID string) ([]pkg.Message, error)

	InsertGuide(ctx context.Context, g *pkg.HealthGuide) error
	// GetGuide returns the most recent guide of the session.
	GetGuide(ctx context.Context, sessionID string) (*pkg.HealthGuide, error)

	InsertFeedback(ctx context.Context, f *pkg.Feedback) error

	Close() error
}

// Open connects to the backend selected in cfg and makes sure its schema is
// in place.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	case config.BackendPostgres:
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendMongo:
		return OpenMongo(ctx, cfg.MongoURL, cfg.DBName)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
