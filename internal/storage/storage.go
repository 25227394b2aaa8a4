// Package storage is the optional persistence layer: an audit trail of
// operator actions (schedule, cancel). Scheduling state itself is never
// persisted locally; the board is the source of truth.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "sessionbot/pkg/logx"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// AuditEntry records one operator action.
// Keep it compact and schema-stable.
type AuditEntry struct {
	At            time.Time
	ActorID       int64
	ActorUsername string
	ChatID        int64
	Action        string // "schedule", "cancel"
	Target        string // card title or cancel query
	OK            bool
	Error         string
	TookMS        int64
}

// Store is the minimal persistence API used by the plugins.
type Store interface {
	AppendAudit(ctx context.Context, e AuditEntry) error
	// PruneAudit deletes audit rows older than the cutoff and reports how
	// many were removed.
	PruneAudit(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
