// Package history keeps an audit trail of changes made to the mod manager
// state in a SQLite database.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Kind classifies an event.
type Kind string

// Event kinds.
const (
	KindGameAdded       Kind = "game_added"
	KindGameSelected    Kind = "game_selected"
	KindModEnabled      Kind = "mod_enabled"
	KindModDisabled     Kind = "mod_disabled"
	KindModForgotten    Kind = "mod_forgotten"
	KindModsRefreshed   Kind = "mods_refreshed"
	KindLoaderEnabled   Kind = "loader_enabled"
	KindLoaderDisabled  Kind = "loader_disabled"
	KindCatalogFetched  Kind = "catalog_fetched"
	KindStateMigrated   Kind = "state_migrated"
	KindMessagesShown   Kind = "messages_shown"
	KindStateQuarantine Kind = "state_quarantined"
	KindStateRestored   Kind = "state_restored"
)

// Event is one recorded change.
type Event struct {
	gorm.Model
	Kind   Kind   `gorm:"index"`
	GameID string `gorm:"index"`
	ModID  string
	Detail string
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	GameID string
	Kind   Kind
	// Limit caps the number of events returned, newest first.
	Limit int
}

// Recorder writes and reads events. A nil *Recorder is valid and records
// nothing, which is how a disabled history is represented.
type Recorder struct {
	db *gorm.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	newLogger := gormlogger.New(
		zap.NewStdLog(zap.L()),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(gormlite.Open(path), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}

	zap.S().Debugw("History database opened", zap.String("path", path))
	return &Recorder{db: db}, nil
}

// Record stores ev. Its ID and timestamps are filled in.
func (r *Recorder) Record(ctx context.Context, ev *Event) error {
	if r == nil {
		return nil
	}
	if ev == nil || ev.Kind == "" {
		return errors.New("event kind is required")
	}
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return fmt.Errorf("failed to record %s event: %w", ev.Kind, err)
	}
	return nil
}

// RecordQuietly stores ev and only logs a failure. Callers use it where the
// audit trail must not fail the operation it describes.
func (r *Recorder) RecordQuietly(ctx context.Context, ev *Event) {
	if err := r.Record(ctx, ev); err != nil {
		zap.S().Warnw("Failed to record history event", zap.Error(err))
	}
}

// List returns events matching f, newest first.
func (r *Recorder) List(ctx context.Context, f Filter) ([]Event, error) {
	if r == nil {
		return nil, nil
	}

	q := r.db.WithContext(ctx).Model(&Event{})
	if f.GameID != "" {
		q = q.Where("game_id = ?", f.GameID)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var events []Event
	if err := q.Order("id desc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return events, nil
}

// Close closes the database.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
