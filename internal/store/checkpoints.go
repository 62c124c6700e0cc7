package store

import (
	"errors"
	"time"

	"github.com/jeotronix/fieldops/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Checkpoint returns the delta-pull cursor for a collection, or the zero
// time when the collection has never been pulled.
func (s *Store) Checkpoint(collection string) (time.Time, error) {
	var cp models.SyncCheckpoint
	err := s.db.First(&cp, "collection = ?", collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, wrapErr("read checkpoint", err)
	}
	return cp.Cursor, nil
}

// SetCheckpoint advances the cursor. Called inside the same transaction as
// the page upsert it gates so the two can never diverge on crash.
func (s *Store) SetCheckpoint(collection string, cursor time.Time) error {
	cp := models.SyncCheckpoint{Collection: collection, Cursor: cursor}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}},
		UpdateAll: true,
	}).Create(&cp).Error
	return wrapErr("set checkpoint", err)
}
