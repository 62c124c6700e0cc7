package store

import (
	"fmt"
	"time"

	"github.com/jeotronix/fieldops/internal/models"
	"gorm.io/gorm"
)

// Enqueue appends a mutation to the sync queue. Items are never coalesced:
// a later operation on the same entity goes behind the earlier one.
func (s *Store) Enqueue(item *models.SyncQueueItem) error {
	if item.EnqueuedAt.IsZero() {
		item.EnqueuedAt = time.Now().UTC()
	}
	item.Status = models.QueueStatusPending
	if err := s.db.Create(item).Error; err != nil {
		return wrapErr("enqueue", err)
	}
	return nil
}

// PendingQueueItems returns drainable items in strict enqueue order
func (s *Store) PendingQueueItems() ([]models.SyncQueueItem, error) {
	var items []models.SyncQueueItem
	err := s.db.Where("status = ?", models.QueueStatusPending).
		Order("enqueued_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, wrapErr("read queue", err)
	}
	return items, nil
}

// DeleteQueueItem removes a completed item
func (s *Store) DeleteQueueItem(id uint) error {
	if err := s.db.Delete(&models.SyncQueueItem{}, "id = ?", id).Error; err != nil {
		return wrapErr("delete queue item", err)
	}
	return nil
}

// MarkQueueItemFailed bumps the attempt counter and records the error.
// With dead=true the item is parked and no longer drained.
func (s *Store) MarkQueueItemFailed(id uint, errMsg string, dead bool) error {
	fields := map[string]interface{}{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": errMsg,
	}
	if dead {
		fields["status"] = models.QueueStatusDead
	}
	res := s.db.Model(&models.SyncQueueItem{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return wrapErr("mark queue item failed", res.Error)
	}
	return nil
}

// PendingQueueCount returns the number of drainable items
func (s *Store) PendingQueueCount() (int64, error) {
	var n int64
	err := s.db.Model(&models.SyncQueueItem{}).Where("status = ?", models.QueueStatusPending).Count(&n).Error
	if err != nil {
		return 0, wrapErr("count queue", err)
	}
	return n, nil
}

// DeadQueueItems returns parked items for inspection and manual retry
func (s *Store) DeadQueueItems() ([]models.SyncQueueItem, error) {
	var items []models.SyncQueueItem
	err := s.db.Where("status = ?", models.QueueStatusDead).Order("enqueued_at ASC").Find(&items).Error
	if err != nil {
		return nil, wrapErr("read dead queue", err)
	}
	return items, nil
}

// DeadQueueCount returns the number of parked items
func (s *Store) DeadQueueCount() (int64, error) {
	var n int64
	err := s.db.Model(&models.SyncQueueItem{}).Where("status = ?", models.QueueStatusDead).Count(&n).Error
	if err != nil {
		return 0, wrapErr("count dead queue", err)
	}
	return n, nil
}

// ReviveQueueItem puts a dead item back into the drainable queue
func (s *Store) ReviveQueueItem(id uint) error {
	res := s.db.Model(&models.SyncQueueItem{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":   models.QueueStatusPending,
		"attempts": 0,
	})
	if res.Error != nil {
		return wrapErr("revive queue item", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("revive queue item", ErrNotFound)
	}
	return nil
}

// MarkEntitySynced flips the owning entity's sync status after a queue item
// completed. A missing row is not an error: the entity may have been deleted
// locally while its earlier operations were still queued.
func (s *Store) MarkEntitySynced(collection, localID string) error {
	fields := map[string]interface{}{"sync_status": models.SyncStatusSynced}
	var err error
	switch collection {
	case CollectionServiceLogs:
		err = s.db.Model(&models.ServiceLog{}).Where("local_id = ?", localID).Updates(fields).Error
	case CollectionClients:
		err = s.db.Model(&models.Client{}).Where("local_id = ?", localID).Updates(fields).Error
	case CollectionArticles:
		err = s.db.Model(&models.Article{}).Where("local_id = ?", localID).Updates(fields).Error
	default:
		return fmt.Errorf("mark synced: unknown collection %q", collection)
	}
	return wrapErr("mark synced", err)
}

// PropagateRemoteID stamps a freshly assigned remote id onto the entity and
// onto every still-queued later item for the same entity, so queued updates
// and deletes target the right remote document.
func (s *Store) PropagateRemoteID(collection, localID, remoteID string) error {
	fields := map[string]interface{}{
		"remote_id":   remoteID,
		"sync_status": models.SyncStatusSynced,
	}
	var err error
	switch collection {
	case CollectionServiceLogs:
		err = s.db.Model(&models.ServiceLog{}).Where("local_id = ?", localID).Updates(fields).Error
	case CollectionClients:
		err = s.db.Model(&models.Client{}).Where("local_id = ?", localID).Updates(fields).Error
	case CollectionArticles:
		err = s.db.Model(&models.Article{}).Where("local_id = ?", localID).Updates(fields).Error
	default:
		return fmt.Errorf("propagate remote id: unknown collection %q", collection)
	}
	if err != nil {
		return wrapErr("propagate remote id", err)
	}

	err = s.db.Model(&models.SyncQueueItem{}).
		Where("collection = ? AND local_id = ? AND remote_id IS NULL", collection, localID).
		Update("remote_id", remoteID).Error
	return wrapErr("propagate remote id", err)
}
