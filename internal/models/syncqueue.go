package models

import "time"

// Queue operations
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Queue item statuses. There is no terminal "failed" state: a failed item
// stays pending and is retried on the next drain. Items the remote store
// actively rejected too many times are parked as dead so they cannot wedge
// the queue forever.
const (
	QueueStatusPending = "pending"
	QueueStatusDead    = "dead"
)

// SyncQueueItem is one pending local mutation. Items are append-only: a
// later operation on the same entity is a new item behind the earlier one,
// never a rewrite, so drain replays the user's changes in order.
type SyncQueueItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Collection string    `gorm:"type:varchar(50);not null;index" json:"collection"`
	LocalID    string    `gorm:"type:varchar(36);not null;index" json:"localId"`
	RemoteID   *string   `gorm:"type:varchar(64)" json:"remoteId,omitempty"`
	Operation  string    `gorm:"type:varchar(20);not null" json:"operation"`
	Snapshot   JSONB     `gorm:"type:jsonb" json:"snapshot"` // entity data at enqueue time
	Status     string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Attempts   int       `gorm:"default:0" json:"attempts"`
	LastError  *string   `gorm:"type:text" json:"lastError,omitempty"`
	EnqueuedAt time.Time `gorm:"not null;index" json:"enqueuedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (SyncQueueItem) TableName() string {
	return "sync_queue"
}

// SyncCheckpoint persists the delta-pull cursor per remote collection.
// It lives in the same transactional store as the data it gates so a page
// upsert and its cursor advance commit atomically.
type SyncCheckpoint struct {
	Collection string    `gorm:"type:varchar(50);primaryKey" json:"collection"`
	Cursor     time.Time `gorm:"not null" json:"cursor"` // max updated_at fully incorporated
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (SyncCheckpoint) TableName() string {
	return "sync_checkpoints"
}
