package models

import (
	"time"

	"gorm.io/datatypes"
)

// Article categories
const (
	CategoryICT     = "ict"
	CategorySolar   = "solar"
	CategoryGeneral = "general"
)

// Article is a knowledge-base entry. DeletedAt is a soft-delete marker set
// by the remote store; the row stays in the local database but is excluded
// from listings and search. IsPinned is local-only state and never synced.
type Article struct {
	LocalID     string                      `gorm:"type:varchar(36);primaryKey" json:"localId"`
	RemoteID    *string                     `gorm:"type:varchar(64);uniqueIndex" json:"remoteId,omitempty"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Category    string                      `gorm:"type:varchar(20);not null;index" json:"category"`
	Content     string                      `gorm:"type:text" json:"content"` // Markdown
	Tags        datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	Version     int                         `json:"version"` // server-assigned, monotonic
	LastUpdated time.Time                   `gorm:"index" json:"lastUpdated"` // server timestamp, pull cursor field
	DeletedAt   *time.Time                  `gorm:"index" json:"deletedAt,omitempty"`
	IsPinned    bool                        `gorm:"not null;default:false" json:"isPinned"`
	IsCritical  bool                        `gorm:"not null;default:false" json:"isCritical"`
	SyncStatus  string                      `gorm:"type:varchar(20);not null;default:'synced';index" json:"syncStatus"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name
func (Article) TableName() string {
	return "kb_articles"
}

// Deleted reports whether the article is soft-deleted
func (a *Article) Deleted() bool {
	return a.DeletedAt != nil
}
