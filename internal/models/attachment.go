package models

import "time"

// Attachment is a binary file belonging to an article. The remote storage
// path doubles as the primary key: the path is globally unique, assigned at
// upload time, and the local id space is deliberately the same namespace.
type Attachment struct {
	StoragePath     string    `gorm:"type:varchar(512);primaryKey" json:"storagePath"`
	ArticleRemoteID string    `gorm:"type:varchar(64);not null;index" json:"articleId"`
	Name            string    `gorm:"type:varchar(255)" json:"name"`
	Size            int64     `json:"size"`
	MimeType        string    `gorm:"type:varchar(100)" json:"mimeType"`
	IsDownloaded    bool      `gorm:"not null;default:false;index" json:"isDownloaded"`
	Data            []byte    `gorm:"type:bytea" json:"-"` // cached binary payload
	NeedsUpload     bool      `gorm:"not null;default:false;index" json:"needsUpload"`
	LastError       *string   `gorm:"type:text" json:"lastError,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (Attachment) TableName() string {
	return "kb_attachments"
}
