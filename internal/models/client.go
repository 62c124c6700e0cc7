package models

import "time"

// Client types
const (
	ClientTypeCorporate   = "corporate"
	ClientTypeResidential = "residential"
	ClientTypeGov         = "gov"
)

// Client represents a serviced customer site
type Client struct {
	LocalID       string    `gorm:"type:varchar(36);primaryKey" json:"localId"`
	RemoteID      *string   `gorm:"type:varchar(64);uniqueIndex" json:"remoteId,omitempty"`
	Name          string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Type          string    `gorm:"type:varchar(20);not null" json:"type"` // corporate, residential, gov
	Location      string    `gorm:"type:varchar(255)" json:"location"`
	ContactPerson string    `gorm:"type:varchar(255)" json:"contactPerson"`
	SyncStatus    string    `gorm:"type:varchar(20);not null;default:'synced';index" json:"syncStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (Client) TableName() string {
	return "clients"
}
