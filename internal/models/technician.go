package models

import "time"

// Technician is a local login account. Sync operations only consume the
// id + display name pair as the current actor.
type Technician struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	DisplayName  string    `gorm:"type:varchar(255);not null" json:"displayName"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name
func (Technician) TableName() string {
	return "technicians"
}
