package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Sync statuses shared by all locally mutated entities
const (
	SyncStatusSynced        = "synced"
	SyncStatusPendingCreate = "pending_create"
	SyncStatusPendingUpdate = "pending_update"
	SyncStatusPendingDelete = "pending_delete"
)

// Service log statuses
const (
	LogStatusDraft     = "draft"
	LogStatusPending   = "pending"
	LogStatusCompleted = "completed"
	LogStatusCancelled = "cancelled"
)

// Job types selecting the polymorphic payload
const (
	JobTypeICT   = "ict"
	JobTypeSolar = "solar"
)

// ICTData is the job payload for ICT interventions
type ICTData struct {
	NetworkType      string  `json:"networkType,omitempty"` // fiber, lte, vsat, lan
	SignalStrength   float64 `json:"signalStrength,omitempty"`
	HardwareReplaced string  `json:"hardwareReplaced,omitempty"`
	IssueCategory    string  `json:"issueCategory,omitempty"` // hardware, software, network, power
}

// Scan implements sql.Scanner interface
func (d *ICTData) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal ICTData value: %v", value)
	}
	return json.Unmarshal(bytes, d)
}

// Value implements driver.Valuer interface
func (d ICTData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// SolarData is the job payload for solar interventions
type SolarData struct {
	SystemVoltage  float64 `json:"systemVoltage,omitempty"`
	BatteryHealth  float64 `json:"batteryHealth,omitempty"`
	InverterStatus string  `json:"inverterStatus,omitempty"` // normal, warning, fault, off
	PanelsCleaned  bool    `json:"panelsCleaned,omitempty"`
}

// Scan implements sql.Scanner interface
func (d *SolarData) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to unmarshal SolarData value: %v", value)
	}
	return json.Unmarshal(bytes, d)
}

// Value implements driver.Valuer interface
func (d SolarData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// ServiceLog represents a recorded client visit.
// Technician identity is a snapshot taken at creation time and never
// re-resolved afterwards.
type ServiceLog struct {
	LocalID         string     `gorm:"type:varchar(36);primaryKey" json:"localId"`
	RemoteID        *string    `gorm:"type:varchar(64);uniqueIndex" json:"remoteId,omitempty"`
	ClientID        string     `gorm:"type:varchar(64);index" json:"clientId"` // Client.RemoteID
	ClientName      string     `gorm:"type:varchar(255)" json:"clientName"`
	TechnicianID    string     `gorm:"type:varchar(64);index" json:"technicianId"`
	TechnicianName  string     `gorm:"type:varchar(255)" json:"technicianName"`
	ServiceDate     time.Time  `gorm:"not null;index" json:"serviceDate"`
	DurationMinutes int        `json:"durationMinutes"`
	Description     string     `gorm:"type:text" json:"description"`
	Status          string     `gorm:"type:varchar(20);not null;index" json:"status"`
	JobType         string     `gorm:"type:varchar(10);not null;index" json:"jobType"`
	ICTData         *ICTData   `gorm:"type:jsonb" json:"ictData,omitempty"`
	SolarData       *SolarData `gorm:"type:jsonb" json:"solarData,omitempty"`
	SyncStatus      string     `gorm:"type:varchar(20);not null;index" json:"syncStatus"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// TableName specifies the table name
func (ServiceLog) TableName() string {
	return "service_logs"
}

// ValidatePayload enforces the job payload union: exactly the variant
// selected by JobType must be present.
func (l *ServiceLog) ValidatePayload() error {
	switch l.JobType {
	case JobTypeICT:
		if l.ICTData == nil {
			return fmt.Errorf("job type %q requires ictData", l.JobType)
		}
		if l.SolarData != nil {
			return fmt.Errorf("job type %q must not carry solarData", l.JobType)
		}
	case JobTypeSolar:
		if l.SolarData == nil {
			return fmt.Errorf("job type %q requires solarData", l.JobType)
		}
		if l.ICTData != nil {
			return fmt.Errorf("job type %q must not carry ictData", l.JobType)
		}
	default:
		return fmt.Errorf("unknown job type %q", l.JobType)
	}
	return nil
}
