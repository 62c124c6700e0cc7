package store

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jeotronix/fieldops/internal/models"
	"gorm.io/gorm"
)

// ServiceLogFilter narrows a service log listing. Zero values mean "any".
type ServiceLogFilter struct {
	Status   string
	JobType  string
	ClientID string // Client.RemoteID
	From     time.Time
	To       time.Time
	Search   string // matched against description and client name
}

// InsertServiceLog assigns a fresh local id and stores the log
func (s *Store) InsertServiceLog(l *models.ServiceLog) (string, error) {
	if l.LocalID == "" {
		l.LocalID = uuid.NewString()
	}
	if err := s.db.Create(l).Error; err != nil {
		return "", wrapErr("insert service log", err)
	}
	return l.LocalID, nil
}

// GetServiceLog looks up a log by local id
func (s *Store) GetServiceLog(localID string) (*models.ServiceLog, error) {
	var l models.ServiceLog
	if err := s.db.First(&l, "local_id = ?", localID).Error; err != nil {
		return nil, wrapErr("get service log", err)
	}
	return &l, nil
}

// UpdateServiceLog merges the given fields into an existing log
func (s *Store) UpdateServiceLog(localID string, fields map[string]interface{}) error {
	res := s.db.Model(&models.ServiceLog{}).Where("local_id = ?", localID).Updates(fields)
	if res.Error != nil {
		return wrapErr("update service log", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("update service log", ErrNotFound)
	}
	return nil
}

// DeleteServiceLog removes a log immediately and unconditionally
func (s *Store) DeleteServiceLog(localID string) error {
	if err := s.db.Delete(&models.ServiceLog{}, "local_id = ?", localID).Error; err != nil {
		return wrapErr("delete service log", err)
	}
	return nil
}

// ListServiceLogs returns logs newest-first. The dataset is small (hundreds
// to low thousands of rows), so composite criteria are applied in memory
// after the indexed date ordering.
func (s *Store) ListServiceLogs(f ServiceLogFilter) ([]models.ServiceLog, error) {
	q := s.db.Order("service_date DESC")
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}

	var logs []models.ServiceLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, wrapErr("list service logs", err)
	}

	search := strings.ToLower(f.Search)
	out := logs[:0]
	for _, l := range logs {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.JobType != "" && l.JobType != f.JobType {
			continue
		}
		if !f.From.IsZero() && l.ServiceDate.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && l.ServiceDate.After(f.To) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(l.Description), search) &&
			!strings.Contains(strings.ToLower(l.ClientName), search) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// UpsertServiceLogFromRemote incorporates a pulled log document, matched by
// remote id so a locally created row that has since synced is never
// duplicated.
func (s *Store) UpsertServiceLogFromRemote(l models.ServiceLog) error {
	l.SyncStatus = models.SyncStatusSynced

	var existing models.ServiceLog
	err := s.db.First(&existing, "remote_id = ?", l.RemoteID).Error
	if err == nil {
		return s.UpdateServiceLog(existing.LocalID, map[string]interface{}{
			"client_id":        l.ClientID,
			"client_name":      l.ClientName,
			"technician_id":    l.TechnicianID,
			"technician_name":  l.TechnicianName,
			"service_date":     l.ServiceDate,
			"duration_minutes": l.DurationMinutes,
			"description":      l.Description,
			"status":           l.Status,
			"job_type":         l.JobType,
			"ict_data":         l.ICTData,
			"solar_data":       l.SolarData,
			"sync_status":      models.SyncStatusSynced,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapErr("upsert service log", err)
	}
	_, err = s.InsertServiceLog(&l)
	return err
}
