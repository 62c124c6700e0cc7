package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jeotronix/fieldops/internal/models"
	"gorm.io/gorm"
)

// InsertClient assigns a fresh local id and stores the client
func (s *Store) InsertClient(c *models.Client) (string, error) {
	if c.LocalID == "" {
		c.LocalID = uuid.NewString()
	}
	if err := s.db.Create(c).Error; err != nil {
		return "", wrapErr("insert client", err)
	}
	return c.LocalID, nil
}

// GetClient looks up a client by local id
func (s *Store) GetClient(localID string) (*models.Client, error) {
	var c models.Client
	if err := s.db.First(&c, "local_id = ?", localID).Error; err != nil {
		return nil, wrapErr("get client", err)
	}
	return &c, nil
}

// UpdateClient merges the given fields into an existing client
func (s *Store) UpdateClient(localID string, fields map[string]interface{}) error {
	res := s.db.Model(&models.Client{}).Where("local_id = ?", localID).Updates(fields)
	if res.Error != nil {
		return wrapErr("update client", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("update client", ErrNotFound)
	}
	return nil
}

// DeleteClient removes a client immediately and unconditionally
func (s *Store) DeleteClient(localID string) error {
	if err := s.db.Delete(&models.Client{}, "local_id = ?", localID).Error; err != nil {
		return wrapErr("delete client", err)
	}
	return nil
}

// ListClients returns all clients ordered by name
func (s *Store) ListClients() ([]models.Client, error) {
	var clients []models.Client
	if err := s.db.Order("name ASC").Find(&clients).Error; err != nil {
		return nil, wrapErr("list clients", err)
	}
	return clients, nil
}

// UpsertClientFromRemote incorporates a pulled client document: match by
// remote id, create if absent, overwrite mutable fields if present. Pulled
// rows are synced by definition.
func (s *Store) UpsertClientFromRemote(c models.Client) error {
	c.SyncStatus = models.SyncStatusSynced

	var existing models.Client
	err := s.db.First(&existing, "remote_id = ?", c.RemoteID).Error
	if err == nil {
		return s.UpdateClient(existing.LocalID, map[string]interface{}{
			"name":           c.Name,
			"type":           c.Type,
			"location":       c.Location,
			"contact_person": c.ContactPerson,
			"sync_status":    models.SyncStatusSynced,
			"updated_at":     time.Now().UTC(),
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapErr("upsert client", err)
	}
	_, err = s.InsertClient(&c)
	return err
}
