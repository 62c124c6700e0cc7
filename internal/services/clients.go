package services

import (
	"fmt"

	"github.com/jeotronix/fieldops/internal/auth"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/store"
)

func validateClientType(t string) error {
	switch t {
	case models.ClientTypeCorporate, models.ClientTypeResidential, models.ClientTypeGov:
		return nil
	}
	return fmt.Errorf("unknown client type %q", t)
}

// AddClient stores a new client locally and queues its upload
func (s *Service) AddClient(actor *auth.Actor, c *models.Client) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	if c.Name == "" {
		return "", fmt.Errorf("client name is required")
	}
	if err := validateClientType(c.Type); err != nil {
		return "", err
	}

	c.LocalID = ""
	c.RemoteID = nil
	c.SyncStatus = models.SyncStatusPendingCreate

	var localID string
	err := s.store.Tx(func(tx *store.Store) error {
		id, err := tx.InsertClient(c)
		if err != nil {
			return err
		}
		localID = id

		snap, err := snapshot(c)
		if err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionClients,
			LocalID:    localID,
			Operation:  models.OpCreate,
			Snapshot:   snap,
		})
	})
	if err != nil {
		return "", err
	}

	s.notifyQueued()
	return localID, nil
}

// GetClient returns one client by local id
func (s *Service) GetClient(localID string) (*models.Client, error) {
	return s.store.GetClient(localID)
}

// ListClients returns all clients ordered by name
func (s *Service) ListClients() ([]models.Client, error) {
	return s.store.ListClients()
}

// UpdateClient merges fields into a client and queues the change
func (s *Service) UpdateClient(actor *auth.Actor, localID string, fields map[string]interface{}) (*models.Client, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sanitizeUpdate(fields)
	if t, ok := fields["type"].(string); ok {
		if err := validateClientType(t); err != nil {
			return nil, err
		}
	}

	var updated *models.Client
	err := s.store.Tx(func(tx *store.Store) error {
		current, err := tx.GetClient(localID)
		if err != nil {
			return err
		}

		if current.SyncStatus != models.SyncStatusPendingCreate {
			fields["sync_status"] = models.SyncStatusPendingUpdate
		}
		if err := tx.UpdateClient(localID, fields); err != nil {
			return err
		}

		updated, err = tx.GetClient(localID)
		if err != nil {
			return err
		}

		snap, err := snapshot(updated)
		if err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionClients,
			LocalID:    localID,
			RemoteID:   updated.RemoteID,
			Operation:  models.OpUpdate,
			Snapshot:   snap,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyQueued()
	return updated, nil
}

// DeleteClient removes a client locally and queues the remote delete
func (s *Service) DeleteClient(actor *auth.Actor, localID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	err := s.store.Tx(func(tx *store.Store) error {
		current, err := tx.GetClient(localID)
		if err != nil {
			return err
		}
		if err := tx.DeleteClient(localID); err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionClients,
			LocalID:    localID,
			RemoteID:   current.RemoteID,
			Operation:  models.OpDelete,
		})
	})
	if err != nil {
		return err
	}

	s.notifyQueued()
	return nil
}
