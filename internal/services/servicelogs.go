package services

import (
	"time"

	"github.com/jeotronix/fieldops/internal/auth"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/store"
)

// AddServiceLog records a new visit locally and queues its upload. The
// technician identity is stamped from the actor and never re-resolved.
func (s *Service) AddServiceLog(actor *auth.Actor, l *models.ServiceLog) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	if err := l.ValidatePayload(); err != nil {
		return "", err
	}

	l.LocalID = ""
	l.RemoteID = nil
	l.TechnicianID = actor.ID
	l.TechnicianName = actor.Name
	l.SyncStatus = models.SyncStatusPendingCreate
	if l.ServiceDate.IsZero() {
		l.ServiceDate = time.Now().UTC()
	}
	if l.Status == "" {
		l.Status = models.LogStatusPending
	}

	var localID string
	err := s.store.Tx(func(tx *store.Store) error {
		id, err := tx.InsertServiceLog(l)
		if err != nil {
			return err
		}
		localID = id

		snap, err := snapshot(l)
		if err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionServiceLogs,
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

// GetServiceLog returns one log by local id
func (s *Service) GetServiceLog(localID string) (*models.ServiceLog, error) {
	return s.store.GetServiceLog(localID)
}

// ListServiceLogs returns logs newest-first, optionally filtered
func (s *Service) ListServiceLogs(f store.ServiceLogFilter) ([]models.ServiceLog, error) {
	return s.store.ListServiceLogs(f)
}

// UpdateServiceLog merges fields into a log and queues the change. A log
// still awaiting its create keeps that status; the queued create will carry
// an older snapshot and the queued update the fresh one.
func (s *Service) UpdateServiceLog(actor *auth.Actor, localID string, fields map[string]interface{}) (*models.ServiceLog, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sanitizeUpdate(fields)

	var updated *models.ServiceLog
	err := s.store.Tx(func(tx *store.Store) error {
		current, err := tx.GetServiceLog(localID)
		if err != nil {
			return err
		}

		if current.SyncStatus != models.SyncStatusPendingCreate {
			fields["sync_status"] = models.SyncStatusPendingUpdate
		}
		if err := tx.UpdateServiceLog(localID, fields); err != nil {
			return err
		}

		updated, err = tx.GetServiceLog(localID)
		if err != nil {
			return err
		}
		if err := updated.ValidatePayload(); err != nil {
			return err
		}

		snap, err := snapshot(updated)
		if err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionServiceLogs,
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

// DeleteServiceLog removes a log locally and queues the remote delete
func (s *Service) DeleteServiceLog(actor *auth.Actor, localID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	err := s.store.Tx(func(tx *store.Store) error {
		current, err := tx.GetServiceLog(localID)
		if err != nil {
			return err
		}
		if err := tx.DeleteServiceLog(localID); err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionServiceLogs,
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
