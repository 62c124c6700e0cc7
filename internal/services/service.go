// Package services implements the application operations behind the HTTP
// layer: optimistic local writes paired with queued sync mutations.
package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeotronix/fieldops/internal/auth"
	"github.com/jeotronix/fieldops/internal/blob"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/store"
)

// ErrNoActor is returned when a mutation arrives without a signed-in
// technician. Reads work anonymously; writes never do.
var ErrNoActor = errors.New("mutation requires a signed-in technician")

// Notifier is the sync engine surface the service needs after enqueueing
type Notifier interface {
	NotifyQueued()
}

// Service executes application operations against the local store. Every
// write succeeds or fails locally; the network is never on the write path.
type Service struct {
	store    *store.Store
	notify   Notifier
	blob     blob.Fetcher
	maxBytes int64
}

// New wires the service. notify may be nil in tests.
func New(st *store.Store, n Notifier, bf blob.Fetcher, maxAttachmentBytes int64) *Service {
	return &Service{store: st, notify: n, blob: bf, maxBytes: maxAttachmentBytes}
}

func (s *Service) notifyQueued() {
	if s.notify != nil {
		s.notify.NotifyQueued()
	}
}

// sanitizeUpdate drops sync bookkeeping from a client-supplied field map.
// GET responses carry localId, remoteId and syncStatus, so a client PUTting
// a modified copy back would otherwise rewrite them; a remote id in
// particular is assigned exactly once and never overwritten. Keys are
// removed in both their JSON and column spellings.
func sanitizeUpdate(fields map[string]interface{}) {
	for _, k := range []string{
		"id",
		"localId", "local_id",
		"remoteId", "remote_id",
		"syncStatus", "sync_status",
		"isPinned", "is_pinned",
		"deletedAt", "deleted_at",
		"createdAt", "created_at",
		"updatedAt", "updated_at",
	} {
		delete(fields, k)
	}
}

func requireActor(actor *auth.Actor) error {
	if actor == nil || actor.ID == "" {
		return ErrNoActor
	}
	return nil
}

// snapshot captures the entity state at enqueue time. The queue item keeps
// this copy even if the row changes again later.
func snapshot(entity interface{}) (models.JSONB, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("snapshot entity: %w", err)
	}
	var m models.JSONB
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot entity: %w", err)
	}
	return m, nil
}
