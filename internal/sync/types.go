// Package sync implements the offline-first reconciliation engine: the
// durable outbound mutation queue, the cursor-based inbound delta pull and
// the orchestrator that coordinates both against an unreliable network.
package sync

import (
	"time"

	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/remote"
	"github.com/jeotronix/fieldops/internal/search"
	"github.com/jeotronix/fieldops/internal/store"
)

// LocalStore is the slice of the Local Store the sync engine needs.
// *store.Store satisfies it through WrapStore; tests use in-memory fakes.
type LocalStore interface {
	search.IndexStore

	// Tx runs fn in one transaction over the same store
	Tx(fn func(tx LocalStore) error) error

	// outbound queue
	PendingQueueItems() ([]models.SyncQueueItem, error)
	DeleteQueueItem(id uint) error
	MarkQueueItemFailed(id uint, errMsg string, dead bool) error
	PendingQueueCount() (int64, error)
	DeadQueueCount() (int64, error)
	MarkEntitySynced(collection, localID string) error
	PropagateRemoteID(collection, localID, remoteID string) error

	// inbound pull
	Checkpoint(collection string) (time.Time, error)
	SetCheckpoint(collection string, cursor time.Time) error
	UpsertClientFromRemote(c models.Client) error
	UpsertServiceLogFromRemote(l models.ServiceLog) error
	UpsertArticleFromRemote(a models.Article) (*models.Article, error)
	EnsureAttachmentMeta(a models.Attachment) error
	AttachmentsToDownload(articleRemoteID string) ([]models.Attachment, error)
	MarkAttachmentDownloaded(storagePath string, data []byte) error
	MarkAttachmentFailed(storagePath, msg string) error
}

// RemoteStore is the consumed remote document store. *remote.Client
// satisfies it.
type RemoteStore interface {
	Authenticate() (int, error)
	Create(collection string, values map[string]interface{}) (string, error)
	Update(collection, id string, values map[string]interface{}) error
	Delete(collection, id string) error
	ChangedSince(collection string, since time.Time, limit int) ([]remote.Document, error)
}

// Status is the reactive sync state exposed to the UI layer
type Status struct {
	Online       bool       `json:"online"`
	Syncing      bool       `json:"syncing"`
	PendingCount int64      `json:"pendingCount"`
	DeadCount    int64      `json:"deadCount"`
	LastSync     *time.Time `json:"lastSync,omitempty"`
}

// storeAdapter bridges the concrete *store.Store transaction signature onto
// the LocalStore interface.
type storeAdapter struct {
	*store.Store
}

// Tx runs fn in one transaction, re-wrapping the tx-bound store
func (a storeAdapter) Tx(fn func(tx LocalStore) error) error {
	return a.Store.Tx(func(tx *store.Store) error {
		return fn(storeAdapter{tx})
	})
}

// WrapStore adapts the Local Store for the sync engine
func WrapStore(s *store.Store) LocalStore {
	return storeAdapter{s}
}
