package sync

import (
	"errors"
	"fmt"
	"log"

	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/remote"
)

// drainer applies queued local mutations to the remote store
type drainer struct {
	store              LocalStore
	remote             RemoteStore
	maxRejectedRetries int
}

// drain applies pending items in strict enqueue order. The first
// recoverable failure stops the run so a later operation can never reach
// the remote store before an earlier stuck one (fail-fast, at-least-once).
// Items the remote store actively rejected repeatedly are parked as dead
// and skipped over, so one permanently invalid mutation cannot wedge the
// queue forever.
func (d *drainer) drain() error {
	// The head is re-read after every item: a completed create propagates
	// the fresh remote id onto later queued items, and those must drain
	// with the stamped id, not a stale snapshot of the queue.
	for {
		items, err := d.store.PendingQueueItems()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		item := items[0]

		if err := d.applyItem(item); err != nil {
			attempts := item.Attempts + 1
			dead := errors.Is(err, remote.ErrRejected) && attempts >= d.maxRejectedRetries
			if markErr := d.store.MarkQueueItemFailed(item.ID, err.Error(), dead); markErr != nil {
				return markErr
			}
			if dead {
				log.Printf("⚠️ Queue item %d (%s %s) parked as dead after %d rejections: %v",
					item.ID, item.Operation, item.Collection, attempts, err)
				continue
			}
			return fmt.Errorf("queue item %d (%s %s): %w", item.ID, item.Operation, item.Collection, err)
		}
	}
}

// applyItem applies one mutation remotely and finalizes the bookkeeping
// atomically with the item's removal.
func (d *drainer) applyItem(item models.SyncQueueItem) error {
	switch item.Operation {
	case models.OpCreate:
		remoteID, err := d.remote.Create(item.Collection, cleanSnapshot(item.Snapshot))
		if err != nil {
			return err
		}
		return d.store.Tx(func(tx LocalStore) error {
			if err := tx.PropagateRemoteID(item.Collection, item.LocalID, remoteID); err != nil {
				return err
			}
			return tx.DeleteQueueItem(item.ID)
		})

	case models.OpUpdate:
		if item.RemoteID == nil {
			// The create for this entity is still queued behind or was never
			// drained; a remote update would target a document that does not
			// exist yet. Mark the entity synced and rely on the pending
			// create to upload the latest snapshot.
			log.Printf("⏭️ Skipping remote update for %s/%s: not yet created remotely", item.Collection, item.LocalID)
			return d.store.Tx(func(tx LocalStore) error {
				if err := tx.MarkEntitySynced(item.Collection, item.LocalID); err != nil {
					return err
				}
				return tx.DeleteQueueItem(item.ID)
			})
		}
		if err := d.remote.Update(item.Collection, *item.RemoteID, cleanSnapshot(item.Snapshot)); err != nil {
			return err
		}
		return d.store.Tx(func(tx LocalStore) error {
			if err := tx.MarkEntitySynced(item.Collection, item.LocalID); err != nil {
				return err
			}
			return tx.DeleteQueueItem(item.ID)
		})

	case models.OpDelete:
		if item.RemoteID == nil {
			// Nothing was ever created remotely; the delete is already
			// satisfied.
			log.Printf("⏭️ Skipping remote delete for %s/%s: no remote id", item.Collection, item.LocalID)
			return d.store.DeleteQueueItem(item.ID)
		}
		if err := d.remote.Delete(item.Collection, *item.RemoteID); err != nil {
			return err
		}
		return d.store.DeleteQueueItem(item.ID)

	default:
		return fmt.Errorf("%w: unknown operation %q", remote.ErrRejected, item.Operation)
	}
}
