package sync

import (
	"fmt"
	"log"
	"time"

	"github.com/jeotronix/fieldops/internal/blob"
	"github.com/jeotronix/fieldops/internal/remote"
	"github.com/jeotronix/fieldops/internal/search"
	"github.com/jeotronix/fieldops/internal/store"
)

// Collections pulled, in dependency order: clients first so service logs
// can reference them, articles last.
var pullOrder = []string{
	store.CollectionClients,
	store.CollectionServiceLogs,
	store.CollectionArticles,
}

// puller performs incremental inbound replication from the remote store
type puller struct {
	store    LocalStore
	remote   RemoteStore
	blob     blob.Fetcher
	pageSize int
	maxPages int
	skew     time.Duration // clock-drift buffer subtracted from the cursor
	maxBytes int64         // attachment download ceiling

	// background runs fire-and-forget work (attachment downloads); tests
	// replace it with a synchronous call.
	background func(fn func())
}

func newPuller(st LocalStore, rs RemoteStore, bf blob.Fetcher, pageSize, maxPages int, skew time.Duration, maxBytes int64) *puller {
	return &puller{
		store:      st,
		remote:     rs,
		blob:       bf,
		pageSize:   pageSize,
		maxPages:   maxPages,
		skew:       skew,
		maxBytes:   maxBytes,
		background: func(fn func()) { go fn() },
	}
}

// pullAll brings every collection up to date. The first failure aborts the
// remaining work of this call; cursors already advanced stay advanced, so
// the next call resumes without losing or re-processing committed pages.
func (p *puller) pullAll() error {
	for _, collection := range pullOrder {
		if err := p.pullCollection(collection); err != nil {
			return fmt.Errorf("pull %s: %w", collection, err)
		}
	}
	return nil
}

// pullCollection pages through remote changes since the persisted cursor.
// The skew buffer is subtracted once per call to tolerate client/server
// clock drift; the resulting re-upserts of recently seen documents are
// harmless. Each page commits its upserts and its cursor advance in one
// transaction, so a crash mid-pull resumes from the last fully processed
// page.
func (p *puller) pullCollection(collection string) error {
	cursor, err := p.store.Checkpoint(collection)
	if err != nil {
		return err
	}
	since := cursor
	if !since.IsZero() {
		since = since.Add(-p.skew)
	}

	for page := 0; page < p.maxPages; page++ {
		docs, err := p.remote.ChangedSince(collection, since, p.pageSize)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}

		maxUpdated := since
		var critical []string

		err = p.store.Tx(func(tx LocalStore) error {
			for _, doc := range docs {
				crit, err := p.upsertDocument(tx, collection, doc)
				if err != nil {
					return err
				}
				if crit {
					critical = append(critical, doc.ID)
				}
				if doc.UpdatedAt.After(maxUpdated) {
					maxUpdated = doc.UpdatedAt
				}
			}
			// Advance to the page's max updated_at, never to "now"
			return tx.SetCheckpoint(collection, maxUpdated)
		})
		if err != nil {
			return err
		}

		// Only after the page committed: schedule critical attachment
		// downloads. Their failure must not abort the pull.
		for _, articleID := range critical {
			p.scheduleAttachmentDownloads(articleID)
		}

		if len(docs) < p.pageSize {
			return nil
		}
		since = maxUpdated
	}

	log.Printf("⚠️ Pull for %s hit the %d page safety cap, resuming next cycle", collection, p.maxPages)
	return nil
}

// upsertDocument incorporates one remote document inside the page
// transaction. Returns whether the document is a critical article whose
// attachments should be prefetched.
func (p *puller) upsertDocument(tx LocalStore, collection string, doc remote.Document) (bool, error) {
	switch collection {
	case store.CollectionClients:
		c, err := clientFromDocument(doc)
		if err != nil {
			return false, err
		}
		return false, tx.UpsertClientFromRemote(c)

	case store.CollectionServiceLogs:
		l, err := serviceLogFromDocument(doc)
		if err != nil {
			return false, err
		}
		return false, tx.UpsertServiceLogFromRemote(l)

	case store.CollectionArticles:
		a, atts, err := articleFromDocument(doc)
		if err != nil {
			return false, err
		}
		stored, err := tx.UpsertArticleFromRemote(a)
		if err != nil {
			return false, err
		}
		for _, att := range atts {
			if err := tx.EnsureAttachmentMeta(att); err != nil {
				return false, err
			}
		}
		// A pulled soft-delete must stop matching immediately; everything
		// else gets the remove-then-add reindex of the fresh content.
		if stored.Deleted() {
			if err := search.NewEngine(tx).Remove(*stored.RemoteID); err != nil {
				return false, err
			}
			return false, nil
		}
		if err := search.NewEngine(tx).Index(stored); err != nil {
			return false, err
		}
		return stored.IsCritical, nil

	default:
		return false, fmt.Errorf("unknown collection %q", collection)
	}
}

// scheduleAttachmentDownloads fires background fetches for every uncached
// attachment of an article. Failures land on the attachment row.
func (p *puller) scheduleAttachmentDownloads(articleRemoteID string) {
	atts, err := p.store.AttachmentsToDownload(articleRemoteID)
	if err != nil {
		log.Printf("⚠️ Could not list attachments for %s: %v", articleRemoteID, err)
		return
	}
	for _, att := range atts {
		att := att
		p.background(func() {
			p.downloadAttachment(att.StoragePath)
		})
	}
}

// downloadAttachment fetches one binary and records the outcome on the
// attachment row. A failed or oversized download leaves the metadata
// intact and retryable.
func (p *puller) downloadAttachment(storagePath string) {
	data, err := p.blob.Fetch(storagePath, p.maxBytes)
	if err != nil {
		log.Printf("⚠️ Attachment download failed for %s: %v", storagePath, err)
		if markErr := p.store.MarkAttachmentFailed(storagePath, err.Error()); markErr != nil {
			log.Printf("⚠️ Could not record attachment failure for %s: %v", storagePath, markErr)
		}
		return
	}
	if err := p.store.MarkAttachmentDownloaded(storagePath, data); err != nil {
		log.Printf("⚠️ Could not store attachment %s: %v", storagePath, err)
	}
}
