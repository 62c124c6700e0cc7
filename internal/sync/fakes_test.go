package sync

import (
	"fmt"
	"time"

	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/remote"
	"github.com/jeotronix/fieldops/internal/store"
)

// fakeStore is an in-memory LocalStore. Tx runs the callback directly; the
// drain and pull logic under test never relies on rollback.
type fakeStore struct {
	queue  []models.SyncQueueItem
	nextID uint

	clients  map[string]models.Client     // by remote id
	logs     map[string]models.ServiceLog // by remote id
	articles map[string]*models.Article   // by remote id

	checkpoints map[string]time.Time
	attachments map[string]*models.Attachment

	entries map[string]models.ScoreMap

	syncedEntities    []string // "collection/localID"
	propagated        []string // "collection/localID=remoteID"
	deletedQueueItems []uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:      1,
		clients:     make(map[string]models.Client),
		logs:        make(map[string]models.ServiceLog),
		articles:    make(map[string]*models.Article),
		checkpoints: make(map[string]time.Time),
		attachments: make(map[string]*models.Attachment),
		entries:     make(map[string]models.ScoreMap),
	}
}

func (f *fakeStore) Tx(fn func(tx LocalStore) error) error { return fn(f) }

func (f *fakeStore) enqueue(collection, localID string, remoteID *string, op string, snapshot models.JSONB) uint {
	id := f.nextID
	f.nextID++
	f.queue = append(f.queue, models.SyncQueueItem{
		ID:         id,
		Collection: collection,
		LocalID:    localID,
		RemoteID:   remoteID,
		Operation:  op,
		Snapshot:   snapshot,
		Status:     models.QueueStatusPending,
		EnqueuedAt: time.Now().Add(time.Duration(id) * time.Millisecond),
	})
	return id
}

func (f *fakeStore) PendingQueueItems() ([]models.SyncQueueItem, error) {
	var out []models.SyncQueueItem
	for _, item := range f.queue {
		if item.Status == models.QueueStatusPending {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteQueueItem(id uint) error {
	for i, item := range f.queue {
		if item.ID == id {
			f.queue = append(f.queue[:i], f.queue[i+1:]...)
			f.deletedQueueItems = append(f.deletedQueueItems, id)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) MarkQueueItemFailed(id uint, errMsg string, dead bool) error {
	for i := range f.queue {
		if f.queue[i].ID == id {
			f.queue[i].Attempts++
			f.queue[i].LastError = &errMsg
			if dead {
				f.queue[i].Status = models.QueueStatusDead
			}
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) PendingQueueCount() (int64, error) {
	items, _ := f.PendingQueueItems()
	return int64(len(items)), nil
}

func (f *fakeStore) DeadQueueCount() (int64, error) {
	var n int64
	for _, item := range f.queue {
		if item.Status == models.QueueStatusDead {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkEntitySynced(collection, localID string) error {
	f.syncedEntities = append(f.syncedEntities, collection+"/"+localID)
	return nil
}

func (f *fakeStore) PropagateRemoteID(collection, localID, remoteID string) error {
	f.propagated = append(f.propagated, fmt.Sprintf("%s/%s=%s", collection, localID, remoteID))
	for i := range f.queue {
		if f.queue[i].Collection == collection && f.queue[i].LocalID == localID && f.queue[i].RemoteID == nil {
			id := remoteID
			f.queue[i].RemoteID = &id
		}
	}
	return nil
}

func (f *fakeStore) Checkpoint(collection string) (time.Time, error) {
	return f.checkpoints[collection], nil
}

func (f *fakeStore) SetCheckpoint(collection string, cursor time.Time) error {
	f.checkpoints[collection] = cursor
	return nil
}

func (f *fakeStore) UpsertClientFromRemote(c models.Client) error {
	f.clients[*c.RemoteID] = c
	return nil
}

func (f *fakeStore) UpsertServiceLogFromRemote(l models.ServiceLog) error {
	f.logs[*l.RemoteID] = l
	return nil
}

func (f *fakeStore) UpsertArticleFromRemote(a models.Article) (*models.Article, error) {
	if existing, ok := f.articles[*a.RemoteID]; ok {
		a.LocalID = existing.LocalID
		a.IsPinned = existing.IsPinned
	} else {
		a.LocalID = "local-" + *a.RemoteID
	}
	f.articles[*a.RemoteID] = &a
	return &a, nil
}

func (f *fakeStore) EnsureAttachmentMeta(a models.Attachment) error {
	if _, ok := f.attachments[a.StoragePath]; ok {
		return nil
	}
	f.attachments[a.StoragePath] = &a
	return nil
}

func (f *fakeStore) AttachmentsToDownload(articleRemoteID string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range f.attachments {
		if a.ArticleRemoteID == articleRemoteID && !a.IsDownloaded {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkAttachmentDownloaded(storagePath string, data []byte) error {
	a, ok := f.attachments[storagePath]
	if !ok {
		return store.ErrNotFound
	}
	a.Data = data
	a.IsDownloaded = true
	a.LastError = nil
	return nil
}

func (f *fakeStore) MarkAttachmentFailed(storagePath, msg string) error {
	a, ok := f.attachments[storagePath]
	if !ok {
		return store.ErrNotFound
	}
	a.LastError = &msg
	return nil
}

// search.IndexStore

func (f *fakeStore) EntriesByPrefix(prefix string, limit int) ([]models.SearchIndexEntry, error) {
	var out []models.SearchIndexEntry
	for word, refs := range f.entries {
		if len(word) >= len(prefix) && word[:len(prefix)] == prefix {
			out = append(out, models.SearchIndexEntry{Word: word, Refs: refs})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) AllEntries() ([]models.SearchIndexEntry, error) {
	var out []models.SearchIndexEntry
	for word, refs := range f.entries {
		out = append(out, models.SearchIndexEntry{Word: word, Refs: refs})
	}
	return out, nil
}

func (f *fakeStore) PutEntries(entries []models.SearchIndexEntry) error {
	for _, e := range entries {
		f.entries[e.Word] = e.Refs
	}
	return nil
}

func (f *fakeStore) DeleteWords(words []string) error {
	for _, w := range words {
		delete(f.entries, w)
	}
	return nil
}

func (f *fakeStore) ClearIndex() error {
	f.entries = make(map[string]models.ScoreMap)
	return nil
}

func (f *fakeStore) NonDeletedArticles() ([]models.Article, error) {
	var out []models.Article
	for _, a := range f.articles {
		if !a.Deleted() {
			out = append(out, *a)
		}
	}
	return out, nil
}

// fakeRemote is a scripted RemoteStore
type fakeRemote struct {
	calls []string

	createErr map[string]error // keyed by collection
	updateErr map[string]error
	deleteErr map[string]error

	nextID int

	// docs per collection, sorted ascending by UpdatedAt
	docs map[string][]remote.Document

	changedErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		createErr: make(map[string]error),
		updateErr: make(map[string]error),
		deleteErr: make(map[string]error),
		nextID:    100,
		docs:      make(map[string][]remote.Document),
	}
}

func (f *fakeRemote) Authenticate() (int, error) { return 1, nil }

func (f *fakeRemote) Create(collection string, values map[string]interface{}) (string, error) {
	f.calls = append(f.calls, "create "+collection)
	if err := f.createErr[collection]; err != nil {
		return "", err
	}
	f.nextID++
	return fmt.Sprintf("r%d", f.nextID), nil
}

func (f *fakeRemote) Update(collection, id string, values map[string]interface{}) error {
	f.calls = append(f.calls, "update "+collection+"/"+id)
	return f.updateErr[collection]
}

func (f *fakeRemote) Delete(collection, id string) error {
	f.calls = append(f.calls, "delete "+collection+"/"+id)
	return f.deleteErr[collection]
}

func (f *fakeRemote) ChangedSince(collection string, since time.Time, limit int) ([]remote.Document, error) {
	f.calls = append(f.calls, fmt.Sprintf("pull %s since %s", collection, since.UTC().Format("15:04:05")))
	if f.changedErr != nil {
		return nil, f.changedErr
	}
	var out []remote.Document
	for _, doc := range f.docs[collection] {
		if doc.UpdatedAt.After(since) {
			out = append(out, doc)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
