package sync

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jeotronix/fieldops/internal/remote"
	"github.com/jeotronix/fieldops/internal/store"
)

// fakeFetcher serves scripted blobs
type fakeFetcher struct {
	blobs map[string][]byte
	err   error
}

func (f *fakeFetcher) Fetch(storagePath string, maxBytes int64) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.blobs[storagePath]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", storagePath)
	}
	return data, nil
}

func newTestPuller(st *fakeStore, rs *fakeRemote, bf *fakeFetcher) *puller {
	p := newPuller(st, rs, bf, 2, 10, 60*time.Second, 5*1024*1024)
	// Attachment downloads run inline so assertions see them
	p.background = func(fn func()) { fn() }
	return p
}

func clientDoc(id string, updatedAt time.Time) remote.Document {
	return remote.Document{
		ID:        id,
		UpdatedAt: updatedAt,
		Fields: map[string]interface{}{
			"name": "Client " + id,
			"type": "corporate",
		},
	}
}

func TestPullUpsertsAndAdvancesCursor(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rs.docs[store.CollectionClients] = []remote.Document{
		clientDoc("c1", base),
		clientDoc("c2", base.Add(time.Minute)),
		clientDoc("c3", base.Add(2*time.Minute)),
	}

	p := newTestPuller(st, rs, &fakeFetcher{})
	if err := p.pullCollection(store.CollectionClients); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if len(st.clients) != 3 {
		t.Errorf("expected 3 clients, got %d", len(st.clients))
	}
	if cp := st.checkpoints[store.CollectionClients]; !cp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("cursor should be the max updated_at, got %v", cp)
	}
}

func TestPullSubtractsSkewOncePerCycle(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st.checkpoints[store.CollectionClients] = base

	rs.docs[store.CollectionClients] = []remote.Document{
		clientDoc("c1", base.Add(30*time.Second)),
		clientDoc("c2", base.Add(40*time.Second)),
		clientDoc("c3", base.Add(50*time.Second)),
	}

	p := newTestPuller(st, rs, &fakeFetcher{})
	if err := p.pullCollection(store.CollectionClients); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	// First page queried from cursor minus skew, the second from the first
	// page's max updated_at with no second subtraction.
	first := fmt.Sprintf("pull clients since %s", base.Add(-60*time.Second).Format("15:04:05"))
	second := fmt.Sprintf("pull clients since %s", base.Add(40*time.Second).Format("15:04:05"))
	if rs.calls[0] != first {
		t.Errorf("first page: expected %q, got %q", first, rs.calls[0])
	}
	if rs.calls[1] != second {
		t.Errorf("second page: expected %q, got %q", second, rs.calls[1])
	}
}

func TestPullStopsAtPageCap(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()

	// More full pages than the cap allows
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		rs.docs[store.CollectionClients] = append(rs.docs[store.CollectionClients],
			clientDoc(fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	p := newTestPuller(st, rs, &fakeFetcher{})
	p.maxPages = 3
	if err := p.pullCollection(store.CollectionClients); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if len(rs.calls) != 3 {
		t.Errorf("expected 3 pages, got %d", len(rs.calls))
	}
	// Progress persisted; the next cycle resumes from here
	if st.checkpoints[store.CollectionClients].IsZero() {
		t.Error("cursor should have advanced despite hitting the cap")
	}
}

func TestPullPreservesLocalPinAcrossUpdates(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()

	// Article already cached locally and pinned by the technician
	seed := remote.Document{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Fields:    map[string]interface{}{"title": "Inverter faults", "category": "solar"},
	}
	p := newTestPuller(st, rs, &fakeFetcher{})
	rs.docs[store.CollectionArticles] = []remote.Document{seed}
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("seed pull failed: %v", err)
	}
	st.articles["kb1"].IsPinned = true

	// Remote edit arrives
	rs.docs[store.CollectionArticles] = []remote.Document{{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Fields:    map[string]interface{}{"title": "Inverter faults v2", "category": "solar"},
	}}
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	a := st.articles["kb1"]
	if a.Title != "Inverter faults v2" {
		t.Errorf("remote fields should be overwritten, got %q", a.Title)
	}
	if !a.IsPinned {
		t.Error("local pin flag must survive a remote update")
	}
}

func TestPullIndexesPulledArticles(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()

	rs.docs[store.CollectionArticles] = []remote.Document{{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Fields:    map[string]interface{}{"title": "Solar inverter fault", "category": "solar"},
	}}

	p := newTestPuller(st, rs, &fakeFetcher{})
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	refs, ok := st.entries["solar"]
	if !ok {
		t.Fatal("pulled article was not indexed")
	}
	if refs["kb1"] != 10 {
		t.Errorf("title token should score 10, got %v", refs["kb1"])
	}
}

func TestPullRemovesDeletedArticleFromIndex(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()
	p := newTestPuller(st, rs, &fakeFetcher{})

	rs.docs[store.CollectionArticles] = []remote.Document{{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Fields:    map[string]interface{}{"title": "Solar inverter fault", "category": "solar"},
	}}
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("seed pull failed: %v", err)
	}
	if _, ok := st.entries["solar"]; !ok {
		t.Fatal("seed article was not indexed")
	}

	// Remote soft-delete arrives on the next pull
	rs.docs[store.CollectionArticles] = []remote.Document{{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Fields: map[string]interface{}{
			"title":     "Solar inverter fault",
			"category":  "solar",
			"deletedAt": "2026-03-02T10:00:00Z",
		},
	}}
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	if st.articles["kb1"].DeletedAt == nil {
		t.Fatal("soft-delete marker should be stored locally")
	}
	for word, refs := range st.entries {
		if _, ok := refs["kb1"]; ok {
			t.Errorf("posting %q still references the deleted article", word)
		}
	}
}

func TestPullPrefetchesCriticalArticleAttachments(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()
	bf := &fakeFetcher{blobs: map[string][]byte{"kb/kb1/wiring.pdf": []byte("pdf-bytes")}}

	rs.docs[store.CollectionArticles] = []remote.Document{{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Fields: map[string]interface{}{
			"title":      "Emergency shutdown",
			"category":   "general",
			"isCritical": true,
			"attachments": []interface{}{
				map[string]interface{}{
					"storagePath": "kb/kb1/wiring.pdf",
					"name":        "wiring.pdf",
					"size":        float64(1234),
					"type":        "application/pdf",
				},
			},
		},
	}}

	p := newTestPuller(st, rs, bf)
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("pull failed: %v", err)
	}

	att, ok := st.attachments["kb/kb1/wiring.pdf"]
	if !ok {
		t.Fatal("attachment metadata was not stored")
	}
	if !att.IsDownloaded {
		t.Fatal("critical article attachment was not prefetched")
	}
	if string(att.Data) != "pdf-bytes" {
		t.Errorf("unexpected attachment payload: %q", att.Data)
	}
}

func TestPullAttachmentFailureDoesNotAbort(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()
	bf := &fakeFetcher{err: errors.New("network down")}

	rs.docs[store.CollectionArticles] = []remote.Document{{
		ID:        "kb1",
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Fields: map[string]interface{}{
			"title":      "Emergency shutdown",
			"category":   "general",
			"isCritical": true,
			"attachments": []interface{}{
				map[string]interface{}{"storagePath": "kb/kb1/a.pdf", "name": "a.pdf"},
			},
		},
	}}

	p := newTestPuller(st, rs, bf)
	if err := p.pullCollection(store.CollectionArticles); err != nil {
		t.Fatalf("pull must not fail on attachment errors: %v", err)
	}

	att := st.attachments["kb/kb1/a.pdf"]
	if att == nil || att.IsDownloaded {
		t.Fatal("attachment should exist and stay undownloaded")
	}
	if att.LastError == nil || !strings.Contains(*att.LastError, "network down") {
		t.Errorf("failure should be recorded on the row, got %v", att.LastError)
	}
}

func TestPullAllAbortsOnCollectionError(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRemote()
	rs.changedErr = remote.ErrUnavailable

	p := newTestPuller(st, rs, &fakeFetcher{})
	err := p.pullAll()
	if !errors.Is(err, remote.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if len(rs.calls) != 1 {
		t.Errorf("later collections must not be pulled after a failure, got %v", rs.calls)
	}
}
