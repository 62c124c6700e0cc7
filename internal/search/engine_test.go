package search

import (
	"strings"
	"testing"
	"time"

	"github.com/jeotronix/fieldops/internal/models"
)

// memStore is an in-memory IndexStore
type memStore struct {
	entries  map[string]models.ScoreMap
	articles []models.Article
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]models.ScoreMap)}
}

func (m *memStore) EntriesByPrefix(prefix string, limit int) ([]models.SearchIndexEntry, error) {
	var out []models.SearchIndexEntry
	for word, refs := range m.entries {
		if strings.HasPrefix(word, prefix) {
			out = append(out, models.SearchIndexEntry{Word: word, Refs: refs})
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) AllEntries() ([]models.SearchIndexEntry, error) {
	var out []models.SearchIndexEntry
	for word, refs := range m.entries {
		out = append(out, models.SearchIndexEntry{Word: word, Refs: refs})
	}
	return out, nil
}

func (m *memStore) PutEntries(entries []models.SearchIndexEntry) error {
	for _, e := range entries {
		m.entries[e.Word] = e.Refs
	}
	return nil
}

func (m *memStore) DeleteWords(words []string) error {
	for _, w := range words {
		delete(m.entries, w)
	}
	return nil
}

func (m *memStore) ClearIndex() error {
	m.entries = make(map[string]models.ScoreMap)
	return nil
}

func (m *memStore) NonDeletedArticles() ([]models.Article, error) {
	var out []models.Article
	for _, a := range m.articles {
		if !a.Deleted() {
			out = append(out, a)
		}
	}
	return out, nil
}

func article(remoteID, title string, tags []string, content string) *models.Article {
	id := remoteID
	return &models.Article{
		LocalID:  "local-" + remoteID,
		RemoteID: &id,
		Title:    title,
		Category: models.CategoryGeneral,
		Content:  content,
		Tags:     tags,
	}
}

func TestIndexAppliesFieldWeights(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	a := article("kb1", "Solar Basics", []string{"solar"}, "solar panel cleaning")
	if err := e.Index(a); err != nil {
		t.Fatalf("index failed: %v", err)
	}

	// title 10 + tag 5 + content 1
	if got := st.entries["solar"]["kb1"]; got != 16 {
		t.Errorf("expected summed weight 16 for title+tag+content, got %v", got)
	}
	if got := st.entries["panel"]["kb1"]; got != 1 {
		t.Errorf("expected content weight 1, got %v", got)
	}
	if got := st.entries["basics"]["kb1"]; got != 10 {
		t.Errorf("expected title weight 10, got %v", got)
	}
}

func TestIndexIsIdempotent(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	a := article("kb1", "Inverter fault codes", nil, "")
	if err := e.Index(a); err != nil {
		t.Fatal(err)
	}
	if err := e.Index(a); err != nil {
		t.Fatal(err)
	}

	if got := st.entries["inverter"]["kb1"]; got != 10 {
		t.Errorf("reindexing must not inflate scores, got %v", got)
	}
}

func TestReindexDropsStaleTokens(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	a := article("kb1", "Inverter manual", nil, "")
	if err := e.Index(a); err != nil {
		t.Fatal(err)
	}

	a.Title = "Generator manual"
	if err := e.Index(a); err != nil {
		t.Fatal(err)
	}

	if _, ok := st.entries["inverter"]; ok {
		t.Error("stale token should be gone after reindex")
	}
	if got := st.entries["generator"]["kb1"]; got != 10 {
		t.Errorf("new token missing, got %v", got)
	}
	// Shared token survives with the same score
	if got := st.entries["manual"]["kb1"]; got != 10 {
		t.Errorf("shared token should keep its score, got %v", got)
	}
}

func TestIndexSkipsUnsyncedAndDeleted(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	unsynced := &models.Article{LocalID: "l1", Title: "Draft article"}
	if err := e.Index(unsynced); err != nil {
		t.Fatal(err)
	}
	if len(st.entries) != 0 {
		t.Error("article without remote id must not be indexed")
	}

	now := time.Now()
	deleted := article("kb1", "Removed article", nil, "")
	deleted.DeletedAt = &now
	if err := e.Index(deleted); err != nil {
		t.Fatal(err)
	}
	if len(st.entries) != 0 {
		t.Error("soft-deleted article must not be indexed")
	}
}

func TestRemoveStripsArticleFromPostings(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	if err := e.Index(article("kb1", "Solar guide", nil, "")); err != nil {
		t.Fatal(err)
	}
	if err := e.Index(article("kb2", "Solar checklist", nil, "")); err != nil {
		t.Fatal(err)
	}

	if err := e.Remove("kb1"); err != nil {
		t.Fatal(err)
	}

	if _, ok := st.entries["solar"]["kb1"]; ok {
		t.Error("removed article still referenced")
	}
	if _, ok := st.entries["solar"]["kb2"]; !ok {
		t.Error("other article lost its posting")
	}
	if _, ok := st.entries["guide"]; ok {
		t.Error("emptied posting should be deleted")
	}
}

func TestSearchOrdersByRelevance(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	// kb1 mentions solar only in content; kb2 in the title
	if err := e.Index(article("kb1", "Site handover", nil, "check solar output")); err != nil {
		t.Fatal(err)
	}
	if err := e.Index(article("kb2", "Solar commissioning", nil, "")); err != nil {
		t.Fatal(err)
	}

	ids, err := e.Search("solar")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 hits, got %v", ids)
	}
	if ids[0] != "kb2" || ids[1] != "kb1" {
		t.Errorf("title hit should outrank content hit, got %v", ids)
	}
}

func TestSearchMatchesByPrefix(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	if err := e.Index(article("kb1", "Inverter troubleshooting", nil, "")); err != nil {
		t.Fatal(err)
	}

	ids, err := e.Search("inv")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "kb1" {
		t.Errorf("prefix should match, got %v", ids)
	}
}

func TestSearchEmptyQueryYieldsNil(t *testing.T) {
	e := NewEngine(newMemStore())

	ids, err := e.Search("of the it")
	if err != nil {
		t.Fatal(err)
	}
	if ids != nil {
		t.Errorf("all-stopword query should yield nil, got %v", ids)
	}
}

func TestRebuildIndex(t *testing.T) {
	st := newMemStore()
	e := NewEngine(st)

	// Poison the index with a stale posting
	st.entries["ghost"] = models.ScoreMap{"kb9": 10}

	now := time.Now()
	gone := *article("kb2", "Old article", nil, "")
	gone.DeletedAt = &now
	st.articles = []models.Article{
		*article("kb1", "Solar guide", nil, ""),
		gone,
	}

	if err := e.RebuildIndex(); err != nil {
		t.Fatal(err)
	}

	if _, ok := st.entries["ghost"]; ok {
		t.Error("rebuild should clear stale postings")
	}
	if _, ok := st.entries["solar"]["kb1"]; !ok {
		t.Error("live article missing from rebuilt index")
	}
	if _, ok := st.entries["old"]; ok {
		t.Error("soft-deleted article indexed during rebuild")
	}
}
