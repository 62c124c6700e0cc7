// Package search maintains the client-side inverted index that serves
// knowledge-base queries entirely offline.
package search

import (
	"log"
	"sort"

	"github.com/jeotronix/fieldops/internal/models"
)

// Field weights: a title hit outranks any number of body mentions
const (
	titleWeight   = 10
	tagWeight     = 5
	contentWeight = 1
)

// maxEntriesPerToken caps the prefix scan for a single query token
const maxEntriesPerToken = 5

// IndexStore is the slice of the Local Store the engine needs. Implemented
// by *store.Store; tests use an in-memory fake.
type IndexStore interface {
	EntriesByPrefix(prefix string, limit int) ([]models.SearchIndexEntry, error)
	AllEntries() ([]models.SearchIndexEntry, error)
	PutEntries(entries []models.SearchIndexEntry) error
	DeleteWords(words []string) error
	ClearIndex() error
	NonDeletedArticles() ([]models.Article, error)
}

// Engine builds and queries the inverted index
type Engine struct {
	store IndexStore
}

// NewEngine creates an engine over the given store. Engines are cheap;
// callers running inside a transaction construct one over the tx-bound
// store so index writes commit with the article they describe.
func NewEngine(store IndexStore) *Engine {
	return &Engine{store: store}
}

// Index (re)indexes one article. The article's prior contribution is
// removed from every posting first, so reindexing is idempotent and scores
// never drift. Soft-deleted articles and articles without a remote id are
// skipped: they are not addressable in the synced namespace.
func (e *Engine) Index(a *models.Article) error {
	if a.RemoteID == nil || a.Deleted() {
		return nil
	}
	id := *a.RemoteID

	tokenScores := make(map[string]float64)
	addTokens := func(tokens []string, weight float64) {
		for _, t := range tokens {
			tokenScores[t] += weight
		}
	}
	addTokens(Tokenize(a.Title), titleWeight)
	for _, tag := range a.Tags {
		addTokens(Tokenize(tag), tagWeight)
	}
	addTokens(Tokenize(a.Content), contentWeight)

	entries, err := e.store.AllEntries()
	if err != nil {
		return err
	}

	byWord := make(map[string]*models.SearchIndexEntry, len(entries))
	for i := range entries {
		byWord[entries[i].Word] = &entries[i]
	}

	changed := make(map[string]struct{})

	// Strip the previous contribution of this article everywhere
	for word, entry := range byWord {
		if _, ok := entry.Refs[id]; ok {
			delete(entry.Refs, id)
			changed[word] = struct{}{}
		}
	}

	// Accumulate the new scores
	for word, score := range tokenScores {
		entry, ok := byWord[word]
		if !ok {
			entry = &models.SearchIndexEntry{Word: word, Refs: models.ScoreMap{}}
			byWord[word] = entry
		}
		entry.Refs[id] = score
		changed[word] = struct{}{}
	}

	var puts []models.SearchIndexEntry
	var emptied []string
	for word := range changed {
		entry := byWord[word]
		if len(entry.Refs) == 0 {
			emptied = append(emptied, word)
			continue
		}
		puts = append(puts, *entry)
	}

	if err := e.store.DeleteWords(emptied); err != nil {
		return err
	}
	return e.store.PutEntries(puts)
}

// Remove strips an article's contribution from every posting. Used when an
// article is soft-deleted and must stop matching immediately.
func (e *Engine) Remove(remoteID string) error {
	entries, err := e.store.AllEntries()
	if err != nil {
		return err
	}

	var puts []models.SearchIndexEntry
	var emptied []string
	for _, entry := range entries {
		if _, ok := entry.Refs[remoteID]; !ok {
			continue
		}
		delete(entry.Refs, remoteID)
		if len(entry.Refs) == 0 {
			emptied = append(emptied, entry.Word)
			continue
		}
		puts = append(puts, entry)
	}

	if err := e.store.DeleteWords(emptied); err != nil {
		return err
	}
	return e.store.PutEntries(puts)
}

// Search tokenizes the query and returns article remote ids ordered by
// descending summed score. Each token matches postings by prefix so "sol"
// surfaces "solar". An empty token list yields no results; callers fall
// back to an unfiltered listing.
func (e *Engine) Search(query string) ([]string, error) {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	docScores := make(map[string]float64)
	for _, token := range tokens {
		entries, err := e.store.EntriesByPrefix(token, maxEntriesPerToken)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			for id, score := range entry.Refs {
				docScores[id] += score
			}
		}
	}

	ids := make([]string, 0, len(docScores))
	for id := range docScores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if docScores[ids[i]] != docScores[ids[j]] {
			return docScores[ids[i]] > docScores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// RebuildIndex clears the index and reindexes every non-deleted article.
// Safe to run while the app is live; used after schema changes or
// corruption.
func (e *Engine) RebuildIndex() error {
	if err := e.store.ClearIndex(); err != nil {
		return err
	}

	articles, err := e.store.NonDeletedArticles()
	if err != nil {
		return err
	}
	for i := range articles {
		if err := e.Index(&articles[i]); err != nil {
			return err
		}
	}

	log.Printf("🔍 Rebuilt search index for %d articles", len(articles))
	return nil
}
