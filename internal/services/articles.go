package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/jeotronix/fieldops/internal/auth"
	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/search"
	"github.com/jeotronix/fieldops/internal/store"
)

func validateCategory(c string) error {
	switch c {
	case models.CategoryICT, models.CategorySolar, models.CategoryGeneral:
		return nil
	}
	return fmt.Errorf("unknown category %q", c)
}

// AddArticle stores a new knowledge-base entry locally and queues its
// upload. The article enters the search index once it comes back from the
// remote store with an id.
func (s *Service) AddArticle(actor *auth.Actor, a *models.Article) (string, error) {
	if err := requireActor(actor); err != nil {
		return "", err
	}
	if a.Title == "" {
		return "", fmt.Errorf("article title is required")
	}
	if err := validateCategory(a.Category); err != nil {
		return "", err
	}

	a.LocalID = ""
	a.RemoteID = nil
	a.DeletedAt = nil
	a.SyncStatus = models.SyncStatusPendingCreate
	a.LastUpdated = time.Now().UTC()

	var localID string
	err := s.store.Tx(func(tx *store.Store) error {
		id, err := tx.InsertArticle(a)
		if err != nil {
			return err
		}
		localID = id

		snap, err := snapshot(a)
		if err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionArticles,
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

// GetArticle returns one article by local id
func (s *Service) GetArticle(localID string) (*models.Article, error) {
	return s.store.GetArticle(localID)
}

// ListArticles returns articles pinned-first, newest-first
func (s *Service) ListArticles(f store.ArticleFilter) ([]models.Article, error) {
	return s.store.ListArticles(f)
}

// UpdateArticle merges fields into an article, queues the change and
// refreshes the search index in the same transaction.
func (s *Service) UpdateArticle(actor *auth.Actor, localID string, fields map[string]interface{}) (*models.Article, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	sanitizeUpdate(fields)
	if c, ok := fields["category"].(string); ok {
		if err := validateCategory(c); err != nil {
			return nil, err
		}
	}

	var updated *models.Article
	err := s.store.Tx(func(tx *store.Store) error {
		current, err := tx.GetArticle(localID)
		if err != nil {
			return err
		}

		if current.SyncStatus != models.SyncStatusPendingCreate {
			fields["sync_status"] = models.SyncStatusPendingUpdate
		}
		if err := tx.UpdateArticle(localID, fields); err != nil {
			return err
		}

		updated, err = tx.GetArticle(localID)
		if err != nil {
			return err
		}

		if err := search.NewEngine(tx).Index(updated); err != nil {
			return err
		}

		snap, err := snapshot(updated)
		if err != nil {
			return err
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionArticles,
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

// DeleteArticle soft-deletes an article: the row stays cached but vanishes
// from listings and search, and the remote delete is queued.
func (s *Service) DeleteArticle(actor *auth.Actor, localID string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	err := s.store.Tx(func(tx *store.Store) error {
		current, err := tx.GetArticle(localID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := tx.UpdateArticle(localID, map[string]interface{}{"deleted_at": now}); err != nil {
			return err
		}

		if current.RemoteID != nil {
			if err := search.NewEngine(tx).Remove(*current.RemoteID); err != nil {
				return err
			}
		}
		return tx.Enqueue(&models.SyncQueueItem{
			Collection: store.CollectionArticles,
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

// TogglePin flips the local-only pin flag. Pinning prefetches the article's
// attachments so it stays readable offline; never queued for sync.
func (s *Service) TogglePin(localID string) (*models.Article, error) {
	a, err := s.store.GetArticle(localID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetArticlePinned(localID, !a.IsPinned); err != nil {
		return nil, err
	}
	a.IsPinned = !a.IsPinned

	if a.IsPinned && a.RemoteID != nil {
		go s.prefetchAttachments(*a.RemoteID)
	}
	return a, nil
}

// SearchArticles runs a relevance query against the offline index. An
// empty or all-stopword query falls back to the plain listing.
func (s *Service) SearchArticles(query string, f store.ArticleFilter) ([]models.Article, error) {
	ids, err := search.NewEngine(s.store).Search(query)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return s.store.ListArticles(f)
	}
	return collectSearchHits(ids, s.store.GetArticleByRemoteID, f)
}

// collectSearchHits loads matched articles in relevance order. A missing
// row is skipped (index entries can briefly outlive their article); any
// other storage failure aborts the search.
func collectSearchHits(ids []string, get func(string) (*models.Article, error), f store.ArticleFilter) ([]models.Article, error) {
	var out []models.Article
	for _, id := range ids {
		a, err := get(id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if a.Deleted() {
			continue
		}
		if f.Category != "" && f.Category != "all" && a.Category != f.Category {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

// RebuildSearchIndex reindexes every non-deleted article from scratch
func (s *Service) RebuildSearchIndex() error {
	return search.NewEngine(s.store).RebuildIndex()
}
