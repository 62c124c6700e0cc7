package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jeotronix/fieldops/internal/models"
)

// ArticleFilter narrows a knowledge-base listing
type ArticleFilter struct {
	Category       string
	IncludeDeleted bool
}

// InsertArticle assigns a fresh local id and stores the article
func (s *Store) InsertArticle(a *models.Article) (string, error) {
	if a.LocalID == "" {
		a.LocalID = uuid.NewString()
	}
	if err := s.db.Create(a).Error; err != nil {
		return "", wrapErr("insert article", err)
	}
	return a.LocalID, nil
}

// GetArticle looks up an article by local id
func (s *Store) GetArticle(localID string) (*models.Article, error) {
	var a models.Article
	if err := s.db.First(&a, "local_id = ?", localID).Error; err != nil {
		return nil, wrapErr("get article", err)
	}
	return &a, nil
}

// GetArticleByRemoteID looks up an article by its remote id
func (s *Store) GetArticleByRemoteID(remoteID string) (*models.Article, error) {
	var a models.Article
	if err := s.db.First(&a, "remote_id = ?", remoteID).Error; err != nil {
		return nil, wrapErr("get article", err)
	}
	return &a, nil
}

// UpdateArticle merges the given fields into an existing article
func (s *Store) UpdateArticle(localID string, fields map[string]interface{}) error {
	res := s.db.Model(&models.Article{}).Where("local_id = ?", localID).Updates(fields)
	if res.Error != nil {
		return wrapErr("update article", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("update article", ErrNotFound)
	}
	return nil
}

// DeleteArticle removes an article row physically. Soft delete is the
// DeletedAt field and is handled at the entity level, not here.
func (s *Store) DeleteArticle(localID string) error {
	if err := s.db.Delete(&models.Article{}, "local_id = ?", localID).Error; err != nil {
		return wrapErr("delete article", err)
	}
	return nil
}

// ListArticles returns articles pinned-first, newest-first, excluding
// soft-deleted entries unless asked otherwise.
func (s *Store) ListArticles(f ArticleFilter) ([]models.Article, error) {
	q := s.db.Order("is_pinned DESC, last_updated DESC")
	if !f.IncludeDeleted {
		q = q.Where("deleted_at IS NULL")
	}
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}

	var articles []models.Article
	if err := q.Find(&articles).Error; err != nil {
		return nil, wrapErr("list articles", err)
	}
	return articles, nil
}

// NonDeletedArticles returns every article without a soft-delete marker.
// Used by the search index rebuild.
func (s *Store) NonDeletedArticles() ([]models.Article, error) {
	return s.ListArticles(ArticleFilter{})
}

// SetArticlePinned flips the local-only pin flag. Pin state is never queued
// for sync.
func (s *Store) SetArticlePinned(localID string, pinned bool) error {
	return s.UpdateArticle(localID, map[string]interface{}{"is_pinned": pinned})
}

// UpsertArticleFromRemote incorporates a pulled article document, preserving
// local-only fields (isPinned) across the overwrite. Returns the stored row.
func (s *Store) UpsertArticleFromRemote(a models.Article) (*models.Article, error) {
	a.SyncStatus = models.SyncStatusSynced

	existing, err := s.GetArticleByRemoteID(*a.RemoteID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err == nil {
		fields := map[string]interface{}{
			"title":        a.Title,
			"category":     a.Category,
			"content":      a.Content,
			"tags":         a.Tags,
			"version":      a.Version,
			"last_updated": a.LastUpdated,
			"deleted_at":   a.DeletedAt,
			"is_critical":  a.IsCritical,
			"sync_status":  models.SyncStatusSynced,
			// is_pinned deliberately left untouched
		}
		if err := s.UpdateArticle(existing.LocalID, fields); err != nil {
			return nil, err
		}
		a.LocalID = existing.LocalID
		a.IsPinned = existing.IsPinned
		return &a, nil
	}

	if _, err := s.InsertArticle(&a); err != nil {
		return nil, err
	}
	return &a, nil
}
