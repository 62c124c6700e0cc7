package store

import (
	"github.com/jeotronix/fieldops/internal/models"
	"gorm.io/gorm/clause"
)

// EntriesByPrefix returns index postings whose token starts with prefix,
// capped so a single short query token cannot scan the whole index.
func (s *Store) EntriesByPrefix(prefix string, limit int) ([]models.SearchIndexEntry, error) {
	var entries []models.SearchIndexEntry
	err := s.db.Where("word LIKE ?", prefix+"%").Order("word ASC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, wrapErr("search index prefix scan", err)
	}
	return entries, nil
}

// AllEntries returns the full inverted index. Used by reindexing, which must
// strip an article's prior contribution from every posting it appears in.
func (s *Store) AllEntries() ([]models.SearchIndexEntry, error) {
	var entries []models.SearchIndexEntry
	if err := s.db.Find(&entries).Error; err != nil {
		return nil, wrapErr("read search index", err)
	}
	return entries, nil
}

// PutEntries upserts index postings by token
func (s *Store) PutEntries(entries []models.SearchIndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "word"}},
		UpdateAll: true,
	}).Create(&entries).Error
	return wrapErr("write search index", err)
}

// DeleteWords removes postings that no longer reference any article
func (s *Store) DeleteWords(words []string) error {
	if len(words) == 0 {
		return nil
	}
	err := s.db.Delete(&models.SearchIndexEntry{}, "word IN ?", words).Error
	return wrapErr("delete search index words", err)
}

// ClearIndex drops the entire inverted index
func (s *Store) ClearIndex() error {
	err := s.db.Where("1 = 1").Delete(&models.SearchIndexEntry{}).Error
	return wrapErr("clear search index", err)
}
