package store

import (
	"errors"

	"github.com/jeotronix/fieldops/internal/models"
	"gorm.io/gorm"
)

// GetAttachment looks up an attachment by storage path
func (s *Store) GetAttachment(storagePath string) (*models.Attachment, error) {
	var a models.Attachment
	if err := s.db.First(&a, "storage_path = ?", storagePath).Error; err != nil {
		return nil, wrapErr("get attachment", err)
	}
	return &a, nil
}

// ListAttachments returns all attachment rows for an article
func (s *Store) ListAttachments(articleRemoteID string) ([]models.Attachment, error) {
	var atts []models.Attachment
	if err := s.db.Where("article_remote_id = ?", articleRemoteID).Order("name ASC").Find(&atts).Error; err != nil {
		return nil, wrapErr("list attachments", err)
	}
	return atts, nil
}

// EnsureAttachmentMeta stores pulled attachment metadata if the row does not
// exist yet. Existing rows are left alone so cached binaries and download
// state survive re-pulls.
func (s *Store) EnsureAttachmentMeta(a models.Attachment) error {
	var existing models.Attachment
	err := s.db.First(&existing, "storage_path = ?", a.StoragePath).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapErr("ensure attachment", err)
	}
	if err := s.db.Create(&a).Error; err != nil {
		return wrapErr("insert attachment", err)
	}
	return nil
}

// InsertAttachment stores a locally added attachment awaiting upload
func (s *Store) InsertAttachment(a *models.Attachment) error {
	a.NeedsUpload = true
	if err := s.db.Create(a).Error; err != nil {
		return wrapErr("insert attachment", err)
	}
	return nil
}

// AttachmentsToDownload returns attachments of an article whose binary is
// not cached locally yet.
func (s *Store) AttachmentsToDownload(articleRemoteID string) ([]models.Attachment, error) {
	var atts []models.Attachment
	err := s.db.Where("article_remote_id = ? AND is_downloaded = ?", articleRemoteID, false).Find(&atts).Error
	if err != nil {
		return nil, wrapErr("list pending attachments", err)
	}
	return atts, nil
}

// MarkAttachmentDownloaded stores the fetched binary and flips the flag
func (s *Store) MarkAttachmentDownloaded(storagePath string, data []byte) error {
	res := s.db.Model(&models.Attachment{}).Where("storage_path = ?", storagePath).Updates(map[string]interface{}{
		"data":          data,
		"is_downloaded": true,
		"last_error":    nil,
	})
	if res.Error != nil {
		return wrapErr("mark attachment downloaded", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrapErr("mark attachment downloaded", ErrNotFound)
	}
	return nil
}

// MarkAttachmentFailed records a download failure without touching the rest
// of the metadata row, leaving the attachment retryable.
func (s *Store) MarkAttachmentFailed(storagePath string, msg string) error {
	res := s.db.Model(&models.Attachment{}).Where("storage_path = ?", storagePath).Updates(map[string]interface{}{
		"is_downloaded": false,
		"last_error":    msg,
	})
	if res.Error != nil {
		return wrapErr("mark attachment failed", res.Error)
	}
	return nil
}
