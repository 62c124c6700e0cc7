package services

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jeotronix/fieldops/internal/auth"
	"github.com/jeotronix/fieldops/internal/models"
)

// ListAttachments returns the attachment rows of an article
func (s *Service) ListAttachments(articleRemoteID string) ([]models.Attachment, error) {
	return s.store.ListAttachments(articleRemoteID)
}

// AddAttachment caches a locally added file and marks it for upload. The
// storage path is provisional until the blob store assigns the final one.
func (s *Service) AddAttachment(actor *auth.Actor, articleRemoteID, name, mimeType string, data []byte) (*models.Attachment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("attachment name is required")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("attachment exceeds %d byte limit", s.maxBytes)
	}

	a := &models.Attachment{
		StoragePath:     fmt.Sprintf("local/%s/%s", uuid.NewString(), name),
		ArticleRemoteID: articleRemoteID,
		Name:            name,
		Size:            int64(len(data)),
		MimeType:        mimeType,
		IsDownloaded:    true,
		Data:            data,
	}
	if err := s.store.InsertAttachment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetAttachmentData returns an attachment's binary, fetching it on demand
// when it is not cached yet. Offline with a cold cache this fails; the
// metadata row survives for a later retry.
func (s *Service) GetAttachmentData(storagePath string) (*models.Attachment, error) {
	a, err := s.store.GetAttachment(storagePath)
	if err != nil {
		return nil, err
	}
	if a.IsDownloaded {
		return a, nil
	}

	data, err := s.blob.Fetch(storagePath, s.maxBytes)
	if err != nil {
		if markErr := s.store.MarkAttachmentFailed(storagePath, err.Error()); markErr != nil {
			log.Printf("⚠️ Could not record attachment failure for %s: %v", storagePath, markErr)
		}
		return nil, err
	}
	if err := s.store.MarkAttachmentDownloaded(storagePath, data); err != nil {
		return nil, err
	}
	a.Data = data
	a.IsDownloaded = true
	return a, nil
}

// prefetchAttachments warms the cache for an article's attachments
func (s *Service) prefetchAttachments(articleRemoteID string) {
	atts, err := s.store.AttachmentsToDownload(articleRemoteID)
	if err != nil {
		log.Printf("⚠️ Could not list attachments for %s: %v", articleRemoteID, err)
		return
	}
	for _, att := range atts {
		if _, err := s.GetAttachmentData(att.StoragePath); err != nil {
			log.Printf("⚠️ Prefetch failed for %s: %v", att.StoragePath, err)
		}
	}
}
