package sync

import (
	"encoding/json"
	"fmt"

	"github.com/jeotronix/fieldops/internal/models"
	"github.com/jeotronix/fieldops/internal/remote"
)

// Fields that exist only on the local copy and must never reach the remote
// store: the local id, sync bookkeeping and the pin flag.
var localOnlyFields = map[string]struct{}{
	"localId":    {},
	"remoteId":   {},
	"syncStatus": {},
	"isPinned":   {},
	"createdAt":  {},
	"updatedAt":  {},
}

// cleanSnapshot strips local-only fields and nil values from a queued
// snapshot before it is uploaded. Creation/update timestamps are assigned
// by the server.
func cleanSnapshot(snapshot models.JSONB) map[string]interface{} {
	values := make(map[string]interface{}, len(snapshot))
	for k, v := range snapshot {
		if _, localOnly := localOnlyFields[k]; localOnly {
			continue
		}
		if v == nil {
			continue
		}
		values[k] = v
	}
	return values
}

// decodeInto converts a remote payload into a model via JSON round-trip,
// matching on the models' json tags.
func decodeInto(fields map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode remote payload: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode remote payload: %w", err)
	}
	return nil
}

// clientFromDocument maps a pulled document onto a local client row
func clientFromDocument(doc remote.Document) (models.Client, error) {
	var c models.Client
	if err := decodeInto(doc.Fields, &c); err != nil {
		return models.Client{}, err
	}
	id := doc.ID
	c.LocalID = ""
	c.RemoteID = &id
	c.SyncStatus = models.SyncStatusSynced
	return c, nil
}

// serviceLogFromDocument maps a pulled document onto a local log row
func serviceLogFromDocument(doc remote.Document) (models.ServiceLog, error) {
	var l models.ServiceLog
	if err := decodeInto(doc.Fields, &l); err != nil {
		return models.ServiceLog{}, err
	}
	id := doc.ID
	l.LocalID = ""
	l.RemoteID = &id
	l.SyncStatus = models.SyncStatusSynced
	return l, nil
}

// remoteAttachment is the attachment metadata embedded in article documents
type remoteAttachment struct {
	StoragePath string `json:"storagePath"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Type        string `json:"type"`
}

// articleFromDocument maps a pulled document onto a local article row plus
// its embedded attachment metadata.
func articleFromDocument(doc remote.Document) (models.Article, []models.Attachment, error) {
	var a models.Article
	if err := decodeInto(doc.Fields, &a); err != nil {
		return models.Article{}, nil, err
	}
	id := doc.ID
	a.LocalID = ""
	a.RemoteID = &id
	a.LastUpdated = doc.UpdatedAt
	a.IsPinned = false
	a.SyncStatus = models.SyncStatusSynced

	var atts []models.Attachment
	if rawAtts, ok := doc.Fields["attachments"]; ok && rawAtts != nil {
		data, err := json.Marshal(rawAtts)
		if err != nil {
			return models.Article{}, nil, fmt.Errorf("encode attachments: %w", err)
		}
		var metas []remoteAttachment
		if err := json.Unmarshal(data, &metas); err != nil {
			return models.Article{}, nil, fmt.Errorf("decode attachments: %w", err)
		}
		for _, m := range metas {
			if m.StoragePath == "" {
				continue
			}
			atts = append(atts, models.Attachment{
				StoragePath:     m.StoragePath,
				ArticleRemoteID: id,
				Name:            m.Name,
				Size:            m.Size,
				MimeType:        m.Type,
			})
		}
	}
	return a, atts, nil
}
