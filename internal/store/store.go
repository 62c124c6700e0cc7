package store

import (
	"github.com/jeotronix/fieldops/internal/database"
	"gorm.io/gorm"
)

// Remote collection names. The queue and the checkpoints key on these.
const (
	CollectionServiceLogs = "serviceLogs"
	CollectionClients     = "clients"
	CollectionArticles    = "knowledge_base"
)

// Store is the Local Store: typed, transactional access to every on-device
// table. It is the single shared mutable resource of the process; every
// component goes through it and none holds a long-lived lock.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of the database connection
func New(db *database.DB) *Store {
	return &Store{db: db.DB}
}

// Tx runs fn inside a single database transaction. Multi-table writes
// (article + attachments + index rows, optimistic write + queue item) must
// go through here so partial state is never observable.
func (s *Store) Tx(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
