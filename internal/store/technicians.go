package store

import (
	"github.com/google/uuid"
	"github.com/jeotronix/fieldops/internal/models"
)

// GetTechnicianByEmail looks up a login account
func (s *Store) GetTechnicianByEmail(email string) (*models.Technician, error) {
	var t models.Technician
	if err := s.db.First(&t, "email = ?", email).Error; err != nil {
		return nil, wrapErr("get technician", err)
	}
	return &t, nil
}

// InsertTechnician creates a login account
func (s *Store) InsertTechnician(t *models.Technician) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := s.db.Create(t).Error; err != nil {
		return wrapErr("insert technician", err)
	}
	return nil
}

// CountTechnicians returns the number of login accounts
func (s *Store) CountTechnicians() (int64, error) {
	var n int64
	if err := s.db.Model(&models.Technician{}).Count(&n).Error; err != nil {
		return 0, wrapErr("count technicians", err)
	}
	return n, nil
}
