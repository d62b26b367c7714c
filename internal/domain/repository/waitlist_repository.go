package repository

import (
	"time"

	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaitlistRepository interface {
	Create(db *gorm.DB, entry *entity.WaitlistEntry) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.WaitlistEntry, error)
	FindAll(db *gorm.DB, filter *entity.WaitlistFilter) ([]entity.WaitlistEntry, error)
	// FindOpenByDoctor returns WAITING and NOTIFIED entries, oldest first.
	FindOpenByDoctor(db *gorm.DB, doctorID uuid.UUID) ([]entity.WaitlistEntry, error)
	Update(db *gorm.DB, entry *entity.WaitlistEntry) error
	UpdateIfStatus(db *gorm.DB, entry *entity.WaitlistEntry, expected entity.WaitlistStatus) (int64, error)
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	// ExpireBefore marks open entries whose preferred date is before date as
	// EXPIRED.
	ExpireBefore(db *gorm.DB, date time.Time) (int64, error)
}
