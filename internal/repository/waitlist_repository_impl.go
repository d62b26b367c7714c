package repository

import (
	"errors"
	"time"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type waitlistRepository struct{}

func NewWaitlistRepository() domainRepo.WaitlistRepository {
	return &waitlistRepository{}
}

func (r *waitlistRepository) Create(db *gorm.DB, entry *entity.WaitlistEntry) error {
	return db.Create(entry).Error
}

func (r *waitlistRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.WaitlistEntry, error) {
	var entry entity.WaitlistEntry
	err := db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *waitlistRepository) FindAll(db *gorm.DB, filter *entity.WaitlistFilter) ([]entity.WaitlistEntry, error) {
	var entries []entity.WaitlistEntry
	query := db.Model(&entity.WaitlistEntry{})

	if filter != nil {
		if filter.DoctorID != nil {
			query = query.Where("doctor_id = ?", *filter.DoctorID)
		}
		if filter.PatientID != nil {
			query = query.Where("patient_id = ?", *filter.PatientID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	err := query.Order("created_at ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) FindOpenByDoctor(db *gorm.DB, doctorID uuid.UUID) ([]entity.WaitlistEntry, error) {
	var entries []entity.WaitlistEntry
	err := db.Where("doctor_id = ? AND status IN ?", doctorID, entity.OpenWaitlistStatuses()).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *waitlistRepository) Update(db *gorm.DB, entry *entity.WaitlistEntry) error {
	return db.Save(entry).Error
}

// UpdateIfStatus mirrors the appointment variant: 0 affected rows means the
// entry changed status underneath us.
func (r *waitlistRepository) UpdateIfStatus(db *gorm.DB, entry *entity.WaitlistEntry, expected entity.WaitlistStatus) (int64, error) {
	result := db.Model(entry).
		Where("status = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(entry)
	return result.RowsAffected, result.Error
}

func (r *waitlistRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.WaitlistEntry{})
	return result.RowsAffected, result.Error
}

func (r *waitlistRepository) ExpireBefore(db *gorm.DB, date time.Time) (int64, error) {
	result := db.Model(&entity.WaitlistEntry{}).
		Where("status IN ? AND preferred_date < ?", entity.OpenWaitlistStatuses(), wallclock.FormatDate(date)).
		Update("status", entity.WaitlistExpired)
	return result.RowsAffected, result.Error
}
