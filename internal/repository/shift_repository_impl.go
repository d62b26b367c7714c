package repository

import (
	"errors"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type shiftRepository struct{}

func NewShiftRepository() domainRepo.ShiftRepository {
	return &shiftRepository{}
}

func (r *shiftRepository) Create(db *gorm.DB, shift *entity.Shift) error {
	return db.Create(shift).Error
}

func (r *shiftRepository) FindByID(db *gorm.DB, id int) (*entity.Shift, error) {
	var shift entity.Shift
	err := db.Where("id = ?", id).First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, filter *entity.ShiftFilter) ([]entity.Shift, error) {
	var shifts []entity.Shift
	query := db.Where("doctor_id = ?", doctorID)

	if filter != nil {
		if filter.StartDate != "" {
			query = query.Where("shift_date >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			query = query.Where("shift_date <= ?", filter.EndDate)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	err := query.Order("shift_date ASC, start_time ASC").Find(&shifts).Error
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *shiftRepository) Update(db *gorm.DB, shift *entity.Shift) error {
	return db.Save(shift).Error
}

func (r *shiftRepository) Delete(db *gorm.DB, id int) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Shift{})
	return result.RowsAffected, result.Error
}
