package repository

import (
	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(db *gorm.DB, shift *entity.Shift) error
	FindByID(db *gorm.DB, id int) (*entity.Shift, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID, filter *entity.ShiftFilter) ([]entity.Shift, error)
	Update(db *gorm.DB, shift *entity.Shift) error
	Delete(db *gorm.DB, id int) (int64, error)
}
