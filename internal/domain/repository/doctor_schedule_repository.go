package repository

import (
	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DoctorScheduleRepository interface {
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error)
	FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day entity.Weekday) (*entity.DoctorSchedule, error)
	Upsert(db *gorm.DB, schedules []entity.DoctorSchedule) error
	// CreateMissing inserts rows for days the doctor has no entry for yet and
	// returns how many were created.
	CreateMissing(db *gorm.DB, schedules []entity.DoctorSchedule) (int64, error)
}
