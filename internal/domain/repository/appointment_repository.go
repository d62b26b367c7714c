package repository

import (
	"time"

	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	// CreateBatch inserts recurring children inside a savepoint. On failure
	// the savepoint is rolled back and the enclosing transaction stays usable.
	CreateBatch(db *gorm.DB, appointments []entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	FindActiveByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error)
	FindSeries(db *gorm.DB, seedID uuid.UUID) ([]entity.Appointment, error)
	// UpdateIfStatus saves appointment only while its stored status is still
	// expected. Returns affected rows: 0 means a concurrent change won.
	UpdateIfStatus(db *gorm.DB, appointment *entity.Appointment, expected entity.AppointmentStatus) (int64, error)
	// LockDoctorDay serializes bookings for one doctor and date until the
	// enclosing transaction ends.
	LockDoctorDay(db *gorm.DB, doctorID uuid.UUID, date time.Time) error
}
