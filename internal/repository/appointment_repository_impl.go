package repository

import (
	"errors"
	"fmt"
	"time"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	seriesSavepoint = "series_children"
	createBatchSize = 100
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) CreateBatch(db *gorm.DB, appointments []entity.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}
	if err := db.SavePoint(seriesSavepoint).Error; err != nil {
		return err
	}
	if err := db.CreateInBatches(appointments, createBatchSize).Error; err != nil {
		if rbErr := db.RollbackTo(seriesSavepoint).Error; rbErr != nil {
			return fmt.Errorf("rollback to %s: %v: %w", seriesSavepoint, rbErr, err)
		}
		return err
	}
	return nil
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Model(&entity.Appointment{})

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
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
		if filter.Date != "" {
			query = query.Where("appointment_date = ?", filter.Date)
		} else {
			if filter.StartDate != "" {
				query = query.Where("appointment_date >= ?", filter.StartDate)
			}
			if filter.EndDate != "" {
				query = query.Where("appointment_date <= ?", filter.EndDate)
			}
		}
	}

	err := query.Order("appointment_date ASC, appointment_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindActiveByDoctorAndDate returns the appointments still holding time on
// the doctor's day.
func (r *appointmentRepository) FindActiveByDoctorAndDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND appointment_date = ? AND status NOT IN ?",
		doctorID, wallclock.FormatDate(date), entity.ReleasedStatuses()).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindSeries(db *gorm.DB, seedID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("id = ? OR parent_appointment_id = ?", seedID, seedID).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateIfStatus writes every column only while the stored status still
// matches expected. Returns affected rows: 1 = saved, 0 = lost the race.
func (r *appointmentRepository) UpdateIfStatus(db *gorm.DB, appointment *entity.Appointment, expected entity.AppointmentStatus) (int64, error) {
	result := db.Model(appointment).
		Where("status = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(appointment)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) LockDoctorDay(db *gorm.DB, doctorID uuid.UUID, date time.Time) error {
	key := doctorID.String() + "|" + wallclock.FormatDate(date)
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
