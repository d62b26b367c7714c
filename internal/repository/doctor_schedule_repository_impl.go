package repository

import (
	"errors"

	"clinic-scheduler/internal/domain/entity"
	domainRepo "clinic-scheduler/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type doctorScheduleRepository struct{}

func NewDoctorScheduleRepository() domainRepo.DoctorScheduleRepository {
	return &doctorScheduleRepository{}
}

var scheduleConflictColumns = []clause.Column{{Name: "doctor_id"}, {Name: "day_of_week"}}

func (r *doctorScheduleRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error) {
	var schedules []entity.DoctorSchedule
	err := db.Where("doctor_id = ?", doctorID).Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *doctorScheduleRepository) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day entity.Weekday) (*entity.DoctorSchedule, error) {
	var schedule entity.DoctorSchedule
	err := db.Where("doctor_id = ? AND day_of_week = ?", doctorID, day).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *doctorScheduleRepository) Upsert(db *gorm.DB, schedules []entity.DoctorSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   scheduleConflictColumns,
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "is_available", "updated_at"}),
	}).Create(&schedules).Error
}

func (r *doctorScheduleRepository) CreateMissing(db *gorm.DB, schedules []entity.DoctorSchedule) (int64, error) {
	if len(schedules) == 0 {
		return 0, nil
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   scheduleConflictColumns,
		DoNothing: true,
	}).Create(&schedules)
	return result.RowsAffected, result.Error
}
