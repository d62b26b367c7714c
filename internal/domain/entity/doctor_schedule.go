package entity

import (
	"errors"
	"time"

	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
)

// Default weekly template applied when a doctor is onboarded.
const (
	DefaultScheduleStart = "09:00"
	DefaultScheduleEnd   = "17:00"
)

var ErrScheduleRange = errors.New("start time must be before end time")

// DoctorSchedule is one row of a doctor's weekly availability template.
// There is at most one row per (doctor, day); a missing row means the doctor
// is not scheduled that day.
type DoctorSchedule struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_doctor_schedules_doctor_day" json:"doctor_id"`
	DayOfWeek   Weekday   `gorm:"type:varchar(10);not null;uniqueIndex:uq_doctor_schedules_doctor_day" json:"day_of_week"`
	StartTime   string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime     string    `gorm:"type:varchar(5);not null" json:"end_time"`
	IsAvailable bool      `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorSchedule) TableName() string {
	return "doctor_schedules"
}

// Bookable reports whether the row offers any slots at all.
func (s *DoctorSchedule) Bookable() bool {
	return s != nil && s.IsAvailable
}

// Hours returns the working window as minutes since midnight.
func (s *DoctorSchedule) Hours() (start, end int, err error) {
	if start, err = wallclock.Parse(s.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = wallclock.Parse(s.EndTime); err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, ErrScheduleRange
	}
	return start, end, nil
}

// Covers reports whether a visit starting at minute falls inside [start, end).
func (s *DoctorSchedule) Covers(minute int) (bool, error) {
	start, end, err := s.Hours()
	if err != nil {
		return false, err
	}
	return minute >= start && minute < end, nil
}

// SlotStarts lists every slot start in [start, end) at the given granularity.
func (s *DoctorSchedule) SlotStarts(granularity int) ([]int, error) {
	if !s.Bookable() {
		return []int{}, nil
	}
	if granularity <= 0 {
		return nil, errors.New("slot granularity must be positive")
	}
	start, end, err := s.Hours()
	if err != nil {
		return nil, err
	}
	starts := make([]int, 0, (end-start)/granularity+1)
	for m := start; m < end; m += granularity {
		starts = append(starts, m)
	}
	return starts, nil
}

// DefaultWeeklyTemplate builds the onboarding template: weekdays 09:00-17:00,
// weekends off.
func DefaultWeeklyTemplate(doctorID uuid.UUID) []DoctorSchedule {
	days := Weekdays()
	schedules := make([]DoctorSchedule, len(days))
	for i, day := range days {
		schedules[i] = DoctorSchedule{
			DoctorID:    doctorID,
			DayOfWeek:   day,
			StartTime:   DefaultScheduleStart,
			EndTime:     DefaultScheduleEnd,
			IsAvailable: !day.IsWeekend(),
		}
	}
	return schedules
}
