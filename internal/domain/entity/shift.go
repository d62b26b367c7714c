package entity

import (
	"time"

	"github.com/google/uuid"
)

type ShiftType string

const (
	ShiftTypeRegular  ShiftType = "REGULAR"
	ShiftTypeCovering ShiftType = "COVERING"
	ShiftTypeOnCall   ShiftType = "ON_CALL"
	ShiftTypeOvertime ShiftType = "OVERTIME"
)

func (t ShiftType) IsValid() bool {
	switch t {
	case ShiftTypeRegular, ShiftTypeCovering, ShiftTypeOnCall, ShiftTypeOvertime:
		return true
	}
	return false
}

type ShiftStatus string

const (
	ShiftStatusScheduled ShiftStatus = "SCHEDULED"
	ShiftStatusConfirmed ShiftStatus = "CONFIRMED"
	ShiftStatusCancelled ShiftStatus = "CANCELLED"
	ShiftStatusCompleted ShiftStatus = "COMPLETED"
)

func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftStatusScheduled, ShiftStatusConfirmed, ShiftStatusCancelled, ShiftStatusCompleted:
		return true
	}
	return false
}

// Shift is a date-specific operational override. Slot resolution reads only
// the weekly template; shifts are informational.
type Shift struct {
	ID        int         `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID   `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Date      time.Time   `gorm:"column:shift_date;type:date;not null;index" json:"date"`
	StartTime string      `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string      `gorm:"type:varchar(5);not null" json:"end_time"`
	ShiftType ShiftType   `gorm:"type:varchar(20);not null" json:"shift_type"`
	Status    ShiftStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes     string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Shift) TableName() string {
	return "shifts"
}

// ShiftFilter narrows shift listings. Dates are YYYY-MM-DD, empty means open.
type ShiftFilter struct {
	StartDate string
	EndDate   string
	Status    ShiftStatus
}
