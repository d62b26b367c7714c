package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type DayScheduleRequest struct {
	DayOfWeek   string `json:"day_of_week" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime   string `json:"start_time" validate:"required,hhmm"` // Format: HH:MM
	EndTime     string `json:"end_time" validate:"required,hhmm"`   // Format: HH:MM
	IsAvailable bool   `json:"is_available"`
}

type UpdateWeeklyScheduleRequest struct {
	Days []DayScheduleRequest `json:"days" validate:"required,min=1,max=7,dive"`
}

type CreateShiftRequest struct {
	Date      string `json:"date" validate:"required,date"`       // Format: YYYY-MM-DD
	StartTime string `json:"start_time" validate:"required,hhmm"` // Format: HH:MM
	EndTime   string `json:"end_time" validate:"required,hhmm"`   // Format: HH:MM
	ShiftType string `json:"shift_type" validate:"omitempty,oneof=REGULAR COVERING ON_CALL OVERTIME"`
	Notes     string `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateShiftRequest struct {
	StartTime *string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime   *string `json:"end_time" validate:"omitempty,hhmm"`
	ShiftType *string `json:"shift_type" validate:"omitempty,oneof=REGULAR COVERING ON_CALL OVERTIME"`
	Status    *string `json:"status" validate:"omitempty,oneof=SCHEDULED CONFIRMED CANCELLED COMPLETED"`
	Notes     *string `json:"notes" validate:"omitempty,max=1000"`
}

// Response DTOs

type DayScheduleResponse struct {
	DayOfWeek   string `json:"day_of_week"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	IsAvailable bool   `json:"is_available"`
	Configured  bool   `json:"configured"`
}

type WeeklyScheduleResponse struct {
	DoctorID uuid.UUID             `json:"doctor_id"`
	Days     []DayScheduleResponse `json:"days"`
}

type ShiftResponse struct {
	ID        int       `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	ShiftType string    `json:"shift_type"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ShiftListResponse struct {
	Shifts []ShiftResponse `json:"shifts"`
	Total  int             `json:"total"`
}
