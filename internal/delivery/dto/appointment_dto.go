package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID         uuid.UUID `json:"doctor_id" validate:"required"`
	PatientID        uuid.UUID `json:"patient_id" validate:"required"`
	AppointmentDate  string    `json:"appointment_date" validate:"required,date"` // Format: YYYY-MM-DD
	AppointmentTime  string    `json:"appointment_time" validate:"required,hhmm"` // Format: HH:MM
	Duration         int       `json:"duration" validate:"omitempty,min=5,max=480"`
	Type             string    `json:"type" validate:"omitempty,oneof=CONSULTATION FOLLOW_UP CHECKUP EMERGENCY PROCEDURE"`
	Priority         string    `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Reason           string    `json:"reason" validate:"omitempty,max=1000"`
	Symptoms         string    `json:"symptoms" validate:"omitempty,max=2000"`
	Notes            string    `json:"notes" validate:"omitempty,max=2000"`
	IsRecurring      bool      `json:"is_recurring"`
	RecurringPattern string    `json:"recurring_pattern" validate:"omitempty,oneof=DAILY WEEKLY BIWEEKLY MONTHLY"`
	RecurringEndDate string    `json:"recurring_end_date" validate:"omitempty,date"`
}

// UpdateAppointmentRequest carries a partial edit. Date, time and duration
// changes are a reschedule and are re-validated against availability.
type UpdateAppointmentRequest struct {
	AppointmentDate *string `json:"appointment_date" validate:"omitempty,date"`
	AppointmentTime *string `json:"appointment_time" validate:"omitempty,hhmm"`
	Duration        *int    `json:"duration" validate:"omitempty,min=5,max=480"`
	Type            *string `json:"type" validate:"omitempty,oneof=CONSULTATION FOLLOW_UP CHECKUP EMERGENCY PROCEDURE"`
	Priority        *string `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Reason          *string `json:"reason" validate:"omitempty,max=1000"`
	Symptoms        *string `json:"symptoms" validate:"omitempty,max=2000"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
	Diagnosis       *string `json:"diagnosis" validate:"omitempty,max=4000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                  uuid.UUID  `json:"id"`
	DoctorID            uuid.UUID  `json:"doctor_id"`
	PatientID           uuid.UUID  `json:"patient_id"`
	AppointmentDate     string     `json:"appointment_date"`
	AppointmentTime     string     `json:"appointment_time"`
	Duration            int        `json:"duration"`
	Status              string     `json:"status"`
	Type                string     `json:"type"`
	Priority            string     `json:"priority"`
	Reason              string     `json:"reason,omitempty"`
	Symptoms            string     `json:"symptoms,omitempty"`
	Notes               string     `json:"notes,omitempty"`
	Diagnosis           string     `json:"diagnosis,omitempty"`
	IsRecurring         bool       `json:"is_recurring"`
	RecurringPattern    string     `json:"recurring_pattern,omitempty"`
	RecurringEndDate    string     `json:"recurring_end_date,omitempty"`
	ParentAppointmentID *uuid.UUID `json:"parent_appointment_id,omitempty"`
	CheckedInAt         *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt        *time.Time `json:"checked_out_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy         *uuid.UUID `json:"cancelled_by,omitempty"`
	CancellationReason  string     `json:"cancellation_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SkippedOccurrence struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// ExpansionSummary reports what happened to each requested instance of a
// recurring series, the seed included in Requested and Created.
type ExpansionSummary struct {
	Requested int                 `json:"requested"`
	Created   int                 `json:"created"`
	Skipped   []SkippedOccurrence `json:"skipped"`
	Error     string              `json:"error,omitempty"`
}

type CreateAppointmentResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	Series      *ExpansionSummary   `json:"series,omitempty"`
}

type SeriesResponse struct {
	Seed      AppointmentResponse   `json:"seed"`
	Instances []AppointmentResponse `json:"instances"`
	Total     int                   `json:"total"`
}

type AvailableSlotsResponse struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	DayOfWeek string    `json:"day_of_week"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	Slots     []string  `json:"slots"`
}
