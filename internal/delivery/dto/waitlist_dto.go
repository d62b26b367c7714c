package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateWaitlistRequest struct {
	DoctorID      uuid.UUID `json:"doctor_id" validate:"required"`
	PatientID     uuid.UUID `json:"patient_id" validate:"required"`
	PreferredDate string    `json:"preferred_date" validate:"omitempty,date"`
	PreferredTime string    `json:"preferred_time" validate:"omitempty,hhmm"`
	Reason        string    `json:"reason" validate:"omitempty,max=1000"`
	Priority      string    `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
}

type UpdateWaitlistRequest struct {
	PreferredDate *string `json:"preferred_date" validate:"omitempty,date"`
	PreferredTime *string `json:"preferred_time" validate:"omitempty,hhmm"`
	Reason        *string `json:"reason" validate:"omitempty,max=1000"`
	Priority      *string `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	Status        *string `json:"status" validate:"omitempty,oneof=WAITING CANCELLED"`
}

// BookWaitlistRequest converts an entry into an appointment. Date and time
// default to the entry's preferences.
type BookWaitlistRequest struct {
	AppointmentDate string `json:"appointment_date" validate:"omitempty,date"`
	AppointmentTime string `json:"appointment_time" validate:"omitempty,hhmm"`
	Duration        int    `json:"duration" validate:"omitempty,min=5,max=480"`
	Type            string `json:"type" validate:"omitempty,oneof=CONSULTATION FOLLOW_UP CHECKUP EMERGENCY PROCEDURE"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs

type WaitlistResponse struct {
	ID            uuid.UUID  `json:"id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	PreferredDate string     `json:"preferred_date,omitempty"`
	PreferredTime string     `json:"preferred_time,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	IsNotified    bool       `json:"is_notified"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type WaitlistListResponse struct {
	Entries []WaitlistResponse `json:"entries"`
	Total   int                `json:"total"`
}

type WaitlistBookingResponse struct {
	Entry       WaitlistResponse    `json:"entry"`
	Appointment AppointmentResponse `json:"appointment"`
}
