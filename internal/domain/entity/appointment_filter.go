package entity

import "github.com/google/uuid"

// AppointmentFilter is a domain-level filter for listing appointments.
// Date and StartDate/EndDate are YYYY-MM-DD; Date wins when both are set.
type AppointmentFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    AppointmentStatus
	Type      AppointmentType
	Date      string
	StartDate string
	EndDate   string
}
