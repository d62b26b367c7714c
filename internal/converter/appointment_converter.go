package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/pkg/wallclock"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                  appointment.ID,
		DoctorID:            appointment.DoctorID,
		PatientID:           appointment.PatientID,
		AppointmentDate:     wallclock.FormatDate(appointment.AppointmentDate),
		AppointmentTime:     appointment.AppointmentTime,
		Duration:            appointment.Duration,
		Status:              string(appointment.Status),
		Type:                string(appointment.Type),
		Priority:            string(appointment.Priority),
		Reason:              appointment.Reason,
		Symptoms:            appointment.Symptoms,
		Notes:               appointment.Notes,
		Diagnosis:           appointment.Diagnosis,
		IsRecurring:         appointment.IsRecurring,
		ParentAppointmentID: appointment.ParentAppointmentID,
		CheckedInAt:         appointment.CheckedInAt,
		CheckedOutAt:        appointment.CheckedOutAt,
		CancelledAt:         appointment.CancelledAt,
		CancelledBy:         appointment.CancelledBy,
		CancellationReason:  appointment.CancellationReason,
		CreatedAt:           appointment.CreatedAt,
		UpdatedAt:           appointment.UpdatedAt,
	}

	if appointment.RecurringPattern != nil {
		response.RecurringPattern = string(*appointment.RecurringPattern)
	}
	if appointment.RecurringEndDate != nil {
		response.RecurringEndDate = wallclock.FormatDate(*appointment.RecurringEndDate)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
