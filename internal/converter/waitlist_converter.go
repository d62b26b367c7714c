package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/pkg/wallclock"
)

// WaitlistEntryToResponse converts a WaitlistEntry entity to WaitlistResponse DTO
func WaitlistEntryToResponse(entry *entity.WaitlistEntry) *dto.WaitlistResponse {
	if entry == nil {
		return nil
	}

	response := &dto.WaitlistResponse{
		ID:            entry.ID,
		DoctorID:      entry.DoctorID,
		PatientID:     entry.PatientID,
		PreferredTime: entry.PreferredTime,
		Reason:        entry.Reason,
		Priority:      string(entry.Priority),
		Status:        string(entry.Status),
		IsNotified:    entry.IsNotified,
		NotifiedAt:    entry.NotifiedAt,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
	}
	if entry.PreferredDate != nil {
		response.PreferredDate = wallclock.FormatDate(*entry.PreferredDate)
	}

	return response
}

// WaitlistEntriesToResponses converts a slice of WaitlistEntry entities to slice of WaitlistResponse DTOs
func WaitlistEntriesToResponses(entries []entity.WaitlistEntry) []dto.WaitlistResponse {
	responses := make([]dto.WaitlistResponse, len(entries))
	for i := range entries {
		responses[i] = *WaitlistEntryToResponse(&entries[i])
	}
	return responses
}
