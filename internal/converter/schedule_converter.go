package converter

import (
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
)

// WeeklyScheduleToResponse lays the stored rows out Monday to Sunday. Days
// without a row are reported as unavailable and not configured.
func WeeklyScheduleToResponse(doctorID uuid.UUID, schedules []entity.DoctorSchedule) *dto.WeeklyScheduleResponse {
	byDay := make(map[entity.Weekday]entity.DoctorSchedule, len(schedules))
	for _, s := range schedules {
		byDay[s.DayOfWeek] = s
	}

	days := entity.Weekdays()
	response := &dto.WeeklyScheduleResponse{
		DoctorID: doctorID,
		Days:     make([]dto.DayScheduleResponse, len(days)),
	}
	for i, day := range days {
		s, ok := byDay[day]
		if !ok {
			response.Days[i] = dto.DayScheduleResponse{DayOfWeek: string(day)}
			continue
		}
		response.Days[i] = dto.DayScheduleResponse{
			DayOfWeek:   string(day),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
			IsAvailable: s.IsAvailable,
			Configured:  true,
		}
	}
	return response
}

// ShiftToResponse converts a Shift entity to ShiftResponse DTO
func ShiftToResponse(shift *entity.Shift) *dto.ShiftResponse {
	if shift == nil {
		return nil
	}

	return &dto.ShiftResponse{
		ID:        shift.ID,
		DoctorID:  shift.DoctorID,
		Date:      wallclock.FormatDate(shift.Date),
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		ShiftType: string(shift.ShiftType),
		Status:    string(shift.Status),
		Notes:     shift.Notes,
		CreatedAt: shift.CreatedAt,
		UpdatedAt: shift.UpdatedAt,
	}
}

// ShiftsToResponses converts a slice of Shift entities to slice of ShiftResponse DTOs
func ShiftsToResponses(shifts []entity.Shift) []dto.ShiftResponse {
	responses := make([]dto.ShiftResponse, len(shifts))
	for i := range shifts {
		responses[i] = *ShiftToResponse(&shifts[i])
	}
	return responses
}
