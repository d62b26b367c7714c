package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/response"
	"clinic-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorScheduleHandler struct {
	scheduleUsecase usecase.DoctorScheduleUsecase
	validator       *validator.CustomValidator
}

func NewDoctorScheduleHandler(scheduleUsecase usecase.DoctorScheduleUsecase, validator *validator.CustomValidator) *DoctorScheduleHandler {
	return &DoctorScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		validator:       validator,
	}
}

func (h *DoctorScheduleHandler) GetWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDVar(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleUsecase.GetWeeklySchedule(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", schedule)
}

func (h *DoctorScheduleHandler) InitializeDefaultSchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDVar(w, r)
	if !ok {
		return
	}

	schedule, err := h.scheduleUsecase.InitializeDefaultSchedule(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to initialize schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule initialized successfully", schedule)
}

func (h *DoctorScheduleHandler) UpdateWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDVar(w, r)
	if !ok {
		return
	}

	var req dto.UpdateWeeklyScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.scheduleUsecase.UpdateWeeklySchedule(r.Context(), doctorID, &req)
	if err != nil {
		writeError(w, err, "Failed to update schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule updated successfully", schedule)
}

func (h *DoctorScheduleHandler) CreateShift(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDVar(w, r)
	if !ok {
		return
	}

	var req dto.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	shift, err := h.scheduleUsecase.CreateShift(r.Context(), doctorID, &req)
	if err != nil {
		writeError(w, err, "Failed to create shift")
		return
	}

	response.Created(w, "Shift created successfully", shift)
}

func (h *DoctorScheduleHandler) GetShifts(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDVar(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := &entity.ShiftFilter{
		StartDate: queryParam(q, "start_date", "startDate"),
		EndDate:   queryParam(q, "end_date", "endDate"),
		Status:    entity.ShiftStatus(q.Get("status")),
	}

	shifts, err := h.scheduleUsecase.GetShifts(r.Context(), doctorID, filter)
	if err != nil {
		writeError(w, err, "Failed to get shifts")
		return
	}

	response.Success(w, http.StatusOK, "Shifts retrieved successfully", shifts)
}

func (h *DoctorScheduleHandler) GetShift(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := shiftIDVar(w, r)
	if !ok {
		return
	}

	shift, err := h.scheduleUsecase.GetShift(r.Context(), shiftID)
	if err != nil {
		writeError(w, err, "Failed to get shift")
		return
	}

	response.Success(w, http.StatusOK, "Shift retrieved successfully", shift)
}

func (h *DoctorScheduleHandler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := shiftIDVar(w, r)
	if !ok {
		return
	}

	var req dto.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	shift, err := h.scheduleUsecase.UpdateShift(r.Context(), shiftID, &req)
	if err != nil {
		writeError(w, err, "Failed to update shift")
		return
	}

	response.Success(w, http.StatusOK, "Shift updated successfully", shift)
}

func (h *DoctorScheduleHandler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shiftID, ok := shiftIDVar(w, r)
	if !ok {
		return
	}

	if err := h.scheduleUsecase.DeleteShift(r.Context(), shiftID); err != nil {
		writeError(w, err, "Failed to delete shift")
		return
	}

	response.Success(w, http.StatusOK, "Shift deleted successfully", nil)
}

func doctorIDVar(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	doctorID, err := uuid.Parse(mux.Vars(r)["doctorId"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID", nil)
		return uuid.Nil, false
	}
	return doctorID, true
}

func shiftIDVar(w http.ResponseWriter, r *http.Request) (int, bool) {
	shiftID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid shift ID", nil)
		return 0, false
	}
	return shiftID, true
}
