package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/response"
	"clinic-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase  usecase.AppointmentUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAppointmentHandler(
	appointmentUsecase usecase.AppointmentUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	validator *validator.CustomValidator,
) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase:  appointmentUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// queryParam reads the first non-empty of the given names, so both
// doctor_id and doctorId are accepted.
func queryParam(q url.Values, names ...string) string {
	for _, name := range names {
		if v := q.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func parseOptionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	doctorID, err := parseOptionalUUID(queryParam(q, "doctor_id", "doctorId"))
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID", nil)
		return
	}
	patientID, err := parseOptionalUUID(queryParam(q, "patient_id", "patientId"))
	if err != nil {
		response.BadRequest(w, "Invalid patient ID", nil)
		return
	}

	filter := &entity.AppointmentFilter{
		DoctorID:  doctorID,
		PatientID: patientID,
		Status:    entity.AppointmentStatus(q.Get("status")),
		Type:      entity.AppointmentType(q.Get("type")),
		Date:      q.Get("date"),
		StartDate: queryParam(q, "start_date", "startDate"),
		EndDate:   queryParam(q, "end_date", "endDate"),
	}

	appointments, err := h.appointmentUsecase.ListAppointments(r.Context(), filter)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetAppointment(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	series, err := h.appointmentUsecase.GetSeries(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get appointment series")
		return
	}

	response.Success(w, http.StatusOK, "Appointment series retrieved successfully", series)
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	created, err := h.appointmentUsecase.CreateAppointment(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create appointment")
		return
	}

	response.Created(w, "Appointment created successfully", created)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.UpdateAppointment(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) GetAvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctorID, err := uuid.Parse(queryParam(q, "doctor_id", "doctorId"))
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID", nil)
		return
	}

	slots, err := h.availabilityUsecase.GetAvailableSlots(r.Context(), doctorID, q.Get("date"))
	if err != nil {
		writeError(w, err, "Failed to get available slots")
		return
	}

	response.Success(w, http.StatusOK, "Available slots retrieved successfully", slots)
}

func (h *AppointmentHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctorID, err := uuid.Parse(queryParam(q, "doctor_id", "doctorId"))
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID", nil)
		return
	}

	var duration int
	if raw := q.Get("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid duration", nil)
			return
		}
	}

	conflict, err := h.availabilityUsecase.HasConflict(r.Context(), doctorID, q.Get("date"), q.Get("time"), duration)
	if err != nil {
		writeError(w, err, "Failed to check conflict")
		return
	}

	response.Success(w, http.StatusOK, "Conflict checked successfully", map[string]bool{"has_conflict": conflict})
}

func (h *AppointmentHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.ConfirmAppointment, "Appointment confirmed successfully", "Failed to confirm appointment")
}

func (h *AppointmentHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.CheckIn, "Appointment checked in successfully", "Failed to check in appointment")
}

func (h *AppointmentHandler) StartAppointment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.StartAppointment, "Appointment started successfully", "Failed to start appointment")
}

func (h *AppointmentHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.CheckOut, "Appointment checked out successfully", "Failed to check out appointment")
}

func (h *AppointmentHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.appointmentUsecase.MarkNoShow, "Appointment marked as no-show", "Failed to mark appointment as no-show")
}

// CancelAppointment accepts an optional body with a reason.
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	var req dto.CancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.appointmentUsecase.CancelAppointment(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

func (h *AppointmentHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error),
	successMessage, failureMessage string,
) {
	id, ok := appointmentID(w, r)
	if !ok {
		return
	}

	appointment, err := apply(r.Context(), id)
	if err != nil {
		writeError(w, err, failureMessage)
		return
	}

	response.Success(w, http.StatusOK, successMessage, appointment)
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid appointment ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
