package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/response"
	"clinic-scheduler/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type WaitlistHandler struct {
	waitlistUsecase usecase.WaitlistUsecase
	validator       *validator.CustomValidator
}

func NewWaitlistHandler(waitlistUsecase usecase.WaitlistUsecase, validator *validator.CustomValidator) *WaitlistHandler {
	return &WaitlistHandler{
		waitlistUsecase: waitlistUsecase,
		validator:       validator,
	}
}

func (h *WaitlistHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
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

	filter := &entity.WaitlistFilter{
		DoctorID:  doctorID,
		PatientID: patientID,
		Status:    entity.WaitlistStatus(q.Get("status")),
	}

	entries, err := h.waitlistUsecase.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, err, "Failed to get waitlist")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist retrieved successfully", entries)
}

func (h *WaitlistHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := waitlistID(w, r)
	if !ok {
		return
	}

	entry, err := h.waitlistUsecase.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get waitlist entry")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist entry retrieved successfully", entry)
}

func (h *WaitlistHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entry, err := h.waitlistUsecase.CreateEntry(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create waitlist entry")
		return
	}

	response.Created(w, "Waitlist entry created successfully", entry)
}

func (h *WaitlistHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := waitlistID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entry, err := h.waitlistUsecase.UpdateEntry(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update waitlist entry")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist entry updated successfully", entry)
}

func (h *WaitlistHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := waitlistID(w, r)
	if !ok {
		return
	}

	if err := h.waitlistUsecase.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete waitlist entry")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist entry deleted successfully", nil)
}

func (h *WaitlistHandler) NotifyEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := waitlistID(w, r)
	if !ok {
		return
	}

	entry, err := h.waitlistUsecase.NotifyEntry(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to notify waitlist entry")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist entry notified successfully", entry)
}

// BookEntry accepts an optional body; without one the entry's preferences
// are booked.
func (h *WaitlistHandler) BookEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := waitlistID(w, r)
	if !ok {
		return
	}

	var req dto.BookWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.waitlistUsecase.BookEntry(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to book waitlist entry")
		return
	}

	response.Created(w, "Waitlist entry booked successfully", booking)
}

func (h *WaitlistHandler) FindCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doctorID, err := uuid.Parse(queryParam(q, "doctor_id", "doctorId"))
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID", nil)
		return
	}

	candidates, err := h.waitlistUsecase.FindCandidates(r.Context(), doctorID, q.Get("date"), q.Get("time"))
	if err != nil {
		writeError(w, err, "Failed to find waitlist candidates")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist candidates retrieved successfully", candidates)
}

func waitlistID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid waitlist entry ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
