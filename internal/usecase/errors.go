package usecase

import (
	"errors"
	"strings"

	"clinic-scheduler/internal/domain/apperror"

	"github.com/jackc/pgx/v5/pgconn"
)

const activeSlotConstraint = "uq_appointments_active_slot"

var (
	ErrAppointmentNotFound   = apperror.NotFound("APPOINTMENT_NOT_FOUND", "appointment not found")
	ErrWaitlistEntryNotFound = apperror.NotFound("WAITLIST_ENTRY_NOT_FOUND", "waitlist entry not found")
	ErrShiftNotFound         = apperror.NotFound("SHIFT_NOT_FOUND", "shift not found")
	ErrAuditLogNotFound      = apperror.NotFound("AUDIT_LOG_NOT_FOUND", "audit log not found")

	ErrSlotConflict      = apperror.Conflict("SLOT_CONFLICT", "the requested time slot is already booked")
	ErrDoctorUnavailable = apperror.Availability("DOCTOR_UNAVAILABLE", "doctor is not available on this day")
	ErrOutsideHours      = apperror.Availability("OUTSIDE_HOURS", "requested time is outside the doctor's working hours")

	ErrInvalidDate        = apperror.Validation("INVALID_DATE", "invalid date format, use YYYY-MM-DD")
	ErrInvalidTime        = apperror.Validation("INVALID_TIME", "invalid time format, use HH:MM")
	ErrInvalidTimeRange   = apperror.Validation("INVALID_TIME_RANGE", "start time must be before end time")
	ErrInvalidDateRange   = apperror.Validation("INVALID_DATE_RANGE", "start date must not be after end date")
	ErrInvalidDuration    = apperror.Validation("INVALID_DURATION", "duration must be a positive number of minutes")
	ErrInvalidStatus      = apperror.Validation("INVALID_STATUS", "unknown status")
	ErrInvalidType        = apperror.Validation("INVALID_TYPE", "unknown appointment type")
	ErrInvalidPriority    = apperror.Validation("INVALID_PRIORITY", "unknown priority")
	ErrInvalidDayOfWeek   = apperror.Validation("INVALID_DAY_OF_WEEK", "unknown day of week")
	ErrDuplicateDay       = apperror.Validation("DUPLICATE_DAY", "each day of week may appear only once")
	ErrInvalidShiftType   = apperror.Validation("INVALID_SHIFT_TYPE", "unknown shift type")
	ErrMissingDoctor      = apperror.Validation("DOCTOR_REQUIRED", "doctor_id is required")
	ErrMissingPatient     = apperror.Validation("PATIENT_REQUIRED", "patient_id is required")
	ErrAppointmentInPast  = apperror.Validation("APPOINTMENT_IN_PAST", "cannot book an appointment in the past")
	ErrRecurrenceRequired = apperror.Validation("RECURRENCE_REQUIRED", "recurring appointments need a pattern and an end date")
	ErrRecurrenceEnd      = apperror.Validation("RECURRENCE_END_BEFORE_START", "recurring end date must not be before the appointment date")
	ErrTooManyOccurrences = apperror.Validation("TOO_MANY_OCCURRENCES", "recurring series is too long")
	ErrWaitlistSlot       = apperror.Validation("WAITLIST_SLOT_REQUIRED", "appointment date and time are required when the entry has no preference")
	ErrWaitlistStatus     = apperror.Validation("INVALID_WAITLIST_STATUS", "waitlist entries can only be set back to WAITING or CANCELLED")

	ErrConcurrentUpdate = apperror.State("CONCURRENT_UPDATE", "appointment was changed by another request, reload and retry")
	ErrWaitlistChanged  = apperror.State("WAITLIST_CHANGED", "waitlist entry was changed by another request, reload and retry")
)

// isDuplicateKeyError checks if the error is a PostgreSQL unique violation
// on a constraint containing constraintName
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}
