package entity

import (
	"time"

	"clinic-scheduler/internal/domain/apperror"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
)

// AppointmentStatus is the lifecycle state of an appointment.
//
//	SCHEDULED -> CONFIRMED -> CHECKED_IN -> IN_PROGRESS -> COMPLETED
//
// CANCELLED and NO_SHOW are side exits. COMPLETED, CANCELLED and NO_SHOW are
// terminal.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusCheckedIn  AppointmentStatus = "CHECKED_IN"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

var appointmentStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusCheckedIn,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

func (s AppointmentStatus) IsValid() bool {
	for _, status := range appointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	case StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress:
		return false
	}
	return false
}

// HoldsSlot reports whether an appointment in this status occupies its
// doctor/date/time.
func (s AppointmentStatus) HoldsSlot() bool {
	switch s {
	case StatusCancelled, StatusNoShow:
		return false
	case StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// IsUpcoming reports whether the visit has not started yet.
func (s AppointmentStatus) IsUpcoming() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// ReleasedStatuses are the statuses that free a slot for rebooking, the
// complement of HoldsSlot. Repository queries and the active-slot index
// filter on this list.
func ReleasedStatuses() []AppointmentStatus {
	var released []AppointmentStatus
	for _, status := range appointmentStatuses {
		if !status.HoldsSlot() {
			released = append(released, status)
		}
	}
	return released
}

type AppointmentType string

const (
	TypeConsultation AppointmentType = "CONSULTATION"
	TypeFollowUp     AppointmentType = "FOLLOW_UP"
	TypeCheckup      AppointmentType = "CHECKUP"
	TypeEmergency    AppointmentType = "EMERGENCY"
	TypeProcedure    AppointmentType = "PROCEDURE"
)

func (t AppointmentType) IsValid() bool {
	switch t {
	case TypeConsultation, TypeFollowUp, TypeCheckup, TypeEmergency, TypeProcedure:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// Rank orders priorities; higher is more urgent, 0 means invalid.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityNormal:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// RecurringPattern is the step between instances of a recurring series.
type RecurringPattern string

const (
	PatternDaily    RecurringPattern = "DAILY"
	PatternWeekly   RecurringPattern = "WEEKLY"
	PatternBiweekly RecurringPattern = "BIWEEKLY"
	PatternMonthly  RecurringPattern = "MONTHLY"
)

func (p RecurringPattern) IsValid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternBiweekly, PatternMonthly:
		return true
	}
	return false
}

// Occurrence returns the date of the n-th instance after seed (n=0 is the
// seed). Monthly steps are computed from the seed and clamp to the last day
// of shorter months.
func (p RecurringPattern) Occurrence(seed time.Time, n int) time.Time {
	switch p {
	case PatternDaily:
		return seed.AddDate(0, 0, n)
	case PatternWeekly:
		return seed.AddDate(0, 0, 7*n)
	case PatternBiweekly:
		return seed.AddDate(0, 0, 14*n)
	case PatternMonthly:
		return addMonthsClamped(seed, n)
	}
	return seed
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// CheckInWindow bounds when a patient may check in relative to the start.
type CheckInWindow struct {
	Early time.Duration
	Late  time.Duration
}

// Lifecycle guard violations.
var (
	ErrAlreadyCheckedIn     = apperror.State("ALREADY_CHECKED_IN", "appointment is already checked in")
	ErrCheckInNotAllowed    = apperror.State("CHECKIN_NOT_ALLOWED", "only scheduled or confirmed appointments can be checked in")
	ErrCheckInTooEarly      = apperror.State("CHECKIN_TOO_EARLY", "check-in is not open yet")
	ErrCheckInTooLate       = apperror.State("CHECKIN_TOO_LATE", "check-in window has closed")
	ErrConfirmNotAllowed    = apperror.State("CONFIRM_NOT_ALLOWED", "only scheduled appointments can be confirmed")
	ErrStartNotAllowed      = apperror.State("START_NOT_ALLOWED", "only checked-in appointments can be started")
	ErrCheckOutNotAllowed   = apperror.State("CHECKOUT_NOT_ALLOWED", "only checked-in or in-progress appointments can be checked out")
	ErrCancelNotAllowed     = apperror.State("CANCEL_NOT_ALLOWED", "appointment is already cancelled, completed or marked as no-show")
	ErrNoShowNotAllowed     = apperror.State("NO_SHOW_NOT_ALLOWED", "only scheduled or confirmed appointments can be marked as no-show")
	ErrNoShowBeforeStart    = apperror.State("NO_SHOW_BEFORE_START", "appointment has not started yet")
	ErrRescheduleNotAllowed = apperror.State("RESCHEDULE_NOT_ALLOWED", "only scheduled or confirmed appointments can be rescheduled")
	ErrRescheduleStarted    = apperror.State("RESCHEDULE_PAST", "appointment time has already passed")
	ErrEditNotAllowed       = apperror.State("EDIT_NOT_ALLOWED", "completed, cancelled or no-show appointments cannot be edited")
)

// Appointment is a booked visit. Recurring children point at the seed via
// ParentAppointmentID.
type Appointment struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentDate     time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	AppointmentTime     string            `gorm:"type:varchar(5);not null" json:"appointment_time"`
	Duration            int               `gorm:"not null" json:"duration"`
	Status              AppointmentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Type                AppointmentType   `gorm:"type:varchar(20);not null" json:"type"`
	Priority            Priority          `gorm:"type:varchar(10);not null" json:"priority"`
	Reason              string            `gorm:"type:text" json:"reason,omitempty"`
	Symptoms            string            `gorm:"type:text" json:"symptoms,omitempty"`
	Notes               string            `gorm:"type:text" json:"notes,omitempty"`
	Diagnosis           string            `gorm:"type:text" json:"diagnosis,omitempty"`
	IsRecurring         bool              `gorm:"not null" json:"is_recurring"`
	RecurringPattern    *RecurringPattern `gorm:"type:varchar(10)" json:"recurring_pattern,omitempty"`
	RecurringEndDate    *time.Time        `gorm:"type:date" json:"recurring_end_date,omitempty"`
	ParentAppointmentID *uuid.UUID        `gorm:"type:uuid;index" json:"parent_appointment_id,omitempty"`
	CheckedInAt         *time.Time        `json:"checked_in_at,omitempty"`
	CheckedOutAt        *time.Time        `json:"checked_out_at,omitempty"`
	CancelledAt         *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy         *uuid.UUID        `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CancellationReason  string            `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CreatedBy           *uuid.UUID        `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// StartsAt places the appointment on the clinic's wall clock.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return wallclock.Combine(a.AppointmentDate, a.AppointmentTime, loc)
}

// Interval returns [start, start+duration) in minutes since midnight.
func (a *Appointment) Interval(defaultDuration int) (start, duration int, err error) {
	start, err = wallclock.Parse(a.AppointmentTime)
	if err != nil {
		return 0, 0, err
	}
	duration = a.Duration
	if duration <= 0 {
		duration = defaultDuration
	}
	return start, duration, nil
}

// IsSeriesSeed reports whether a is the first instance of a recurring series.
func (a *Appointment) IsSeriesSeed() bool {
	return a.IsRecurring && a.ParentAppointmentID == nil
}

// Confirm moves SCHEDULED to CONFIRMED.
func (a *Appointment) Confirm() error {
	if a.Status != StatusScheduled {
		return ErrConfirmNotAllowed
	}
	a.Status = StatusConfirmed
	return nil
}

// CheckIn admits the patient when now is within the window around startsAt.
func (a *Appointment) CheckIn(now, startsAt time.Time, window CheckInWindow) error {
	if a.CheckedInAt != nil {
		return ErrAlreadyCheckedIn
	}
	if !a.Status.IsUpcoming() {
		return ErrCheckInNotAllowed
	}
	opens := startsAt.Add(-window.Early)
	closes := startsAt.Add(window.Late)
	if now.Before(opens) {
		return ErrCheckInTooEarly.WithDetails(map[string]interface{}{
			"opens_at": opens,
		})
	}
	if now.After(closes) {
		return ErrCheckInTooLate.WithDetails(map[string]interface{}{
			"closed_at": closes,
		})
	}
	a.CheckedInAt = &now
	a.Status = StatusCheckedIn
	return nil
}

// Start moves CHECKED_IN to IN_PROGRESS.
func (a *Appointment) Start() error {
	if a.Status != StatusCheckedIn {
		return ErrStartNotAllowed
	}
	a.Status = StatusInProgress
	return nil
}

// CheckOut completes a visit that is checked in or in progress.
func (a *Appointment) CheckOut(now time.Time) error {
	if a.Status != StatusCheckedIn && a.Status != StatusInProgress {
		return ErrCheckOutNotAllowed
	}
	a.CheckedOutAt = &now
	a.Status = StatusCompleted
	return nil
}

// Cancel retires a non-terminal appointment. Series members are cancelled
// individually.
func (a *Appointment) Cancel(now time.Time, by *uuid.UUID, reason string) error {
	if a.Status.IsTerminal() {
		return ErrCancelNotAllowed
	}
	a.CancelledAt = &now
	a.CancelledBy = by
	a.CancellationReason = reason
	a.Status = StatusCancelled
	return nil
}

// MarkNoShow retires an appointment whose patient never arrived.
func (a *Appointment) MarkNoShow(now, startsAt time.Time) error {
	if !a.Status.IsUpcoming() || a.CheckedInAt != nil {
		return ErrNoShowNotAllowed
	}
	if now.Before(startsAt) {
		return ErrNoShowBeforeStart
	}
	a.Status = StatusNoShow
	return nil
}

// CanEdit guards free-text edits.
func (a *Appointment) CanEdit() error {
	if a.Status.IsTerminal() {
		return ErrEditNotAllowed
	}
	return nil
}

// CanReschedule guards date/time/duration changes: the visit must still be
// upcoming.
func (a *Appointment) CanReschedule(now, startsAt time.Time) error {
	if !a.Status.IsUpcoming() || a.CheckedInAt != nil {
		return ErrRescheduleNotAllowed
	}
	if !startsAt.After(now) {
		return ErrRescheduleStarted
	}
	return nil
}
