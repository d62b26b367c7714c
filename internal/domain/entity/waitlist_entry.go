package entity

import (
	"time"

	"clinic-scheduler/internal/domain/apperror"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
)

type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "WAITING"
	WaitlistNotified  WaitlistStatus = "NOTIFIED"
	WaitlistScheduled WaitlistStatus = "SCHEDULED"
	WaitlistCancelled WaitlistStatus = "CANCELLED"
	WaitlistExpired   WaitlistStatus = "EXPIRED"
)

func (s WaitlistStatus) IsValid() bool {
	switch s {
	case WaitlistWaiting, WaitlistNotified, WaitlistScheduled, WaitlistCancelled, WaitlistExpired:
		return true
	}
	return false
}

// IsOpen reports whether the entry still wants an appointment.
func (s WaitlistStatus) IsOpen() bool {
	return s == WaitlistWaiting || s == WaitlistNotified
}

// OpenWaitlistStatuses lists the statuses of entries still seeking a slot.
func OpenWaitlistStatuses() []WaitlistStatus {
	return []WaitlistStatus{WaitlistWaiting, WaitlistNotified}
}

var (
	ErrWaitlistClosed     = apperror.State("WAITLIST_CLOSED", "waitlist entry is no longer waiting")
	ErrWaitlistNotWaiting = apperror.State("WAITLIST_NOT_WAITING", "only waiting or notified entries can be notified")
)

// WaitlistEntry records a patient preference that could not be booked
// immediately. It is linked to doctor and patient only, never to a slot.
type WaitlistEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"patient_id"`
	PreferredDate *time.Time     `gorm:"type:date" json:"preferred_date,omitempty"`
	PreferredTime string         `gorm:"type:varchar(5)" json:"preferred_time,omitempty"`
	Reason        string         `gorm:"type:text" json:"reason,omitempty"`
	Priority      Priority       `gorm:"type:varchar(10);not null" json:"priority"`
	Status        WaitlistStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	IsNotified    bool           `gorm:"not null" json:"is_notified"`
	NotifiedAt    *time.Time     `json:"notified_at,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}

// Accepts reports whether an opening on date at hhmm satisfies the entry's
// preferences. Unset preferences accept anything.
func (w *WaitlistEntry) Accepts(date time.Time, hhmm string) bool {
	if w.PreferredDate != nil && !wallclock.SameDate(*w.PreferredDate, date) {
		return false
	}
	if w.PreferredTime != "" && w.PreferredTime != hhmm {
		return false
	}
	return true
}

// Notify offers an opening to the entry.
func (w *WaitlistEntry) Notify(now time.Time) error {
	if !w.Status.IsOpen() {
		return ErrWaitlistNotWaiting
	}
	w.Status = WaitlistNotified
	w.IsNotified = true
	w.NotifiedAt = &now
	return nil
}

// MarkScheduled closes the entry after it was converted into an appointment.
func (w *WaitlistEntry) MarkScheduled() error {
	if !w.Status.IsOpen() {
		return ErrWaitlistClosed
	}
	w.Status = WaitlistScheduled
	return nil
}

// WaitlistFilter narrows waitlist listings.
type WaitlistFilter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Status    WaitlistStatus
}
