package usecase

import (
	"fmt"
	"time"

	"clinic-scheduler/config"
	"clinic-scheduler/internal/domain/entity"
)

// SchedulingPolicy holds the clinic-wide booking rules.
type SchedulingPolicy struct {
	// Location is the clinic's wall clock. Appointment dates and "HH:MM"
	// times are interpreted in it.
	Location           *time.Location
	SlotGranularity    int
	DefaultDuration    int
	CheckInWindow      entity.CheckInWindow
	MaxOccurrences     int
	WaitlistAutoNotify bool
}

func DefaultSchedulingPolicy() SchedulingPolicy {
	return SchedulingPolicy{
		Location:        time.UTC,
		SlotGranularity: 30,
		DefaultDuration: 30,
		CheckInWindow: entity.CheckInWindow{
			Early: 15 * time.Minute,
			Late:  30 * time.Minute,
		},
		MaxOccurrences: 366,
	}
}

// NewSchedulingPolicy builds the policy from configuration, falling back to
// defaults for unset values.
func NewSchedulingPolicy(cfg *config.Config) (SchedulingPolicy, error) {
	policy := DefaultSchedulingPolicy()

	if cfg.App.Timezone != "" {
		loc, err := time.LoadLocation(cfg.App.Timezone)
		if err != nil {
			return policy, fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
		}
		policy.Location = loc
	}

	s := cfg.Scheduling
	if s.SlotMinutes > 0 {
		policy.SlotGranularity = s.SlotMinutes
	}
	if s.DefaultDurationMinutes > 0 {
		policy.DefaultDuration = s.DefaultDurationMinutes
	}
	if s.CheckInEarly > 0 {
		policy.CheckInWindow.Early = s.CheckInEarly
	}
	if s.CheckInLate > 0 {
		policy.CheckInWindow.Late = s.CheckInLate
	}
	if s.MaxOccurrences > 0 {
		policy.MaxOccurrences = s.MaxOccurrences
	}
	policy.WaitlistAutoNotify = s.WaitlistAutoNotify

	return policy, nil
}

// today returns the clinic's current calendar date as midnight UTC.
func (p SchedulingPolicy) today(now time.Time) time.Time {
	y, m, d := now.In(p.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
