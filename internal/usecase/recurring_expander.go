package usecase

import (
	"context"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/apperror"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reasons reported for recurring instances that were not created.
const (
	SkipDoctorUnavailable = "DOCTOR_UNAVAILABLE"
	SkipOutsideHours      = "OUTSIDE_HOURS"
	SkipSlotConflict      = "SLOT_CONFLICT"
	SkipInsertFailed      = "INSERT_FAILED"
)

type recurringExpander struct {
	policy          SchedulingPolicy
	log             *logrus.Logger
	resolver        *availabilityResolver
	appointmentRepo repository.AppointmentRepository
}

// occurrenceDates lists the instance dates after the seed, stepping by the
// pattern while the date is on or before end. A series longer than
// MaxOccurrences, seed included, is rejected.
func (e *recurringExpander) occurrenceDates(seed time.Time, pattern entity.RecurringPattern, end time.Time) ([]time.Time, error) {
	var dates []time.Time
	for n := 1; ; n++ {
		next := pattern.Occurrence(seed, n)
		if next.After(end) {
			break
		}
		if len(dates)+1 >= e.policy.MaxOccurrences {
			return nil, ErrTooManyOccurrences.WithDetails(map[string]interface{}{
				"max_occurrences": e.policy.MaxOccurrences,
			})
		}
		dates = append(dates, next)
	}
	return dates, nil
}

// skipReason maps an availability failure to the reason reported to the
// caller. Any other error is unexpected.
func skipReason(err error) (string, bool) {
	appErr, ok := apperror.As(err)
	if !ok {
		return "", false
	}
	switch {
	case appErr.Is(ErrDoctorUnavailable):
		return SkipDoctorUnavailable, true
	case appErr.Is(ErrOutsideHours):
		return SkipOutsideHours, true
	case appErr.Is(ErrSlotConflict):
		return SkipSlotConflict, true
	}
	return "", false
}

// expand creates the children of seed inside tx. Each candidate date is locked
// and checked like a single booking; failing dates are skipped and reported.
// Children are inserted in one batch. If the batch fails the seed is kept and
// the failure is reported in the summary.
func (e *recurringExpander) expand(ctx context.Context, tx *gorm.DB, seed *entity.Appointment, dates []time.Time) (*dto.ExpansionSummary, error) {
	summary := &dto.ExpansionSummary{
		Requested: len(dates) + 1,
		Created:   1,
		Skipped:   []dto.SkippedOccurrence{},
	}

	children := make([]entity.Appointment, 0, len(dates))
	for _, date := range dates {
		if err := e.appointmentRepo.LockDoctorDay(tx, seed.DoctorID, date); err != nil {
			e.log.Warnf("Failed to lock doctor %s on %s: %+v", seed.DoctorID, wallclock.FormatDate(date), err)
			return nil, err
		}

		err := e.resolver.checkBookable(tx, seed.DoctorID, date, seed.AppointmentTime, seed.Duration, uuid.Nil)
		if err != nil {
			reason, ok := skipReason(err)
			if !ok {
				e.log.Warnf("Failed to check occurrence %s of series %s: %+v", wallclock.FormatDate(date), seed.ID, err)
				return nil, err
			}
			summary.Skipped = append(summary.Skipped, dto.SkippedOccurrence{
				Date:   wallclock.FormatDate(date),
				Reason: reason,
			})
			continue
		}

		children = append(children, newSeriesChild(seed, date))
	}

	if err := e.appointmentRepo.CreateBatch(tx, children); err != nil {
		e.log.Warnf("Failed to insert %d children of series %s, keeping seed only: %+v", len(children), seed.ID, err)
		summary.Error = "recurring instances could not be created"
		for _, child := range children {
			summary.Skipped = append(summary.Skipped, dto.SkippedOccurrence{
				Date:   wallclock.FormatDate(child.AppointmentDate),
				Reason: SkipInsertFailed,
			})
		}
		return summary, nil
	}

	summary.Created += len(children)
	return summary, nil
}

// newSeriesChild copies the bookable part of seed onto date. Notes and
// diagnosis belong to the individual visit and are not copied.
func newSeriesChild(seed *entity.Appointment, date time.Time) entity.Appointment {
	parentID := seed.ID
	return entity.Appointment{
		DoctorID:            seed.DoctorID,
		PatientID:           seed.PatientID,
		AppointmentDate:     date,
		AppointmentTime:     seed.AppointmentTime,
		Duration:            seed.Duration,
		Status:              entity.StatusScheduled,
		Type:                seed.Type,
		Priority:            seed.Priority,
		Reason:              seed.Reason,
		Symptoms:            seed.Symptoms,
		IsRecurring:         true,
		RecurringPattern:    seed.RecurringPattern,
		RecurringEndDate:    seed.RecurringEndDate,
		ParentAppointmentID: &parentID,
		CreatedBy:           seed.CreatedBy,
	}
}
