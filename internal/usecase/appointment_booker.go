package usecase

import (
	"context"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/delivery/http/middleware"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// appointmentBooker is the single write path for new appointments, used by
// direct bookings and waitlist conversions alike.
type appointmentBooker struct {
	policy          SchedulingPolicy
	log             *logrus.Logger
	resolver        *availabilityResolver
	expander        *recurringExpander
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func newAppointmentBooker(
	policy SchedulingPolicy,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) *appointmentBooker {
	resolver := newAvailabilityResolver(policy, scheduleRepo, appointmentRepo)
	return &appointmentBooker{
		policy:   policy,
		log:      log,
		resolver: resolver,
		expander: &recurringExpander{
			policy:          policy,
			log:             log,
			resolver:        resolver,
			appointmentRepo: appointmentRepo,
		},
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// ensureFuture rejects appointments whose start is not after now.
func (b *appointmentBooker) ensureFuture(a *entity.Appointment, now time.Time) error {
	startsAt, err := a.StartsAt(b.policy.Location)
	if err != nil {
		return ErrInvalidTime
	}
	if !startsAt.After(now) {
		return ErrAppointmentInPast
	}
	return nil
}

// book inserts seed inside tx. The doctor's day is locked first so the
// availability check and the insert cannot interleave with another booking;
// the active-slot unique index is the final backstop. Recurring seeds are
// expanded onto dates afterwards and the summary is returned.
func (b *appointmentBooker) book(ctx context.Context, tx *gorm.DB, seed *entity.Appointment, dates []time.Time) (*dto.ExpansionSummary, error) {
	if err := b.appointmentRepo.LockDoctorDay(tx, seed.DoctorID, seed.AppointmentDate); err != nil {
		b.log.Warnf("Failed to lock doctor %s day: %+v", seed.DoctorID, err)
		return nil, err
	}

	if err := b.resolver.checkBookable(tx, seed.DoctorID, seed.AppointmentDate, seed.AppointmentTime, seed.Duration, uuid.Nil); err != nil {
		return nil, err
	}

	if err := b.appointmentRepo.Create(tx, seed); err != nil {
		if isDuplicateKeyError(err, activeSlotConstraint) {
			return nil, ErrSlotConflict
		}
		b.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := b.auditService.LogCreate(ctx, tx, seed.CreatedBy, entity.AuditActionAppointmentCreate, entity.AuditEntityAppointment, seed.ID.String(), auditSnapshot(seed)); err != nil {
		b.log.Warnf("Failed to create audit log: %+v", err)
	}

	if !seed.IsSeriesSeed() {
		return nil, nil
	}

	summary, err := b.expander.expand(ctx, tx, seed, dates)
	if err != nil {
		return nil, err
	}

	if err := b.auditService.LogCreate(ctx, tx, seed.CreatedBy, entity.AuditActionSeriesExpand, entity.AuditEntityAppointment, seed.ID.String(), summary); err != nil {
		b.log.Warnf("Failed to create audit log: %+v", err)
	}

	return summary, nil
}

// auditSnapshot is the subset of an appointment recorded in the audit trail.
func auditSnapshot(a *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"doctor_id":        a.DoctorID,
		"patient_id":       a.PatientID,
		"appointment_date": wallclock.FormatDate(a.AppointmentDate),
		"appointment_time": a.AppointmentTime,
		"duration":         a.Duration,
		"status":           a.Status,
	}
}

// actorFromContext returns the authenticated user, if any.
func actorFromContext(ctx context.Context) *uuid.UUID {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok || userID == uuid.Nil {
		return nil
	}
	return &userID
}
