package usecase

import (
	"context"
	"time"

	"clinic-scheduler/internal/converter"
	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reasons attached to slot-opened events.
const (
	ReleaseCancelled   = "CANCELLED"
	ReleaseNoShow      = "NO_SHOW"
	ReleaseRescheduled = "RESCHEDULED"
)

type AppointmentUsecase interface {
	ListAppointments(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	GetSeries(ctx context.Context, id uuid.UUID) (*dto.SeriesResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.CreateAppointmentResponse, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	ConfirmAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CheckIn(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	StartAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CheckOut(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	tx              repository.Transactor
	log             *logrus.Logger
	policy          SchedulingPolicy
	appointmentRepo repository.AppointmentRepository
	booker          *appointmentBooker
	auditService    service.AuditService
	publisher       service.SlotEventPublisher
	waitlist        WaitlistUsecase
	now             func() time.Time
}

func NewAppointmentUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	policy SchedulingPolicy,
	scheduleRepo repository.DoctorScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	publisher service.SlotEventPublisher,
	waitlist WaitlistUsecase,
) AppointmentUsecase {
	return &appointmentUsecase{
		tx:              tx,
		log:             log,
		policy:          policy,
		appointmentRepo: appointmentRepo,
		booker:          newAppointmentBooker(policy, log, scheduleRepo, appointmentRepo, auditService),
		auditService:    auditService,
		publisher:       publisher,
		waitlist:        waitlist,
		now:             time.Now,
	}
}

func (u *appointmentUsecase) ListAppointments(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	if filter != nil {
		if filter.Status != "" && !filter.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		if filter.Type != "" && !filter.Type.IsValid() {
			return nil, ErrInvalidType
		}
		for _, d := range []string{filter.Date, filter.StartDate, filter.EndDate} {
			if d == "" {
				continue
			}
			if _, err := wallclock.ParseDate(d); err != nil {
				return nil, ErrInvalidDate
			}
		}
		if filter.StartDate != "" && filter.EndDate != "" && filter.StartDate > filter.EndDate {
			return nil, ErrInvalidDateRange
		}
	}

	appointments, err := u.appointmentRepo.FindAll(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.findAppointment(u.tx.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) findAppointment(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// GetSeries returns the series id belongs to. Non-recurring appointments are
// a series of one.
func (u *appointmentUsecase) GetSeries(ctx context.Context, id uuid.UUID) (*dto.SeriesResponse, error) {
	db := u.tx.DB(ctx)
	appointment, err := u.findAppointment(db, id)
	if err != nil {
		return nil, err
	}

	seedID := appointment.ID
	if appointment.ParentAppointmentID != nil {
		seedID = *appointment.ParentAppointmentID
	}

	members, err := u.appointmentRepo.FindSeries(db, seedID)
	if err != nil {
		u.log.Warnf("Failed to find series %s: %+v", seedID, err)
		return nil, err
	}

	response := &dto.SeriesResponse{Instances: []dto.AppointmentResponse{}}
	for i := range members {
		if members[i].ID == seedID {
			response.Seed = *converter.AppointmentToResponse(&members[i])
			continue
		}
		response.Instances = append(response.Instances, *converter.AppointmentToResponse(&members[i]))
	}
	if response.Seed.ID == uuid.Nil {
		return nil, ErrAppointmentNotFound
	}
	response.Total = len(response.Instances) + 1
	return response, nil
}

func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.CreateAppointmentResponse, error) {
	seed, dates, err := u.newSeed(ctx, req)
	if err != nil {
		return nil, err
	}

	var summary *dto.ExpansionSummary
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		s, err := u.booker.book(ctx, tx, seed, dates)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	if summary != nil {
		u.log.Infof("Recurring appointment created: id=%s, requested=%d, created=%d, skipped=%d",
			seed.ID, summary.Requested, summary.Created, len(summary.Skipped))
	} else {
		u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, time=%s",
			seed.ID, seed.DoctorID, wallclock.FormatDate(seed.AppointmentDate), seed.AppointmentTime)
	}

	return &dto.CreateAppointmentResponse{
		Appointment: *converter.AppointmentToResponse(seed),
		Series:      summary,
	}, nil
}

// newSeed validates req and builds the appointment to insert. For recurring
// requests it also returns the dates of the children to expand.
func (u *appointmentUsecase) newSeed(ctx context.Context, req *dto.CreateAppointmentRequest) (*entity.Appointment, []time.Time, error) {
	if req.DoctorID == uuid.Nil {
		return nil, nil, ErrMissingDoctor
	}
	if req.PatientID == uuid.Nil {
		return nil, nil, ErrMissingPatient
	}
	date, err := wallclock.ParseDate(req.AppointmentDate)
	if err != nil {
		return nil, nil, ErrInvalidDate
	}
	if !wallclock.Valid(req.AppointmentTime) {
		return nil, nil, ErrInvalidTime
	}
	if req.Duration < 0 {
		return nil, nil, ErrInvalidDuration
	}

	seed := &entity.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		AppointmentDate: date,
		AppointmentTime: req.AppointmentTime,
		Duration:        req.Duration,
		Status:          entity.StatusScheduled,
		Type:            entity.TypeConsultation,
		Priority:        entity.PriorityNormal,
		Reason:          req.Reason,
		Symptoms:        req.Symptoms,
		Notes:           req.Notes,
		CreatedBy:       actorFromContext(ctx),
	}
	if seed.Duration == 0 {
		seed.Duration = u.policy.DefaultDuration
	}
	if req.Type != "" {
		seed.Type = entity.AppointmentType(req.Type)
		if !seed.Type.IsValid() {
			return nil, nil, ErrInvalidType
		}
	}
	if req.Priority != "" {
		seed.Priority = entity.Priority(req.Priority)
		if !seed.Priority.IsValid() {
			return nil, nil, ErrInvalidPriority
		}
	}

	if err := u.booker.ensureFuture(seed, u.now()); err != nil {
		return nil, nil, err
	}

	if !req.IsRecurring {
		return seed, nil, nil
	}

	pattern := entity.RecurringPattern(req.RecurringPattern)
	if !pattern.IsValid() || req.RecurringEndDate == "" {
		return nil, nil, ErrRecurrenceRequired
	}
	end, err := wallclock.ParseDate(req.RecurringEndDate)
	if err != nil {
		return nil, nil, ErrInvalidDate
	}
	if end.Before(date) {
		return nil, nil, ErrRecurrenceEnd
	}

	dates, err := u.booker.expander.occurrenceDates(date, pattern, end)
	if err != nil {
		return nil, nil, err
	}

	seed.IsRecurring = true
	seed.RecurringPattern = &pattern
	seed.RecurringEndDate = &end
	return seed, dates, nil
}

// UpdateAppointment applies a partial edit. A change of date, time or
// duration is a reschedule: it is re-checked against the doctor's hours and
// other bookings under the new day's lock.
func (u *appointmentUsecase) UpdateAppointment(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	var (
		updated  *entity.Appointment
		released *entity.Appointment
	)
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err := u.findAppointment(tx, id)
		if err != nil {
			return err
		}
		if err := appointment.CanEdit(); err != nil {
			return err
		}

		before := *appointment
		old := auditSnapshot(appointment)
		expected := appointment.Status

		rescheduled, err := u.applySlotChange(appointment, req)
		if err != nil {
			return err
		}
		if err := applyDetailChange(appointment, req); err != nil {
			return err
		}

		action := entity.AuditActionAppointmentUpdate
		if rescheduled {
			action = entity.AuditActionAppointmentReschedule
			if err := u.booker.appointmentRepo.LockDoctorDay(tx, appointment.DoctorID, appointment.AppointmentDate); err != nil {
				u.log.Warnf("Failed to lock doctor %s day: %+v", appointment.DoctorID, err)
				return err
			}
			if err := u.booker.resolver.checkBookable(tx, appointment.DoctorID, appointment.AppointmentDate, appointment.AppointmentTime, appointment.Duration, appointment.ID); err != nil {
				return err
			}
		}

		affected, err := u.appointmentRepo.UpdateIfStatus(tx, appointment, expected)
		if err != nil {
			if isDuplicateKeyError(err, activeSlotConstraint) {
				return ErrSlotConflict
			}
			u.log.Warnf("Failed to update appointment %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrConcurrentUpdate
		}

		if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), action, entity.AuditEntityAppointment, id.String(), old, auditSnapshot(appointment)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}

		updated = appointment
		if rescheduled {
			released = &before
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if released != nil {
		u.log.Infof("Appointment rescheduled: id=%s, date=%s, time=%s",
			id, wallclock.FormatDate(updated.AppointmentDate), updated.AppointmentTime)
		u.releaseSlot(ctx, released, ReleaseRescheduled)
	}
	return converter.AppointmentToResponse(updated), nil
}

// applySlotChange moves a to the requested date, time and duration. It
// reports whether anything changed.
func (u *appointmentUsecase) applySlotChange(a *entity.Appointment, req *dto.UpdateAppointmentRequest) (bool, error) {
	if req.AppointmentDate == nil && req.AppointmentTime == nil && req.Duration == nil {
		return false, nil
	}

	date := a.AppointmentDate
	if req.AppointmentDate != nil {
		d, err := wallclock.ParseDate(*req.AppointmentDate)
		if err != nil {
			return false, ErrInvalidDate
		}
		date = d
	}
	hhmm := a.AppointmentTime
	if req.AppointmentTime != nil {
		if !wallclock.Valid(*req.AppointmentTime) {
			return false, ErrInvalidTime
		}
		hhmm = *req.AppointmentTime
	}
	duration := a.Duration
	if req.Duration != nil {
		if *req.Duration <= 0 {
			return false, ErrInvalidDuration
		}
		duration = *req.Duration
	}

	if wallclock.SameDate(date, a.AppointmentDate) && hhmm == a.AppointmentTime && duration == a.Duration {
		return false, nil
	}

	now := u.now()
	startsAt, err := a.StartsAt(u.policy.Location)
	if err != nil {
		return false, ErrInvalidTime
	}
	if err := a.CanReschedule(now, startsAt); err != nil {
		return false, err
	}

	a.AppointmentDate = date
	a.AppointmentTime = hhmm
	a.Duration = duration
	if err := u.booker.ensureFuture(a, now); err != nil {
		return false, err
	}
	return true, nil
}

func applyDetailChange(a *entity.Appointment, req *dto.UpdateAppointmentRequest) error {
	if req.Type != nil {
		t := entity.AppointmentType(*req.Type)
		if !t.IsValid() {
			return ErrInvalidType
		}
		a.Type = t
	}
	if req.Priority != nil {
		p := entity.Priority(*req.Priority)
		if !p.IsValid() {
			return ErrInvalidPriority
		}
		a.Priority = p
	}
	if req.Reason != nil {
		a.Reason = *req.Reason
	}
	if req.Symptoms != nil {
		a.Symptoms = *req.Symptoms
	}
	if req.Notes != nil {
		a.Notes = *req.Notes
	}
	if req.Diagnosis != nil {
		a.Diagnosis = *req.Diagnosis
	}
	return nil
}

func (u *appointmentUsecase) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.transition(ctx, id, entity.AuditActionAppointmentConfirm, func(a *entity.Appointment, _ time.Time) error {
		return a.Confirm()
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment confirmed: id=%s", id)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) CheckIn(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.transition(ctx, id, entity.AuditActionAppointmentCheckIn, func(a *entity.Appointment, now time.Time) error {
		startsAt, err := a.StartsAt(u.policy.Location)
		if err != nil {
			return ErrInvalidTime
		}
		return a.CheckIn(now, startsAt, u.policy.CheckInWindow)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment checked in: id=%s", id)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) StartAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.transition(ctx, id, entity.AuditActionAppointmentStart, func(a *entity.Appointment, _ time.Time) error {
		return a.Start()
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment started: id=%s", id)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) CheckOut(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.transition(ctx, id, entity.AuditActionAppointmentCheckOut, func(a *entity.Appointment, now time.Time) error {
		return a.CheckOut(now)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment checked out: id=%s", id)
	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment cancels one appointment. Other members of its series are
// left untouched.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	var reason string
	if req != nil {
		reason = req.Reason
	}
	actor := actorFromContext(ctx)

	appointment, err := u.transition(ctx, id, entity.AuditActionAppointmentCancel, func(a *entity.Appointment, now time.Time) error {
		return a.Cancel(now, actor, reason)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment cancelled: id=%s", id)
	u.releaseSlot(ctx, appointment, ReleaseCancelled)
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) MarkNoShow(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.transition(ctx, id, entity.AuditActionAppointmentNoShow, func(a *entity.Appointment, now time.Time) error {
		startsAt, err := a.StartsAt(u.policy.Location)
		if err != nil {
			return ErrInvalidTime
		}
		return a.MarkNoShow(now, startsAt)
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Appointment marked as no-show: id=%s", id)
	u.releaseSlot(ctx, appointment, ReleaseNoShow)
	return converter.AppointmentToResponse(appointment), nil
}

// transition loads the appointment, applies a lifecycle guard and saves the
// result only if no other request changed its status in the meantime.
func (u *appointmentUsecase) transition(ctx context.Context, id uuid.UUID, action string, apply func(a *entity.Appointment, now time.Time) error) (*entity.Appointment, error) {
	var result *entity.Appointment
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		appointment, err := u.findAppointment(tx, id)
		if err != nil {
			return err
		}

		old := auditSnapshot(appointment)
		expected := appointment.Status
		if err := apply(appointment, u.now()); err != nil {
			return err
		}

		affected, err := u.appointmentRepo.UpdateIfStatus(tx, appointment, expected)
		if err != nil {
			u.log.Warnf("Failed to update appointment %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrConcurrentUpdate
		}

		if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), action, entity.AuditEntityAppointment, id.String(), old, auditSnapshot(appointment)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}

		result = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// releaseSlot announces that a's old slot is free again and, when enabled,
// offers it to the best waitlist candidate. It runs after commit; failures
// are logged only.
func (u *appointmentUsecase) releaseSlot(ctx context.Context, a *entity.Appointment, reason string) {
	event := service.SlotOpenedEvent{
		DoctorID:      a.DoctorID,
		Date:          wallclock.FormatDate(a.AppointmentDate),
		Time:          a.AppointmentTime,
		Duration:      a.Duration,
		AppointmentID: a.ID,
		Reason:        reason,
		OccurredAt:    u.now(),
	}
	if err := u.publisher.PublishSlotOpened(ctx, event); err != nil {
		u.log.Warnf("Failed to publish slot opened for appointment %s: %+v", a.ID, err)
	}

	if !u.policy.WaitlistAutoNotify || u.waitlist == nil {
		return
	}
	notified, err := u.waitlist.NotifyNextCandidate(ctx, a.DoctorID, a.AppointmentDate, a.AppointmentTime)
	if err != nil {
		u.log.Warnf("Failed to notify waitlist for appointment %s: %+v", a.ID, err)
		return
	}
	if notified != nil {
		u.log.Infof("Waitlist entry %s offered slot of appointment %s", notified.ID, a.ID)
	}
}
