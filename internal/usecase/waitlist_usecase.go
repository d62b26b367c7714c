package usecase

import (
	"context"
	"sort"
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

// rankCandidates orders entries best first: higher priority, then the entry
// that has waited longest.
func rankCandidates(entries []entity.WaitlistEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Priority.Rank(), entries[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

// matchOpening keeps the open entries whose preferences accept an opening on
// date at hhmm, ranked.
func matchOpening(entries []entity.WaitlistEntry, date time.Time, hhmm string) []entity.WaitlistEntry {
	matched := make([]entity.WaitlistEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status.IsOpen() && e.Accepts(date, hhmm) {
			matched = append(matched, e)
		}
	}
	rankCandidates(matched)
	return matched
}

type WaitlistUsecase interface {
	ListEntries(ctx context.Context, filter *entity.WaitlistFilter) (*dto.WaitlistListResponse, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*dto.WaitlistResponse, error)
	CreateEntry(ctx context.Context, req *dto.CreateWaitlistRequest) (*dto.WaitlistResponse, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, req *dto.UpdateWaitlistRequest) (*dto.WaitlistResponse, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	NotifyEntry(ctx context.Context, id uuid.UUID) (*dto.WaitlistResponse, error)
	BookEntry(ctx context.Context, id uuid.UUID, req *dto.BookWaitlistRequest) (*dto.WaitlistBookingResponse, error)
	FindCandidates(ctx context.Context, doctorID uuid.UUID, date, hhmm string) (*dto.WaitlistListResponse, error)
	// NotifyNextCandidate offers an opening to the best WAITING entry. It
	// returns nil when nobody matches.
	NotifyNextCandidate(ctx context.Context, doctorID uuid.UUID, date time.Time, hhmm string) (*dto.WaitlistResponse, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type waitlistUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	policy       SchedulingPolicy
	waitlistRepo repository.WaitlistRepository
	booker       *appointmentBooker
	auditService service.AuditService
	publisher    service.SlotEventPublisher
	now          func() time.Time
}

func NewWaitlistUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	policy SchedulingPolicy,
	waitlistRepo repository.WaitlistRepository,
	scheduleRepo repository.DoctorScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
	publisher service.SlotEventPublisher,
) WaitlistUsecase {
	return &waitlistUsecase{
		tx:           tx,
		log:          log,
		policy:       policy,
		waitlistRepo: waitlistRepo,
		booker:       newAppointmentBooker(policy, log, scheduleRepo, appointmentRepo, auditService),
		auditService: auditService,
		publisher:    publisher,
		now:          time.Now,
	}
}

func (u *waitlistUsecase) ListEntries(ctx context.Context, filter *entity.WaitlistFilter) (*dto.WaitlistListResponse, error) {
	if filter != nil && filter.Status != "" && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	entries, err := u.waitlistRepo.FindAll(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find waitlist entries: %+v", err)
		return nil, err
	}

	return &dto.WaitlistListResponse{
		Entries: converter.WaitlistEntriesToResponses(entries),
		Total:   len(entries),
	}, nil
}

func (u *waitlistUsecase) GetEntry(ctx context.Context, id uuid.UUID) (*dto.WaitlistResponse, error) {
	entry, err := u.findEntry(u.tx.DB(ctx), id)
	if err != nil {
		return nil, err
	}
	return converter.WaitlistEntryToResponse(entry), nil
}

func (u *waitlistUsecase) findEntry(db *gorm.DB, id uuid.UUID) (*entity.WaitlistEntry, error) {
	entry, err := u.waitlistRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find waitlist entry %s: %+v", id, err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrWaitlistEntryNotFound
	}
	return entry, nil
}

func (u *waitlistUsecase) CreateEntry(ctx context.Context, req *dto.CreateWaitlistRequest) (*dto.WaitlistResponse, error) {
	if req.DoctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}
	if req.PatientID == uuid.Nil {
		return nil, ErrMissingPatient
	}

	entry := &entity.WaitlistEntry{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Reason:    req.Reason,
		Priority:  entity.PriorityNormal,
		Status:    entity.WaitlistWaiting,
	}
	if req.Priority != "" {
		entry.Priority = entity.Priority(req.Priority)
		if !entry.Priority.IsValid() {
			return nil, ErrInvalidPriority
		}
	}
	if req.PreferredDate != "" {
		date, err := wallclock.ParseDate(req.PreferredDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		entry.PreferredDate = &date
	}
	if req.PreferredTime != "" {
		if !wallclock.Valid(req.PreferredTime) {
			return nil, ErrInvalidTime
		}
		entry.PreferredTime = req.PreferredTime
	}

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.waitlistRepo.Create(tx, entry); err != nil {
			u.log.Warnf("Failed to create waitlist entry: %+v", err)
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionWaitlistCreate, entity.AuditEntityWaitlistEntry, entry.ID.String(), converter.WaitlistEntryToResponse(entry)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Waitlist entry created: id=%s, doctor=%s, patient=%s", entry.ID, entry.DoctorID, entry.PatientID)
	return converter.WaitlistEntryToResponse(entry), nil
}

func (u *waitlistUsecase) UpdateEntry(ctx context.Context, id uuid.UUID, req *dto.UpdateWaitlistRequest) (*dto.WaitlistResponse, error) {
	var updated *entity.WaitlistEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, err := u.findEntry(tx, id)
		if err != nil {
			return err
		}
		if !entry.Status.IsOpen() {
			return entity.ErrWaitlistClosed
		}
		old := converter.WaitlistEntryToResponse(entry)
		expected := entry.Status

		if req.PreferredDate != nil {
			if *req.PreferredDate == "" {
				entry.PreferredDate = nil
			} else {
				date, err := wallclock.ParseDate(*req.PreferredDate)
				if err != nil {
					return ErrInvalidDate
				}
				entry.PreferredDate = &date
			}
		}
		if req.PreferredTime != nil {
			if *req.PreferredTime != "" && !wallclock.Valid(*req.PreferredTime) {
				return ErrInvalidTime
			}
			entry.PreferredTime = *req.PreferredTime
		}
		if req.Reason != nil {
			entry.Reason = *req.Reason
		}
		if req.Priority != nil {
			priority := entity.Priority(*req.Priority)
			if !priority.IsValid() {
				return ErrInvalidPriority
			}
			entry.Priority = priority
		}
		if req.Status != nil {
			status := entity.WaitlistStatus(*req.Status)
			if status != entity.WaitlistWaiting && status != entity.WaitlistCancelled {
				return ErrWaitlistStatus
			}
			entry.Status = status
		}

		affected, err := u.waitlistRepo.UpdateIfStatus(tx, entry, expected)
		if err != nil {
			u.log.Warnf("Failed to update waitlist entry %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrWaitlistChanged
		}

		if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionWaitlistUpdate, entity.AuditEntityWaitlistEntry, id.String(), old, converter.WaitlistEntryToResponse(entry)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.WaitlistEntryToResponse(updated), nil
}

func (u *waitlistUsecase) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, err := u.findEntry(tx, id)
		if err != nil {
			return err
		}

		affected, err := u.waitlistRepo.Delete(tx, id)
		if err != nil {
			u.log.Warnf("Failed to delete waitlist entry %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrWaitlistEntryNotFound
		}

		if err := u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionWaitlistDelete, entity.AuditEntityWaitlistEntry, id.String(), converter.WaitlistEntryToResponse(entry)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
}

func (u *waitlistUsecase) NotifyEntry(ctx context.Context, id uuid.UUID) (*dto.WaitlistResponse, error) {
	var notified *entity.WaitlistEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, err := u.findEntry(tx, id)
		if err != nil {
			return err
		}
		if err := u.notify(ctx, tx, entry); err != nil {
			return err
		}
		notified = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.publishNotified(ctx, notified, nil, "")
	return converter.WaitlistEntryToResponse(notified), nil
}

// notify moves entry to NOTIFIED inside tx.
func (u *waitlistUsecase) notify(ctx context.Context, tx *gorm.DB, entry *entity.WaitlistEntry) error {
	old := converter.WaitlistEntryToResponse(entry)
	expected := entry.Status
	if err := entry.Notify(u.now()); err != nil {
		return err
	}

	affected, err := u.waitlistRepo.UpdateIfStatus(tx, entry, expected)
	if err != nil {
		u.log.Warnf("Failed to notify waitlist entry %s: %+v", entry.ID, err)
		return err
	}
	if affected == 0 {
		return ErrWaitlistChanged
	}

	if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionWaitlistNotify, entity.AuditEntityWaitlistEntry, entry.ID.String(), old, converter.WaitlistEntryToResponse(entry)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	u.log.Infof("Waitlist entry notified: id=%s, doctor=%s", entry.ID, entry.DoctorID)
	return nil
}

func (u *waitlistUsecase) publishNotified(ctx context.Context, entry *entity.WaitlistEntry, date *time.Time, hhmm string) {
	event := service.WaitlistNotifiedEvent{
		WaitlistEntryID: entry.ID,
		DoctorID:        entry.DoctorID,
		PatientID:       entry.PatientID,
		Time:            hhmm,
		OccurredAt:      u.now(),
	}
	if date != nil {
		event.Date = wallclock.FormatDate(*date)
	}
	if err := u.publisher.PublishWaitlistNotified(ctx, event); err != nil {
		u.log.Warnf("Failed to publish waitlist notification for %s: %+v", entry.ID, err)
	}
}

// BookEntry converts an entry into an appointment through the normal booking
// path and closes the entry in the same transaction.
func (u *waitlistUsecase) BookEntry(ctx context.Context, id uuid.UUID, req *dto.BookWaitlistRequest) (*dto.WaitlistBookingResponse, error) {
	var (
		booked      *entity.WaitlistEntry
		appointment *entity.Appointment
	)
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		entry, err := u.findEntry(tx, id)
		if err != nil {
			return err
		}
		if !entry.Status.IsOpen() {
			return entity.ErrWaitlistClosed
		}

		seed, err := u.appointmentFromEntry(ctx, entry, req)
		if err != nil {
			return err
		}
		if err := u.booker.ensureFuture(seed, u.now()); err != nil {
			return err
		}
		if _, err := u.booker.book(ctx, tx, seed, nil); err != nil {
			return err
		}

		old := converter.WaitlistEntryToResponse(entry)
		expected := entry.Status
		if err := entry.MarkScheduled(); err != nil {
			return err
		}
		affected, err := u.waitlistRepo.UpdateIfStatus(tx, entry, expected)
		if err != nil {
			u.log.Warnf("Failed to close waitlist entry %s: %+v", id, err)
			return err
		}
		if affected == 0 {
			return ErrWaitlistChanged
		}

		if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionWaitlistSchedule, entity.AuditEntityWaitlistEntry, id.String(), old, map[string]interface{}{
			"status":         entry.Status,
			"appointment_id": seed.ID,
		}); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}

		booked = entry
		appointment = seed
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Waitlist entry booked: id=%s, appointment=%s", booked.ID, appointment.ID)
	return &dto.WaitlistBookingResponse{
		Entry:       *converter.WaitlistEntryToResponse(booked),
		Appointment: *converter.AppointmentToResponse(appointment),
	}, nil
}

func (u *waitlistUsecase) appointmentFromEntry(ctx context.Context, entry *entity.WaitlistEntry, req *dto.BookWaitlistRequest) (*entity.Appointment, error) {
	if req == nil {
		req = &dto.BookWaitlistRequest{}
	}

	var date time.Time
	switch {
	case req.AppointmentDate != "":
		d, err := wallclock.ParseDate(req.AppointmentDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		date = d
	case entry.PreferredDate != nil:
		date = wallclock.DateOf(*entry.PreferredDate)
	default:
		return nil, ErrWaitlistSlot
	}

	hhmm := req.AppointmentTime
	if hhmm == "" {
		hhmm = entry.PreferredTime
	}
	if hhmm == "" {
		return nil, ErrWaitlistSlot
	}
	if !wallclock.Valid(hhmm) {
		return nil, ErrInvalidTime
	}

	duration := req.Duration
	if duration < 0 {
		return nil, ErrInvalidDuration
	}
	if duration == 0 {
		duration = u.policy.DefaultDuration
	}

	appointmentType := entity.TypeConsultation
	if req.Type != "" {
		appointmentType = entity.AppointmentType(req.Type)
		if !appointmentType.IsValid() {
			return nil, ErrInvalidType
		}
	}

	return &entity.Appointment{
		DoctorID:        entry.DoctorID,
		PatientID:       entry.PatientID,
		AppointmentDate: date,
		AppointmentTime: hhmm,
		Duration:        duration,
		Status:          entity.StatusScheduled,
		Type:            appointmentType,
		Priority:        entry.Priority,
		Reason:          entry.Reason,
		Notes:           req.Notes,
		CreatedBy:       actorFromContext(ctx),
	}, nil
}

func (u *waitlistUsecase) FindCandidates(ctx context.Context, doctorID uuid.UUID, date, hhmm string) (*dto.WaitlistListResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}
	day, err := wallclock.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if !wallclock.Valid(hhmm) {
		return nil, ErrInvalidTime
	}

	open, err := u.waitlistRepo.FindOpenByDoctor(u.tx.DB(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find open waitlist entries for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	candidates := matchOpening(open, day, hhmm)
	return &dto.WaitlistListResponse{
		Entries: converter.WaitlistEntriesToResponses(candidates),
		Total:   len(candidates),
	}, nil
}

func (u *waitlistUsecase) NotifyNextCandidate(ctx context.Context, doctorID uuid.UUID, date time.Time, hhmm string) (*dto.WaitlistResponse, error) {
	var notified *entity.WaitlistEntry
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		open, err := u.waitlistRepo.FindOpenByDoctor(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find open waitlist entries for doctor %s: %+v", doctorID, err)
			return err
		}

		for _, candidate := range matchOpening(open, date, hhmm) {
			if candidate.Status != entity.WaitlistWaiting {
				continue
			}
			entry := candidate
			if err := u.notify(ctx, tx, &entry); err != nil {
				return err
			}
			notified = &entry
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if notified == nil {
		return nil, nil
	}

	u.publishNotified(ctx, notified, &date, hhmm)
	return converter.WaitlistEntryToResponse(notified), nil
}

// ExpireStale closes open entries whose preferred date is already past in
// the clinic's timezone.
func (u *waitlistUsecase) ExpireStale(ctx context.Context) (int64, error) {
	today := u.policy.today(u.now())

	var expired int64
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		affected, err := u.waitlistRepo.ExpireBefore(tx, today)
		if err != nil {
			u.log.Warnf("Failed to expire waitlist entries: %+v", err)
			return err
		}
		expired = affected

		if affected > 0 {
			if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionWaitlistExpire, entity.AuditEntityWaitlistEntry, "*", nil, map[string]interface{}{
				"expired_before": wallclock.FormatDate(today),
				"count":          affected,
			}); err != nil {
				u.log.Warnf("Failed to create audit log: %+v", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	u.log.Infof("Expired %d stale waitlist entries", expired)
	return expired, nil
}
