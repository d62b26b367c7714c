package usecase

import (
	"context"
	"fmt"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/domain/repository"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// availabilityResolver answers slot and conflict questions from the current
// stored state on every call. Nothing is cached.
type availabilityResolver struct {
	policy          SchedulingPolicy
	scheduleRepo    repository.DoctorScheduleRepository
	appointmentRepo repository.AppointmentRepository
}

func newAvailabilityResolver(
	policy SchedulingPolicy,
	scheduleRepo repository.DoctorScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
) *availabilityResolver {
	return &availabilityResolver{
		policy:          policy,
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
	}
}

type busyInterval struct {
	id       uuid.UUID
	start    int
	duration int
}

func (r *availabilityResolver) busyIntervals(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]busyInterval, error) {
	active, err := r.appointmentRepo.FindActiveByDoctorAndDate(db, doctorID, date)
	if err != nil {
		return nil, err
	}
	busy := make([]busyInterval, 0, len(active))
	for i := range active {
		start, duration, err := active[i].Interval(r.policy.DefaultDuration)
		if err != nil {
			return nil, fmt.Errorf("appointment %s has malformed time %q: %w", active[i].ID, active[i].AppointmentTime, err)
		}
		busy = append(busy, busyInterval{id: active[i].ID, start: start, duration: duration})
	}
	return busy, nil
}

func overlapsAny(busy []busyInterval, start, duration int, exclude uuid.UUID) bool {
	for _, b := range busy {
		if b.id == exclude {
			continue
		}
		if wallclock.Overlaps(start, duration, b.start, b.duration) {
			return true
		}
	}
	return false
}

// slots lists the free slot starts for doctorID on date, ascending. A slot is
// taken when its granularity window overlaps any active appointment.
func (r *availabilityResolver) slots(db *gorm.DB, doctorID uuid.UUID, date time.Time) (*entity.DoctorSchedule, []string, error) {
	schedule, err := r.scheduleRepo.FindByDoctorAndDay(db, doctorID, entity.WeekdayOf(date))
	if err != nil {
		return nil, nil, err
	}
	if !schedule.Bookable() {
		return schedule, []string{}, nil
	}

	starts, err := schedule.SlotStarts(r.policy.SlotGranularity)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule %d: %w", schedule.ID, err)
	}

	busy, err := r.busyIntervals(db, doctorID, date)
	if err != nil {
		return nil, nil, err
	}

	slots := make([]string, 0, len(starts))
	for _, start := range starts {
		if overlapsAny(busy, start, r.policy.SlotGranularity, uuid.Nil) {
			continue
		}
		slots = append(slots, wallclock.Format(start))
	}
	return schedule, slots, nil
}

// hasConflict reports whether [start, start+duration) overlaps an active
// appointment of the doctor on date, ignoring exclude.
func (r *availabilityResolver) hasConflict(db *gorm.DB, doctorID uuid.UUID, date time.Time, start, duration int, exclude uuid.UUID) (bool, error) {
	busy, err := r.busyIntervals(db, doctorID, date)
	if err != nil {
		return false, err
	}
	return overlapsAny(busy, start, duration, exclude), nil
}

// checkBookable is the commit-time gate: the doctor must work that day, the
// start must fall inside working hours and the interval must be free.
func (r *availabilityResolver) checkBookable(db *gorm.DB, doctorID uuid.UUID, date time.Time, hhmm string, duration int, exclude uuid.UUID) error {
	day := entity.WeekdayOf(date)
	schedule, err := r.scheduleRepo.FindByDoctorAndDay(db, doctorID, day)
	if err != nil {
		return err
	}
	if !schedule.Bookable() {
		return ErrDoctorUnavailable.WithDetails(map[string]interface{}{
			"date":        wallclock.FormatDate(date),
			"day_of_week": day,
		})
	}

	start, err := wallclock.Parse(hhmm)
	if err != nil {
		return ErrInvalidTime
	}
	covered, err := schedule.Covers(start)
	if err != nil {
		return fmt.Errorf("schedule %d: %w", schedule.ID, err)
	}
	if !covered {
		return ErrOutsideHours.
			WithMessage(fmt.Sprintf("Doctor is available from %s to %s on %s", schedule.StartTime, schedule.EndTime, day)).
			WithDetails(map[string]interface{}{
				"day_of_week": day,
				"start_time":  schedule.StartTime,
				"end_time":    schedule.EndTime,
			})
	}

	conflict, err := r.hasConflict(db, doctorID, date, start, duration, exclude)
	if err != nil {
		return err
	}
	if conflict {
		return ErrSlotConflict.WithDetails(map[string]interface{}{
			"date": wallclock.FormatDate(date),
			"time": hhmm,
		})
	}
	return nil
}

type AvailabilityUsecase interface {
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error)
	HasConflict(ctx context.Context, doctorID uuid.UUID, date, hhmm string, duration int) (bool, error)
}

type availabilityUsecase struct {
	tx       repository.Transactor
	log      *logrus.Logger
	policy   SchedulingPolicy
	resolver *availabilityResolver
}

func NewAvailabilityUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	policy SchedulingPolicy,
	scheduleRepo repository.DoctorScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
) AvailabilityUsecase {
	return &availabilityUsecase{
		tx:       tx,
		log:      log,
		policy:   policy,
		resolver: newAvailabilityResolver(policy, scheduleRepo, appointmentRepo),
	}
}

func (u *availabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}
	day, err := wallclock.ParseDate(date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	schedule, slots, err := u.resolver.slots(u.tx.DB(ctx), doctorID, day)
	if err != nil {
		u.log.Warnf("Failed to resolve slots for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	response := &dto.AvailableSlotsResponse{
		DoctorID:  doctorID,
		Date:      wallclock.FormatDate(day),
		DayOfWeek: string(entity.WeekdayOf(day)),
		Slots:     slots,
	}
	if schedule.Bookable() {
		response.StartTime = schedule.StartTime
		response.EndTime = schedule.EndTime
	}
	return response, nil
}

// HasConflict checks a prospective booking against active appointments only;
// working hours are not consulted.
func (u *availabilityUsecase) HasConflict(ctx context.Context, doctorID uuid.UUID, date, hhmm string, duration int) (bool, error) {
	if doctorID == uuid.Nil {
		return false, ErrMissingDoctor
	}
	day, err := wallclock.ParseDate(date)
	if err != nil {
		return false, ErrInvalidDate
	}
	start, err := wallclock.Parse(hhmm)
	if err != nil {
		return false, ErrInvalidTime
	}
	if duration < 0 {
		return false, ErrInvalidDuration
	}
	if duration == 0 {
		duration = u.policy.DefaultDuration
	}

	conflict, err := u.resolver.hasConflict(u.tx.DB(ctx), doctorID, day, start, duration, uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed to check conflict for doctor %s on %s %s: %+v", doctorID, date, hhmm, err)
		return false, err
	}
	return conflict, nil
}
