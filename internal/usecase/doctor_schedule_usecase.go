package usecase

import (
	"context"
	"strconv"

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

type DoctorScheduleUsecase interface {
	GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error)
	InitializeDefaultSchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error)
	UpdateWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateWeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error)

	CreateShift(ctx context.Context, doctorID uuid.UUID, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	GetShifts(ctx context.Context, doctorID uuid.UUID, filter *entity.ShiftFilter) (*dto.ShiftListResponse, error)
	GetShift(ctx context.Context, shiftID int) (*dto.ShiftResponse, error)
	UpdateShift(ctx context.Context, shiftID int, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error)
	DeleteShift(ctx context.Context, shiftID int) error
}

type doctorScheduleUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	scheduleRepo repository.DoctorScheduleRepository
	shiftRepo    repository.ShiftRepository
	auditService service.AuditService
}

func NewDoctorScheduleUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	scheduleRepo repository.DoctorScheduleRepository,
	shiftRepo repository.ShiftRepository,
	auditService service.AuditService,
) DoctorScheduleUsecase {
	return &doctorScheduleUsecase{
		tx:           tx,
		log:          log,
		scheduleRepo: scheduleRepo,
		shiftRepo:    shiftRepo,
		auditService: auditService,
	}
}

func (u *doctorScheduleUsecase) GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}

	schedules, err := u.scheduleRepo.FindByDoctorID(u.tx.DB(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find schedules for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return converter.WeeklyScheduleToResponse(doctorID, schedules), nil
}

// InitializeDefaultSchedule fills in the onboarding template for days the
// doctor has no row for. Existing rows are left alone, so repeating the call
// changes nothing.
func (u *doctorScheduleUsecase) InitializeDefaultSchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}

	var schedules []entity.DoctorSchedule
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		created, err := u.scheduleRepo.CreateMissing(tx, entity.DefaultWeeklyTemplate(doctorID))
		if err != nil {
			u.log.Warnf("Failed to initialize schedule for doctor %s: %+v", doctorID, err)
			return err
		}

		if created > 0 {
			if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionScheduleInitialize, entity.AuditEntityDoctorSchedule, doctorID.String(), map[string]interface{}{
				"created_days": created,
			}); err != nil {
				u.log.Warnf("Failed to create audit log: %+v", err)
			}
			u.log.Infof("Default schedule initialized: doctor=%s, days=%d", doctorID, created)
		}

		schedules, err = u.scheduleRepo.FindByDoctorID(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find schedules for doctor %s: %+v", doctorID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.WeeklyScheduleToResponse(doctorID, schedules), nil
}

// UpdateWeeklySchedule upserts the given days. Days not mentioned keep their
// current row.
func (u *doctorScheduleUsecase) UpdateWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateWeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}

	rows, err := scheduleRows(doctorID, req.Days)
	if err != nil {
		return nil, err
	}

	var schedules []entity.DoctorSchedule
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		old, err := u.scheduleRepo.FindByDoctorID(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find schedules for doctor %s: %+v", doctorID, err)
			return err
		}

		if err := u.scheduleRepo.Upsert(tx, rows); err != nil {
			u.log.Warnf("Failed to update schedule for doctor %s: %+v", doctorID, err)
			return err
		}

		schedules, err = u.scheduleRepo.FindByDoctorID(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find schedules for doctor %s: %+v", doctorID, err)
			return err
		}

		if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionScheduleUpdate, entity.AuditEntityDoctorSchedule, doctorID.String(),
			converter.WeeklyScheduleToResponse(doctorID, old), converter.WeeklyScheduleToResponse(doctorID, schedules)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Weekly schedule updated: doctor=%s, days=%d", doctorID, len(rows))
	return converter.WeeklyScheduleToResponse(doctorID, schedules), nil
}

// scheduleRows validates the requested days. Available days need a valid
// range; unavailable days only need well-formed times.
func scheduleRows(doctorID uuid.UUID, days []dto.DayScheduleRequest) ([]entity.DoctorSchedule, error) {
	seen := make(map[entity.Weekday]bool, len(days))
	rows := make([]entity.DoctorSchedule, 0, len(days))
	for _, d := range days {
		day := entity.Weekday(d.DayOfWeek)
		if !day.IsValid() {
			return nil, ErrInvalidDayOfWeek
		}
		if seen[day] {
			return nil, ErrDuplicateDay.WithDetails(map[string]interface{}{"day_of_week": day})
		}
		seen[day] = true

		row := entity.DoctorSchedule{
			DoctorID:    doctorID,
			DayOfWeek:   day,
			StartTime:   d.StartTime,
			EndTime:     d.EndTime,
			IsAvailable: d.IsAvailable,
		}
		if !wallclock.Valid(row.StartTime) || !wallclock.Valid(row.EndTime) {
			return nil, ErrInvalidTime
		}
		if row.IsAvailable {
			if _, _, err := row.Hours(); err != nil {
				return nil, ErrInvalidTimeRange.WithDetails(map[string]interface{}{"day_of_week": day})
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (u *doctorScheduleUsecase) CreateShift(ctx context.Context, doctorID uuid.UUID, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}
	date, err := wallclock.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if err := validateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	shift := &entity.Shift{
		DoctorID:  doctorID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		ShiftType: entity.ShiftTypeRegular,
		Status:    entity.ShiftStatusScheduled,
		Notes:     req.Notes,
	}
	if req.ShiftType != "" {
		shift.ShiftType = entity.ShiftType(req.ShiftType)
		if !shift.ShiftType.IsValid() {
			return nil, ErrInvalidShiftType
		}
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.shiftRepo.Create(tx, shift); err != nil {
			u.log.Warnf("Failed to create shift: %+v", err)
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, actorFromContext(ctx), entity.AuditActionShiftCreate, entity.AuditEntityShift, strconv.Itoa(shift.ID), converter.ShiftToResponse(shift)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Shift created: id=%d, doctor=%s, date=%s", shift.ID, doctorID, req.Date)
	return converter.ShiftToResponse(shift), nil
}

func (u *doctorScheduleUsecase) GetShifts(ctx context.Context, doctorID uuid.UUID, filter *entity.ShiftFilter) (*dto.ShiftListResponse, error) {
	if doctorID == uuid.Nil {
		return nil, ErrMissingDoctor
	}
	if filter != nil {
		for _, d := range []string{filter.StartDate, filter.EndDate} {
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
		if filter.Status != "" && !filter.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
	}

	shifts, err := u.shiftRepo.FindByDoctorID(u.tx.DB(ctx), doctorID, filter)
	if err != nil {
		u.log.Warnf("Failed to find shifts for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.ShiftListResponse{
		Shifts: converter.ShiftsToResponses(shifts),
		Total:  len(shifts),
	}, nil
}

func (u *doctorScheduleUsecase) GetShift(ctx context.Context, shiftID int) (*dto.ShiftResponse, error) {
	shift, err := u.findShift(u.tx.DB(ctx), shiftID)
	if err != nil {
		return nil, err
	}
	return converter.ShiftToResponse(shift), nil
}

func (u *doctorScheduleUsecase) findShift(db *gorm.DB, shiftID int) (*entity.Shift, error) {
	shift, err := u.shiftRepo.FindByID(db, shiftID)
	if err != nil {
		u.log.Warnf("Failed to find shift %d: %+v", shiftID, err)
		return nil, err
	}
	if shift == nil {
		return nil, ErrShiftNotFound
	}
	return shift, nil
}

func (u *doctorScheduleUsecase) UpdateShift(ctx context.Context, shiftID int, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	var updated *entity.Shift
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		shift, err := u.findShift(tx, shiftID)
		if err != nil {
			return err
		}
		old := converter.ShiftToResponse(shift)

		if req.StartTime != nil {
			shift.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			shift.EndTime = *req.EndTime
		}
		if err := validateRange(shift.StartTime, shift.EndTime); err != nil {
			return err
		}
		if req.ShiftType != nil {
			shiftType := entity.ShiftType(*req.ShiftType)
			if !shiftType.IsValid() {
				return ErrInvalidShiftType
			}
			shift.ShiftType = shiftType
		}
		if req.Status != nil {
			status := entity.ShiftStatus(*req.Status)
			if !status.IsValid() {
				return ErrInvalidStatus
			}
			shift.Status = status
		}
		if req.Notes != nil {
			shift.Notes = *req.Notes
		}

		if err := u.shiftRepo.Update(tx, shift); err != nil {
			u.log.Warnf("Failed to update shift %d: %+v", shiftID, err)
			return err
		}
		if err := u.auditService.LogUpdate(ctx, tx, actorFromContext(ctx), entity.AuditActionShiftUpdate, entity.AuditEntityShift, strconv.Itoa(shiftID), old, converter.ShiftToResponse(shift)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		updated = shift
		return nil
	})
	if err != nil {
		return nil, err
	}

	return converter.ShiftToResponse(updated), nil
}

func (u *doctorScheduleUsecase) DeleteShift(ctx context.Context, shiftID int) error {
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		shift, err := u.findShift(tx, shiftID)
		if err != nil {
			return err
		}

		affected, err := u.shiftRepo.Delete(tx, shiftID)
		if err != nil {
			u.log.Warnf("Failed to delete shift %d: %+v", shiftID, err)
			return err
		}
		if affected == 0 {
			return ErrShiftNotFound
		}

		if err := u.auditService.LogDelete(ctx, tx, actorFromContext(ctx), entity.AuditActionShiftDelete, entity.AuditEntityShift, strconv.Itoa(shiftID), converter.ShiftToResponse(shift)); err != nil {
			u.log.Warnf("Failed to create audit log: %+v", err)
		}
		return nil
	})
}

func validateRange(start, end string) error {
	s, err := wallclock.Parse(start)
	if err != nil {
		return ErrInvalidTime
	}
	e, err := wallclock.Parse(end)
	if err != nil {
		return ErrInvalidTime
	}
	if s >= e {
		return ErrInvalidTimeRange
	}
	return nil
}
