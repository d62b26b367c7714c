package handler

import (
	"context"
	"time"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAppointmentUsecase struct {
	mock.Mock
}

func (m *mockAppointmentUsecase) ListAppointments(ctx context.Context, filter *entity.AppointmentFilter) (*dto.AppointmentListResponse, error) {
	args := m.Called(ctx, filter)
	resp, _ := args.Get(0).(*dto.AppointmentListResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) GetSeries(ctx context.Context, id uuid.UUID) (*dto.SeriesResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.SeriesResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.CreateAppointmentResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.CreateAppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) UpdateAppointment(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.transition(ctx, "ConfirmAppointment", id)
}

func (m *mockAppointmentUsecase) CheckIn(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.transition(ctx, "CheckIn", id)
}

func (m *mockAppointmentUsecase) StartAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.transition(ctx, "StartAppointment", id)
}

func (m *mockAppointmentUsecase) CheckOut(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.transition(ctx, "CheckOut", id)
}

func (m *mockAppointmentUsecase) MarkNoShow(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	return m.transition(ctx, "MarkNoShow", id)
}

func (m *mockAppointmentUsecase) CancelAppointment(ctx context.Context, id uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

func (m *mockAppointmentUsecase) transition(ctx context.Context, method string, id uuid.UUID) (*dto.AppointmentResponse, error) {
	args := m.MethodCalled(method, ctx, id)
	resp, _ := args.Get(0).(*dto.AppointmentResponse)
	return resp, args.Error(1)
}

type mockAvailabilityUsecase struct {
	mock.Mock
}

func (m *mockAvailabilityUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	args := m.Called(ctx, doctorID, date)
	resp, _ := args.Get(0).(*dto.AvailableSlotsResponse)
	return resp, args.Error(1)
}

func (m *mockAvailabilityUsecase) HasConflict(ctx context.Context, doctorID uuid.UUID, date, hhmm string, duration int) (bool, error) {
	args := m.Called(ctx, doctorID, date, hhmm, duration)
	return args.Bool(0), args.Error(1)
}

type mockWaitlistUsecase struct {
	mock.Mock
}

func (m *mockWaitlistUsecase) ListEntries(ctx context.Context, filter *entity.WaitlistFilter) (*dto.WaitlistListResponse, error) {
	args := m.Called(ctx, filter)
	resp, _ := args.Get(0).(*dto.WaitlistListResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) GetEntry(ctx context.Context, id uuid.UUID) (*dto.WaitlistResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.WaitlistResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) CreateEntry(ctx context.Context, req *dto.CreateWaitlistRequest) (*dto.WaitlistResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.WaitlistResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) UpdateEntry(ctx context.Context, id uuid.UUID, req *dto.UpdateWaitlistRequest) (*dto.WaitlistResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*dto.WaitlistResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockWaitlistUsecase) NotifyEntry(ctx context.Context, id uuid.UUID) (*dto.WaitlistResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.WaitlistResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) BookEntry(ctx context.Context, id uuid.UUID, req *dto.BookWaitlistRequest) (*dto.WaitlistBookingResponse, error) {
	args := m.Called(ctx, id, req)
	resp, _ := args.Get(0).(*dto.WaitlistBookingResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) FindCandidates(ctx context.Context, doctorID uuid.UUID, date, hhmm string) (*dto.WaitlistListResponse, error) {
	args := m.Called(ctx, doctorID, date, hhmm)
	resp, _ := args.Get(0).(*dto.WaitlistListResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) NotifyNextCandidate(ctx context.Context, doctorID uuid.UUID, date time.Time, hhmm string) (*dto.WaitlistResponse, error) {
	args := m.Called(ctx, doctorID, date, hhmm)
	resp, _ := args.Get(0).(*dto.WaitlistResponse)
	return resp, args.Error(1)
}

func (m *mockWaitlistUsecase) ExpireStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockDoctorScheduleUsecase struct {
	mock.Mock
}

func (m *mockDoctorScheduleUsecase) GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	args := m.Called(ctx, doctorID)
	resp, _ := args.Get(0).(*dto.WeeklyScheduleResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) InitializeDefaultSchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	args := m.Called(ctx, doctorID)
	resp, _ := args.Get(0).(*dto.WeeklyScheduleResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) UpdateWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateWeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error) {
	args := m.Called(ctx, doctorID, req)
	resp, _ := args.Get(0).(*dto.WeeklyScheduleResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) CreateShift(ctx context.Context, doctorID uuid.UUID, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	args := m.Called(ctx, doctorID, req)
	resp, _ := args.Get(0).(*dto.ShiftResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) GetShifts(ctx context.Context, doctorID uuid.UUID, filter *entity.ShiftFilter) (*dto.ShiftListResponse, error) {
	args := m.Called(ctx, doctorID, filter)
	resp, _ := args.Get(0).(*dto.ShiftListResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) GetShift(ctx context.Context, shiftID int) (*dto.ShiftResponse, error) {
	args := m.Called(ctx, shiftID)
	resp, _ := args.Get(0).(*dto.ShiftResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) UpdateShift(ctx context.Context, shiftID int, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	args := m.Called(ctx, shiftID, req)
	resp, _ := args.Get(0).(*dto.ShiftResponse)
	return resp, args.Error(1)
}

func (m *mockDoctorScheduleUsecase) DeleteShift(ctx context.Context, shiftID int) error {
	return m.Called(ctx, shiftID).Error(0)
}

type mockAuditLogUsecase struct {
	mock.Mock
}

func (m *mockAuditLogUsecase) GetAuditLogs(ctx context.Context, filter *entity.AuditLogFilter) (*dto.AuditLogListResponse, error) {
	args := m.Called(ctx, filter)
	resp, _ := args.Get(0).(*dto.AuditLogListResponse)
	return resp, args.Error(1)
}

func (m *mockAuditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*dto.AuditLogResponse)
	return resp, args.Error(1)
}
