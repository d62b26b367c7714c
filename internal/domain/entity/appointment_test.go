package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWindow = CheckInWindow{Early: 15 * time.Minute, Late: 30 * time.Minute}

func newScheduledAppointment() *Appointment {
	return &Appointment{
		ID:              uuid.New(),
		DoctorID:        uuid.New(),
		PatientID:       uuid.New(),
		AppointmentDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:00",
		Duration:        30,
		Status:          StatusScheduled,
		Type:            TypeConsultation,
		Priority:        PriorityNormal,
	}
}

func TestAppointmentStatus_Predicates(t *testing.T) {
	tests := []struct {
		status    AppointmentStatus
		terminal  bool
		holdsSlot bool
		upcoming  bool
	}{
		{StatusScheduled, false, true, true},
		{StatusConfirmed, false, true, true},
		{StatusCheckedIn, false, true, false},
		{StatusInProgress, false, true, false},
		{StatusCompleted, true, true, false},
		{StatusCancelled, true, false, false},
		{StatusNoShow, true, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.True(t, tt.status.IsValid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
			assert.Equal(t, tt.holdsSlot, tt.status.HoldsSlot())
			assert.Equal(t, tt.upcoming, tt.status.IsUpcoming())
		})
	}

	assert.False(t, AppointmentStatus("RESCHEDULED").IsValid())
	assert.False(t, AppointmentStatus("scheduled").IsValid())
}

func TestReleasedStatuses_AreThoseNotHoldingSlot(t *testing.T) {
	assert.Equal(t, []AppointmentStatus{StatusCancelled, StatusNoShow}, ReleasedStatuses())
	for _, status := range ReleasedStatuses() {
		assert.False(t, status.HoldsSlot(), status)
	}
	assert.False(t, AppointmentStatus("ARCHIVED").HoldsSlot())
}

func TestRecurringPattern_Occurrence(t *testing.T) {
	seed := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), PatternDaily.Occurrence(seed, 1))
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), PatternWeekly.Occurrence(seed, 2))
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), PatternBiweekly.Occurrence(seed, 1))
	assert.Equal(t, time.Date(2026, 12, 19, 0, 0, 0, 0, time.UTC), PatternMonthly.Occurrence(seed, 2))
}

func TestRecurringPattern_MonthlyClampsToMonthEnd(t *testing.T) {
	seed := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2027, 2, 28, 0, 0, 0, 0, time.UTC), PatternMonthly.Occurrence(seed, 1))
	assert.Equal(t, time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC), PatternMonthly.Occurrence(seed, 2))
	assert.Equal(t, time.Date(2027, 4, 30, 0, 0, 0, 0, time.UTC), PatternMonthly.Occurrence(seed, 3))

	leap := time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), PatternMonthly.Occurrence(leap, 1))
}

func TestAppointment_CheckInWindow(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"61 minutes early", start.Add(-61 * time.Minute), ErrCheckInTooEarly},
		{"16 minutes early", start.Add(-16 * time.Minute), ErrCheckInTooEarly},
		{"window opens", start.Add(-15 * time.Minute), nil},
		{"10 minutes early", start.Add(-10 * time.Minute), nil},
		{"on time", start, nil},
		{"window closes", start.Add(30 * time.Minute), nil},
		{"31 minutes late", start.Add(31 * time.Minute), ErrCheckInTooLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newScheduledAppointment()
			err := a.CheckIn(tt.now, start, testWindow)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Equal(t, StatusScheduled, a.Status)
				assert.Nil(t, a.CheckedInAt)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCheckedIn, a.Status)
			require.NotNil(t, a.CheckedInAt)
			assert.Equal(t, tt.now, *a.CheckedInAt)
		})
	}
}

func TestAppointment_CheckInTwiceRejected(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	a := newScheduledAppointment()
	require.NoError(t, a.CheckIn(start, start, testWindow))

	err := a.CheckIn(start, start, testWindow)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
}

func TestAppointment_FullLifecycle(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	a := newScheduledAppointment()

	require.NoError(t, a.Confirm())
	assert.Equal(t, StatusConfirmed, a.Status)

	require.NoError(t, a.CheckIn(start.Add(-5*time.Minute), start, testWindow))
	require.NoError(t, a.Start())
	assert.Equal(t, StatusInProgress, a.Status)

	done := start.Add(25 * time.Minute)
	require.NoError(t, a.CheckOut(done))
	assert.Equal(t, StatusCompleted, a.Status)
	assert.Equal(t, done, *a.CheckedOutAt)

	assert.ErrorIs(t, a.Cancel(done, nil, "late"), ErrCancelNotAllowed)
}

func TestAppointment_CancelIsTerminal(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	by := uuid.New()
	a := newScheduledAppointment()

	require.NoError(t, a.Cancel(now, &by, "patient request"))
	assert.Equal(t, StatusCancelled, a.Status)
	assert.Equal(t, "patient request", a.CancellationReason)
	assert.Equal(t, &by, a.CancelledBy)

	assert.ErrorIs(t, a.Cancel(now, &by, ""), ErrCancelNotAllowed)
	assert.ErrorIs(t, a.CheckIn(start, start, testWindow), ErrCheckInNotAllowed)
	assert.ErrorIs(t, a.CheckOut(now), ErrCheckOutNotAllowed)
	assert.ErrorIs(t, a.CanEdit(), ErrEditNotAllowed)
}

func TestAppointment_CheckOutRequiresCheckIn(t *testing.T) {
	a := newScheduledAppointment()
	assert.ErrorIs(t, a.CheckOut(time.Now()), ErrCheckOutNotAllowed)
	assert.ErrorIs(t, a.Start(), ErrStartNotAllowed)
}

func TestAppointment_MarkNoShow(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	a := newScheduledAppointment()
	assert.ErrorIs(t, a.MarkNoShow(start.Add(-time.Minute), start), ErrNoShowBeforeStart)
	require.NoError(t, a.MarkNoShow(start.Add(time.Hour), start))
	assert.Equal(t, StatusNoShow, a.Status)

	checkedIn := newScheduledAppointment()
	require.NoError(t, checkedIn.CheckIn(start, start, testWindow))
	assert.ErrorIs(t, checkedIn.MarkNoShow(start.Add(time.Hour), start), ErrNoShowNotAllowed)
}

func TestAppointment_CanReschedule(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	a := newScheduledAppointment()

	assert.NoError(t, a.CanReschedule(start.Add(-time.Hour), start))
	assert.ErrorIs(t, a.CanReschedule(start, start), ErrRescheduleStarted)

	a.Status = StatusCompleted
	assert.ErrorIs(t, a.CanReschedule(start.Add(-time.Hour), start), ErrRescheduleNotAllowed)
}

func TestAppointment_Interval(t *testing.T) {
	a := newScheduledAppointment()
	a.Duration = 0

	start, dur, err := a.Interval(30)
	require.NoError(t, err)
	assert.Equal(t, 540, start)
	assert.Equal(t, 30, dur)
}

func TestPriority_Rank(t *testing.T) {
	assert.Greater(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityNormal.Rank())
	assert.Greater(t, PriorityNormal.Rank(), PriorityLow.Rank())
	assert.False(t, Priority("CRITICAL").IsValid())
}
