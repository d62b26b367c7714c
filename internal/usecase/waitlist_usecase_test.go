package usecase

import (
	"context"
	"testing"

	"clinic-scheduler/internal/delivery/dto"
	"clinic-scheduler/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) addToWaitlist(t *testing.T, doctorID uuid.UUID, priority, date, hhmm string) uuid.UUID {
	t.Helper()
	entry, err := e.waitlist.CreateEntry(context.Background(), &dto.CreateWaitlistRequest{
		DoctorID:      doctorID,
		PatientID:     uuid.New(),
		Priority:      priority,
		PreferredDate: date,
		PreferredTime: hhmm,
	})
	require.NoError(t, err)
	return entry.ID
}

func TestRankCandidates(t *testing.T) {
	base := testNow
	entries := []entity.WaitlistEntry{
		{ID: uuid.New(), Priority: entity.PriorityNormal, CreatedAt: base},
		{ID: uuid.New(), Priority: entity.PriorityUrgent, CreatedAt: base.Add(3)},
		{ID: uuid.New(), Priority: entity.PriorityLow, CreatedAt: base.Add(-10)},
		{ID: uuid.New(), Priority: entity.PriorityNormal, CreatedAt: base.Add(-1)},
	}
	want := []uuid.UUID{entries[1].ID, entries[3].ID, entries[0].ID, entries[2].ID}

	rankCandidates(entries)

	got := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		got[i] = e.ID
	}
	assert.Equal(t, want, got)
}

func TestFindCandidates_FiltersAndRanks(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	low := env.addToWaitlist(t, doctorID, "LOW", "", "")
	urgent := env.addToWaitlist(t, doctorID, "URGENT", monday, "")
	normal := env.addToWaitlist(t, doctorID, "", "", "10:00")
	env.addToWaitlist(t, doctorID, "HIGH", "2026-10-20", "")
	env.addToWaitlist(t, doctorID, "HIGH", "", "11:00")
	env.addToWaitlist(t, uuid.New(), "URGENT", "", "")

	candidates, err := env.waitlist.FindCandidates(ctx, doctorID, monday, "10:00")
	require.NoError(t, err)
	require.Equal(t, 3, candidates.Total)
	assert.Equal(t, urgent, candidates.Entries[0].ID)
	assert.Equal(t, normal, candidates.Entries[1].ID)
	assert.Equal(t, "NORMAL", candidates.Entries[1].Priority)
	assert.Equal(t, low, candidates.Entries[2].ID)

	_, err = env.waitlist.FindCandidates(ctx, doctorID, monday, "10am")
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestCreateEntry_Validation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.waitlist.CreateEntry(ctx, &dto.CreateWaitlistRequest{PatientID: uuid.New()})
	assert.ErrorIs(t, err, ErrMissingDoctor)

	_, err = env.waitlist.CreateEntry(ctx, &dto.CreateWaitlistRequest{DoctorID: uuid.New(), PatientID: uuid.New(), Priority: "ASAP"})
	assert.ErrorIs(t, err, ErrInvalidPriority)

	_, err = env.waitlist.CreateEntry(ctx, &dto.CreateWaitlistRequest{DoctorID: uuid.New(), PatientID: uuid.New(), PreferredDate: "19-10-2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestBookEntry_UsesPreferences(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()
	env.weekdayDoctor(doctorID)

	id := env.addToWaitlist(t, doctorID, "HIGH", monday, "10:30")

	booking, err := env.waitlist.BookEntry(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, "SCHEDULED", booking.Entry.Status)
	assert.Equal(t, monday, booking.Appointment.AppointmentDate)
	assert.Equal(t, "10:30", booking.Appointment.AppointmentTime)
	assert.Equal(t, "HIGH", booking.Appointment.Priority)
	assert.Equal(t, booking.Entry.PatientID, booking.Appointment.PatientID)

	_, err = env.waitlist.BookEntry(ctx, id, nil)
	assert.ErrorIs(t, err, entity.ErrWaitlistClosed)

	assert.Contains(t, env.store.auditActions(), entity.AuditActionWaitlistSchedule)
}

func TestBookEntry_RequestOverridesPreferences(t *testing.T) {
	env := newTestEnv()
	doctorID := uuid.New()
	env.weekdayDoctor(doctorID)

	id := env.addToWaitlist(t, doctorID, "", "", "")

	_, err := env.waitlist.BookEntry(context.Background(), id, &dto.BookWaitlistRequest{})
	assert.ErrorIs(t, err, ErrWaitlistSlot)

	booking, err := env.waitlist.BookEntry(context.Background(), id, &dto.BookWaitlistRequest{
		AppointmentDate: "2026-10-20",
		AppointmentTime: "13:00",
		Duration:        45,
		Type:            "FOLLOW_UP",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20", booking.Appointment.AppointmentDate)
	assert.Equal(t, 45, booking.Appointment.Duration)
	assert.Equal(t, "FOLLOW_UP", booking.Appointment.Type)
}

func TestBookEntry_TakenSlotLeavesEntryWaiting(t *testing.T) {
	env := newTestEnv()
	doctorID := uuid.New()
	env.weekdayDoctor(doctorID)

	env.book(t, doctorID, monday, "10:00")
	id := env.addToWaitlist(t, doctorID, "URGENT", monday, "10:00")

	_, err := env.waitlist.BookEntry(context.Background(), id, nil)
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, entity.WaitlistWaiting, env.store.waitlistEntry(id).Status)
	assert.Equal(t, 1, env.store.appointmentCount())
}

func TestCancelAppointment_NotifiesBestWaitingCandidate(t *testing.T) {
	env := newTestEnv(func(p *SchedulingPolicy) { p.WaitlistAutoNotify = true })
	ctx := context.Background()
	doctorID := uuid.New()
	env.weekdayDoctor(doctorID)

	appointmentID := env.book(t, doctorID, monday, "10:00")
	normal := env.addToWaitlist(t, doctorID, "NORMAL", "", "")
	high := env.addToWaitlist(t, doctorID, "HIGH", monday, "10:00")
	elsewhere := env.addToWaitlist(t, doctorID, "URGENT", "2026-10-21", "")

	_, err := env.appointments.CancelAppointment(ctx, appointmentID, nil)
	require.NoError(t, err)

	notified := env.store.waitlistEntry(high)
	assert.Equal(t, entity.WaitlistNotified, notified.Status)
	assert.True(t, notified.IsNotified)
	require.NotNil(t, notified.NotifiedAt)
	assert.Equal(t, entity.WaitlistWaiting, env.store.waitlistEntry(normal).Status)
	assert.Equal(t, entity.WaitlistWaiting, env.store.waitlistEntry(elsewhere).Status)

	require.Len(t, env.publisher.notified, 1)
	event := env.publisher.notified[0]
	assert.Equal(t, high, event.WaitlistEntryID)
	assert.Equal(t, monday, event.Date)
	assert.Equal(t, "10:00", event.Time)

	// A second opening goes to the next waiting entry, not the notified one.
	second := env.book(t, doctorID, monday, "11:00")
	_, err = env.appointments.CancelAppointment(ctx, second, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.WaitlistNotified, env.store.waitlistEntry(normal).Status)
}

func TestCancelAppointment_AutoNotifyDisabled(t *testing.T) {
	env := newTestEnv()
	doctorID := uuid.New()
	env.weekdayDoctor(doctorID)

	appointmentID := env.book(t, doctorID, monday, "10:00")
	entryID := env.addToWaitlist(t, doctorID, "URGENT", "", "")

	_, err := env.appointments.CancelAppointment(context.Background(), appointmentID, nil)
	require.NoError(t, err)

	assert.Equal(t, entity.WaitlistWaiting, env.store.waitlistEntry(entryID).Status)
	assert.Len(t, env.publisher.opened, 1)
	assert.Empty(t, env.publisher.notified)
}

func TestNotifyEntry(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	id := env.addToWaitlist(t, doctorID, "", "", "")

	notified, err := env.waitlist.NotifyEntry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "NOTIFIED", notified.Status)
	require.NotNil(t, notified.NotifiedAt)
	assert.Equal(t, testNow, *notified.NotifiedAt)

	cancelled := "CANCELLED"
	_, err = env.waitlist.UpdateEntry(ctx, id, &dto.UpdateWaitlistRequest{Status: &cancelled})
	require.NoError(t, err)

	_, err = env.waitlist.NotifyEntry(ctx, id)
	assert.ErrorIs(t, err, entity.ErrWaitlistNotWaiting)

	_, err = env.waitlist.NotifyEntry(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrWaitlistEntryNotFound)
}

func TestUpdateEntry(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := env.addToWaitlist(t, uuid.New(), "LOW", monday, "09:00")

	none := ""
	urgent := "URGENT"
	updated, err := env.waitlist.UpdateEntry(ctx, id, &dto.UpdateWaitlistRequest{
		PreferredDate: &none,
		Priority:      &urgent,
	})
	require.NoError(t, err)
	assert.Empty(t, updated.PreferredDate)
	assert.Equal(t, "09:00", updated.PreferredTime)
	assert.Equal(t, "URGENT", updated.Priority)

	scheduled := "SCHEDULED"
	_, err = env.waitlist.UpdateEntry(ctx, id, &dto.UpdateWaitlistRequest{Status: &scheduled})
	assert.ErrorIs(t, err, ErrWaitlistStatus)

	badTime := "9:00"
	_, err = env.waitlist.UpdateEntry(ctx, id, &dto.UpdateWaitlistRequest{PreferredTime: &badTime})
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestDeleteEntry(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	id := env.addToWaitlist(t, uuid.New(), "", "", "")

	require.NoError(t, env.waitlist.DeleteEntry(ctx, id))

	_, err := env.waitlist.GetEntry(ctx, id)
	assert.ErrorIs(t, err, ErrWaitlistEntryNotFound)
	assert.ErrorIs(t, env.waitlist.DeleteEntry(ctx, id), ErrWaitlistEntryNotFound)
	assert.Contains(t, env.store.auditActions(), entity.AuditActionWaitlistDelete)
}

func TestListEntries(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()
	env.addToWaitlist(t, doctorID, "", "", "")
	env.addToWaitlist(t, doctorID, "", "", "")
	env.addToWaitlist(t, uuid.New(), "", "", "")

	list, err := env.waitlist.ListEntries(ctx, &entity.WaitlistFilter{DoctorID: &doctorID, Status: entity.WaitlistWaiting})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)

	_, err = env.waitlist.ListEntries(ctx, &entity.WaitlistFilter{Status: "PENDING"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestExpireStale(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	doctorID := uuid.New()

	yesterday := env.addToWaitlist(t, doctorID, "", "2026-10-15", "")
	today := env.addToWaitlist(t, doctorID, "", "2026-10-16", "")
	anyDay := env.addToWaitlist(t, doctorID, "", "", "")

	expired, err := env.waitlist.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, entity.WaitlistExpired, env.store.waitlistEntry(yesterday).Status)
	assert.Equal(t, entity.WaitlistWaiting, env.store.waitlistEntry(today).Status)
	assert.Equal(t, entity.WaitlistWaiting, env.store.waitlistEntry(anyDay).Status)
	assert.Contains(t, env.store.auditActions(), entity.AuditActionWaitlistExpire)

	expired, err = env.waitlist.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}
