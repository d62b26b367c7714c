package usecase

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/pkg/wallclock"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for Postgres. Transactions are
// serialized, which is what the per-day advisory lock guarantees for
// bookings, and rolled back by restoring a snapshot.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	schedules      map[int]entity.DoctorSchedule
	nextScheduleID int
	shifts         map[int]entity.Shift
	nextShiftID    int
	appointments   map[uuid.UUID]entity.Appointment
	waitlist       map[uuid.UUID]entity.WaitlistEntry
	auditLogs      []entity.AuditLog

	clock time.Time

	// failCreateBatch makes the next CreateBatch fail.
	failCreateBatch error
	// beforeCreate runs inside Create before the uniqueness check.
	beforeCreate func(s *fakeStore)
}

type fakeSnapshot struct {
	schedules    map[int]entity.DoctorSchedule
	shifts       map[int]entity.Shift
	appointments map[uuid.UUID]entity.Appointment
	waitlist     map[uuid.UUID]entity.WaitlistEntry
	auditLogs    []entity.AuditLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schedules:    make(map[int]entity.DoctorSchedule),
		shifts:       make(map[int]entity.Shift),
		appointments: make(map[uuid.UUID]entity.Appointment),
		waitlist:     make(map[uuid.UUID]entity.WaitlistEntry),
		clock:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp for CreatedAt/UpdatedAt.
// Callers hold mu.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := fakeSnapshot{
		schedules:    make(map[int]entity.DoctorSchedule, len(s.schedules)),
		shifts:       make(map[int]entity.Shift, len(s.shifts)),
		appointments: make(map[uuid.UUID]entity.Appointment, len(s.appointments)),
		waitlist:     make(map[uuid.UUID]entity.WaitlistEntry, len(s.waitlist)),
		auditLogs:    append([]entity.AuditLog(nil), s.auditLogs...),
	}
	for k, v := range s.schedules {
		snap.schedules[k] = v
	}
	for k, v := range s.shifts {
		snap.shifts[k] = v
	}
	for k, v := range s.appointments {
		snap.appointments[k] = v
	}
	for k, v := range s.waitlist {
		snap.waitlist[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules = snap.schedules
	s.shifts = snap.shifts
	s.appointments = snap.appointments
	s.waitlist = snap.waitlist
	s.auditLogs = snap.auditLogs
}

func (s *fakeStore) DB(ctx context.Context) *gorm.DB {
	return nil
}

func (s *fakeStore) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) appointmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appointments)
}

func (s *fakeStore) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, 0, len(s.auditLogs))
	for _, l := range s.auditLogs {
		actions = append(actions, l.Action)
	}
	return actions
}

// seedSchedule stores a weekly template row for doctorID.
func (s *fakeStore) seedSchedule(doctorID uuid.UUID, day entity.Weekday, start, end string, available bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextScheduleID++
	s.schedules[s.nextScheduleID] = entity.DoctorSchedule{
		ID:          s.nextScheduleID,
		DoctorID:    doctorID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: available,
	}
}

// seedAppointment stores a directly and returns its id.
func (s *fakeStore) seedAppointment(a entity.Appointment) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = s.tick()
	a.UpdatedAt = a.CreatedAt
	s.appointments[a.ID] = a
	return a.ID
}

func (s *fakeStore) appointment(id uuid.UUID) entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointments[id]
}

func (s *fakeStore) waitlistEntry(id uuid.UUID) entity.WaitlistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitlist[id]
}

var activeSlotViolation = &pgconn.PgError{
	Code:           "23505",
	ConstraintName: activeSlotConstraint,
	Message:        "duplicate key value violates unique constraint",
}

// slotTaken mirrors the partial unique index. Callers hold mu.
func (s *fakeStore) slotTaken(a *entity.Appointment) bool {
	if !a.Status.HoldsSlot() {
		return false
	}
	for id, other := range s.appointments {
		if id == a.ID || !other.Status.HoldsSlot() {
			continue
		}
		if other.DoctorID == a.DoctorID &&
			wallclock.SameDate(other.AppointmentDate, a.AppointmentDate) &&
			other.AppointmentTime == a.AppointmentTime {
			return true
		}
	}
	return false
}

type fakeAppointmentRepo struct{ s *fakeStore }

func (r fakeAppointmentRepo) Create(_ *gorm.DB, a *entity.Appointment) error {
	if r.s.beforeCreate != nil {
		hook := r.s.beforeCreate
		r.s.beforeCreate = nil
		hook(r.s)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if r.s.slotTaken(a) {
		return activeSlotViolation
	}
	a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	r.s.appointments[a.ID] = *a
	return nil
}

func (r fakeAppointmentRepo) CreateBatch(_ *gorm.DB, appointments []entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failCreateBatch; err != nil {
		r.s.failCreateBatch = nil
		return err
	}
	for i := range appointments {
		if appointments[i].ID == uuid.Nil {
			appointments[i].ID = uuid.New()
		}
		if r.s.slotTaken(&appointments[i]) {
			return activeSlotViolation
		}
	}
	for i := range appointments {
		appointments[i].CreatedAt = r.s.tick()
		appointments[i].UpdatedAt = appointments[i].CreatedAt
		r.s.appointments[appointments[i].ID] = appointments[i]
	}
	return nil
}

func (r fakeAppointmentRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r fakeAppointmentRepo) FindAll(_ *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if filter != nil {
			date := wallclock.FormatDate(a.AppointmentDate)
			switch {
			case filter.DoctorID != nil && a.DoctorID != *filter.DoctorID,
				filter.PatientID != nil && a.PatientID != *filter.PatientID,
				filter.Status != "" && a.Status != filter.Status,
				filter.Type != "" && a.Type != filter.Type,
				filter.Date != "" && date != filter.Date,
				filter.StartDate != "" && date < filter.StartDate,
				filter.EndDate != "" && date > filter.EndDate:
				continue
			}
		}
		out = append(out, a)
	}
	sortAppointments(out)
	return out, nil
}

func (r fakeAppointmentRepo) FindActiveByDoctorAndDate(_ *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.DoctorID == doctorID && wallclock.SameDate(a.AppointmentDate, date) && a.Status.HoldsSlot() {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r fakeAppointmentRepo) FindSeries(_ *gorm.DB, seedID uuid.UUID) ([]entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.ID == seedID || (a.ParentAppointmentID != nil && *a.ParentAppointmentID == seedID) {
			out = append(out, a)
		}
	}
	sortAppointments(out)
	return out, nil
}

func (r fakeAppointmentRepo) UpdateIfStatus(_ *gorm.DB, a *entity.Appointment, expected entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.appointments[a.ID]
	if !ok || stored.Status != expected {
		return 0, nil
	}
	if r.s.slotTaken(a) {
		return 0, activeSlotViolation
	}
	a.UpdatedAt = r.s.tick()
	r.s.appointments[a.ID] = *a
	return 1, nil
}

func (r fakeAppointmentRepo) LockDoctorDay(_ *gorm.DB, _ uuid.UUID, _ time.Time) error {
	return nil
}

func sortAppointments(list []entity.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		di, dj := wallclock.FormatDate(list[i].AppointmentDate), wallclock.FormatDate(list[j].AppointmentDate)
		if di != dj {
			return di < dj
		}
		return list[i].AppointmentTime < list[j].AppointmentTime
	})
}

type fakeScheduleRepo struct{ s *fakeStore }

func (r fakeScheduleRepo) FindByDoctorID(_ *gorm.DB, doctorID uuid.UUID) ([]entity.DoctorSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order := make(map[entity.Weekday]int)
	for i, d := range entity.Weekdays() {
		order[d] = i
	}
	var out []entity.DoctorSchedule
	for _, row := range r.s.schedules {
		if row.DoctorID == doctorID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].DayOfWeek] < order[out[j].DayOfWeek] })
	return out, nil
}

func (r fakeScheduleRepo) FindByDoctorAndDay(_ *gorm.DB, doctorID uuid.UUID, day entity.Weekday) (*entity.DoctorSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.schedules {
		if row.DoctorID == doctorID && row.DayOfWeek == day {
			found := row
			return &found, nil
		}
	}
	return nil, nil
}

// findRow returns the id of the doctor's row for day. Callers hold mu.
func (r fakeScheduleRepo) findRow(doctorID uuid.UUID, day entity.Weekday) (int, bool) {
	for id, row := range r.s.schedules {
		if row.DoctorID == doctorID && row.DayOfWeek == day {
			return id, true
		}
	}
	return 0, false
}

func (r fakeScheduleRepo) Upsert(_ *gorm.DB, schedules []entity.DoctorSchedule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range schedules {
		id, ok := r.findRow(row.DoctorID, row.DayOfWeek)
		if !ok {
			r.s.nextScheduleID++
			id = r.s.nextScheduleID
		}
		row.ID = id
		r.s.schedules[id] = row
	}
	return nil
}

func (r fakeScheduleRepo) CreateMissing(_ *gorm.DB, schedules []entity.DoctorSchedule) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var created int64
	for _, row := range schedules {
		if _, ok := r.findRow(row.DoctorID, row.DayOfWeek); ok {
			continue
		}
		r.s.nextScheduleID++
		row.ID = r.s.nextScheduleID
		r.s.schedules[row.ID] = row
		created++
	}
	return created, nil
}

type fakeShiftRepo struct{ s *fakeStore }

func (r fakeShiftRepo) Create(_ *gorm.DB, shift *entity.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextShiftID++
	shift.ID = r.s.nextShiftID
	shift.CreatedAt = r.s.tick()
	shift.UpdatedAt = shift.CreatedAt
	r.s.shifts[shift.ID] = *shift
	return nil
}

func (r fakeShiftRepo) FindByID(_ *gorm.DB, id int) (*entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shift, ok := r.s.shifts[id]
	if !ok {
		return nil, nil
	}
	return &shift, nil
}

func (r fakeShiftRepo) FindByDoctorID(_ *gorm.DB, doctorID uuid.UUID, filter *entity.ShiftFilter) ([]entity.Shift, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Shift
	for _, shift := range r.s.shifts {
		if shift.DoctorID != doctorID {
			continue
		}
		if filter != nil {
			date := wallclock.FormatDate(shift.Date)
			if (filter.StartDate != "" && date < filter.StartDate) ||
				(filter.EndDate != "" && date > filter.EndDate) ||
				(filter.Status != "" && shift.Status != filter.Status) {
				continue
			}
		}
		out = append(out, shift)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r fakeShiftRepo) Update(_ *gorm.DB, shift *entity.Shift) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shift.UpdatedAt = r.s.tick()
	r.s.shifts[shift.ID] = *shift
	return nil
}

func (r fakeShiftRepo) Delete(_ *gorm.DB, id int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shifts[id]; !ok {
		return 0, nil
	}
	delete(r.s.shifts, id)
	return 1, nil
}

type fakeWaitlistRepo struct{ s *fakeStore }

func (r fakeWaitlistRepo) Create(_ *gorm.DB, entry *entity.WaitlistEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.s.tick()
	entry.UpdatedAt = entry.CreatedAt
	r.s.waitlist[entry.ID] = *entry
	return nil
}

func (r fakeWaitlistRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.WaitlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry, ok := r.s.waitlist[id]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r fakeWaitlistRepo) FindAll(_ *gorm.DB, filter *entity.WaitlistFilter) ([]entity.WaitlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.WaitlistEntry
	for _, entry := range r.s.waitlist {
		if filter != nil {
			if (filter.DoctorID != nil && entry.DoctorID != *filter.DoctorID) ||
				(filter.PatientID != nil && entry.PatientID != *filter.PatientID) ||
				(filter.Status != "" && entry.Status != filter.Status) {
				continue
			}
		}
		out = append(out, entry)
	}
	sortEntries(out)
	return out, nil
}

func (r fakeWaitlistRepo) FindOpenByDoctor(_ *gorm.DB, doctorID uuid.UUID) ([]entity.WaitlistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.WaitlistEntry
	for _, entry := range r.s.waitlist {
		if entry.DoctorID == doctorID && entry.Status.IsOpen() {
			out = append(out, entry)
		}
	}
	sortEntries(out)
	return out, nil
}

func (r fakeWaitlistRepo) Update(_ *gorm.DB, entry *entity.WaitlistEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.UpdatedAt = r.s.tick()
	r.s.waitlist[entry.ID] = *entry
	return nil
}

func (r fakeWaitlistRepo) UpdateIfStatus(_ *gorm.DB, entry *entity.WaitlistEntry, expected entity.WaitlistStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.waitlist[entry.ID]
	if !ok || stored.Status != expected {
		return 0, nil
	}
	entry.UpdatedAt = r.s.tick()
	r.s.waitlist[entry.ID] = *entry
	return 1, nil
}

func (r fakeWaitlistRepo) Delete(_ *gorm.DB, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.waitlist[id]; !ok {
		return 0, nil
	}
	delete(r.s.waitlist, id)
	return 1, nil
}

func (r fakeWaitlistRepo) ExpireBefore(_ *gorm.DB, date time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var expired int64
	for id, entry := range r.s.waitlist {
		if entry.Status.IsOpen() && entry.PreferredDate != nil && entry.PreferredDate.Before(date) {
			entry.Status = entity.WaitlistExpired
			r.s.waitlist[id] = entry
			expired++
		}
	}
	return expired, nil
}

func sortEntries(list []entity.WaitlistEntry) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
}

type fakeAuditLogRepo struct{ s *fakeStore }

func (r fakeAuditLogRepo) Create(_ *gorm.DB, log *entity.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = int64(len(r.s.auditLogs) + 1)
	log.CreatedAt = r.s.tick()
	r.s.auditLogs = append(r.s.auditLogs, *log)
	return nil
}

func (r fakeAuditLogRepo) FindAll(_ *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.AuditLog
	for i := len(r.s.auditLogs) - 1; i >= 0; i-- {
		l := r.s.auditLogs[i]
		if filter != nil {
			if (filter.EntityName != "" && l.EntityName != filter.EntityName) ||
				(filter.EntityID != "" && l.EntityID != filter.EntityID) ||
				(filter.Action != "" && l.Action != filter.Action) {
				continue
			}
			if filter.Limit > 0 && len(out) == filter.Limit {
				break
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func (r fakeAuditLogRepo) FindByID(_ *gorm.DB, id int64) (*entity.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.auditLogs {
		if l.ID == id {
			found := l
			return &found, nil
		}
	}
	return nil, nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	opened   []service.SlotOpenedEvent
	notified []service.WaitlistNotifiedEvent
}

func (p *recordingPublisher) PublishSlotOpened(_ context.Context, event service.SlotOpenedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = append(p.opened, event)
	return nil
}

func (p *recordingPublisher) PublishWaitlistNotified(_ context.Context, event service.WaitlistNotifiedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notified = append(p.notified, event)
	return nil
}

var errBatchInsert = errors.New("insert children: connection reset by peer")

// testNow is the fixed clock for scheduling tests: Friday 2026-10-16 08:00 UTC.
var testNow = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

type testEnv struct {
	store        *fakeStore
	publisher    *recordingPublisher
	policy       SchedulingPolicy
	appointments *appointmentUsecase
	waitlist     *waitlistUsecase
	availability AvailabilityUsecase
	schedules    DoctorScheduleUsecase
	auditLogs    AuditLogUsecase
}

func newTestEnv(configure ...func(p *SchedulingPolicy)) *testEnv {
	store := newFakeStore()
	publisher := &recordingPublisher{}
	log := newTestLogger()

	policy := DefaultSchedulingPolicy()
	for _, fn := range configure {
		fn(&policy)
	}

	scheduleRepo := fakeScheduleRepo{s: store}
	appointmentRepo := fakeAppointmentRepo{s: store}
	waitlistRepo := fakeWaitlistRepo{s: store}
	auditLogRepo := fakeAuditLogRepo{s: store}
	auditService := service.NewAuditService(log, auditLogRepo)

	waitlist := NewWaitlistUsecase(store, log, policy, waitlistRepo, scheduleRepo, appointmentRepo, auditService, publisher).(*waitlistUsecase)
	waitlist.now = func() time.Time { return testNow }
	appointments := NewAppointmentUsecase(store, log, policy, scheduleRepo, appointmentRepo, auditService, publisher, waitlist).(*appointmentUsecase)
	appointments.now = func() time.Time { return testNow }

	return &testEnv{
		store:        store,
		publisher:    publisher,
		policy:       policy,
		appointments: appointments,
		waitlist:     waitlist,
		availability: NewAvailabilityUsecase(store, log, policy, scheduleRepo, appointmentRepo),
		schedules:    NewDoctorScheduleUsecase(store, log, scheduleRepo, fakeShiftRepo{s: store}, auditService),
		auditLogs:    NewAuditLogUsecase(store, log, auditLogRepo),
	}
}

// weekdayDoctor gives doctorID the onboarding template: weekdays 09:00-17:00.
func (e *testEnv) weekdayDoctor(doctorID uuid.UUID) {
	for _, row := range entity.DefaultWeeklyTemplate(doctorID) {
		e.store.seedSchedule(doctorID, row.DayOfWeek, row.StartTime, row.EndTime, row.IsAvailable)
	}
}

func mustDate(value string) time.Time {
	d, err := wallclock.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}
