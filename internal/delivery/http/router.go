package http

import (
	"net/http"

	"clinic-scheduler/internal/delivery/http/handler"
	"clinic-scheduler/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	authHandler           *handler.AuthHandler
	appointmentHandler    *handler.AppointmentHandler
	waitlistHandler       *handler.WaitlistHandler
	doctorScheduleHandler *handler.DoctorScheduleHandler
	auditLogHandler       *handler.AuditLogHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
	loggingMiddleware     *middleware.LoggingMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	waitlistHandler *handler.WaitlistHandler,
	doctorScheduleHandler *handler.DoctorScheduleHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		authHandler:           authHandler,
		appointmentHandler:    appointmentHandler,
		waitlistHandler:       waitlistHandler,
		doctorScheduleHandler: doctorScheduleHandler,
		auditLogHandler:       auditLogHandler,
		authMiddleware:        authMiddleware,
		corsMiddleware:        corsMiddleware,
		loggingMiddleware:     loggingMiddleware,
	}
}

// Setup registers every route and returns the handler to serve. CORS wraps
// the whole router so preflight requests are answered before route matching.
func (r *Router) Setup() http.Handler {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Clinic routes (admin, doctor, staff)
	clinic := api.NewRoute().Subrouter()
	clinic.Use(r.authMiddleware.Authenticate)
	clinic.Use(middleware.RequireClinicStaff)

	// Waitlist, registered before /appointments/{id}
	clinic.HandleFunc("/appointments/waitlist", r.waitlistHandler.ListEntries).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments/waitlist", r.waitlistHandler.CreateEntry).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/waitlist/candidates", r.waitlistHandler.FindCandidates).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments/waitlist/{id}", r.waitlistHandler.GetEntry).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments/waitlist/{id}", r.waitlistHandler.UpdateEntry).Methods(http.MethodPut)
	clinic.HandleFunc("/appointments/waitlist/{id}", r.waitlistHandler.DeleteEntry).Methods(http.MethodDelete)
	clinic.HandleFunc("/appointments/waitlist/{id}/notify", r.waitlistHandler.NotifyEntry).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/waitlist/{id}/book", r.waitlistHandler.BookEntry).Methods(http.MethodPost)

	// Appointments
	clinic.HandleFunc("/appointments/available-slots", r.appointmentHandler.GetAvailableSlots).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments/conflicts", r.appointmentHandler.CheckConflict).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments/{id}", r.appointmentHandler.UpdateAppointment).Methods(http.MethodPut)
	clinic.HandleFunc("/appointments/{id}/series", r.appointmentHandler.GetSeries).Methods(http.MethodGet)
	clinic.HandleFunc("/appointments/{id}/confirm", r.appointmentHandler.ConfirmAppointment).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/{id}/checkin", r.appointmentHandler.CheckIn).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/{id}/start", r.appointmentHandler.StartAppointment).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/{id}/checkout", r.appointmentHandler.CheckOut).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)
	clinic.HandleFunc("/appointments/{id}/no-show", r.appointmentHandler.MarkNoShow).Methods(http.MethodPost)

	// Schedules and shifts
	clinic.HandleFunc("/doctors/{doctorId}/schedule", r.doctorScheduleHandler.GetWeeklySchedule).Methods(http.MethodGet)
	clinic.HandleFunc("/doctors/{doctorId}/schedule", r.doctorScheduleHandler.UpdateWeeklySchedule).Methods(http.MethodPut)
	clinic.HandleFunc("/doctors/{doctorId}/schedule/initialize", r.doctorScheduleHandler.InitializeDefaultSchedule).Methods(http.MethodPost)
	clinic.HandleFunc("/doctors/{doctorId}/shifts", r.doctorScheduleHandler.GetShifts).Methods(http.MethodGet)
	clinic.HandleFunc("/doctors/{doctorId}/shifts", r.doctorScheduleHandler.CreateShift).Methods(http.MethodPost)
	clinic.HandleFunc("/shifts/{id}", r.doctorScheduleHandler.GetShift).Methods(http.MethodGet)
	clinic.HandleFunc("/shifts/{id}", r.doctorScheduleHandler.UpdateShift).Methods(http.MethodPut)
	clinic.HandleFunc("/shifts/{id}", r.doctorScheduleHandler.DeleteShift).Methods(http.MethodDelete)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.loggingMiddleware.Recover)
	r.router.Use(r.loggingMiddleware.RequestID)
	r.router.Use(r.loggingMiddleware.AccessLog)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
