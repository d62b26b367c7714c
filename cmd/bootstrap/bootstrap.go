package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-scheduler/config"
	deliveryHttp "clinic-scheduler/internal/delivery/http"
	"clinic-scheduler/internal/delivery/http/handler"
	"clinic-scheduler/internal/delivery/http/middleware"
	"clinic-scheduler/internal/infrastructure/cache"
	"clinic-scheduler/internal/infrastructure/database"
	"clinic-scheduler/internal/repository"
	"clinic-scheduler/internal/service"
	"clinic-scheduler/internal/usecase"
	"clinic-scheduler/pkg/jwt"
	"clinic-scheduler/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	Waitlist usecase.WaitlistUsecase
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	cfg, log, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Redis is optional; without it revocations and slot events stay in process
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.RedisClient = redisClient
	}

	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// LoadEnvironment reads the configuration and builds the logger from it.
func LoadEnvironment() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Configuration loaded successfully")

	return cfg, log, nil
}

// NewLogger configures a JSON logrus logger at the configured level.
func NewLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	return log, nil
}

// NewTokenStore picks the Redis store when a client is available.
func NewTokenStore(redisClient *redis.Client) cache.TokenRevocationStore {
	if redisClient == nil {
		return cache.NewMemoryTokenStore()
	}
	return cache.NewRedisTokenStore(redisClient)
}

func (app *App) initializeServer() error {
	cfg, log, db := app.Config, app.Log, app.DB

	policy, err := usecase.NewSchedulingPolicy(cfg)
	if err != nil {
		return fmt.Errorf("invalid scheduling policy: %w", err)
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	tx := repository.NewTransactor(db)
	doctorScheduleRepo := repository.NewDoctorScheduleRepository()
	shiftRepo := repository.NewShiftRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	waitlistRepo := repository.NewWaitlistRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	publisher := service.NewNoopSlotEventPublisher()
	if app.RedisClient != nil {
		publisher = service.NewSlotEventPublisher(app.RedisClient, log)
	}
	tokenStore := NewTokenStore(app.RedisClient)

	// Initialize usecases; appointments release slots into the waitlist
	waitlistUsecase := usecase.NewWaitlistUsecase(tx, log, policy, waitlistRepo, doctorScheduleRepo, appointmentRepo, auditService, publisher)
	appointmentUsecase := usecase.NewAppointmentUsecase(tx, log, policy, doctorScheduleRepo, appointmentRepo, auditService, publisher, waitlistUsecase)
	availabilityUsecase := usecase.NewAvailabilityUsecase(tx, log, policy, doctorScheduleRepo, appointmentRepo)
	doctorScheduleUsecase := usecase.NewDoctorScheduleUsecase(tx, log, doctorScheduleRepo, shiftRepo, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(tx, log, auditLogRepo)
	sessionUsecase := usecase.NewSessionUsecase(log, jwtService, tokenStore)
	app.Waitlist = waitlistUsecase

	// Initialize handlers
	authHandler := handler.NewAuthHandler(sessionUsecase)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, availabilityUsecase, customValidator)
	waitlistHandler := handler.NewWaitlistHandler(waitlistUsecase, customValidator)
	doctorScheduleHandler := handler.NewDoctorScheduleHandler(doctorScheduleUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	corsMiddleware := middleware.NewCORSMiddleware()
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		appointmentHandler,
		waitlistHandler,
		doctorScheduleHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
	)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and blocks until it shuts down.
func (app *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()
	app.Log.Info("Server shutdown complete")
	return nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
