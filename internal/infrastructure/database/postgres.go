package database

import (
	"fmt"
	"strings"

	"clinic-scheduler/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresConnection(cfg config.DBConfig, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("Successfully connected to PostgreSQL database")

	return db, nil
}

// gormLogger routes SQL logs through logrus. Statements are only traced at
// debug level.
func gormLogger(log *logrus.Logger) logger.Interface {
	level := logger.Warn
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return logger.New(logWriter{log: log}, logger.Config{
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

type logWriter struct {
	log *logrus.Logger
}

func (w logWriter) Printf(format string, args ...interface{}) {
	w.log.WithField("component", "gorm").Info(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
