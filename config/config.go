package config

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Log        LogConfig
	Scheduling SchedulingConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

type LogConfig struct {
	Level string
}

// SchedulingConfig tunes the booking rules. Zero values fall back to the
// built-in policy.
type SchedulingConfig struct {
	SlotMinutes            int
	DefaultDurationMinutes int
	CheckInEarly           time.Duration
	CheckInLate            time.Duration
	MaxOccurrences         int
	WaitlistAutoNotify     bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Asia/Jakarta")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "clinic_scheduler")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ISSUER", "clinic-scheduler")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SCHEDULING_SLOT_MINUTES", 30)
	v.SetDefault("SCHEDULING_DEFAULT_DURATION_MINUTES", 30)
	v.SetDefault("SCHEDULING_CHECKIN_EARLY", "15m")
	v.SetDefault("SCHEDULING_CHECKIN_LATE", "30m")
	v.SetDefault("SCHEDULING_MAX_OCCURRENCES", 366)
	v.SetDefault("WAITLIST_AUTO_NOTIFY", false)
}

// LoadConfig reads the optional .env file and the environment. Environment
// variables win over the file; a missing file is not an error.
func LoadConfig() (*Config, error) {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)
	v.SetConfigFile(file)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			Timezone: v.GetString("APP_TIMEZONE"),
		},
		DB: DBConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			Issuer:       v.GetString("JWT_ISSUER"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Scheduling: SchedulingConfig{
			SlotMinutes:            v.GetInt("SCHEDULING_SLOT_MINUTES"),
			DefaultDurationMinutes: v.GetInt("SCHEDULING_DEFAULT_DURATION_MINUTES"),
			CheckInEarly:           v.GetDuration("SCHEDULING_CHECKIN_EARLY"),
			CheckInLate:            v.GetDuration("SCHEDULING_CHECKIN_LATE"),
			MaxOccurrences:         v.GetInt("SCHEDULING_MAX_OCCURRENCES"),
			WaitlistAutoNotify:     v.GetBool("WAITLIST_AUTO_NOTIFY"),
		},
	}

	return config, nil
}

// DSN builds the libpq connection string.
func (c DBConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=UTC"
}

// URL builds the postgres URL used by the migration driver.
func (c DBConfig) URL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}
