package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends for the event snapshot.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	Calendar CalendarConfig
	Storage  StorageConfig
	Persist  PersistConfig
	Backup   BackupConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AuthConfig lists the editor accounts allowed to mutate the calendar. Each
// entry has the form email:bcrypt-hash:ROLE[:Full Name].
type AuthConfig struct {
	Accounts []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CalendarConfig tunes the scheduling core.
type CalendarConfig struct {
	Timezone        string
	StorageKey      string
	DefaultCap      int
	MaxCap          int
	DefaultDuration int
	HistorySize     int
	DayStartHour    int
	DayEndHour      int
	SlotMinutes     int
}

// StorageConfig selects where the event snapshot lives.
type StorageConfig struct {
	Backend string
	Dir     string
}

// PersistConfig configures the background snapshot writer.
type PersistConfig struct {
	Async      bool
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// BackupConfig controls scheduled JSON backups.
type BackupConfig struct {
	Enabled   bool
	Schedule  string
	Dir       string
	Retention time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.Auth = AuthConfig{Accounts: splitOn(v.GetString("AUTH_ACCOUNTS"), ";")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Calendar = CalendarConfig{
		Timezone:        v.GetString("CALENDAR_TIMEZONE"),
		StorageKey:      v.GetString("CALENDAR_STORAGE_KEY"),
		DefaultCap:      v.GetInt("CALENDAR_RECURRENCE_DEFAULT_CAP"),
		MaxCap:          v.GetInt("CALENDAR_RECURRENCE_MAX_CAP"),
		DefaultDuration: v.GetInt("CALENDAR_DEFAULT_DURATION"),
		HistorySize:     v.GetInt("CALENDAR_HISTORY_SIZE"),
		DayStartHour:    v.GetInt("CALENDAR_DAY_START_HOUR"),
		DayEndHour:      v.GetInt("CALENDAR_DAY_END_HOUR"),
		SlotMinutes:     v.GetInt("CALENDAR_SLOT_MINUTES"),
	}

	cfg.Storage = StorageConfig{
		Backend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		Dir:     v.GetString("STORAGE_DIR"),
	}

	cfg.Persist = PersistConfig{
		Async:      v.GetBool("PERSIST_ASYNC"),
		Retries:    v.GetInt("PERSIST_RETRIES"),
		RetryDelay: parseDuration(v.GetString("PERSIST_RETRY_DELAY"), time.Second),
		Timeout:    parseDuration(v.GetString("PERSIST_TIMEOUT"), 5*time.Second),
	}

	cfg.Backup = BackupConfig{
		Enabled:   v.GetBool("BACKUP_ENABLED"),
		Schedule:  v.GetString("BACKUP_SCHEDULE"),
		Dir:       v.GetString("BACKUP_DIR"),
		Retention: parseDuration(v.GetString("BACKUP_RETENTION"), 30*24*time.Hour),
	}

	return cfg, nil
}

// Location resolves the configured calendar timezone, falling back to the
// process local zone.
func (c CalendarConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "dept_calendar")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("AUTH_ACCOUNTS", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CALENDAR_TIMEZONE", "")
	v.SetDefault("CALENDAR_STORAGE_KEY", "cse_events")
	v.SetDefault("CALENDAR_RECURRENCE_DEFAULT_CAP", 52)
	v.SetDefault("CALENDAR_RECURRENCE_MAX_CAP", 1000)
	v.SetDefault("CALENDAR_DEFAULT_DURATION", 60)
	v.SetDefault("CALENDAR_HISTORY_SIZE", 50)
	v.SetDefault("CALENDAR_DAY_START_HOUR", 7)
	v.SetDefault("CALENDAR_DAY_END_HOUR", 21)
	v.SetDefault("CALENDAR_SLOT_MINUTES", 60)

	v.SetDefault("STORAGE_BACKEND", BackendFile)
	v.SetDefault("STORAGE_DIR", "./data")

	v.SetDefault("PERSIST_ASYNC", true)
	v.SetDefault("PERSIST_RETRIES", 3)
	v.SetDefault("PERSIST_RETRY_DELAY", "1s")
	v.SetDefault("PERSIST_TIMEOUT", "5s")

	v.SetDefault("BACKUP_ENABLED", false)
	v.SetDefault("BACKUP_SCHEDULE", "@daily")
	v.SetDefault("BACKUP_DIR", "backups")
	v.SetDefault("BACKUP_RETENTION", "720h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	return splitOn(raw, ",")
}

func splitOn(raw, sep string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
