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

// Cache drivers accepted by CACHE_DRIVER.
const (
	CacheDriverRedis  = "redis"
	CacheDriverSQLite = "sqlite"
	CacheDriverNone   = "none"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	Cache       CacheConfig
	CORS        CORSConfig
	Log         LogConfig
	Persistence PersistenceConfig
	Gym         GymConfig
	Scheduler   SchedulerConfig
	Reports     ReportsConfig
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
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig selects the local fallback snapshot cache.
type CacheConfig struct {
	Driver      string
	SnapshotKey string
	SQLitePath  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PersistenceConfig tunes the remote write outbox.
type PersistenceConfig struct {
	Enabled      bool
	Workers      int
	BufferSize   int
	MaxRetries   int
	RetryDelay   time.Duration
	WriteTimeout time.Duration
}

// GymConfig seeds settings on a fresh installation.
type GymConfig struct {
	Name          string
	MaxCapacity   int
	DefaultAmount int64
	SeedDemo      bool
	Timezone      string
}

// ReportsConfig controls archived report files and their download links.
type ReportsConfig struct {
	Dir           string
	SigningSecret string
	LinkTTL       time.Duration
	Retention     time.Duration
}

// Location resolves the gym time zone, falling back to the host zone when
// the name is empty or unknown.
func (g GymConfig) Location() *time.Location {
	if g.Timezone == "" || strings.EqualFold(g.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SchedulerConfig controls the periodic fee check.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
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
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Driver:      strings.ToLower(v.GetString("CACHE_DRIVER")),
		SnapshotKey: v.GetString("CACHE_SNAPSHOT_KEY"),
		SQLitePath:  v.GetString("CACHE_SQLITE_PATH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Persistence = PersistenceConfig{
		Enabled:      v.GetBool("PERSISTENCE_ENABLED"),
		Workers:      v.GetInt("PERSISTENCE_WORKERS"),
		BufferSize:   v.GetInt("PERSISTENCE_BUFFER"),
		MaxRetries:   v.GetInt("PERSISTENCE_MAX_RETRIES"),
		RetryDelay:   parseDuration(v.GetString("PERSISTENCE_RETRY_DELAY"), time.Second),
		WriteTimeout: parseDuration(v.GetString("PERSISTENCE_WRITE_TIMEOUT"), 5*time.Second),
	}

	cfg.Gym = GymConfig{
		Name:          v.GetString("GYM_NAME"),
		MaxCapacity:   v.GetInt("GYM_MAX_CAPACITY"),
		DefaultAmount: v.GetInt64("GYM_DEFAULT_AMOUNT"),
		SeedDemo:      v.GetBool("GYM_SEED_DEMO"),
		Timezone:      v.GetString("GYM_TIMEZONE"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:  v.GetBool("ENABLE_FEE_SCHEDULER"),
		Interval: parseDuration(v.GetString("FEE_SCHEDULER_INTERVAL"), time.Hour),
	}

	cfg.Reports = ReportsConfig{
		Dir:           v.GetString("REPORTS_DIR"),
		SigningSecret: v.GetString("REPORTS_SIGNING_SECRET"),
		LinkTTL:       parseDuration(v.GetString("REPORTS_LINK_TTL"), 24*time.Hour),
		Retention:     parseDuration(v.GetString("REPORTS_RETENTION"), 7*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gym_manager")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CACHE_DRIVER", CacheDriverSQLite)
	v.SetDefault("CACHE_SNAPSHOT_KEY", "gym_manager_state_v14")
	v.SetDefault("CACHE_SQLITE_PATH", "./data/gym_cache.db")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PERSISTENCE_ENABLED", true)
	v.SetDefault("PERSISTENCE_WORKERS", 1)
	v.SetDefault("PERSISTENCE_BUFFER", 256)
	v.SetDefault("PERSISTENCE_MAX_RETRIES", 0)
	v.SetDefault("PERSISTENCE_RETRY_DELAY", "1s")
	v.SetDefault("PERSISTENCE_WRITE_TIMEOUT", "5s")

	v.SetDefault("GYM_NAME", "GymPro")
	v.SetDefault("GYM_MAX_CAPACITY", 10)
	v.SetDefault("GYM_DEFAULT_AMOUNT", 21000)
	v.SetDefault("GYM_SEED_DEMO", true)
	v.SetDefault("GYM_TIMEZONE", "Local")
	v.SetDefault("REPORTS_DIR", "./data/reports")
	v.SetDefault("REPORTS_SIGNING_SECRET", "change-me")
	v.SetDefault("REPORTS_LINK_TTL", "24h")
	v.SetDefault("REPORTS_RETENTION", "168h")

	v.SetDefault("ENABLE_FEE_SCHEDULER", true)
	v.SetDefault("FEE_SCHEDULER_INTERVAL", "1h")
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
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
