package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env        string
	Port       int
	APIPrefix  string
	EnableDocs bool

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Statistics StatisticsConfig
	Metrics    MetricsConfig
	Seed       SeedConfig
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
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StatisticsConfig governs caching of attendance aggregates.
type StatisticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool
}

// SeedUser describes a default account created at startup.
type SeedUser struct {
	Username string
	Password string
	FullName string
}

// SeedConfig controls creation of the default teacher and coordinator accounts.
type SeedConfig struct {
	Enabled     bool
	Teacher     SeedUser
	Coordinator SeedUser
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.EnableDocs = v.GetBool("ENABLE_DOCS")

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
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Statistics = StatisticsConfig{
		CacheEnabled: v.GetBool("ENABLE_STATISTICS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("STATISTICS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Seed = SeedConfig{
		Enabled: v.GetBool("SEED_DEFAULT_USERS"),
		Teacher: SeedUser{
			Username: v.GetString("SEED_TEACHER_USERNAME"),
			Password: v.GetString("SEED_TEACHER_PASSWORD"),
			FullName: v.GetString("SEED_TEACHER_FULL_NAME"),
		},
		Coordinator: SeedUser{
			Username: v.GetString("SEED_COORDINATOR_USERNAME"),
			Password: v.GetString("SEED_COORDINATOR_PASSWORD"),
			FullName: v.GetString("SEED_COORDINATOR_FULL_NAME"),
		},
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("ENABLE_DOCS", true)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "kbm_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "kbm-attendance-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_STATISTICS_CACHE", false)
	v.SetDefault("STATISTICS_CACHE_TTL", "5m")
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("SEED_DEFAULT_USERS", false)
	v.SetDefault("SEED_TEACHER_USERNAME", "guru0001")
	v.SetDefault("SEED_TEACHER_PASSWORD", "")
	v.SetDefault("SEED_TEACHER_FULL_NAME", "Guru Pengajar 0001")
	v.SetDefault("SEED_COORDINATOR_USERNAME", "koordinator")
	v.SetDefault("SEED_COORDINATOR_PASSWORD", "")
	v.SetDefault("SEED_COORDINATOR_FULL_NAME", "Koordinator KBM")
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
