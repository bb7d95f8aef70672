package config

import (
	"errors"
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
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Stats        StatsConfig
	Achievements AchievementsConfig
	Dashboard    DashboardConfig
	Reports      ReportsConfig
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

// StatsConfig tunes attendance aggregation windows.
type StatsConfig struct {
	// ExcludedWeekday is the recurring day with no lessons; attendance rows
	// falling on it never count as valid days. time.Weekday numbering
	// (Sunday = 0). The source deployment rests on Friday.
	ExcludedWeekday time.Weekday
	TrailingWindow  int
	CacheTTL        time.Duration
}

// AchievementsConfig carries badge thresholds. Values must be positive;
// the achievement engine refuses to start otherwise.
type AchievementsConfig struct {
	ExcellentGrades   int
	YearVerses        int
	PresentDays       int
	PresentWindowDays int
	TestScorePercent  float64
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ReportsConfig drives parent progress report generation.
type ReportsConfig struct {
	MessageTemplate    string
	CountryCallingCode string
	WorkerConcurrency  int
	WorkerRetries      int
}

// DefaultMessageTemplate is the parent WhatsApp message shell. Placeholders
// are substituted by the export service.
const DefaultMessageTemplate = `تقرير {report_type} للتسميع

الطالب: {student_name}
الحلقة: {circle_name}
المعلم: {teacher_name}
الفترة: من {start_date} إلى {end_date}

التسميع:
{reports_details}

إحصائيات الحضور:
{attendance_stats}

{site_name}`

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
		if !errors.As(err, &notFound) {
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
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Stats = StatsConfig{
		ExcludedWeekday: time.Weekday(v.GetInt("STATS_EXCLUDED_WEEKDAY")),
		TrailingWindow:  v.GetInt("STATS_TRAILING_WINDOW_DAYS"),
		CacheTTL:        parseDuration(v.GetString("STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Achievements = AchievementsConfig{
		ExcellentGrades:   v.GetInt("ACHIEVEMENT_EXCELLENT_GRADES"),
		YearVerses:        v.GetInt("ACHIEVEMENT_YEAR_VERSES"),
		PresentDays:       v.GetInt("ACHIEVEMENT_PRESENT_DAYS"),
		PresentWindowDays: v.GetInt("ACHIEVEMENT_PRESENT_WINDOW_DAYS"),
		TestScorePercent:  v.GetFloat64("ACHIEVEMENT_TEST_SCORE_PERCENT"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Reports = ReportsConfig{
		MessageTemplate:    v.GetString("REPORTS_MESSAGE_TEMPLATE"),
		CountryCallingCode: v.GetString("REPORTS_COUNTRY_CALLING_CODE"),
		WorkerConcurrency:  v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:      v.GetInt("REPORTS_WORKER_RETRIES"),
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
	v.SetDefault("DB_NAME", "markaz")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "markaz-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Friday
	v.SetDefault("STATS_EXCLUDED_WEEKDAY", 5)
	v.SetDefault("STATS_TRAILING_WINDOW_DAYS", 30)
	v.SetDefault("STATS_CACHE_TTL", "5m")

	v.SetDefault("ACHIEVEMENT_EXCELLENT_GRADES", 10)
	v.SetDefault("ACHIEVEMENT_YEAR_VERSES", 300)
	v.SetDefault("ACHIEVEMENT_PRESENT_DAYS", 20)
	v.SetDefault("ACHIEVEMENT_PRESENT_WINDOW_DAYS", 30)
	v.SetDefault("ACHIEVEMENT_TEST_SCORE_PERCENT", 90)

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("REPORTS_MESSAGE_TEMPLATE", DefaultMessageTemplate)
	v.SetDefault("REPORTS_COUNTRY_CALLING_CODE", "967")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 2)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
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
