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
	CORS         CORSConfig
	Log          LogConfig
	Auth         AuthConfig
	Push         PushConfig
	Email        EmailConfig
	Reminders    RemindersConfig
	Dispatch     DispatchConfig
	Certificates CertificatesConfig
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

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig holds the shared secret used to authenticate event-bus and
// scheduler callers on the internal trigger endpoints.
type AuthConfig struct {
	JWTSecret string
}

// PushConfig configures the FCM gateway.
type PushConfig struct {
	Enabled         bool
	ProjectID       string
	CredentialsFile string
}

// EmailConfig configures the SendGrid gateway. Sender must be a verified
// address on the SendGrid account.
type EmailConfig struct {
	Enabled    bool
	APIKey     string
	Sender     string
	SenderName string
	PortalURL  string
}

// RemindersConfig governs the deadline reminder jobs.
type RemindersConfig struct {
	Enabled    bool
	Offsets    []int
	PushHour   int
	PushMinute int
	EmailHour  int
	EmailMin   int
	Timezone   string
	DedupeTTL  time.Duration
}

// DispatchConfig bounds the outbound send fan-out.
type DispatchConfig struct {
	Workers int
}

// CertificatesConfig controls no-dues certificate storage and signed links.
type CertificatesConfig struct {
	Enabled         bool
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	BaseURL         string
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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Auth = AuthConfig{JWTSecret: v.GetString("TRIGGER_JWT_SECRET")}

	cfg.Push = PushConfig{
		Enabled:         v.GetBool("ENABLE_PUSH"),
		ProjectID:       v.GetString("FCM_PROJECT_ID"),
		CredentialsFile: v.GetString("FCM_CREDENTIALS_FILE"),
	}

	cfg.Email = EmailConfig{
		Enabled:    v.GetBool("ENABLE_EMAIL"),
		APIKey:     v.GetString("SENDGRID_API_KEY"),
		Sender:     v.GetString("EMAIL_SENDER"),
		SenderName: v.GetString("EMAIL_SENDER_NAME"),
		PortalURL:  v.GetString("PORTAL_URL"),
	}

	cfg.Reminders = RemindersConfig{
		Enabled:    v.GetBool("ENABLE_REMINDERS"),
		Offsets:    parseIntList(v.GetString("REMINDER_OFFSETS"), []int{7, 3, 1}),
		PushHour:   v.GetInt("REMINDER_PUSH_HOUR"),
		PushMinute: v.GetInt("REMINDER_PUSH_MINUTE"),
		EmailHour:  v.GetInt("REMINDER_EMAIL_HOUR"),
		EmailMin:   v.GetInt("REMINDER_EMAIL_MINUTE"),
		Timezone:   v.GetString("REMINDER_TIMEZONE"),
		DedupeTTL:  parseDuration(v.GetString("REMINDER_DEDUPE_TTL"), 48*time.Hour),
	}

	cfg.Dispatch = DispatchConfig{
		Workers: v.GetInt("DISPATCH_WORKERS"),
	}

	cfg.Certificates = CertificatesConfig{
		Enabled:         v.GetBool("ENABLE_CERTIFICATES"),
		StorageDir:      v.GetString("CERTIFICATES_STORAGE_DIR"),
		SignedURLSecret: v.GetString("CERTIFICATES_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("CERTIFICATES_SIGNED_URL_TTL"), 7*24*time.Hour),
		BaseURL:         v.GetString("CERTIFICATES_BASE_URL"),
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
	v.SetDefault("DB_NAME", "apec_no_dues")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TRIGGER_JWT_SECRET", "dev_secret")

	v.SetDefault("ENABLE_PUSH", false)
	v.SetDefault("FCM_PROJECT_ID", "")
	v.SetDefault("FCM_CREDENTIALS_FILE", "")

	v.SetDefault("ENABLE_EMAIL", false)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_SENDER", "no-reply@apec-no-dues.web.app")
	v.SetDefault("EMAIL_SENDER_NAME", "APEC Digital No-Dues")
	v.SetDefault("PORTAL_URL", "https://apec-no-dues.web.app")

	v.SetDefault("ENABLE_REMINDERS", true)
	v.SetDefault("REMINDER_OFFSETS", "7,3,1")
	v.SetDefault("REMINDER_PUSH_HOUR", 10)
	v.SetDefault("REMINDER_PUSH_MINUTE", 0)
	v.SetDefault("REMINDER_EMAIL_HOUR", 9)
	v.SetDefault("REMINDER_EMAIL_MINUTE", 0)
	v.SetDefault("REMINDER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("REMINDER_DEDUPE_TTL", "48h")

	v.SetDefault("DISPATCH_WORKERS", 4)

	v.SetDefault("ENABLE_CERTIFICATES", false)
	v.SetDefault("CERTIFICATES_STORAGE_DIR", "./certificates")
	v.SetDefault("CERTIFICATES_SIGNED_URL_SECRET", "dev_certificates_secret")
	v.SetDefault("CERTIFICATES_SIGNED_URL_TTL", "168h")
	v.SetDefault("CERTIFICATES_BASE_URL", "http://localhost:8080")
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

func parseIntList(raw string, fallback []int) []int {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return fallback
	}

	result := make([]int, 0, len(parts))
	for _, part := range parts {
		n := 0
		valid := true
		for _, r := range part {
			if r < '0' || r > '9' {
				valid = false
				break
			}
			n = n*10 + int(r-'0')
		}
		if !valid || n == 0 {
			return fallback
		}
		result = append(result, n)
	}

	return result
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
