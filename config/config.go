package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"leadreach/models"
)

// RedisConfig controls the optional redis-backed rate limit storage.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Config holds everything the service needs. It is built once in main and
// passed into constructors; nothing reads the environment after Load.
type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	DBHost         string `json:"db_host"`
	DBPort         string `json:"db_port"`
	DBUser         string `json:"db_user"`
	DBPassword     string `json:"-"`
	DBName         string `json:"db_name"`
	DBSSLMode      string `json:"db_ssl_mode"`
	DBMaxIdleConns int    `json:"db_max_idle_conns"`
	DBMaxOpenConns int    `json:"db_max_open_conns"`

	// AppBaseURL is the public base of this service, used for unsubscribe
	// links and tracking pixels embedded in outgoing mail.
	AppBaseURL string `json:"app_base_url"`

	// MailProvider selects the delivery transport: "resend" or "smtp".
	MailProvider  string     `json:"mail_provider"`
	ResendAPIKey  string     `json:"-"`
	ResendBaseURL string     `json:"resend_base_url"`
	FromEmail     string     `json:"from_email"`
	FromName      string     `json:"from_name"`
	SMTP          SMTPConfig `json:"smtp"`

	// TrackerURL is the optional audit endpoint that receives a record of
	// every send intent. Empty disables audit logging.
	TrackerURL string `json:"tracker_url"`

	// SendPacing is the fixed delay between consecutive sends in a batch.
	SendPacing time.Duration `json:"send_pacing"`

	// RateLimitSend caps send requests per client per minute.
	RateLimitSend int         `json:"rate_limit_send"`
	Redis         RedisConfig `json:"redis"`

	SentryDSN string `json:"-"`
}

func init() {
	// Load .env if present; real deployments use the environment directly.
	_ = godotenv.Load()
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "leadreach"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		AppBaseURL: strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5000"), "/"),

		MailProvider:  getEnv("MAIL_PROVIDER", "resend"),
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		ResendBaseURL: strings.TrimRight(getEnv("RESEND_BASE_URL", "https://api.resend.com"), "/"),
		FromEmail:     getEnv("FROM_EMAIL", ""),
		FromName:      getEnv("FROM_NAME", ""),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},

		TrackerURL: getEnv("TRACKER_URL", ""),

		SendPacing: getEnvAsDuration("SEND_PACING", time.Second),

		RateLimitSend: getEnvAsInt("RATE_LIMIT_SEND", 30),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		SentryDSN: getEnv("SENTRY_DSN", ""),
	}

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("FROM_EMAIL is required")
	}
	switch cfg.MailProvider {
	case "resend", "smtp":
	default:
		return nil, fmt.Errorf("MAIL_PROVIDER must be resend or smtp, got %q", cfg.MailProvider)
	}
	// A missing provider API key is not fatal here: it degrades to a
	// send-time failure so lead browsing and drafting keep working.

	return cfg, nil
}

func ConnectDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return db, nil
}

func migrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lead{},
		&models.EmailLog{},
		&models.Unsubscribe{},
	)
}

// MaskedDSN returns the connection target with the password hidden, for logs.
func (c *Config) MaskedDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=***** dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBSSLMode)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}
