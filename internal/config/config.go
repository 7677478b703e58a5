package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Email    EmailConfig
	Tax      TaxConfig
	Expiry   ExpiryConfig
	Workflow WorkflowConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// TaxConfig holds GST defaults applied when a request leaves them out.
type TaxConfig struct {
	DefaultStateCode  string
	Currency          string
	EWayBillThreshold decimal.Decimal
}

// ExpiryConfig holds expiry worker settings.
type ExpiryConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	PollIntervalSecs int  `mapstructure:"poll_interval_secs"`
	BatchSize        int  `mapstructure:"batch_size"`
	Concurrency      int  `mapstructure:"concurrency"`
}

// WorkflowConfig holds approval workflow settings.
type WorkflowConfig struct {
	// ApproverRoles lists the roles a user must hold to sit in an approval chain.
	ApproverRoles []string `mapstructure:"approver_roles"`
	MaxApprovers  int      `mapstructure:"max_approvers"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	ExportPrefix  string `mapstructure:"export_prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Variables already set win. Missing files are not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

// Load reads configuration from environment variables with the ERPDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ERPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "erpdesk")
	v.SetDefault("db.password", "erpdesk_secret")
	v.SetDefault("db.name", "erpdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "erpdesk")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "erpdesk-exports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.export_prefix", "exports")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("cors.max_age", "12h")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@erpdesk.in")
	v.SetDefault("email.from_name", "ERPDesk")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Tax defaults
	v.SetDefault("tax.default_state_code", "29")
	v.SetDefault("tax.currency", "INR")
	v.SetDefault("tax.eway_bill_threshold", "50000")

	// Expiry worker defaults
	v.SetDefault("expiry.enabled", true)
	v.SetDefault("expiry.poll_interval_secs", 60)
	v.SetDefault("expiry.batch_size", 100)
	v.SetDefault("expiry.concurrency", 4)

	// Workflow defaults
	v.SetDefault("workflow.approver_roles", "manager,finance,admin")
	v.SetDefault("workflow.max_approvers", 5)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "ERPDESK_SERVER_PORT",
		"server.read_timeout":        "ERPDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "ERPDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":         "ERPDESK_SERVER_ENVIRONMENT",
		"db.host":                    "ERPDESK_DB_HOST",
		"db.port":                    "ERPDESK_DB_PORT",
		"db.user":                    "ERPDESK_DB_USER",
		"db.password":                "ERPDESK_DB_PASSWORD",
		"db.name":                    "ERPDESK_DB_NAME",
		"db.sslmode":                 "ERPDESK_DB_SSLMODE",
		"db.max_open":                "ERPDESK_DB_MAX_OPEN",
		"db.max_idle":                "ERPDESK_DB_MAX_IDLE",
		"jwt.secret":                 "ERPDESK_JWT_SECRET",
		"jwt.access_expiry":          "ERPDESK_JWT_ACCESS_EXPIRY",
		"jwt.refresh_expiry":         "ERPDESK_JWT_REFRESH_EXPIRY",
		"jwt.issuer":                 "ERPDESK_JWT_ISSUER",
		"s3.region":                  "ERPDESK_S3_REGION",
		"s3.bucket":                  "ERPDESK_S3_BUCKET",
		"s3.endpoint":                "ERPDESK_S3_ENDPOINT",
		"s3.access_key":              "ERPDESK_S3_ACCESS_KEY",
		"s3.secret_key":              "ERPDESK_S3_SECRET_KEY",
		"s3.export_prefix":           "ERPDESK_S3_EXPORT_PREFIX",
		"s3.presign_expiry":          "ERPDESK_S3_PRESIGN_EXPIRY",
		"log.level":                  "ERPDESK_LOG_LEVEL",
		"log.format":                 "ERPDESK_LOG_FORMAT",
		"cors.allowed_origins":       "ERPDESK_CORS_ALLOWED_ORIGINS",
		"cors.max_age":               "ERPDESK_CORS_MAX_AGE",
		"email.provider":             "ERPDESK_EMAIL_PROVIDER",
		"email.region":               "ERPDESK_EMAIL_REGION",
		"email.from_address":         "ERPDESK_EMAIL_FROM_ADDRESS",
		"email.from_name":            "ERPDESK_EMAIL_FROM_NAME",
		"email.frontend_url":         "ERPDESK_EMAIL_FRONTEND_URL",
		"tax.default_state_code":     "ERPDESK_TAX_DEFAULT_STATE_CODE",
		"tax.currency":               "ERPDESK_TAX_CURRENCY",
		"tax.eway_bill_threshold":    "ERPDESK_TAX_EWAY_BILL_THRESHOLD",
		"expiry.enabled":             "ERPDESK_EXPIRY_ENABLED",
		"expiry.poll_interval_secs":  "ERPDESK_EXPIRY_POLL_INTERVAL_SECS",
		"expiry.batch_size":          "ERPDESK_EXPIRY_BATCH_SIZE",
		"expiry.concurrency":         "ERPDESK_EXPIRY_CONCURRENCY",
		"workflow.approver_roles":    "ERPDESK_WORKFLOW_APPROVER_ROLES",
		"workflow.max_approvers":     "ERPDESK_WORKFLOW_MAX_APPROVERS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ERPDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ERPDESK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		ExportPrefix:  v.GetString("s3.export_prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		MaxAge:         v.GetDuration("cors.max_age"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	threshold, err := decimal.NewFromString(v.GetString("tax.eway_bill_threshold"))
	if err != nil {
		return nil, fmt.Errorf("config: tax.eway_bill_threshold: %w", err)
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("config: tax.eway_bill_threshold must not be negative")
	}
	cfg.Tax = TaxConfig{
		DefaultStateCode:  v.GetString("tax.default_state_code"),
		Currency:          strings.ToUpper(v.GetString("tax.currency")),
		EWayBillThreshold: threshold,
	}

	cfg.Expiry = ExpiryConfig{
		Enabled:          v.GetBool("expiry.enabled"),
		PollIntervalSecs: v.GetInt("expiry.poll_interval_secs"),
		BatchSize:        v.GetInt("expiry.batch_size"),
		Concurrency:      v.GetInt("expiry.concurrency"),
	}
	cfg.Workflow = WorkflowConfig{
		ApproverRoles: splitList(v.GetString("workflow.approver_roles")),
		MaxApprovers:  v.GetInt("workflow.max_approvers"),
	}

	return cfg, nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
