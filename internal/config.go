package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"http_server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Security     SecurityConfig     `mapstructure:"security" validate:"required"`
	Mail         MailConfig         `mapstructure:"mail"`
	Verification VerificationConfig `mapstructure:"verification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type SecurityConfig struct {
	JWTSecret           string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" validate:"required,min=1m,max=24h"`
	BCryptCost          int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
}

// MailConfig selects how verification codes leave the system. The "log" driver writes
// messages to the application log and needs no credentials.
type MailConfig struct {
	Driver               string `mapstructure:"driver" validate:"required,oneof=postmark log"`
	PostmarkServerToken  string `mapstructure:"postmark_server_token" validate:"required_if=Driver postmark"`
	PostmarkAccountToken string `mapstructure:"postmark_account_token" validate:"required_if=Driver postmark"`
	SenderEmail          string `mapstructure:"sender_email" validate:"required,email"`
	SupportEmail         string `mapstructure:"support_email" validate:"omitempty,email"`
}

type VerificationConfig struct {
	CodeTTL       time.Duration `mapstructure:"code_ttl" validate:"omitempty,min=1m,max=1h"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

type LoggingConfig struct {
	Env    string `mapstructure:"env" validate:"omitempty,oneof=development production"`
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

const (
	defaultVerificationCodeTTL = 5 * time.Minute
	defaultSweepSchedule       = "@every 1m"
)

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the configuration from plain environment variables, used for
// container deployments where no config.yml is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			AccessTokenDuration: getEnvAsDuration("ACCESS_TOKEN_DURATION", time.Hour),
			BCryptCost:          getEnvAsInt("BCRYPT_COST", 12),
		},
		Mail: MailConfig{
			Driver:               getEnv("MAIL_DRIVER", "postmark"),
			PostmarkServerToken:  getEnv("POSTMARK_SERVER_TOKEN", ""),
			PostmarkAccountToken: getEnv("POSTMARK_ACCOUNT_TOKEN", ""),
			SenderEmail:          getEnv("SENDER_EMAIL", ""),
			SupportEmail:         getEnv("SUPPORT_EMAIL", ""),
		},
		Verification: VerificationConfig{
			CodeTTL:       getEnvAsDuration("VERIFICATION_CODE_TTL", defaultVerificationCodeTTL),
			SweepSchedule: getEnv("VERIFICATION_SWEEP_SCHEDULE", defaultSweepSchedule),
		},
		Logging: LoggingConfig{
			Env:    getEnv("APP_ENV", "production"),
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Verification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("verification config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *VerificationConfig) Validate() error {
	if c.SweepSchedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep_schedule %q: %w", c.SweepSchedule, err)
	}
	return nil
}

// GetSweepSchedule falls back to once a minute.
func (c *VerificationConfig) GetSweepSchedule() string {
	if c.SweepSchedule == "" {
		return defaultSweepSchedule
	}
	return c.SweepSchedule
}

// GetCodeTTL falls back to five minutes when no TTL is configured.
func (c *VerificationConfig) GetCodeTTL() time.Duration {
	if c.CodeTTL <= 0 {
		return defaultVerificationCodeTTL
	}
	return c.CodeTTL
}
