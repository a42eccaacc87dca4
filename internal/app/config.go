package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/cpi-it-club/club-api/internal/rbac"
)

// Document store backends.
const (
	DocStoreMongo  = "mongo"
	DocStoreMemory = "memory"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	Port              int           `envconfig:"PORT" default:"5000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DocStore      string `envconfig:"DOCSTORE" default:"mongo"`
	MongoURI      string `envconfig:"MONGO_URI"`
	DBUsername    string `envconfig:"DB_USERNAME"`
	DBPass        string `envconfig:"DB_PASS"`
	DBHost        string `envconfig:"DB_HOST" default:"cluster0.hmqrzhm.mongodb.net"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"Cpi-it-club"`

	AccessTokenSecret string        `envconfig:"ACCESS_TOKEN_SECRET"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	SessionCookie     string        `envconfig:"SESSION_COOKIE" default:"token"`
	SelfServicePolicy string        `envconfig:"SELF_SERVICE_POLICY" default:"open"`

	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	RedisAddr         string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	EmailUser    string `envconfig:"EMAIL_USER"`
	EmailPass    string `envconfig:"EMAIL_PASS"`
	ContactInbox string `envconfig:"CONTACT_INBOX"`
}

// LoadConfig reads the API process configuration from environment variables.
func LoadConfig() (*Config, error) {
	return load((*Config).Validate)
}

// LoadWorkerConfig reads the worker configuration. Session and document
// store settings are not required since the worker uses neither.
func LoadWorkerConfig() (*Config, error) {
	return load((*Config).ValidateWorker)
}

func load(validate func(*Config) error) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AccessTokenSecret) == "" {
		return errors.New("access token secret must be provided")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if strings.TrimSpace(c.SessionCookie) == "" {
		return errors.New("session cookie name must be provided")
	}
	if _, err := rbac.ParseSelfServiceMode(c.SelfServicePolicy); err != nil {
		return err
	}
	switch c.DocStore {
	case DocStoreMemory:
	case DocStoreMongo:
		if c.MongoURI == "" && (c.DBUsername == "" || c.DBPass == "") {
			return errors.New("MONGO_URI or DB_USERNAME and DB_PASS must be provided")
		}
	default:
		return fmt.Errorf("unknown document store %q", c.DocStore)
	}
	if c.RateLimitPerMinute < 0 {
		return errors.New("rate limit must not be negative")
	}
	return nil
}

// ValidateWorker checks the settings the mail worker depends on.
func (c *Config) ValidateWorker() error {
	if strings.TrimSpace(c.RedisAddr) == "" {
		return errors.New("redis address must be provided")
	}
	if strings.TrimSpace(c.SMTPHost) == "" {
		return errors.New("smtp host must be provided")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid smtp port %d", c.SMTPPort)
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MongoConnectionURI returns MONGO_URI, or an Atlas SRV URI built from the
// credential parts.
func (c *Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(c.DBUsername, c.DBPass),
		Host:     c.DBHost,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority&appName=Cluster0",
	}
	return u.String()
}

// InboxAddress is where contact messages are delivered.
func (c *Config) InboxAddress() string {
	if c.ContactInbox != "" {
		return c.ContactInbox
	}
	return c.EmailUser
}

// SelfService returns the parsed self-service policy.
func (c *Config) SelfService() rbac.SelfServiceMode {
	mode, _ := rbac.ParseSelfServiceMode(c.SelfServicePolicy)
	return mode
}
