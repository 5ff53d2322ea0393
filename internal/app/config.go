package app

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

const (
	defaultMigrationsDir      = "./migrations"
	defaultSessionDays        = 14
	defaultSessionKeyTemplate = "session:{token}"
	defaultTimeZone           = "America/Bogota"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		Production bool   `toml:"production"`
	} `toml:"server"`

	Auth struct {
		Password           string `toml:"password"`
		PasswordHash       string `toml:"password_hash"`
		SessionSecret      string `toml:"session_secret"`
		SessionDays        int    `toml:"session_days"`
		CookieSecure       bool   `toml:"cookie_secure"`
		RedisURL           string `toml:"redis_url"`
		SessionKeyTemplate string `toml:"session_key_template"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Display struct {
		TimeZone string `toml:"timezone"`
	} `toml:"display"`

	Seed struct {
		CatalogPath string `toml:"catalog_path"`
		StudentName string `toml:"student_name"`
	} `toml:"seed"`

	GSheet struct {
		CredentialsPath string `toml:"credentials_path"`
		SheetID         string `toml:"sheet_id"`
		SheetName       string `toml:"sheet_name"`
		Schedule        string `toml:"schedule"`
		TimestampRange  string `toml:"timestamp_range"`
	} `toml:"gsheet"`
}

// envOverrides lists the variables that take precedence over the file.
// Secrets usually live in .env rather than in config.toml.
var envOverrides = []struct {
	name  string
	field func(c *Config) *string
}{
	{"APP_PASSWORD", func(c *Config) *string { return &c.Auth.Password }},
	{"APP_PASSWORD_HASH", func(c *Config) *string { return &c.Auth.PasswordHash }},
	{"APP_SESSION_SECRET", func(c *Config) *string { return &c.Auth.SessionSecret }},
	{"DATABASE_DSN", func(c *Config) *string { return &c.Database.DSN }},
	{"REDIS_URL", func(c *Config) *string { return &c.Auth.RedisURL }},
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w",
			path,
			err,
		)
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Debug.Printf("Skipping .env: %v", err)
	}
	config.applyEnv()
	config.applyDefaults()

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :3000")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config or DATABASE_DSN")
	}

	logger.Debug.Printf(
		"Loaded config: port=%s production=%v db=%s redis_sessions=%v",
		config.Server.Port,
		config.Server.Production,
		config.Database.DSN,
		config.Auth.RedisURL != "",
	)

	return &config, nil
}

func (c *Config) applyEnv() {
	for _, o := range envOverrides {
		if v, ok := os.LookupEnv(o.name); ok && v != "" {
			*o.field(c) = v
		}
	}
	if os.Getenv("APP_ENV") == "production" {
		c.Server.Production = true
	}
}

func (c *Config) applyDefaults() {
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = defaultMigrationsDir
	}
	if c.Auth.SessionDays <= 0 {
		c.Auth.SessionDays = defaultSessionDays
	}
	if c.Auth.SessionKeyTemplate == "" {
		c.Auth.SessionKeyTemplate = defaultSessionKeyTemplate
	}
	if c.Display.TimeZone == "" {
		c.Display.TimeZone = defaultTimeZone
	}
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Auth.SessionDays) * 24 * time.Hour
}

// Location falls back to UTC when the configured zone is unknown to the host.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.TimeZone)
	if err != nil {
		logger.Error.Printf("Unknown timezone %q, using UTC: %v", c.Display.TimeZone, err)
		return time.UTC
	}
	return loc
}
