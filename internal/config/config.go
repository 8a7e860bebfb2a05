package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Database Database `yaml:"database"`

	Hotel Hotel `yaml:"hotel"`

	Session Session `yaml:"session"`

	Feed Feed `yaml:"feed"`

	Log Log `yaml:"log"`
}

type Database struct {
	Driver   string `yaml:"driver"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // sqlite only
}

type Hotel struct {
	Name             string  `yaml:"name"`
	Tax              float64 `yaml:"tax"`
	LockoutThreshold int     `yaml:"lockout_threshold"`
	LockoutDuration  int     `yaml:"lockout_duration"` // In Minutes
	MasterPassword   string  `yaml:"master_password"`
}

type Session struct {
	Secret    string `yaml:"secret"`
	ExpiresIn int    `yaml:"expires_in"` // In Minutes
}

// Feed configures the optional staff order feed. An empty address disables
// it.
type Feed struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Log struct {
	Level string `yaml:"level"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LockoutWindow returns the lockout duration as a time.Duration.
func (h Hotel) LockoutWindow() time.Duration {
	return time.Duration(h.LockoutDuration) * time.Minute
}

// SessionTTL returns the admin session lifetime.
func (s Session) SessionTTL() time.Duration {
	return time.Duration(s.ExpiresIn) * time.Minute
}

func Load() (*Config, error) {
	// A missing .env is fine; only explicit overrides live there.
	_ = godotenv.Load()

	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	return LoadFile(configPath)
}

// LoadFile reads the YAML file at path, applies defaults and environment
// overrides, and validates the result.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Session.Secret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Database: Database{
			Driver:  DriverPostgres,
			Port:    5432,
			SSLMode: "disable",
		},
		Hotel: Hotel{
			LockoutThreshold: 3,
			LockoutDuration:  5,
		},
		Session: Session{
			ExpiresIn: 30,
		},
		Log: Log{
			Level: "info",
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("HOTELDESK_MASTER_PASSWORD"); v != "" {
		c.Hotel.MasterPassword = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Hotel.LockoutThreshold <= 0 {
		return errors.New("hotel.lockout_threshold must be positive")
	}
	if c.Hotel.LockoutDuration <= 0 {
		return errors.New("hotel.lockout_duration must be positive")
	}
	if c.Hotel.Tax < 0 {
		return errors.New("hotel.tax must not be negative")
	}
	if c.Session.ExpiresIn <= 0 {
		return errors.New("session.expires_in must be positive")
	}

	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
