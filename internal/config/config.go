// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port string `env:"API_PORT" envDefault:"8080"`

	StoreDriver         string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI            string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017/?replicaSet=rs0"`
	MongoDatabase       string        `env:"MONGO_DATABASE" envDefault:"booking"`
	MongoConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`

	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Business Business `envPrefix:"BUSINESS_"`

	CancellationCutoff time.Duration `env:"CANCELLATION_CUTOFF" envDefault:"1h"`

	Admin  Admin  `envPrefix:"ADMIN_"`
	Twilio Twilio `envPrefix:"TWILIO_"`
}

// Business holds the opening window bookings must start in.
type Business struct {
	Timezone      string `env:"TIMEZONE" envDefault:"UTC"`
	OpenHour      int    `env:"OPEN_HOUR" envDefault:"9"`
	LastStartHour int    `env:"LAST_START_HOUR" envDefault:"20"`
}

// Admin is the account seeded at startup when Email and Password are set.
type Admin struct {
	Name     string `env:"NAME" envDefault:"Administrator"`
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`
}

type Twilio struct {
	AccountSID  string `env:"ACCOUNT_SID"`
	AuthToken   string `env:"AUTH_TOKEN"`
	PhoneNumber string `env:"PHONE_NUMBER"`
}

// Enabled reports whether SMS notifications can be sent.
func (t Twilio) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.PhoneNumber != ""
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	return Parse()
}

// Parse parses the process environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.CancellationCutoff < 0 {
		return errors.New("CANCELLATION_CUTOFF must not be negative")
	}
	b := c.Business
	if b.OpenHour < 0 || b.OpenHour > 23 || b.LastStartHour < 0 || b.LastStartHour > 23 {
		return errors.New("business hours must be between 0 and 23")
	}
	if b.OpenHour > b.LastStartHour {
		return fmt.Errorf("BUSINESS_OPEN_HOUR %d is after BUSINESS_LAST_START_HOUR %d", b.OpenHour, b.LastStartHour)
	}
	if _, err := time.LoadLocation(b.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the business time zone. Validate has already checked it.
func (b Business) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogSummary prints the effective settings without leaking secrets.
func (c Config) LogSummary() {
	log.Printf("STORE_DRIVER: %s", c.StoreDriver)
	if c.StoreDriver == DriverMongo {
		log.Printf("MONGO_DATABASE: %s", c.MongoDatabase)
	}
	log.Printf("API_PORT: %s", c.Port)
	log.Printf("Business window: %02d:00-%02d:00 %s", c.Business.OpenHour, c.Business.LastStartHour, c.Business.Timezone)
	if c.Twilio.Enabled() {
		log.Println("SMS notifications are ENABLED.")
	} else {
		log.Println("SMS notifications are DISABLED.")
	}
}
