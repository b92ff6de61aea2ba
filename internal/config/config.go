package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time is used for duration-valued settings
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Required variables are
// enforced by must(); tuning knobs fall back to sensible defaults so a
// bare environment still boots.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify access tokens

	// BookingGrace is how long a PENDING_PAYMENT booking holds its
	// inventory before the sweeper reclaims it.
	BookingGrace time.Duration

	// SweepInterval is how often the expiry sweeper scans for overdue
	// bookings.
	SweepInterval time.Duration

	// BookingRateLimit caps booking-creation requests per user per
	// minute when Redis is available; 0 disables the limiter.
	BookingRateLimit int
}

// Load reads configuration values from environment variables and
// returns a Config.  Missing required variables cause the program to
// exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		BookingGrace:     minutesOr("BOOKING_GRACE_MIN", 10),
		SweepInterval:    secondsOr("SWEEP_INTERVAL_SEC", 60),
		BookingRateLimit: intOr("BOOKING_RATE_LIMIT_PER_MIN", 30),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr reads an integer environment variable, falling back to def
// when unset.  An unparsable value is fatal rather than silently
// ignored.
func intOr(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func minutesOr(key string, def int) time.Duration {
	return time.Duration(intOr(key, def)) * time.Minute
}

func secondsOr(key string, def int) time.Duration {
	return time.Duration(intOr(key, def)) * time.Second
}
