package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints and durations
// for limits and time budgets.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	PaymentBaseURL  string        // base URL of the payment gateway
	PaymentTimeout  time.Duration // per-request timeout for gateway calls
	PaymentAttempts int           // retry budget for gateway calls
	PaymentBackoff  time.Duration // initial delay between gateway retries

	AMQPURL string // RabbitMQ URL; empty disables queue notifications

	SweepInterval time.Duration // how often the pending-booking sweeper runs
	PendingTTL    time.Duration // age after which a pending booking expires
	SweepBatch    int           // max bookings expired per sweep pass

	SeatRows int // rows in the seat catalogue (A, B, ...)
	SeatCols int // seats per row
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Operational knobs
// (payment retries, sweeper cadence, seat grid) fall back to defaults.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		PaymentBaseURL:  must("PAYMENT_BASE_URL"),
		PaymentTimeout:  envDur("PAYMENT_TIMEOUT", 10*time.Second),
		PaymentAttempts: envInt("PAYMENT_ATTEMPTS", 3),
		PaymentBackoff:  envDur("PAYMENT_BACKOFF", 500*time.Millisecond),

		AMQPURL: os.Getenv("AMQP_URL"), // empty disables notifications

		SweepInterval: envDur("BOOKING_SWEEP_INTERVAL", time.Minute),
		PendingTTL:    envDur("BOOKING_PENDING_TTL", 15*time.Minute),
		SweepBatch:    envInt("BOOKING_SWEEP_BATCH", 100),

		SeatRows: envInt("SEAT_ROWS", 6),
		SeatCols: envInt("SEAT_COLS", 8),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
