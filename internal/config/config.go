package config // package config loads application configuration from environment variables

import (
	"log"  // log is used to report configuration errors and halt execution
	"os"   // os provides access to environment variables
	"time" // time parses duration values
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, durations
// for the background workers, and paths for the invoice artifact store.
type Config struct {
	Env              string        // application environment (e.g. "dev", "prod")
	Port             string        // HTTP port to listen on
	DBUser           string        // database username
	DBPass           string        // database password (optional)
	DBHost           string        // database host address
	DBPort           string        // database port number
	DBName           string        // database name
	JWTSecret        string        // secret used to verify bearer tokens
	TourTimezone     string        // IANA zone used for slot dates and times
	CompletionGrace  time.Duration // how long after the slot start a tour counts as finished
	WorkerInterval   time.Duration // reconciliation worker tick interval
	ReminderInterval time.Duration // reminder worker tick interval
	InvoiceDir       string        // directory where rendered invoice PDFs are stored
	PublicBaseURL    string        // base URL used when handing out invoice links
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Worker knobs fall
// back to the defaults the tour operation runs with in production.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),      // environment (dev/test/prod)
		Port:             must("APP_PORT"),     // port to bind the HTTP server
		DBUser:           must("DB_USER"),      // database user
		DBPass:           os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:           must("DB_HOST"),      // database host
		DBPort:           must("DB_PORT"),      // database port
		DBName:           must("DB_NAME"),      // database name
		JWTSecret:        must("JWT_SECRET"),   // secret used to verify bearer tokens
		TourTimezone:     getenv("TOUR_TIMEZONE", "Europe/London"),
		CompletionGrace:  dur("COMPLETION_GRACE", 2*time.Hour),
		WorkerInterval:   dur("WORKER_INTERVAL", 5*time.Minute),
		ReminderInterval: dur("REMINDER_INTERVAL", time.Hour),
		InvoiceDir:       getenv("INVOICE_DIR", "invoices"),
		PublicBaseURL:    getenv("PUBLIC_BASE_URL", ""),
	}
}

// Location resolves the configured tour time zone.  An unknown zone is a
// deployment mistake, so the process exits rather than silently falling
// back to UTC and shifting every cutoff computation.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TourTimezone)
	if err != nil {
		log.Fatalf("invalid TOUR_TIMEZONE %q: %v", c.TourTimezone, err)
	}
	return loc
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

// getenv returns the environment value for key, or def when unset.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// dur parses a duration-valued environment variable, falling back to def
// when the variable is unset or malformed.
func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
