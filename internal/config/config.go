package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the scan lease duration
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in the
// application: strings for identifiers and secrets, ints for durations and
// costs, and a single byte for the ticket number prefix.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to sign JWTs
	AccessTTLMin int           // access token time-to-live in minutes
	BcryptCost   int           // bcrypt cost for password hashing
	TicketPrefix byte          // prefix minted for locally created tickets ('J' or 'C')
	ScanLease    time.Duration // lifetime of the scan "pending" lease
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. TICKET_PREFIX and
// SCAN_LEASE_WINDOW are optional: the prefix defaults to the immigration
// service's "J" and the lease window to two minutes.
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
		TicketPrefix: prefix("TICKET_PREFIX", 'J'),
		ScanLease:    duration("SCAN_LEASE_WINDOW", 2*time.Minute),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// prefix reads a single-character ticket prefix, falling back to def. Only
// 'J' and 'C' are ever minted locally, which the ticketing service enforces
// at startup.
func prefix(key string, def byte) byte {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if len(v) != 1 {
		log.Fatalf("invalid ticket prefix for %s: %q", key, v)
	}
	return v[0]
}

// duration reads a Go duration string, falling back to def when unset.
func duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
