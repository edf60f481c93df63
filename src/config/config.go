package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// const dsn = "host=localhost user=postgres password=password dbname=starcall port=5432 sslmode=disable TimeZone=UTC"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

const (
	TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

	// MAX_REVISIONS is how many times a customer can send a video back.
	MAX_REVISIONS = 2

	// MAX_AMOUNT_CENTS is the largest value a numeric(10,2) money column holds.
	MAX_AMOUNT_CENTS int64 = 9_999_999_999

	DEFAULT_PLATFORM_FEE_BPS int64 = 1000
	DEFAULT_CURRENCY               = "usd"
)

// PlatformFeeBasisPoints is the platform's cut of the base amount in basis
// points (1000 = 10%). Tips are never subject to the fee.
func PlatformFeeBasisPoints() int64 {
	raw := os.Getenv("PLATFORM_FEE_BPS")
	if raw == "" {
		return DEFAULT_PLATFORM_FEE_BPS
	}
	bps, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bps < 0 || bps > 10000 {
		log.Printf("Invalid PLATFORM_FEE_BPS %q, using default %d\n", raw, DEFAULT_PLATFORM_FEE_BPS)
		return DEFAULT_PLATFORM_FEE_BPS
	}
	return bps
}

func PayoutCurrency() string {
	c := strings.ToLower(strings.TrimSpace(os.Getenv("PAYOUT_CURRENCY")))
	if c == "" {
		return DEFAULT_CURRENCY
	}
	return c
}

func ReconcileInterval() time.Duration {
	return durationEnv("RECONCILE_INTERVAL", 5*time.Minute)
}

// ReconcileAfter is how long a booking may sit in TRANSFER_PENDING before the
// reconciler picks it up.
func ReconcileAfter() time.Duration {
	return durationEnv("RECONCILE_AFTER", 10*time.Minute)
}

func ApprovalLockTTL() time.Duration {
	return durationEnv("APPROVAL_LOCK_TTL", 30*time.Second)
}

func RateLimitPerMinute() int64 {
	n, err := strconv.ParseInt(os.Getenv("RATE_LIMIT_PER_MINUTE"), 10, 64)
	if err != nil || n <= 0 {
		return 30
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s %q, using default %s\n", key, raw, fallback)
		return fallback
	}
	return d
}
