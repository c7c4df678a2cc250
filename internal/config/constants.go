package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Auth session lifetime
const SessionTTL = 24 * time.Hour

// OTP settings
const (
	OTPLength = 6
	OTPTTL    = 10 * time.Minute
)

// Rate limits
const (
	LoginRateLimitPerMin  = 5
	RedeemRateLimitPerMin = 20
)
