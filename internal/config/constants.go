package config

import "time"

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Defaults
const (
	DefaultPort              = 8080
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultEnvironment       = "dev"
	DefaultServiceName       = "harvest-share"
	DefaultVersion           = "dev"
	DefaultDBDriver          = DriverPostgres
	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute
	DefaultSweepInterval     = 15 * time.Minute
	DefaultRuleCacheSize     = 256
	DefaultRuleCacheTTL      = 5 * time.Minute
	DefaultClaimMaxRetries   = 5
)

// Insecure example values shipped in .env.example
const (
	ExampleDBPassword = "change_this_secure_password"
)
