package collector

import "time"

// Schema version.
const SchemaVersion = "1.0.0"

// Credential thresholds (days).
const (
	DefaultPasswordThresholdDays = 90 // Passwords unused (or unchanged) longer than this are stale
	DefaultKeyThresholdDays      = 90 // Access keys unused (or older) than this are stale
)

// Publishing defaults.
const (
	DefaultTopic = "UserAuditTopic"
)

// Run limits.
const (
	DefaultReportPollInterval = 5 * time.Second
	DefaultReportMaxAttempts  = 60
	DefaultTimeout            = 15 * time.Minute
)

// Percentage constants.
const (
	MaxPercentage = 100
)
