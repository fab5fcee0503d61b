// Package aws provides AWS API client functionality.
package aws

import "time"

// User represents an IAM user as returned by the user listing.
type User struct {
	UserName         string
	ARN              string
	CreateDate       time.Time
	PasswordLastUsed *time.Time // nil when the password was never used (or no password)
}

// LoginProfile represents a user's console password.
type LoginProfile struct {
	UserName              string
	CreateDate            time.Time
	PasswordResetRequired bool
}

// AccessKey represents access key metadata for a single key.
type AccessKey struct {
	UserName    string
	AccessKeyID string
	Status      string // "Active" or "Inactive"
	CreateDate  time.Time
}

// IsActive returns true if the key is enabled.
func (k AccessKey) IsActive() bool {
	return k.Status == AccessKeyStatusActive
}

// AccessKeyLastUsed describes the most recent use of an access key.
type AccessKeyLastUsed struct {
	LastUsedDate *time.Time // nil when the key was never used
	Region       string
	ServiceName  string
}

// Topic represents an SNS topic.
type Topic struct {
	ARN string
}

// AccessKeyStatusActive is the IAM status value of an enabled key.
const AccessKeyStatusActive = "Active"
