// Package audit evaluates the age of IAM passwords and access keys and
// classifies the stale ones.
package audit

import (
	"fmt"
	"time"
)

// Kind is the credential type a record describes.
type Kind string

const (
	KindPassword  Kind = "password"
	KindAccessKey Kind = "access_key"
)

// AgeSource selects which timestamp a credential's age is measured from.
type AgeSource string

const (
	// AgeSourceLastUsed measures time since last use; use resets the clock.
	AgeSourceLastUsed AgeSource = "last_used"
	// AgeSourceCreatedOrChanged measures time since the key was created or the
	// password last changed, regardless of use.
	AgeSourceCreatedOrChanged AgeSource = "created_or_changed"
)

// ParseAgeSource validates an age source name.
func ParseAgeSource(s string) (AgeSource, error) {
	switch AgeSource(s) {
	case AgeSourceLastUsed, AgeSourceCreatedOrChanged:
		return AgeSource(s), nil
	}
	return "", fmt.Errorf("unknown age source %q (want %s or %s)", s, AgeSourceLastUsed, AgeSourceCreatedOrChanged)
}

// PasswordSource selects where password state is read from.
type PasswordSource string

const (
	// PasswordSourceLive queries login profiles per account.
	PasswordSourceLive PasswordSource = "live"
	// PasswordSourceReport reads the bulk credential report.
	PasswordSourceReport PasswordSource = "report"
)

// ParsePasswordSource validates a password source name.
func ParsePasswordSource(s string) (PasswordSource, error) {
	switch PasswordSource(s) {
	case PasswordSourceLive, PasswordSourceReport:
		return PasswordSource(s), nil
	}
	return "", fmt.Errorf("unknown password source %q (want %s or %s)", s, PasswordSourceLive, PasswordSourceReport)
}

// Subject identifies an audited credential: an account, plus a key ID for
// access keys.
type Subject struct {
	Account string
	KeyID   string
}

// PasswordState is an account's console password as seen by the audit.
type PasswordState struct {
	Account       string
	Enabled       bool
	ResetRequired bool       // live lookups only
	LastUsed      *time.Time // nil: never used
	LastChanged   *time.Time // nil: unknown
}

// AccessKey is one access key of an account.
type AccessKey struct {
	Account   string
	KeyID     string
	Status    string
	Active    bool
	CreatedAt time.Time
	LastUsed  *time.Time // nil: never used

	// Where the key was last used. Only set when ages come from last use.
	LastUsedService string
	LastUsedRegion  string
}

// AgeRecord is the computed age of one credential.
type AgeRecord struct {
	Subject Subject
	Kind    Kind
	Age     Age
}

// StaleFinding is a credential whose age exceeds its threshold or which was
// never used.
type StaleFinding struct {
	Subject Subject
	Kind    Kind
	Age     Age
}

// Thresholds holds the per-kind staleness limits in days.
type Thresholds struct {
	Password int
	Key      int
}

// For returns the threshold that applies to kind.
func (t Thresholds) For(kind Kind) int {
	if kind == KindAccessKey {
		return t.Key
	}
	return t.Password
}
