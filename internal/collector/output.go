// Package collector audits IAM credential staleness across AWS accounts and
// publishes the resulting reports.
package collector

import (
	"time"

	"github.com/locktivity/epack-collector-iam-audit/internal/audit"
)

// Output represents the complete collector output.
type Output struct {
	SchemaVersion  string         `json:"schema_version"`
	CollectedAt    string         `json:"collected_at"`
	AgeSource      string         `json:"age_source"`
	PasswordSource string         `json:"password_source"`
	Thresholds     ThresholdDays  `json:"thresholds"`
	Published      bool           `json:"published"`
	Accounts       []AccountAudit `json:"accounts"`
}

// ThresholdDays echoes the thresholds the run classified against.
type ThresholdDays struct {
	Password int `json:"password_days"`
	Key      int `json:"key_days"`
}

// AccountAudit is the audit result for a single AWS account.
type AccountAudit struct {
	AccountID    string       `json:"account_id"`
	AccountAlias *string      `json:"account_alias,omitempty"`
	Summary      Summary      `json:"summary"`
	Findings     []Finding    `json:"findings"`
	Report       string       `json:"report"`
	Publication  *Publication `json:"publication,omitempty"`

	StaleFindings []audit.StaleFinding `json:"-"`
}

// Summary counts audited and stale credentials (percentages 0-100).
type Summary struct {
	PasswordsAudited     int `json:"passwords_audited"`
	StalePasswords       int `json:"stale_passwords"`
	StalePasswordPercent int `json:"stale_password_percent"`
	KeysAudited          int `json:"keys_audited"`
	StaleKeys            int `json:"stale_keys"`
	StaleActiveKeys      int `json:"stale_active_keys"`
	StaleKeyPercent      int `json:"stale_key_percent"`
}

// Finding is a stale credential in output form. AgeDays is null when the
// credential was never used.
type Finding struct {
	Account     string `json:"account"`
	Kind        string `json:"kind"`
	AccessKeyID string `json:"access_key_id,omitempty"`
	AgeDays     *int   `json:"age_days"`
	Never       bool   `json:"never"`

	// Access keys only
	Status          string `json:"status,omitempty"`
	LastUsedService string `json:"last_used_service,omitempty"`
	LastUsedRegion  string `json:"last_used_region,omitempty"`

	// Passwords only
	PasswordResetRequired bool `json:"password_reset_required,omitempty"`
}

// Publication records where an account's report was sent.
type Publication struct {
	TopicARN  string `json:"topic_arn"`
	Subject   string `json:"subject"`
	MessageID string `json:"message_id"`
}

// NewOutput creates a new Output stamped with the run time.
func NewOutput(now time.Time, config Config) *Output {
	return &Output{
		SchemaVersion:  SchemaVersion,
		CollectedAt:    now.UTC().Format(time.RFC3339),
		AgeSource:      string(config.AgeSource),
		PasswordSource: string(config.PasswordSource),
		Thresholds: ThresholdDays{
			Password: config.PasswordThresholdDays,
			Key:      config.KeyThresholdDays,
		},
		Accounts: []AccountAudit{},
	}
}

// Credentials is the inventory an account audit classified.
type Credentials struct {
	Passwords []audit.PasswordState
	Keys      []audit.AccessKey
}

func (c Credentials) password(account string) (audit.PasswordState, bool) {
	for _, p := range c.Passwords {
		if p.Account == account {
			return p, true
		}
	}
	return audit.PasswordState{}, false
}

func (c Credentials) key(keyID string) (audit.AccessKey, bool) {
	for _, k := range c.Keys {
		if k.KeyID == keyID {
			return k, true
		}
	}
	return audit.AccessKey{}, false
}

// NewAccountAudit creates an AccountAudit from classified records.
func NewAccountAudit(accountID string, alias *string, creds Credentials, records []audit.AgeRecord, findings []audit.StaleFinding, text string) *AccountAudit {
	return &AccountAudit{
		AccountID:     accountID,
		AccountAlias:  alias,
		Summary:       summarize(creds, records, findings),
		Findings:      toFindings(creds, findings),
		Report:        text,
		StaleFindings: findings,
	}
}

func summarize(creds Credentials, records []audit.AgeRecord, findings []audit.StaleFinding) Summary {
	var s Summary
	for _, rec := range records {
		if rec.Kind == audit.KindAccessKey {
			s.KeysAudited++
		} else {
			s.PasswordsAudited++
		}
	}
	s.StalePasswords = len(audit.FindingsOfKind(findings, audit.KindPassword))
	staleKeys := audit.FindingsOfKind(findings, audit.KindAccessKey)
	s.StaleKeys = len(staleKeys)
	for _, f := range staleKeys {
		if k, ok := creds.key(f.Subject.KeyID); ok && k.Active {
			s.StaleActiveKeys++
		}
	}
	s.StalePasswordPercent = percent(s.StalePasswords, s.PasswordsAudited)
	s.StaleKeyPercent = percent(s.StaleKeys, s.KeysAudited)
	return s
}

func toFindings(creds Credentials, findings []audit.StaleFinding) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		finding := Finding{
			Account:     f.Subject.Account,
			Kind:        string(f.Kind),
			AccessKeyID: f.Subject.KeyID,
			Never:       f.Age.IsNever(),
		}
		if !f.Age.IsNever() {
			days := f.Age.Days()
			finding.AgeDays = &days
		}

		switch f.Kind {
		case audit.KindAccessKey:
			if k, ok := creds.key(f.Subject.KeyID); ok {
				finding.Status = k.Status
				finding.LastUsedService = k.LastUsedService
				finding.LastUsedRegion = k.LastUsedRegion
			}
		case audit.KindPassword:
			if p, ok := creds.password(f.Subject.Account); ok {
				finding.PasswordResetRequired = p.ResetRequired
			}
		}
		out = append(out, finding)
	}
	return out
}
