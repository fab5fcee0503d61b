package collector

import (
	"errors"
	"fmt"
	"time"

	"github.com/locktivity/epack-collector-iam-audit/internal/audit"
	"github.com/locktivity/epack-collector-iam-audit/internal/report"
	"github.com/rs/zerolog"
)

// StatusFunc is called to report indeterminate status updates.
type StatusFunc func(message string)

// ProgressFunc is called to report determinate progress (current/total).
type ProgressFunc func(current, total int64, message string)

// Config holds the audit configuration.
type Config struct {
	Accounts []AccountConfig `json:"accounts"` // Accounts to audit (empty = default credentials)
	Region   string          `json:"region"`   // Region for SNS and STS (empty = environment)

	PasswordThresholdDays int                  `json:"password_threshold_days"`
	KeyThresholdDays      int                  `json:"key_threshold_days"`
	AgeSource             audit.AgeSource      `json:"age_source"`
	PasswordSource        audit.PasswordSource `json:"password_source"`

	Topic   string `json:"topic"`   // SNS topic name pattern
	Subject string `json:"subject"` // Publish subject
	DryRun  bool   `json:"dry_run"` // Build reports without publishing

	ReportPollInterval time.Duration `json:"report_poll_interval"`
	ReportMaxAttempts  int           `json:"report_max_attempts"`
	Timeout            time.Duration `json:"timeout"` // Bound on the whole run (0 = none)

	Logger zerolog.Logger `json:"-"`

	// Progress callbacks (optional, set by main to report status)
	OnStatus   StatusFunc   `json:"-"`
	OnProgress ProgressFunc `json:"-"`
}

// AccountConfig holds configuration for a single AWS account.
type AccountConfig struct {
	RoleARN    string `json:"role_arn"`    // IAM role to assume
	ExternalID string `json:"external_id"` // External ID for assume role (optional)
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	return Config{
		PasswordThresholdDays: DefaultPasswordThresholdDays,
		KeyThresholdDays:      DefaultKeyThresholdDays,
		AgeSource:             audit.AgeSourceLastUsed,
		PasswordSource:        audit.PasswordSourceLive,
		Topic:                 DefaultTopic,
		Subject:               report.DefaultSubject,
		ReportPollInterval:    DefaultReportPollInterval,
		ReportMaxAttempts:     DefaultReportMaxAttempts,
		Timeout:               DefaultTimeout,
		Logger:                zerolog.Nop(),
	}
}

// Thresholds returns the configured staleness thresholds.
func (c Config) Thresholds() audit.Thresholds {
	return audit.Thresholds{
		Password: c.PasswordThresholdDays,
		Key:      c.KeyThresholdDays,
	}
}

// Validate checks the configuration for values the audit cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.PasswordThresholdDays < 0 {
		errs = append(errs, fmt.Errorf("password_threshold_days must not be negative, got %d", c.PasswordThresholdDays))
	}
	if c.KeyThresholdDays < 0 {
		errs = append(errs, fmt.Errorf("key_threshold_days must not be negative, got %d", c.KeyThresholdDays))
	}
	if _, err := audit.ParseAgeSource(string(c.AgeSource)); err != nil {
		errs = append(errs, err)
	}
	if _, err := audit.ParsePasswordSource(string(c.PasswordSource)); err != nil {
		errs = append(errs, err)
	}
	if !c.DryRun && c.Topic == "" {
		errs = append(errs, errors.New("topic is required unless dry_run is set"))
	}
	if c.ReportPollInterval < 0 {
		errs = append(errs, fmt.Errorf("report_poll_interval must not be negative, got %s", c.ReportPollInterval))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.ReportMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("report_max_attempts must not be negative, got %d", c.ReportMaxAttempts))
	}
	for i, acct := range c.Accounts {
		if acct.RoleARN == "" && acct.ExternalID != "" {
			errs = append(errs, fmt.Errorf("accounts[%d]: external_id requires role_arn", i))
		}
	}

	return errors.Join(errs...)
}

// ConfigFromMap builds a Config from a collector config map, starting from
// DefaultConfig. Account configuration supports three modes:
//  1. accounts array (multi-account)
//  2. role_arn (single account with assume role)
//  3. neither (use default credential chain)
func ConfigFromMap(cfg map[string]any) (Config, error) {
	config := DefaultConfig()
	if cfg == nil {
		return config, nil
	}

	config.Region = getString(cfg, "region", config.Region)
	config.Topic = getString(cfg, "topic", config.Topic)
	config.Subject = getString(cfg, "subject", config.Subject)
	config.AgeSource = audit.AgeSource(getString(cfg, "age_source", string(config.AgeSource)))
	config.PasswordSource = audit.PasswordSource(getString(cfg, "password_source", string(config.PasswordSource)))
	config.DryRun = getBool(cfg, "dry_run", config.DryRun)

	var err error
	if config.PasswordThresholdDays, err = getInt(cfg, "password_threshold_days", config.PasswordThresholdDays); err != nil {
		return config, err
	}
	if config.KeyThresholdDays, err = getInt(cfg, "key_threshold_days", config.KeyThresholdDays); err != nil {
		return config, err
	}
	if config.ReportMaxAttempts, err = getInt(cfg, "report_max_attempts", config.ReportMaxAttempts); err != nil {
		return config, err
	}
	if config.ReportPollInterval, err = getDuration(cfg, "report_poll_interval", config.ReportPollInterval); err != nil {
		return config, err
	}
	if config.Timeout, err = getDuration(cfg, "timeout", config.Timeout); err != nil {
		return config, err
	}

	if accounts, ok := cfg["accounts"].([]any); ok && len(accounts) > 0 {
		for _, acct := range accounts {
			if acctMap, ok := acct.(map[string]any); ok {
				config.Accounts = append(config.Accounts, AccountConfig{
					RoleARN:    getString(acctMap, "role_arn", ""),
					ExternalID: getString(acctMap, "external_id", ""),
				})
			}
		}
	} else if roleARN := getString(cfg, "role_arn", ""); roleARN != "" {
		config.Accounts = []AccountConfig{{
			RoleARN:    roleARN,
			ExternalID: getString(cfg, "external_id", ""),
		}}
	}

	return config, nil
}

// getString safely extracts a string from config map
func getString(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok && v != "" {
		return v
	}
	return def
}

func getBool(cfg map[string]any, key string, def bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return def
}

// getInt accepts JSON numbers (float64) and Go ints.
func getInt(cfg map[string]any, key string, def int) (int, error) {
	switch v := cfg[key].(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

// getDuration accepts Go duration strings ("5s") or whole seconds.
func getDuration(cfg map[string]any, key string, def time.Duration) (time.Duration, error) {
	switch v := cfg[key].(type) {
	case nil:
		return def, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	default:
		return 0, fmt.Errorf("%s must be a duration, got %T", key, v)
	}
}
