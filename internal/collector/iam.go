package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/locktivity/epack-collector-iam-audit/internal/audit"
	"github.com/locktivity/epack-collector-iam-audit/internal/aws"
	"github.com/locktivity/epack-collector-iam-audit/internal/credreport"
	"github.com/locktivity/epack-collector-iam-audit/internal/report"
	"github.com/rs/zerolog"
)

// auditAccount audits the IAM credentials of a single AWS account.
func (c *Collector) auditAccount(ctx context.Context, acctConfig AccountConfig, now time.Time, labelAccount bool) (*AccountAudit, error) {
	c.status("Connecting to AWS...")
	client, err := c.newClient(ctx, c.config.Region, acctConfig)
	if err != nil {
		return nil, err
	}

	accountID, err := client.GetCallerIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting account ID: %w", err)
	}
	c.status(fmt.Sprintf("Connected to account %s", accountID))

	logger := c.logger.With().Str("account_id", accountID).Logger()

	// The alias only labels the report
	alias, err := client.GetAccountAlias(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("account alias unavailable, labelling by account ID")
		alias = nil
	}

	inventory := audit.NewInventory(client, logger)

	c.status("Listing IAM users...")
	users, err := inventory.Users(ctx)
	if err != nil {
		return nil, err
	}

	passwords, err := c.passwordStates(ctx, client, inventory, users, logger)
	if err != nil {
		return nil, err
	}

	c.status("Collecting access keys...")
	keys, err := inventory.Keys(ctx, users, c.config.AgeSource)
	if err != nil {
		return nil, err
	}

	calc := audit.NewCalculator(now, c.config.AgeSource)
	records := calc.Ages(passwords, keys)
	findings := audit.Classify(records, c.config.Thresholds())

	params := report.Params{
		Thresholds: c.config.Thresholds(),
		Source:     calc.Source(),
		RunDate:    calc.Now(),
	}
	if labelAccount {
		params.Account = report.AccountLabel(accountID, alias)
	}

	logger.Info().
		Int("users", len(users)).
		Int("records", len(records)).
		Int("stale", len(findings)).
		Msg("account audited")

	creds := Credentials{Passwords: passwords, Keys: keys}
	return NewAccountAudit(accountID, alias, creds, records, findings, report.Format(findings, params)), nil
}

// passwordStates reads console password state from the configured source.
func (c *Collector) passwordStates(ctx context.Context, client aws.Client, inventory *audit.Inventory, users []aws.User, logger zerolog.Logger) ([]audit.PasswordState, error) {
	if c.config.PasswordSource == audit.PasswordSourceReport {
		c.status("Waiting for credential report...")
		reader := credreport.NewReader(client, credreport.Config{
			Interval:    c.config.ReportPollInterval,
			MaxAttempts: c.config.ReportMaxAttempts,
		}, logger)
		rows, err := reader.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return audit.ReportPasswords(rows)
	}

	c.status("Checking login profiles...")
	return inventory.LivePasswords(ctx, users)
}
