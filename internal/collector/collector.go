package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/locktivity/epack-collector-iam-audit/internal/aws"
	"github.com/rs/zerolog"
)

// clientFactory creates an AWS client for an account.
type clientFactory func(ctx context.Context, region string, acct AccountConfig) (aws.Client, error)

// Collector audits IAM credentials and publishes stale credential reports.
type Collector struct {
	config    Config
	logger    zerolog.Logger
	newClient clientFactory
	now       func() time.Time
}

// status reports an indeterminate status update.
func (c *Collector) status(message string) {
	c.logger.Debug().Msg(message)
	if c.config.OnStatus != nil {
		c.config.OnStatus(message)
	}
}

// progress reports a determinate progress update.
func (c *Collector) progress(current, total int64, message string) {
	if c.config.OnProgress != nil {
		c.config.OnProgress(current, total, message)
	}
}

// New creates a new Collector with the given configuration.
func New(config Config) (*Collector, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Collector{
		config:    config,
		logger:    config.Logger,
		newClient: createClient,
		now:       time.Now,
	}, nil
}

// Collect audits every configured account, then publishes one report per
// account. Any audit failure aborts the run before anything is published.
func (c *Collector) Collect(ctx context.Context) (*Output, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	// One reference time for every age in the run
	now := c.now().UTC()
	output := NewOutput(now, c.config)

	// Determine which accounts to audit
	accounts := c.config.Accounts
	if len(accounts) == 0 {
		// Use default credentials for current account
		accounts = []AccountConfig{{}}
	}
	labelAccounts := len(accounts) > 1

	total := int64(len(accounts))
	c.status("Starting IAM credential audit")

	for i, acct := range accounts {
		c.progress(int64(i+1), total, fmt.Sprintf("Auditing account %d of %d", i+1, len(accounts)))

		result, err := c.auditAccount(ctx, acct, now, labelAccounts)
		if err != nil {
			return nil, fmt.Errorf("auditing %s: %w", describeAccount(acct), err)
		}
		output.Accounts = append(output.Accounts, *result)
	}

	if c.config.DryRun {
		c.status("Dry run, skipping publish")
		return output, nil
	}

	if err := c.publish(ctx, output, labelAccounts); err != nil {
		return nil, err
	}
	output.Published = true

	c.status("Audit complete")
	return output, nil
}

// createClient creates an AWS client for the given account configuration.
func createClient(ctx context.Context, region string, acctConfig AccountConfig) (aws.Client, error) {
	if acctConfig.RoleARN != "" {
		client, err := aws.NewClientWithRole(ctx, region, acctConfig.RoleARN, acctConfig.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("creating AWS client with role: %w", err)
		}
		return client, nil
	}

	client, err := aws.NewClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("creating AWS client: %w", err)
	}
	return client, nil
}

func describeAccount(acct AccountConfig) string {
	if acct.RoleARN != "" {
		return "role " + acct.RoleARN
	}
	return "default credentials"
}
