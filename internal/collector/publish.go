package collector

import (
	"context"
	"fmt"

	"github.com/locktivity/epack-collector-iam-audit/internal/report"
)

// publish sends each account's report to the configured topic using the
// default credentials.
func (c *Collector) publish(ctx context.Context, output *Output, labelAccounts bool) error {
	c.status("Publishing reports...")
	client, err := c.newClient(ctx, c.config.Region, AccountConfig{})
	if err != nil {
		return err
	}

	topic, err := client.FindTopic(ctx, c.config.Topic)
	if err != nil {
		return fmt.Errorf("resolving topic %q: %w", c.config.Topic, err)
	}

	for i := range output.Accounts {
		acct := &output.Accounts[i]

		var label string
		if labelAccounts {
			label = report.AccountLabel(acct.AccountID, acct.AccountAlias)
		}
		subject := report.Subject(c.config.Subject, label)

		messageID, err := client.Publish(ctx, topic.ARN, subject, acct.Report)
		if err != nil {
			return fmt.Errorf("publishing report for account %s: %w", acct.AccountID, err)
		}

		c.logger.Info().
			Str("account_id", acct.AccountID).
			Str("topic_arn", topic.ARN).
			Str("message_id", messageID).
			Msg("report published")

		acct.Publication = &Publication{
			TopicARN:  topic.ARN,
			Subject:   subject,
			MessageID: messageID,
		}
	}

	return nil
}
