// iam-audit reports stale IAM passwords and access keys from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/locktivity/epack-collector-iam-audit/internal/audit"
	"github.com/locktivity/epack-collector-iam-audit/internal/collector"
	"github.com/locktivity/epack-collector-iam-audit/internal/logging"
	"github.com/locktivity/epack-collector-iam-audit/internal/report"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	config      collector.Config
	ageSource   string
	pwdSource   string
	roleARNs    []string
	externalID  string
	output      string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	opts := options{config: collector.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "iam-audit",
		Short: "Report IAM passwords and access keys that are unused or too old",
		Long: `iam-audit lists every IAM user's console password and access keys,
flags those that were never used or exceed the configured age, and publishes
a plain-text report to an SNS topic.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Printf("iam-audit version %s\n", Version)
				return nil
			}
			return run(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")
	flags.IntVar(&opts.config.PasswordThresholdDays, "password-threshold", collector.DefaultPasswordThresholdDays, "Days after which a password is stale")
	flags.IntVar(&opts.config.KeyThresholdDays, "key-threshold", collector.DefaultKeyThresholdDays, "Days after which an access key is stale")
	flags.StringVar(&opts.ageSource, "age-source", string(audit.AgeSourceLastUsed), "Measure age from last_used or created_or_changed")
	flags.StringVar(&opts.pwdSource, "password-source", string(audit.PasswordSourceLive), "Read password state from live lookups or the credential report")
	flags.StringVar(&opts.config.Topic, "topic", collector.DefaultTopic, "SNS topic name (or ARN fragment) to publish to")
	flags.StringVar(&opts.config.Subject, "subject", report.DefaultSubject, "Subject of the published message")
	flags.StringVarP(&opts.config.Region, "region", "r", "", "AWS region (default from environment)")
	flags.StringSliceVar(&opts.roleARNs, "role-arn", nil, "Role to assume per audited account (repeatable)")
	flags.StringVar(&opts.externalID, "external-id", "", "External ID for assumed roles")
	flags.DurationVar(&opts.config.ReportPollInterval, "report-poll-interval", collector.DefaultReportPollInterval, "Wait between credential report attempts")
	flags.IntVar(&opts.config.ReportMaxAttempts, "report-max-attempts", collector.DefaultReportMaxAttempts, "Credential report attempts before giving up")
	flags.DurationVar(&opts.config.Timeout, "timeout", collector.DefaultTimeout, "Bound on the whole run")
	flags.BoolVar(&opts.config.DryRun, "dry-run", false, "Print reports instead of publishing them")
	flags.StringVarP(&opts.output, "output", "o", "text", "Dry-run output: text, table or json")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level")
	flags.StringVar(&opts.logFormat, "log-format", string(logging.FormatConsole), "Log format: console or json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	config := opts.config
	config.AgeSource = audit.AgeSource(opts.ageSource)
	config.PasswordSource = audit.PasswordSource(opts.pwdSource)
	config.Logger = logging.New(os.Stderr, opts.logLevel, logging.Format(opts.logFormat))
	for _, arn := range opts.roleARNs {
		config.Accounts = append(config.Accounts, collector.AccountConfig{
			RoleARN:    arn,
			ExternalID: opts.externalID,
		})
	}

	switch opts.output {
	case "text", "table", "json":
	default:
		return fmt.Errorf("unknown output %q (want text, table or json)", opts.output)
	}

	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond)
	s.Writer = os.Stderr
	s.Suffix = " Auditing IAM credentials ..."
	config.OnStatus = func(message string) {
		s.Lock()
		s.Suffix = " " + message
		s.Unlock()
	}

	c, err := collector.New(config)
	if err != nil {
		return err
	}

	start := time.Now()
	s.Start()
	output, err := c.Collect(ctx)
	if err != nil {
		s.Stop()
		return err
	}
	s.FinalMSG = fmt.Sprintf("✓ [%d accounts audited] IAM credentials analyzed - Completed in %.2f seconds\n",
		len(output.Accounts), time.Since(start).Seconds())
	s.Stop()

	if !config.DryRun {
		for _, acct := range output.Accounts {
			fmt.Printf("Published report for %s (message %s)\n",
				report.AccountLabel(acct.AccountID, acct.AccountAlias), acct.Publication.MessageID)
		}
		return nil
	}

	return printOutput(output, opts.output)
}

func printOutput(output *collector.Output, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	case "table":
		for _, acct := range output.Accounts {
			fmt.Printf("\n%s\n", report.AccountLabel(acct.AccountID, acct.AccountAlias))
			if err := report.WriteTable(os.Stdout, acct.StaleFindings); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, acct := range output.Accounts {
			fmt.Print(acct.Report)
		}
		return nil
	}
}
