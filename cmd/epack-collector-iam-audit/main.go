// epack-collector-iam-audit reports stale IAM passwords and access keys.
//
// This binary is designed to be executed by the epack collector runner.
// It uses the epack Component SDK for protocol compliance.
package main

import (
	"errors"
	"os"

	"github.com/locktivity/epack-collector-iam-audit/internal/aws"
	"github.com/locktivity/epack-collector-iam-audit/internal/collector"
	"github.com/locktivity/epack-collector-iam-audit/internal/logging"
	"github.com/locktivity/epack/componentsdk"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	componentsdk.RunCollector(componentsdk.CollectorSpec{
		Name:        "iam-audit",
		Version:     Version,
		Description: "Reports IAM passwords and access keys that are unused or too old",
	}, run)
}

func run(ctx componentsdk.CollectorContext) error {
	// Build config from SDK context
	cfg := ctx.Config()
	config, err := collector.ConfigFromMap(cfg)
	if err != nil {
		return componentsdk.NewConfigError("parsing config: %v", err)
	}

	// stdout carries the protocol envelope
	level, _ := cfg["log_level"].(string)
	config.Logger = logging.New(os.Stderr, level, logging.FormatJSON)
	config.OnStatus = ctx.Status
	config.OnProgress = ctx.Progress

	c, err := collector.New(config)
	if err != nil {
		return componentsdk.NewConfigError("creating collector: %v", err)
	}

	output, err := c.Collect(ctx.Context())
	if err != nil {
		config.Logger.Error().Err(err).Msg("audit failed")
		if errors.Is(err, aws.ErrTopicNotFound) {
			return componentsdk.NewConfigError("auditing credentials: %v", err)
		}
		return componentsdk.NewNetworkError("auditing credentials: %v", err)
	}

	// Emit the collected data (SDK handles protocol envelope)
	return ctx.Emit(output)
}
