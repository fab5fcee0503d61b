// Package credreport retrieves and parses the IAM credential report.
package credreport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/locktivity/epack-collector-iam-audit/internal/aws"
	"github.com/rs/zerolog"
)

// Polling defaults.
const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 60
)

// Gateway is the part of the identity service the reader needs.
type Gateway interface {
	GenerateCredentialReport(ctx context.Context) error
	GetCredentialReport(ctx context.Context) ([]byte, error)
}

// Config controls polling.
type Config struct {
	Interval    time.Duration // wait between attempts
	MaxAttempts int           // retrieval attempts before giving up
}

// ReportTimeoutError is returned when the report is still not ready after
// MaxAttempts retrievals.
type ReportTimeoutError struct {
	Attempts int
	Elapsed  time.Duration
}

func (e *ReportTimeoutError) Error() string {
	return fmt.Sprintf("credential report not ready after %d attempts (%s)", e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *ReportTimeoutError) Unwrap() error {
	return aws.ErrReportNotReady
}

// Reader polls the gateway until the credential report is available.
type Reader struct {
	gateway Gateway
	config  Config
	logger  zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewReader creates a Reader. Zero config values take the defaults.
func NewReader(gateway Gateway, config Config, logger zerolog.Logger) *Reader {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultMaxAttempts
	}
	return &Reader{
		gateway: gateway,
		config:  config,
		logger:  logger,
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// Fetch generates, waits for, and parses the credential report.
func (r *Reader) Fetch(ctx context.Context) ([]Row, error) {
	content, err := r.fetchContent(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing credential report: %w", err)
	}
	r.logger.Debug().Int("rows", len(rows)).Msg("credential report parsed")
	return rows, nil
}

func (r *Reader) fetchContent(ctx context.Context) ([]byte, error) {
	start := r.now()

	for attempt := 1; ; attempt++ {
		if err := r.gateway.GenerateCredentialReport(ctx); err != nil {
			return nil, err
		}

		content, err := r.gateway.GetCredentialReport(ctx)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, aws.ErrReportNotReady) {
			return nil, err
		}

		if attempt >= r.config.MaxAttempts {
			return nil, &ReportTimeoutError{Attempts: attempt, Elapsed: r.now().Sub(start)}
		}

		r.logger.Debug().
			Int("attempt", attempt).
			Dur("backoff", r.config.Interval).
			Msg("credential report not ready")

		if err := r.sleep(ctx, r.config.Interval); err != nil {
			return nil, fmt.Errorf("waiting for credential report: %w", err)
		}
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
