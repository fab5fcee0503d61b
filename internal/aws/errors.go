package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

var (
	// ErrNotFound is returned when the requested IAM entity does not exist,
	// e.g. a user without a login profile.
	ErrNotFound = errors.New("entity not found")

	// ErrReportNotReady is returned while the credential report is still being
	// generated, has not been requested yet, or has expired.
	ErrReportNotReady = errors.New("credential report not ready")

	// ErrTopicNotFound is returned when no SNS topic matches the name pattern.
	ErrTopicNotFound = errors.New("topic not found")
)

// IAM error codes as reported by the API.
const (
	errCodeNoSuchEntity     = "NoSuchEntity"
	errCodeReportInProgress = "ReportInProgress"
	errCodeReportNotPresent = "ReportNotPresent"
	errCodeReportExpired    = "ReportExpired"
)

// apiErrorCode returns the API error code carried by err, or "" if err did not
// come from an AWS API response.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// isNoSuchEntity reports whether err is an IAM NoSuchEntity error.
func isNoSuchEntity(err error) bool {
	return apiErrorCode(err) == errCodeNoSuchEntity
}

// isReportNotReady reports whether err means the credential report must be
// (re)generated or waited for.
func isReportNotReady(err error) bool {
	switch apiErrorCode(err) {
	case errCodeReportInProgress, errCodeReportNotPresent, errCodeReportExpired:
		return true
	}
	return false
}
