package credreport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"
)

// Credential report column names used by the audit.
const (
	ColUser                = "user"
	ColPasswordEnabled     = "password_enabled"
	ColPasswordLastUsed    = "password_last_used"
	ColPasswordLastChanged = "password_last_changed"
)

// RootAccountUser is the user value of the root account row.
const RootAccountUser = "<root_account>"

// reportTimeLayout is the report timestamp once its "+00:00" suffix is removed.
const reportTimeLayout = "2006-01-02T15:04:05"

// tzSuffixLen is the width of a "+hh:mm" offset suffix.
const tzSuffixLen = 6

// Row is one account line of the credential report, keyed by column header.
type Row map[string]string

// User returns the account name of the row.
func (r Row) User() string {
	return r[ColUser]
}

// IsRootAccount returns true for the root account row.
func (r Row) IsRootAccount() bool {
	return r[ColUser] == RootAccountUser
}

// Bool returns true if the column holds "true".
func (r Row) Bool(col string) bool {
	return r[col] == "true"
}

// Time parses a timestamp column. It returns nil for placeholder values such
// as "N/A" or "no_information".
func (r Row) Time(col string) (*time.Time, error) {
	t, err := parseTime(r[col])
	if err != nil {
		return nil, fmt.Errorf("column %s of %s: %w", col, r.User(), err)
	}
	return t, nil
}

// Parse parses CSV credential report content into rows.
func Parse(content []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	if len(records) < 2 {
		return []Row{}, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseTime(s string) (*time.Time, error) {
	switch s {
	case "", "N/A", "no_information", "not_supported":
		return nil, nil
	}

	if hasTZSuffix(s) {
		t, err := time.ParseInLocation(reportTimeLayout, s[:len(s)-tzSuffixLen], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
		return &t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}

// hasTZSuffix reports whether s ends in a "+hh:mm" or "-hh:mm" offset.
func hasTZSuffix(s string) bool {
	if len(s) <= tzSuffixLen {
		return false
	}
	sign := s[len(s)-tzSuffixLen]
	return (sign == '+' || sign == '-') && s[len(s)-3] == ':'
}
