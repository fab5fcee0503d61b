package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/locktivity/epack-collector-iam-audit/internal/audit"
)

// WriteTable writes findings as an aligned table for terminal output.
func WriteTable(writer io.Writer, findings []audit.StaleFinding) error {
	if len(findings) == 0 {
		_, err := fmt.Fprintln(writer, "No stale credentials found.")
		return err
	}

	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', tabwriter.TabIndent)
	fmt.Fprintln(w, "ACCOUNT\tKIND\tACCESS KEY\tAGE (DAYS)")

	for _, f := range findings {
		keyID := "-"
		if f.Subject.KeyID != "" {
			keyID = f.Subject.KeyID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Subject.Account, f.Kind, keyID, f.Age)
	}

	return w.Flush()
}
