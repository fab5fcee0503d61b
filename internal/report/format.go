// Package report renders stale credential findings as text.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/locktivity/epack-collector-iam-audit/internal/audit"
)

// DefaultSubject is the publish subject used when none is configured.
const DefaultSubject = "Daily AWS password and key usage report"

// Never markers per section.
const (
	passwordNeverMarker = "Never Used"
	keyNeverMarker      = "Never"
)

const dateLayout = "2006-01-02"

// Params describes the run a report is rendered for.
type Params struct {
	Thresholds audit.Thresholds
	Source     audit.AgeSource
	RunDate    time.Time
	Account    string // optional account label printed under the title
}

// wording holds the source-dependent report text.
type wording struct {
	title          string
	passwordTitle  string
	passwordHeader string
	keyTitle       string
	keyHeader      string
}

var wordings = map[audit.AgeSource]wording{
	audit.AgeSourceLastUsed: {
		title:          "User password and key utilization report for %s",
		passwordTitle:  "Accounts with passwords not utilized in %d days",
		passwordHeader: "Account name / Days since last utilization",
		keyTitle:       "Accounts with keys not utilized in %d days",
		keyHeader:      "Account name / Key / Days since key used",
	},
	audit.AgeSourceCreatedOrChanged: {
		title:          "User password and key age report for %s",
		passwordTitle:  "Accounts with passwords older than %d days",
		passwordHeader: "Account name / Age of password in days",
		keyTitle:       "Accounts with keys older than %d days",
		keyHeader:      "Account name / Key / Age of key in days",
	},
}

// Format renders findings. The output depends only on its inputs, and
// findings are listed in the order given.
func Format(findings []audit.StaleFinding, p Params) string {
	w, ok := wordings[p.Source]
	if !ok {
		w = wordings[audit.AgeSourceLastUsed]
	}

	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, w.title, p.RunDate.Format(dateLayout))
	b.WriteString("\n")
	if p.Account != "" {
		fmt.Fprintf(&b, "Account: %s\n", p.Account)
	}

	b.WriteString("\n\n")
	fmt.Fprintf(&b, w.passwordTitle, p.Thresholds.Password)
	b.WriteString("\n" + w.passwordHeader + "\n")
	for _, f := range audit.FindingsOfKind(findings, audit.KindPassword) {
		fmt.Fprintf(&b, "\n%s / %s", f.Subject.Account, ageText(f.Age, passwordNeverMarker))
	}

	b.WriteString("\n\n\n")
	fmt.Fprintf(&b, w.keyTitle, p.Thresholds.Key)
	b.WriteString("\n" + w.keyHeader + "\n")
	for _, f := range audit.FindingsOfKind(findings, audit.KindAccessKey) {
		fmt.Fprintf(&b, "\n%s / %s / %s", f.Subject.Account, f.Subject.KeyID, ageText(f.Age, keyNeverMarker))
	}
	b.WriteString("\n")

	return b.String()
}

func ageText(age audit.Age, neverMarker string) string {
	if age.IsNever() {
		return neverMarker
	}
	return age.String()
}

// Subject returns the publish subject for an account's report.
func Subject(base, account string) string {
	if base == "" {
		base = DefaultSubject
	}
	if account == "" {
		return base
	}
	return base + " - " + account
}

// AccountLabel formats an account ID and optional alias for display.
func AccountLabel(accountID string, alias *string) string {
	if alias == nil || *alias == "" {
		return accountID
	}
	if accountID == "" {
		return *alias
	}
	return fmt.Sprintf("%s (%s)", accountID, *alias)
}
