package audit

// Classify returns the stale records in input order. A record is stale when
// its age is Never or strictly greater than the threshold for its kind.
func Classify(records []AgeRecord, thresholds Thresholds) []StaleFinding {
	findings := make([]StaleFinding, 0)
	for _, rec := range records {
		if !rec.Age.Exceeds(thresholds.For(rec.Kind)) {
			continue
		}
		findings = append(findings, StaleFinding(rec))
	}
	return findings
}

// FindingsOfKind returns the findings of one kind, in order.
func FindingsOfKind(findings []StaleFinding, kind Kind) []StaleFinding {
	var out []StaleFinding
	for _, f := range findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}
