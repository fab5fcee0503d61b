package audit

import "testing"

func TestClassify(t *testing.T) {
	thresholds := Thresholds{Password: 90, Key: 30}
	records := []AgeRecord{
		{Subject: Subject{Account: "alice"}, Kind: KindPassword, Age: Days(100)},
		{Subject: Subject{Account: "frank"}, Kind: KindPassword, Age: Days(90)},
		{Subject: Subject{Account: "dave"}, Kind: KindPassword, Age: Never},
		{Subject: Subject{Account: "bob", KeyID: "AKIABOB"}, Kind: KindAccessKey, Age: Never},
		{Subject: Subject{Account: "erin", KeyID: "AKIAERIN"}, Kind: KindAccessKey, Age: Days(31)},
		{Subject: Subject{Account: "gus", KeyID: "AKIAGUS"}, Kind: KindAccessKey, Age: Days(30)},
		// A 60-day key is below the password threshold but above the key one.
		{Subject: Subject{Account: "hal", KeyID: "AKIAHAL"}, Kind: KindAccessKey, Age: Days(60)},
	}

	findings := Classify(records, thresholds)

	want := []string{"alice", "dave", "bob", "erin", "hal"}
	if len(findings) != len(want) {
		t.Fatalf("expected %d findings, got %d: %+v", len(want), len(findings), findings)
	}
	for i, f := range findings {
		if f.Subject.Account != want[i] {
			t.Fatalf("finding %d: expected %s, got %s", i, want[i], f.Subject.Account)
		}
	}

	if findings[0].Age.Days() != 100 {
		t.Fatalf("expected alice age 100, got %v", findings[0].Age)
	}
	if !findings[1].Age.IsNever() || !findings[2].Age.IsNever() {
		t.Fatalf("expected never-used findings to carry Never")
	}
}

func TestClassifyNeverIgnoresThreshold(t *testing.T) {
	records := []AgeRecord{
		{Subject: Subject{Account: "dave"}, Kind: KindPassword, Age: Never},
	}
	for _, threshold := range []int{0, 30, 100000} {
		findings := Classify(records, Thresholds{Password: threshold, Key: threshold})
		if len(findings) != 1 || !findings[0].Age.IsNever() {
			t.Fatalf("threshold %d: expected Never to be stale, got %+v", threshold, findings)
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	findings := Classify(nil, Thresholds{})
	if findings == nil || len(findings) != 0 {
		t.Fatalf("expected empty non-nil findings, got %v", findings)
	}
}

func TestFindingsOfKind(t *testing.T) {
	findings := []StaleFinding{
		{Subject: Subject{Account: "a"}, Kind: KindPassword},
		{Subject: Subject{Account: "b", KeyID: "K"}, Kind: KindAccessKey},
		{Subject: Subject{Account: "c"}, Kind: KindPassword},
	}
	got := FindingsOfKind(findings, KindPassword)
	if len(got) != 2 || got[0].Subject.Account != "a" || got[1].Subject.Account != "c" {
		t.Fatalf("unexpected password findings %+v", got)
	}
	if got := FindingsOfKind(findings, KindAccessKey); len(got) != 1 {
		t.Fatalf("expected 1 key finding, got %d", len(got))
	}
}

func TestParseSources(t *testing.T) {
	if s, err := ParseAgeSource("last_used"); err != nil || s != AgeSourceLastUsed {
		t.Fatalf("expected last_used, got %q (err=%v)", s, err)
	}
	if _, err := ParseAgeSource("whenever"); err == nil {
		t.Fatalf("expected error for unknown age source")
	}
	if s, err := ParsePasswordSource("report"); err != nil || s != PasswordSourceReport {
		t.Fatalf("expected report, got %q (err=%v)", s, err)
	}
	if _, err := ParsePasswordSource("csv"); err == nil {
		t.Fatalf("expected error for unknown password source")
	}
}

func TestThresholdsFor(t *testing.T) {
	th := Thresholds{Password: 90, Key: 30}
	if th.For(KindPassword) != 90 || th.For(KindAccessKey) != 30 {
		t.Fatalf("unexpected thresholds %+v", th)
	}
}
