package audit

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	if got := DaysBetween(now, now.AddDate(0, 0, -45)); got != 45 {
		t.Fatalf("expected 45, got %d", got)
	}
	if got := DaysBetween(now, now.Add(-(45*day - time.Second))); got != 44 {
		t.Fatalf("expected partial day to truncate to 44, got %d", got)
	}
	if got := DaysBetween(now, now); got != 0 {
		t.Fatalf("expected 0 for same instant, got %d", got)
	}
	if got := DaysBetween(now, now.Add(3*time.Hour)); got != 0 {
		t.Fatalf("expected future event to clamp to 0, got %d", got)
	}
}

func TestAgeSince(t *testing.T) {
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	if !AgeSince(now, nil).IsNever() {
		t.Fatalf("expected nil event to be Never")
	}
	if !AgeSince(now, &time.Time{}).IsNever() {
		t.Fatalf("expected zero event to be Never")
	}

	event := now.AddDate(0, 0, -10)
	got := AgeSince(now, &event)
	if got.IsNever() || got.Days() != 10 {
		t.Fatalf("expected 10 days, got %v", got)
	}
}

func TestAgeExceeds(t *testing.T) {
	if !Never.Exceeds(0) || !Never.Exceeds(1<<30) {
		t.Fatalf("expected Never to exceed every threshold")
	}
	if Days(90).Exceeds(90) {
		t.Fatalf("expected age equal to threshold not to exceed it")
	}
	if !Days(91).Exceeds(90) {
		t.Fatalf("expected 91 to exceed 90")
	}
}

func TestAgeString(t *testing.T) {
	if Never.String() != "Never" {
		t.Fatalf("expected Never, got %q", Never.String())
	}
	if Days(100).String() != "100" {
		t.Fatalf("expected 100, got %q", Days(100).String())
	}
	if Days(0).IsNever() {
		t.Fatalf("expected Days(0) to be a number, not Never")
	}
}
