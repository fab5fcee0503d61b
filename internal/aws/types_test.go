package aws

import "testing"

func TestAccessKeyIsActive(t *testing.T) {
	if !(AccessKey{Status: "Active"}).IsActive() {
		t.Fatalf("expected Active key to be active")
	}
	if (AccessKey{Status: "Inactive"}).IsActive() {
		t.Fatalf("expected Inactive key not to be active")
	}
}
