package audit

import "time"

// Calculator computes credential ages against a single instant so every age
// in one run shares the same reference.
type Calculator struct {
	now    time.Time
	source AgeSource
}

// NewCalculator creates a Calculator measuring from source at now.
func NewCalculator(now time.Time, source AgeSource) *Calculator {
	return &Calculator{now: now, source: source}
}

// Now returns the reference instant.
func (c *Calculator) Now() time.Time {
	return c.now
}

// Source returns the timestamp source ages are measured from.
func (c *Calculator) Source() AgeSource {
	return c.source
}

// PasswordAge returns the age of an account's password. The second result is
// false when the password is disabled and no age applies.
func (c *Calculator) PasswordAge(p PasswordState) (AgeRecord, bool) {
	if !p.Enabled {
		return AgeRecord{}, false
	}

	event := p.LastUsed
	if c.source == AgeSourceCreatedOrChanged {
		event = p.LastChanged
	}

	return AgeRecord{
		Subject: Subject{Account: p.Account},
		Kind:    KindPassword,
		Age:     AgeSince(c.now, event),
	}, true
}

// KeyAge returns the age of an access key.
func (c *Calculator) KeyAge(k AccessKey) AgeRecord {
	event := k.LastUsed
	if c.source == AgeSourceCreatedOrChanged {
		created := k.CreatedAt
		event = &created
	}

	return AgeRecord{
		Subject: Subject{Account: k.Account, KeyID: k.KeyID},
		Kind:    KindAccessKey,
		Age:     AgeSince(c.now, event),
	}
}

// Ages computes password records followed by key records, preserving input
// order within each kind.
func (c *Calculator) Ages(passwords []PasswordState, keys []AccessKey) []AgeRecord {
	records := make([]AgeRecord, 0, len(passwords)+len(keys))
	for _, p := range passwords {
		if rec, ok := c.PasswordAge(p); ok {
			records = append(records, rec)
		}
	}
	for _, k := range keys {
		records = append(records, c.KeyAge(k))
	}
	return records
}
