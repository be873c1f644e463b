package service

import "fmt"

// DeliveryReport aggregates per-recipient email outcomes of a bulk
// issuance into counts and a single user-facing status message.
type DeliveryReport struct {
	Created int
	Results []EmailResult
}

// SentCount returns how many emails were delivered successfully.
func (r DeliveryReport) SentCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Success {
			n++
		}
	}
	return n
}

// FailedCount returns how many email attempts failed.
func (r DeliveryReport) FailedCount() int {
	return len(r.Results) - r.SentCount()
}

// Summary renders the admin-facing confirmation. The three delivery
// outcomes (all sent, partial, all failed) get distinct messages so the
// UI can style them differently; no-email batches only report creation.
func (r DeliveryReport) Summary() string {
	created := fmt.Sprintf("Created %d voucher(s)", r.Created)
	if len(r.Results) == 0 {
		return created + "."
	}

	sent := r.SentCount()
	failed := r.FailedCount()
	switch {
	case failed == 0:
		return fmt.Sprintf("%s and sent %d email(s).", created, sent)
	case sent == 0:
		return fmt.Sprintf("%s, but all %d email(s) failed.", created, failed)
	default:
		return fmt.Sprintf("%s. Sent %d email(s) successfully, but %d failed.", created, sent, failed)
	}
}
