package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeliveryReport_Summary(t *testing.T) {
	ok := EmailResult{Recipient: "a@example.com", Success: true}
	fail := EmailResult{Recipient: "b@example.com", Error: "bounced"}

	tests := []struct {
		name    string
		report  DeliveryReport
		summary string
	}{
		{
			name:    "no emails requested",
			report:  DeliveryReport{Created: 4},
			summary: "Created 4 voucher(s).",
		},
		{
			name:    "all sent",
			report:  DeliveryReport{Created: 2, Results: []EmailResult{ok, ok}},
			summary: "Created 2 voucher(s) and sent 2 email(s).",
		},
		{
			name:    "partial",
			report:  DeliveryReport{Created: 3, Results: []EmailResult{ok, fail, ok}},
			summary: "Created 3 voucher(s). Sent 2 email(s) successfully, but 1 failed.",
		},
		{
			name:    "all failed",
			report:  DeliveryReport{Created: 2, Results: []EmailResult{fail, fail}},
			summary: "Created 2 voucher(s), but all 2 email(s) failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.summary, tt.report.Summary())
		})
	}
}

func TestDeliveryReport_Counts(t *testing.T) {
	report := DeliveryReport{
		Created: 5,
		Results: []EmailResult{
			{Success: true},
			{Success: false, Error: "timeout"},
			{Success: true},
		},
	}

	assert.Equal(t, 2, report.SentCount())
	assert.Equal(t, 1, report.FailedCount())
}
