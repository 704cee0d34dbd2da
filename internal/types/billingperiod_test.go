package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillingPeriodParse(t *testing.T) {
	year, month, err := BillingPeriod("2025-11").Parse()
	assert.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, time.November, month)

	invalid := []BillingPeriod{"", "2025", "2025-13", "2025-00", "11-2025", "2025-1", "2025/11"}
	for _, p := range invalid {
		_, _, err := p.Parse()
		assert.Error(t, err, "period %q should not parse", p)
	}
}

func TestBillingPeriodDueDate(t *testing.T) {
	tests := []struct {
		name    string
		period  BillingPeriod
		dueDay  int
		wantDay int
	}{
		{"normal day", "2025-11", 5, 5},
		{"day 31 in 30-day month", "2025-11", 31, 30},
		{"day 31 in february", "2025-02", 31, 28},
		{"day 30 in leap february", "2024-02", 30, 29},
		{"zero falls back to first", "2025-11", 0, 1},
		{"negative falls back to first", "2025-11", -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, err := tt.period.DueDate(tt.dueDay)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantDay, due.Day())

			_, month, _ := tt.period.Parse()
			assert.Equal(t, month, due.Month())
		})
	}
}

func TestBillingPeriodBefore(t *testing.T) {
	assert.True(t, BillingPeriod("2025-09").Before("2025-10"))
	assert.True(t, BillingPeriod("2024-12").Before("2025-01"))
	assert.False(t, BillingPeriod("2025-10").Before("2025-10"))
	assert.False(t, BillingPeriod("2025-11").Before("2025-10"))
}

func TestBillingPeriodFromTime(t *testing.T) {
	ts := time.Date(2025, 11, 15, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, BillingPeriod("2025-11"), BillingPeriodFromTime(ts))

	// Local times normalize to UTC before formatting.
	loc := time.FixedZone("UTC+13", 13*60*60)
	edge := time.Date(2025, 12, 1, 10, 0, 0, 0, loc)
	assert.Equal(t, BillingPeriod("2025-11"), BillingPeriodFromTime(edge))
}

func TestNewBillingPeriod(t *testing.T) {
	assert.Equal(t, BillingPeriod("2025-03"), NewBillingPeriod(2025, time.March))
	assert.Equal(t, BillingPeriod("2025-11"), NewBillingPeriod(2025, time.November))
}
