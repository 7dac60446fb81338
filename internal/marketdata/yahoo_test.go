package marketdata

import (
	"testing"
	"time"
)

func TestValidPeriod(t *testing.T) {
	for _, p := range []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"} {
		if !ValidPeriod(p) {
			t.Errorf("Expected %q to be valid", p)
		}
	}
	for _, p := range []string{"", "7d", "1w", "forever", "1Y "} {
		if ValidPeriod(p) {
			t.Errorf("Expected %q to be invalid", p)
		}
	}
	if !ValidPeriod("1Y") {
		t.Error("Expected period matching to be case-insensitive")
	}
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		period string
		start  time.Time
	}{
		{"1d", now.AddDate(0, 0, -1)},
		{"5d", now.AddDate(0, 0, -5)},
		{"1mo", now.AddDate(0, -1, 0)},
		{"3mo", now.AddDate(0, -3, 0)},
		{"6mo", now.AddDate(0, -6, 0)},
		{"1y", now.AddDate(-1, 0, 0)},
		{"2y", now.AddDate(-2, 0, 0)},
		{"5y", now.AddDate(-5, 0, 0)},
		{"10y", now.AddDate(-10, 0, 0)},
		{"ytd", time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"max", time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		start, end, err := periodRange(tc.period, now)
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", tc.period, err)
		}
		if !start.Equal(tc.start) {
			t.Errorf("%s: expected start %v, got %v", tc.period, tc.start, start)
		}
		if !end.Equal(now) {
			t.Errorf("%s: expected end %v, got %v", tc.period, now, end)
		}
	}
}

func TestPeriodRangeInvalid(t *testing.T) {
	if _, _, err := periodRange("2w", time.Now()); err == nil {
		t.Error("Expected error for unknown period")
	}
}
