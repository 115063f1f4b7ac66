package timefmt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"minutes only", 45 * time.Minute, "45m"},
		{"zero", 0, "0m"},
		{"hours and minutes", 2*time.Hour + 5*time.Minute, "2h 5m"},
		{"exactly one hour", time.Hour, "1h 0m"},
		{"days", 26*time.Hour + 30*time.Minute, "1d 2h 30m"},
		{"seconds truncate", 45*time.Minute + 59*time.Second, "45m"},
		{"exactly one day", 24 * time.Hour, "1d 0h 0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Duration(tt.d))
		})
	}
}

func TestTimestamp(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, "2024-01-15 09:30:05 UTC", Timestamp(ts))
}

func TestClock(t *testing.T) {
	ts := time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "09:05", Clock(ts))
}
