package dates_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jgefitrack/backend/internal/lib/dates"
)

func TestOnly_DropsTimeOfDay(t *testing.T) {
	ts := time.Date(2025, 3, 14, 23, 59, 58, 123, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), dates.Only(ts))
}

func TestOnly_NormalizesZoneToCalendarDate(t *testing.T) {
	// Колонка DATE сканируется полуночью UTC, now() живёт в зоне процесса.
	// Один и тот же календарный день обязан давать одинаковый Only.
	montevideo := time.FixedZone("UTC-3", -3*3600)
	fromColumn := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	localMorning := time.Date(2026, 9, 1, 10, 0, 0, 0, montevideo)

	assert.Equal(t, dates.Only(fromColumn), dates.Only(localMorning))
	assert.True(t, dates.OnOrBefore(localMorning, fromColumn))
}

func TestFormat(t *testing.T) {
	montevideo := time.FixedZone("UTC-3", -3*3600)
	assert.Equal(t, "2026-09-01", dates.Format(time.Date(2026, 9, 1, 22, 15, 0, 0, montevideo)))
}

func TestOnOrBefore(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b time.Time
		want bool
	}{
		{"раньше", day, day.AddDate(0, 0, 1), true},
		{"тот же день, разное время суток", day.Add(23 * time.Hour), day, true},
		{"позже", day.AddDate(0, 0, 1), day, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dates.OnOrBefore(tt.a, tt.b))
		})
	}
}
