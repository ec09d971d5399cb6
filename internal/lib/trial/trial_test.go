package trial_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jgefitrack/backend/internal/lib/trial"
	"github.com/jgefitrack/backend/internal/models"
)

func TestExpiry(t *testing.T) {
	start := time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), trial.Expiry(start, 30))
}

func TestValid(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	past := end.AddDate(0, 0, -1)

	tests := []struct {
		name   string
		tenant models.Tenant
		want   bool
	}{
		{"окно действует, последний день включён", models.Tenant{OnTrial: true, TrialEndsAt: &end}, true},
		{"окно истекло вчера", models.Tenant{OnTrial: true, TrialEndsAt: &past}, false},
		{"флаг снят", models.Tenant{OnTrial: false, TrialEndsAt: &end}, false},
		{"дата окончания отсутствует", models.Tenant{OnTrial: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trial.Valid(&tt.tenant, now))
		})
	}
}

func TestValid_LastDayInWesternZone(t *testing.T) {
	// Дата окончания хранится полуночью UTC; утро последнего дня в зоне
	// западнее UTC всё ещё внутри окна.
	montevideo := time.FixedZone("UTC-3", -3*3600)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, montevideo)

	assert.True(t, trial.Valid(&models.Tenant{OnTrial: true, TrialEndsAt: &end}, now))
}
