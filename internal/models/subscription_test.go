package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jgefitrack/backend/internal/models"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		stored  string
		endDate time.Time
		want    string
	}{
		{"cancelada перекрывает будущую дату", models.StatusCanceled, today.AddDate(0, 1, 0), models.StatusCanceled},
		{"cancelada перекрывает прошедшую дату", models.StatusCanceled, today.AddDate(0, -1, 0), models.StatusCanceled},
		{"fecha_fin в будущем", models.StatusActive, today.AddDate(0, 0, 10), models.StatusActive},
		{"fecha_fin сегодня — ещё активна", models.StatusActive, today, models.StatusActive},
		{"fecha_fin вчера", models.StatusActive, today.AddDate(0, 0, -1), models.StatusExpired},
		{"хранимый статус vencida не мешает датам", models.StatusExpired, today.AddDate(0, 0, 5), models.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := models.Subscription{Status: tt.stored, EndDate: tt.endDate}
			assert.Equal(t, tt.want, sub.EffectiveStatus(now))
		})
	}
}

func TestEffectiveStatus_LastDayInWesternZone(t *testing.T) {
	// fecha_fin сканируется из колонки DATE полуночью UTC, а now() живёт
	// в зоне процесса. Утро последнего дня западнее UTC — запись ещё активна.
	montevideo := time.FixedZone("UTC-3", -3*3600)
	sub := models.Subscription{
		Status:  models.StatusActive,
		EndDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, montevideo)

	assert.Equal(t, models.StatusActive, sub.EffectiveStatus(now))
}
