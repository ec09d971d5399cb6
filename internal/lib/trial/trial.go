// Package trial содержит чистые функции пробного периода: расчёт даты
// окончания и проверку действительности окна относительно переданного
// момента времени.
package trial

import (
	"time"

	"github.com/jgefitrack/backend/internal/lib/dates"
	"github.com/jgefitrack/backend/internal/models"
)

// Expiry возвращает дату окончания пробного периода: start + days
// календарных дней, без поправок на часовой пояс сверх точности даты.
func Expiry(start time.Time, days int) time.Time {
	return dates.Only(start).AddDate(0, 0, days)
}

// Valid сообщает, покрывает ли пробный период момент now.
// Последний день окна включается.
func Valid(t *models.Tenant, now time.Time) bool {
	return t.OnTrial && t.TrialEndsAt != nil && dates.OnOrBefore(now, *t.TrialEndsAt)
}
