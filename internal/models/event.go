package models

import "time"

// Типы событий жизненного цикла доступа, публикуемых в RabbitMQ
// для внешнего сервиса уведомлений.
const (
	EventTenantReactivated = "tenant.reactivated"
	EventTenantDeactivated = "tenant.deactivated"
)

// LifecycleEvent — сообщение о переходе флагов доступа профессора.
type LifecycleEvent struct {
	EventID    string    `json:"event_id"`
	TenantID   int       `json:"tenant_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
}
