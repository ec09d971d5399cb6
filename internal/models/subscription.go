package models

import (
	"time"

	"github.com/jgefitrack/backend/internal/lib/dates"
)

// Значения хранимого статуса записи оплаты. Совпадают с тем,
// что исторически лежит в колонке estado.
const (
	StatusActive   = "activa"
	StatusExpired  = "vencida"
	StatusCanceled = "cancelada"
)

// Subscription представляет одну запись журнала оплат подписки профессора.
// Status — кэш последнего административного решения; для решений о доступе
// используется только EffectiveStatus.
type Subscription struct {
	ID            int       `json:"id"`
	TenantID      int       `json:"id_cliente"`
	StartDate     time.Time `json:"fecha_inicio"`
	EndDate       time.Time `json:"fecha_fin"`
	Status        string    `json:"estado"`
	Amount        float64   `json:"monto"`
	PaymentMethod string    `json:"metodo_pago"`
	Receipt       string    `json:"comprobante,omitempty"`
	Notes         string    `json:"notas,omitempty"`
}

// EffectiveStatus возвращает вычисленный статус записи на момент now.
// Cancelada — липкий статус (решение человека, датами не перекрывается);
// иначе запись активна, пока fecha_fin >= сегодняшней даты (включительно).
func (s *Subscription) EffectiveStatus(now time.Time) string {
	if s.Status == StatusCanceled {
		return StatusCanceled
	}
	if !dates.Only(s.EndDate).Before(dates.Only(now)) {
		return StatusActive
	}
	return StatusExpired
}

// ActiveSubscription — ответ на запрос определяющей записи профессора.
// Active вычисляется по EffectiveStatus на момент запроса.
type ActiveSubscription struct {
	Active bool          `json:"activa"`
	Record *Subscription `json:"registro,omitempty"`
}

// DummySubscription используется для приёма данных записи оплаты из
// JSON-запроса. Даты приходят строками в формате 2006-01-02.
type DummySubscription struct {
	TenantID      int     `json:"id_cliente" validate:"required"`
	StartDate     string  `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	EndDate       string  `json:"fecha_fin" validate:"required,datetime=2006-01-02"`
	Status        string  `json:"estado" validate:"required,oneof=activa vencida cancelada"`
	Amount        float64 `json:"monto" validate:"required,gt=0"`
	PaymentMethod string  `json:"metodo_pago" validate:"required"`
	Receipt       string  `json:"comprobante,omitempty" validate:"omitempty"`
	Notes         string  `json:"notas,omitempty" validate:"omitempty"`
}

// DummySubscriptionUpdate — поля административной правки записи.
// TenantID не меняется: запись не переносится между профессорами.
type DummySubscriptionUpdate struct {
	StartDate     string  `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	EndDate       string  `json:"fecha_fin" validate:"required,datetime=2006-01-02"`
	Status        string  `json:"estado" validate:"required,oneof=activa vencida cancelada"`
	Amount        float64 `json:"monto" validate:"required,gt=0"`
	PaymentMethod string  `json:"metodo_pago" validate:"required"`
	Receipt       string  `json:"comprobante,omitempty" validate:"omitempty"`
	Notes         string  `json:"notas,omitempty" validate:"omitempty"`
}
