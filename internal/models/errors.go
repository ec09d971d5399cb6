package models

import "errors"

// Доменные ошибки ядра управления доступом. Возвращаются сервисами как
// ожидаемые типизированные исходы; HTTP-слой сопоставляет их через
// errors.Is и отдаёт пользователю конкретную причину отказа.
var (
	// ErrTenantNotFound — профессор не найден. После успешной проверки
	// учётных данных в норме не возникает.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrAccountDisabled — аккаунт отключён административно или ядром.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTrialExpired — пробный период истёк и активной подписки нет.
	ErrTrialExpired = errors.New("trial expired and no active subscription")
	// ErrSubscriptionExpired — подписка истекла после пробного периода.
	ErrSubscriptionExpired = errors.New("subscription expired")
	// ErrValidation — некорректные даты, сумма или срок продления.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound — запись журнала оплат не найдена при правке/удалении.
	ErrNotFound = errors.New("record not found")
)
