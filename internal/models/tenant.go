// Package models содержит доменные модели аккаунтов-профессоров и записей
// оплат подписки, а также вспомогательные структуры для приёма данных из
// JSON-запросов административной консоли.
package models

import "time"

// RoleProfessor — роль арендатора, доступ которой управляется ядром.
// Остальные роли (admin) минуют проверку доступа полностью.
const RoleProfessor = "profesor"

// Tenant представляет аккаунт профессора. Флаги Active и OnTrial —
// денормализованное состояние доступа, которое ядро держит согласованным
// с журналом оплат и пробным периодом.
type Tenant struct {
	ID           int        `json:"id"`
	DNI          string     `json:"dni"`
	Name         string     `json:"nombre"`
	Email        string     `json:"email"`
	Role         string     `json:"rol"`
	Active       bool       `json:"activo"`
	OnTrial      bool       `json:"en_prueba"`
	TrialEndsAt  *time.Time `json:"fecha_prueba_fin,omitempty"` // non-nil whenever OnTrial is true
	RegisteredAt time.Time  `json:"fecha_registro"`
}

// TenantFlags — пара денормализованных флагов доступа. Используется как
// результат Access Gate, чтобы применённые на пути чтения коррекции были
// видимы вызывающему коду.
type TenantFlags struct {
	Active  bool `json:"activo"`
	OnTrial bool `json:"en_prueba"`
}

// TenantStats — агрегаты по профессорам для административной панели.
type TenantStats struct {
	Total    int `json:"total"`
	Active   int `json:"activos"`
	OnTrial  int `json:"en_prueba"`
	Disabled int `json:"inactivos"`
}

// DummyTenant используется для приёма данных регистрации профессора
// из JSON-запроса до их валидации.
type DummyTenant struct {
	DNI   string `json:"dni" validate:"required"`
	Name  string `json:"nombre" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// DummyTrialExtension — параметры продления пробного периода.
type DummyTrialExtension struct {
	Days int `json:"dias" validate:"required,gt=0"`
}

// DummyToggle — параметры административного переключения флага Active.
// Указатель, чтобы отличать явный false от отсутствия поля.
type DummyToggle struct {
	Active *bool `json:"activo" validate:"required"`
}
