// Package dates содержит вспомогательные функции для сравнения по
// календарной дате. Всё ядро сравнивает даты без учёта времени суток:
// fecha_fin == сегодня считается ещё действующей.
package dates

import "time"

// Layout — формат календарной даты для SQL-параметров и JSON-запросов.
const Layout = "2006-01-02"

// Only приводит момент к его календарной дате в собственной зоне значения
// и возвращает её полуночью UTC. Колонки DATE сканируются из базы
// полуночью UTC, а now() живёт в зоне процесса; нормализация к общему
// кадру делает сравнение двух Only сравнением календарных дат.
func Only(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// OnOrBefore сообщает, что дата a не позже даты b (по календарным дням).
func OnOrBefore(a, b time.Time) bool {
	return !Only(a).After(Only(b))
}

// Format возвращает календарную дату момента строкой в формате Layout.
func Format(t time.Time) string {
	return Only(t).Format(Layout)
}
