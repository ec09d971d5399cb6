// Package repository реализует хранилище данных на основе PostgreSQL
// для аккаунтов профессоров и журнала оплат подписок. Предоставляет методы
// создания, чтения, обновления и удаления записей, точечные запросы
// жизненного цикла доступа и транзакции с блокировкой строки арендатора.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// querier — общий срез методов *sql.DB и *sql.Tx, чтобы запросы
// одинаково работали внутри и вне транзакции.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries содержит все запросы хранилища поверх querier.
type Queries struct {
	db querier
}

// Storage инкапсулирует соединение с PostgreSQL. Запросы без транзакции
// доступны через встроенный Queries.
type Storage struct {
	DB *sql.DB
	*Queries
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "repository.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewFromDB(db), nil
}

// NewFromDB оборачивает готовое соединение. Используется в тестах.
func NewFromDB(db *sql.DB) *Storage {
	return &Storage{
		DB:      db,
		Queries: &Queries{db: db},
	}
}

// CheckDatabaseReady проверяет готовность базы данных.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'clientes'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table clientes missing or query error: %w", err)
	}
	return nil
}

// WithTenantTx выполняет fn внутри одной транзакции. Последовательность
// чтение-решение-запись для одного арендатора сериализуется блокировкой
// его строки через GetTenantForUpdate, которую fn обязан вызвать первой.
// Любая ошибка откатывает транзакцию целиком, частичных обновлений
// флагов не бывает.
func (s *Storage) WithTenantTx(ctx context.Context, fn func(q *Queries) error) error {
	const op = "repository.WithTenantTx"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(&Queries{db: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
