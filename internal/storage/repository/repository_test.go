package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgefitrack/backend/internal/models"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

var subscriptionCols = []string{"id", "id_cliente", "fecha_inicio", "fecha_fin", "estado", "monto", "metodo_pago", "comprobante", "notas"}

func TestFindBestActive(t *testing.T) {
	t.Run("возвращает nil без ошибки когда записей нет", func(t *testing.T) {
		db, mockDB, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mockDB.ExpectQuery("FROM pagos_suscripciones").
			WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(subscriptionCols))

		storage := NewFromDB(db)
		sub, err := storage.FindBestActive(context.Background(), 42, testNow)
		require.NoError(t, err)
		assert.Nil(t, sub)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("срез по календарной дате не зависит от зоны процесса", func(t *testing.T) {
		db, mockDB, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		montevideo := time.FixedZone("UTC-3", -3*3600)
		localEvening := time.Date(2026, 9, 1, 22, 15, 0, 0, montevideo)

		mockDB.ExpectQuery("FROM pagos_suscripciones").
			WithArgs(42, models.StatusCanceled, "2026-09-01").
			WillReturnRows(sqlmock.NewRows(subscriptionCols))

		storage := NewFromDB(db)
		_, err = storage.FindBestActive(context.Background(), 42, localEvening)
		require.NoError(t, err)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("возвращает запись с самой поздней fecha_fin", func(t *testing.T) {
		db, mockDB, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		future := testNow.AddDate(0, 2, 0)
		mockDB.ExpectQuery("FROM pagos_suscripciones").
			WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(subscriptionCols).
				AddRow(9, 42, testNow, future, models.StatusActive,
					1500.0, "transferencia", "rec-9", "nota"))

		storage := NewFromDB(db)
		sub, err := storage.FindBestActive(context.Background(), 42, testNow)
		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, 9, sub.ID)
		assert.Equal(t, "rec-9", sub.Receipt)

		assert.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestUpdateTenantFlags_NotFound(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB.ExpectExec("UPDATE clientes SET activo").
		WithArgs(false, false, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	storage := NewFromDB(db)
	err = storage.UpdateTenantFlags(context.Background(), 99, false, false)
	require.ErrorIs(t, err, models.ErrTenantNotFound)
}

func TestWithTenantTx_RollsBackOnError(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("FOR UPDATE").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "dni", "nombre", "email", "rol", "activo", "en_prueba", "fecha_prueba_fin", "fecha_registro"}))
	mockDB.ExpectRollback()

	storage := NewFromDB(db)
	err = storage.WithTenantTx(context.Background(), func(q *Queries) error {
		_, err := q.GetTenantForUpdate(context.Background(), 99)
		return err
	})
	require.ErrorIs(t, err, models.ErrTenantNotFound)

	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestExpireStaleSubscriptions(t *testing.T) {
	db, mockDB, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB.ExpectExec("UPDATE pagos_suscripciones").
		WithArgs(models.StatusExpired, 42, models.StatusActive, "2026-09-01").
		WillReturnResult(sqlmock.NewResult(0, 3))

	storage := NewFromDB(db)
	n, err := storage.ExpireStaleSubscriptions(context.Background(), 42, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
