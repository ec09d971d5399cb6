package access

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgefitrack/backend/internal/models"
	"github.com/jgefitrack/backend/internal/storage/repository"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func fixedNow() time.Time { return testNow }

var tenantCols = []string{"id", "dni", "nombre", "email", "rol", "activo", "en_prueba", "fecha_prueba_fin", "fecha_registro"}

var subscriptionCols = []string{"id", "id_cliente", "fecha_inicio", "fecha_fin", "estado", "monto", "metodo_pago", "comprobante", "notas"}

func tenantRow(active, onTrial bool, trialEnd any) *sqlmock.Rows {
	return sqlmock.NewRows(tenantCols).
		AddRow(42, "12345678", "Juan Perez", "juan@example.com", models.RoleProfessor,
			active, onTrial, trialEnd, testNow.AddDate(0, -2, 0))
}

func subscriptionRow(endDate time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(subscriptionCols).
		AddRow(5, 42, endDate.AddDate(0, -1, 0), endDate, models.StatusActive,
			1500.0, "transferencia", "", "")
}

func TestAuthorize(t *testing.T) {
	trialFuture := testNow.AddDate(0, 0, 10)
	trialPast := testNow.AddDate(0, 0, -5)

	tests := []struct {
		name            string
		setupMock       func(m sqlmock.Sqlmock)
		wantAllowed     bool
		wantReason      error
		wantCorrections *models.TenantFlags
		wantErr         error
	}{
		{
			name: "активная подписка без пробного периода",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FROM clientes WHERE id = (.+) FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(subscriptionRow(testNow.AddDate(0, 1, 0)))
				m.ExpectCommit()
			},
			wantAllowed: true,
		},
		{
			name: "аккаунт отключён",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(false, false, nil))
				m.ExpectCommit()
			},
			wantAllowed: false,
			wantReason:  models.ErrAccountDisabled,
		},
		{
			name: "действующий пробный период, без обращения к журналу",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, true, trialFuture))
				m.ExpectCommit()
			},
			wantAllowed: true,
		},
		{
			name: "пробный период истёк и оплат нет",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, true, trialPast))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(false, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
			wantAllowed:     false,
			wantReason:      models.ErrTrialExpired,
			wantCorrections: &models.TenantFlags{Active: false, OnTrial: false},
		},
		{
			name: "пробный период истёк, но подписка действует",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, true, trialPast))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(subscriptionRow(testNow.AddDate(0, 1, 0)))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(true, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
			wantAllowed:     true,
			wantCorrections: &models.TenantFlags{Active: true, OnTrial: false},
		},
		{
			name: "подписка истекла после пробного периода",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(tenantRow(true, false, nil))
				m.ExpectQuery("FROM pagos_suscripciones").
					WithArgs(42, models.StatusCanceled, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows(subscriptionCols))
				m.ExpectExec("UPDATE clientes SET activo").
					WithArgs(false, false, 42).
					WillReturnResult(sqlmock.NewResult(0, 1))
				m.ExpectCommit()
			},
			wantAllowed:     false,
			wantReason:      models.ErrSubscriptionExpired,
			wantCorrections: &models.TenantFlags{Active: false, OnTrial: false},
		},
		{
			name: "профессор не найден",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectQuery("FOR UPDATE").
					WithArgs(42).
					WillReturnRows(sqlmock.NewRows(tenantCols))
				m.ExpectRollback()
			},
			wantErr: models.ErrTenantNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mockDB, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mockDB)

			service := New(repository.NewFromDB(db), newNoopLogger(), fixedNow)
			decision, err := service.Authorize(context.Background(), 42)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, decision)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAllowed, decision.Allowed)
				assert.Equal(t, tt.wantReason, decision.Reason)
				assert.Equal(t, tt.wantCorrections, decision.Corrections)
			}

			assert.NoError(t, mockDB.ExpectationsWereMet())
		})
	}
}
