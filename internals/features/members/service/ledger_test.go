package service_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Nasabah{}))
	return db
}

func newNasabah(t *testing.T, db *gorm.DB, saldo int64) uuid.UUID {
	t.Helper()
	nasabah := model.Nasabah{NasabahNama: "Bu Siti", NasabahSaldoPoin: saldo}
	require.NoError(t, db.Create(&nasabah).Error)
	return nasabah.NasabahID
}

func TestLedger_CreditMenambahSaldo(t *testing.T) {
	db := newTestDB(t)
	ledger := service.NewLedger()
	id := newNasabah(t, db, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Credit(tx, id, 250)
	})
	require.NoError(t, err)

	saldo, err := ledger.Saldo(db, id)
	require.NoError(t, err)
	assert.Equal(t, int64(350), saldo)
}

func TestLedger_CreditJumlahNolDitolak(t *testing.T) {
	db := newTestDB(t)
	ledger := service.NewLedger()
	id := newNasabah(t, db, 100)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Credit(tx, id, 0)
	})
	assert.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestLedger_DebitSaldoCukup(t *testing.T) {
	db := newTestDB(t)
	ledger := service.NewLedger()
	id := newNasabah(t, db, 1000)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Debit(tx, id, 600)
	})
	require.NoError(t, err)

	saldo, _ := ledger.Saldo(db, id)
	assert.Equal(t, int64(400), saldo)
}

func TestLedger_DebitSaldoKurangDitolakTanpaEfek(t *testing.T) {
	db := newTestDB(t)
	ledger := service.NewLedger()
	id := newNasabah(t, db, 500)

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Debit(tx, id, 501)
	})

	var saldoErr *service.InsufficientBalanceError
	require.ErrorAs(t, err, &saldoErr)
	assert.Equal(t, int64(500), saldoErr.Saldo)
	assert.Equal(t, int64(501), saldoErr.Dibutuhkan)

	// saldo tidak berubah
	saldo, _ := ledger.Saldo(db, id)
	assert.Equal(t, int64(500), saldo)
}

func TestLedger_SaldoTidakPernahNegatif(t *testing.T) {
	db := newTestDB(t)
	ledger := service.NewLedger()
	id := newNasabah(t, db, 0)

	ops := []struct {
		credit bool
		jumlah int64
	}{
		{true, 300}, {false, 100}, {false, 250}, {true, 50}, {false, 300}, {false, 1},
	}

	for _, op := range ops {
		_ = db.Transaction(func(tx *gorm.DB) error {
			if op.credit {
				return ledger.Credit(tx, id, op.jumlah)
			}
			return ledger.Debit(tx, id, op.jumlah)
		})
		saldo, err := ledger.Saldo(db, id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, saldo, int64(0))
	}
}

func TestLedger_DebitNasabahTidakAda(t *testing.T) {
	db := newTestDB(t)
	ledger := service.NewLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Debit(tx, uuid.New(), 10)
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
