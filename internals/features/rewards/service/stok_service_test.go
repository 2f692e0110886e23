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

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Sembako{}, &model.StokSembako{}))
	return db
}

func seedStok(t *testing.T, db *gorm.DB, sembakoID, posID uuid.UUID, jumlah int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.StokSembako{
		StokSembakoSembakoID: sembakoID,
		StokSembakoPosID:     posID,
		StokSembakoJumlah:    jumlah,
	}).Error)
}

func jumlahDiPos(t *testing.T, db *gorm.DB, sembakoID, posID uuid.UUID) int64 {
	t.Helper()
	svc := service.NewStokService()
	n, err := svc.JumlahDiPos(db, sembakoID, posID)
	require.NoError(t, err)
	return n
}

func TestStok_ReserveMengurangiJumlah(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID, posID := uuid.New(), uuid.New()
	seedStok(t, db, sembakoID, posID, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, sembakoID, posID, 2)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), jumlahDiPos(t, db, sembakoID, posID))
}

func TestStok_ReserveMelebihiStokDitolakTanpaEfek(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID, posID := uuid.New(), uuid.New()
	seedStok(t, db, sembakoID, posID, 3)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, sembakoID, posID, 4)
	})

	var stokErr *service.InsufficientStockError
	require.ErrorAs(t, err, &stokErr)
	assert.Equal(t, int64(3), stokErr.Tersedia)
	assert.Equal(t, int64(4), stokErr.Diminta)
	assert.Equal(t, int64(3), jumlahDiPos(t, db, sembakoID, posID))
}

func TestStok_ReserveTanpaBarisStok(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, uuid.New(), uuid.New(), 1)
	})

	var stokErr *service.InsufficientStockError
	require.ErrorAs(t, err, &stokErr)
	assert.Equal(t, int64(0), stokErr.Tersedia)
}

func TestStok_DuaReservasiGabunganMelebihiKapasitas(t *testing.T) {
	// gabungan 3+3 > 5: yang pertama lolos, yang kedua InsufficientStock,
	// sisa stok persis 2
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID, posID := uuid.New(), uuid.New()
	seedStok(t, db, sembakoID, posID, 5)

	err1 := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, sembakoID, posID, 3)
	})
	err2 := db.Transaction(func(tx *gorm.DB) error {
		return svc.Reserve(tx, sembakoID, posID, 3)
	})

	require.NoError(t, err1)
	var stokErr *service.InsufficientStockError
	require.ErrorAs(t, err2, &stokErr)
	assert.Equal(t, int64(2), jumlahDiPos(t, db, sembakoID, posID))
}

func TestStok_ReleaseMengembalikanJumlah(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID, posID := uuid.New(), uuid.New()
	seedStok(t, db, sembakoID, posID, 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(tx, sembakoID, posID, 4)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), jumlahDiPos(t, db, sembakoID, posID))
}

func TestStok_ReleaseTanpaBarisMembuatBaris(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID, posID := uuid.New(), uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Release(tx, sembakoID, posID, 2)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), jumlahDiPos(t, db, sembakoID, posID))
}

func TestStok_AdjustSetAbsolut(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID, posID := uuid.New(), uuid.New()
	seedStok(t, db, sembakoID, posID, 10)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(tx, sembakoID, posID, 4)
	}))
	assert.Equal(t, int64(4), jumlahDiPos(t, db, sembakoID, posID))

	// upsert: pasangan baru langsung dibuat
	sembako2 := uuid.New()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(tx, sembako2, posID, 7)
	}))
	assert.Equal(t, int64(7), jumlahDiPos(t, db, sembako2, posID))
}

func TestStok_AdjustNegatifDitolak(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Adjust(tx, uuid.New(), uuid.New(), -1)
	})
	assert.ErrorIs(t, err, service.ErrNegativeStock)
}

func TestStok_TotalAcrossPos(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewStokService()
	sembakoID := uuid.New()
	seedStok(t, db, sembakoID, uuid.New(), 3)
	seedStok(t, db, sembakoID, uuid.New(), 7)
	seedStok(t, db, uuid.New(), uuid.New(), 100) // sembako lain, tidak ikut

	total, err := svc.TotalAcrossPos(db, sembakoID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}
