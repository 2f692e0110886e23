package service_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/service"
	memberModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	posModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&posModel.Pos{},
		&memberModel.Nasabah{},
		&model.KategoriSampah{},
		&model.Setoran{},
		&model.SetoranDetail{},
	))
	return db
}

func newSetoranService(db *gorm.DB) *service.SetoranService {
	return service.NewSetoranService(db, memberService.NewLedger())
}

func seedPos(t *testing.T, db *gorm.DB, kode string) uuid.UUID {
	t.Helper()
	pos := posModel.Pos{PosNama: "Pos " + kode, PosKode: kode}
	require.NoError(t, db.Create(&pos).Error)
	return pos.PosID
}

func seedNasabah(t *testing.T, db *gorm.DB, saldo int64) uuid.UUID {
	t.Helper()
	n := memberModel.Nasabah{NasabahNama: "Bu Siti", NasabahSaldoPoin: saldo}
	require.NoError(t, db.Create(&n).Error)
	return n.NasabahID
}

func seedKategori(t *testing.T, db *gorm.DB, nama string, poinPerKg int64) uuid.UUID {
	t.Helper()
	k := model.KategoriSampah{KategoriSampahNama: nama, KategoriSampahPoinPerKg: poinPerKg}
	require.NoError(t, db.Create(&k).Error)
	return k.KategoriSampahID
}

func saldoNasabah(t *testing.T, db *gorm.DB, id uuid.UUID) int64 {
	t.Helper()
	var n memberModel.Nasabah
	require.NoError(t, db.First(&n, "nasabah_id = ?", id).Error)
	return n.NasabahSaldoPoin
}

func TestSetoran_RecordDepositKreditPoin(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)
	svc.Clock = func() time.Time {
		return time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC)
	}

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	plastik := seedKategori(t, db, "Plastik", 100)
	kertas := seedKategori(t, db, "Kertas", 50)

	setoran, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{
		{KategoriID: plastik, Berat: 2.5}, // 250
		{KategoriID: kertas, Berat: 1.2},  // 60
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "STR-26021801001", setoran.SetoranKode)
	assert.Equal(t, model.SetoranStatusSelesai, setoran.SetoranStatus)
	assert.InDelta(t, 3.7, setoran.SetoranTotalBerat, 0.001)
	assert.Equal(t, int64(310), setoran.SetoranTotalPoin)
	assert.Len(t, setoran.SetoranDetails, 2)
	assert.Equal(t, int64(310), saldoNasabah(t, db, nasabahID))

	// tarif dibekukan di detail
	for _, d := range setoran.SetoranDetails {
		if d.SetoranDetailKategoriID == plastik {
			assert.Equal(t, int64(100), d.SetoranDetailPoinPerKg)
			assert.Equal(t, int64(250), d.SetoranDetailSubtotal)
		}
	}
}

func TestSetoran_SubtotalDibulatkan(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	kategori := seedKategori(t, db, "Kaca", 30) // 30 * 1.25 = 37.5 → 38

	setoran, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{
		{KategoriID: kategori, Berat: 1.25},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(38), setoran.SetoranTotalPoin)
}

func TestSetoran_KategoriTidakAdaBatalkanSemua(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	plastik := seedKategori(t, db, "Plastik", 100)
	hantu := uuid.New()

	_, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{
		{KategoriID: plastik, Berat: 2},
		{KategoriID: hantu, Berat: 1},
	}, nil)

	var katErr *service.InvalidCategoryError
	require.ErrorAs(t, err, &katErr)
	assert.Equal(t, hantu, katErr.KategoriID)

	// baris valid pun tidak boleh tersisa
	assert.Equal(t, int64(0), saldoNasabah(t, db, nasabahID))
	var count int64
	require.NoError(t, db.Model(&model.Setoran{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestSetoran_BeratNolDitolak(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	kategori := seedKategori(t, db, "Plastik", 100)

	_, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{
		{KategoriID: kategori, Berat: 0},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "berat")
}

func TestSetoran_KodeBerurutanPerHari(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)
	svc.Clock = func() time.Time {
		return time.Date(2026, 2, 18, 9, 0, 0, 0, time.UTC)
	}

	posID := seedPos(t, db, "03")
	nasabahID := seedNasabah(t, db, 0)
	kategori := seedKategori(t, db, "Plastik", 100)

	s1, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{{KategoriID: kategori, Berat: 1}}, nil)
	require.NoError(t, err)
	s2, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{{KategoriID: kategori, Berat: 1}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "STR-26021803001", s1.SetoranKode)
	assert.Equal(t, "STR-26021803002", s2.SetoranKode)
	assert.True(t, strings.HasPrefix(s2.SetoranKode, "STR-260218"))
}

func TestSetoran_SetStatusBatalkanDebitPoin(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	kategori := seedKategori(t, db, "Plastik", 100)

	setoran, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{{KategoriID: kategori, Berat: 3}}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(300), saldoNasabah(t, db, nasabahID))

	updated, err := svc.SetStatus(setoran.SetoranID, model.SetoranStatusDibatalkan)
	require.NoError(t, err)
	assert.Equal(t, model.SetoranStatusDibatalkan, updated.SetoranStatus)
	assert.Equal(t, int64(0), saldoNasabah(t, db, nasabahID))

	// pulihkan lagi: kredit ulang
	updated, err = svc.SetStatus(setoran.SetoranID, model.SetoranStatusSelesai)
	require.NoError(t, err)
	assert.Equal(t, model.SetoranStatusSelesai, updated.SetoranStatus)
	assert.Equal(t, int64(300), saldoNasabah(t, db, nasabahID))
}

func TestSetoran_SetStatusSamaTidakDobel(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	kategori := seedKategori(t, db, "Plastik", 100)

	setoran, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{{KategoriID: kategori, Berat: 2}}, nil)
	require.NoError(t, err)

	_, err = svc.SetStatus(setoran.SetoranID, model.SetoranStatusSelesai)
	require.NoError(t, err)
	assert.Equal(t, int64(200), saldoNasabah(t, db, nasabahID))
}

func TestSetoran_BatalkanGagalSaldoSudahTerpakai(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)
	ledger := memberService.NewLedger()

	posID := seedPos(t, db, "01")
	nasabahID := seedNasabah(t, db, 0)
	kategori := seedKategori(t, db, "Plastik", 100)

	setoran, err := svc.RecordDeposit(nasabahID, uuid.New(), posID, []service.SetoranLine{{KategoriID: kategori, Berat: 2}}, nil)
	require.NoError(t, err)

	// nasabah sudah membelanjakan sebagian poin
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return ledger.Debit(tx, nasabahID, 150)
	}))

	_, err = svc.SetStatus(setoran.SetoranID, model.SetoranStatusDibatalkan)
	var saldoErr *memberService.InsufficientBalanceError
	require.ErrorAs(t, err, &saldoErr)

	// status dan saldo tidak berubah
	assert.Equal(t, int64(50), saldoNasabah(t, db, nasabahID))
	var ulang model.Setoran
	require.NoError(t, db.First(&ulang, "setoran_id = ?", setoran.SetoranID).Error)
	assert.Equal(t, model.SetoranStatusSelesai, ulang.SetoranStatus)
}

func TestSetoran_SetStatusTidakDikenal(t *testing.T) {
	db := newTestDB(t)
	svc := newSetoranService(db)

	_, err := svc.SetStatus(uuid.New(), model.SetoranStatus("hilang"))
	assert.ErrorIs(t, err, service.ErrInvalidStatus)
}
