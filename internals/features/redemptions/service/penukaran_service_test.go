package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	memberModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	posModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/service"
	rewardModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/model"
	rewardService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
)

type fixture struct {
	db  *gorm.DB
	svc *service.PenukaranService

	posID     uuid.UUID
	nasabahID uuid.UUID
	berasID   uuid.UUID
	minyakID  uuid.UUID
}

// newFixture menyiapkan satu pos kode "02", nasabah bersaldo 1000, beras
// (100 poin, stok 10) dan minyak (250 poin, stok 2) di pos itu.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&posModel.Pos{},
		&memberModel.Nasabah{},
		&rewardModel.Sembako{},
		&rewardModel.StokSembako{},
		&model.Penukaran{},
		&model.PenukaranDetail{},
	))

	pos := posModel.Pos{PosNama: "Pos Kabta Timur", PosKode: "02"}
	require.NoError(t, db.Create(&pos).Error)

	nasabah := memberModel.Nasabah{NasabahNama: "Pak Budi", NasabahSaldoPoin: 1000}
	require.NoError(t, db.Create(&nasabah).Error)

	beras := rewardModel.Sembako{SembakoNama: "Beras 5kg", SembakoPoinTukar: 100}
	minyak := rewardModel.Sembako{SembakoNama: "Minyak Goreng 1L", SembakoPoinTukar: 250}
	require.NoError(t, db.Create(&beras).Error)
	require.NoError(t, db.Create(&minyak).Error)

	require.NoError(t, db.Create(&rewardModel.StokSembako{
		StokSembakoSembakoID: beras.SembakoID,
		StokSembakoPosID:     pos.PosID,
		StokSembakoJumlah:    10,
	}).Error)
	require.NoError(t, db.Create(&rewardModel.StokSembako{
		StokSembakoSembakoID: minyak.SembakoID,
		StokSembakoPosID:     pos.PosID,
		StokSembakoJumlah:    2,
	}).Error)

	svc := service.NewPenukaranService(db, memberService.NewLedger(), rewardService.NewStokService(), 24*time.Hour)
	svc.Clock = func() time.Time {
		return time.Date(2026, 2, 18, 10, 0, 0, 0, time.UTC)
	}

	return &fixture{
		db:        db,
		svc:       svc,
		posID:     pos.PosID,
		nasabahID: nasabah.NasabahID,
		berasID:   beras.SembakoID,
		minyakID:  minyak.SembakoID,
	}
}

func (f *fixture) saldo(t *testing.T) int64 {
	t.Helper()
	var n memberModel.Nasabah
	require.NoError(t, f.db.First(&n, "nasabah_id = ?", f.nasabahID).Error)
	return n.NasabahSaldoPoin
}

func (f *fixture) stok(t *testing.T, sembakoID uuid.UUID) int64 {
	t.Helper()
	n, err := f.svc.Stok.JumlahDiPos(f.db, sembakoID, f.posID)
	require.NoError(t, err)
	return n
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *model.Penukaran {
	t.Helper()
	p, err := f.svc.GetByID(id)
	require.NoError(t, err)
	return p
}

func TestPenukaran_CheckoutDebitPoinTanpaReservasi(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: f.berasID, Jumlah: 2},
		{SembakoID: f.minyakID, Jumlah: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, model.PenukaranStatusMenunggu, p.PenukaranStatus)
	assert.Equal(t, int64(450), p.PenukaranTotalPoin)
	assert.Len(t, p.PenukaranDetails, 2)
	assert.Nil(t, p.PenukaranExpiredAt)

	// poin langsung terkunci, stok belum berkurang
	assert.Equal(t, int64(550), f.saldo(t))
	assert.Equal(t, int64(10), f.stok(t, f.berasID))
	assert.Equal(t, int64(2), f.stok(t, f.minyakID))

	// harga poin dibekukan per baris
	for _, d := range p.PenukaranDetails {
		if d.PenukaranDetailSembakoID == f.minyakID {
			assert.Equal(t, int64(250), d.PenukaranDetailPoinSatuan)
			assert.Equal(t, int64(250), d.PenukaranDetailSubtotal)
		}
	}
}

func TestPenukaran_CheckoutSaldoKurangDitolakBersih(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: f.minyakID, Jumlah: 2},
		{SembakoID: f.berasID, Jumlah: 6}, // 500 + 600 > 1000
	})

	var saldoErr *memberService.InsufficientBalanceError
	require.ErrorAs(t, err, &saldoErr)
	assert.Equal(t, int64(1000), saldoErr.Saldo)
	assert.Equal(t, int64(1100), saldoErr.Dibutuhkan)

	assert.Equal(t, int64(1000), f.saldo(t))
	var count int64
	require.NoError(t, f.db.Model(&model.Penukaran{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPenukaran_CheckoutStokKurangDitolak(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: f.minyakID, Jumlah: 3}, // stok minyak cuma 2
	})

	var stokErr *rewardService.InsufficientStockError
	require.ErrorAs(t, err, &stokErr)
	assert.Equal(t, int64(2), stokErr.Tersedia)
	assert.Equal(t, int64(1000), f.saldo(t))
}

func TestPenukaran_CheckoutSembakoTidakAda(t *testing.T) {
	f := newFixture(t)
	hantu := uuid.New()

	_, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: hantu, Jumlah: 1},
	})

	var rwErr *service.InvalidRewardError
	require.ErrorAs(t, err, &rwErr)
	assert.Equal(t, hantu, rwErr.SembakoID)
}

func TestPenukaran_KodeBerurutan(t *testing.T) {
	f := newFixture(t)

	p1, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	p2, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)

	assert.Equal(t, "TKR-26021802001", p1.PenukaranKode)
	assert.Equal(t, "TKR-26021802002", p2.PenukaranKode)
}

func TestPenukaran_ApproveReservasiStokDanDeadline(t *testing.T) {
	f := newFixture(t)
	adminID := uuid.New()

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: f.berasID, Jumlah: 3},
	})
	require.NoError(t, err)

	approved, err := f.svc.Approve(p.PenukaranID, adminID)
	require.NoError(t, err)

	assert.Equal(t, model.PenukaranStatusDisetujui, approved.PenukaranStatus)
	require.NotNil(t, approved.PenukaranAdminID)
	assert.Equal(t, adminID, *approved.PenukaranAdminID)
	require.NotNil(t, approved.PenukaranExpiredAt)
	assert.Equal(t, f.svc.Clock().Add(24*time.Hour), approved.PenukaranExpiredAt.UTC())

	assert.Equal(t, int64(7), f.stok(t, f.berasID))
}

func TestPenukaran_ApproveGagalSatuBarisTanpaSisaEfek(t *testing.T) {
	// baris minyak minta 3 padahal stok 2: approve gagal total, reservasi
	// beras yang sempat jalan ikut rollback
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: f.berasID, Jumlah: 2},
		{SembakoID: f.minyakID, Jumlah: 2},
	})
	require.NoError(t, err)

	// stok minyak termakan persetujuan lain di antara checkout dan approve
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.Stok.Reserve(tx, f.minyakID, f.posID, 1)
	}))

	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	var stokErr *rewardService.InsufficientStockError
	require.ErrorAs(t, err, &stokErr)

	assert.Equal(t, int64(10), f.stok(t, f.berasID))
	assert.Equal(t, int64(1), f.stok(t, f.minyakID))
	assert.Equal(t, model.PenukaranStatusMenunggu, f.reload(t, p.PenukaranID).PenukaranStatus)
}

func TestPenukaran_ApproveDuaKaliDitolak(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)

	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	assert.ErrorIs(t, err, service.ErrAlreadyProcessed)
	assert.Equal(t, int64(9), f.stok(t, f.berasID))
}

func TestPenukaran_RejectKembalikanPoin(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 4}})
	require.NoError(t, err)
	require.Equal(t, int64(600), f.saldo(t))

	rejected, err := f.svc.Reject(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, model.PenukaranStatusDibatalkan, rejected.PenukaranStatus)
	assert.Equal(t, int64(1000), f.saldo(t))
	assert.Equal(t, int64(10), f.stok(t, f.berasID))

	_, err = f.svc.Reject(p.PenukaranID, uuid.New())
	assert.ErrorIs(t, err, service.ErrAlreadyProcessed)
	assert.Equal(t, int64(1000), f.saldo(t))
}

func TestPenukaran_ConfirmPickupSelesai(t *testing.T) {
	f := newFixture(t)
	petugasID := uuid.New()

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 2}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	done, err := f.svc.ConfirmPickup(p.PenukaranID, petugasID, f.posID)
	require.NoError(t, err)

	assert.True(t, done.PenukaranSelesai)
	require.NotNil(t, done.PenukaranCompletedAt)
	require.NotNil(t, done.PenukaranPetugasID)
	assert.Equal(t, petugasID, *done.PenukaranPetugasID)

	// poin tetap terpakai, stok tetap terpotong
	assert.Equal(t, int64(800), f.saldo(t))
	assert.Equal(t, int64(8), f.stok(t, f.berasID))

	_, err = f.svc.ConfirmPickup(p.PenukaranID, petugasID, f.posID)
	assert.ErrorIs(t, err, service.ErrAlreadyFulfilled)
}

func TestPenukaran_ConfirmPickupPosSalah(t *testing.T) {
	f := newFixture(t)
	posLain := posModel.Pos{PosNama: "Pos Lain", PosKode: "09"}
	require.NoError(t, f.db.Create(&posLain).Error)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.ConfirmPickup(p.PenukaranID, uuid.New(), posLain.PosID)
	assert.ErrorIs(t, err, service.ErrWrongPos)
	assert.False(t, f.reload(t, p.PenukaranID).PenukaranSelesai)
}

func TestPenukaran_ConfirmPickupBelumDisetujui(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)

	_, err = f.svc.ConfirmPickup(p.PenukaranID, uuid.New(), f.posID)
	assert.ErrorIs(t, err, service.ErrNotApproved)
}

func TestPenukaran_ConfirmPickupLewatDeadlineDitolak(t *testing.T) {
	// sweeper belum sempat jalan, tapi deadline sudah lewat: pickup tetap
	// ditolak lewat cek lazy
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	base := f.svc.Clock()
	f.svc.Clock = func() time.Time { return base.Add(25 * time.Hour) }

	_, err = f.svc.ConfirmPickup(p.PenukaranID, uuid.New(), f.posID)
	assert.ErrorIs(t, err, service.ErrExpired)
	assert.False(t, f.reload(t, p.PenukaranID).PenukaranSelesai)
}

func TestPenukaran_UndoApproveKembaliMenunggu(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 3}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, int64(7), f.stok(t, f.berasID))

	undone, err := f.svc.UndoApprove(p.PenukaranID)
	require.NoError(t, err)

	assert.Equal(t, model.PenukaranStatusMenunggu, undone.PenukaranStatus)
	assert.Nil(t, undone.PenukaranAdminID)
	assert.Nil(t, undone.PenukaranExpiredAt)
	assert.Equal(t, int64(10), f.stok(t, f.berasID))
	// poin tetap terkunci: undo approve bukan pembatalan
	assert.Equal(t, int64(700), f.saldo(t))

	// siklus ulang tetap jalan
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.stok(t, f.berasID))
}

func TestPenukaran_UndoApproveSetelahDiambilDitolak(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.ConfirmPickup(p.PenukaranID, uuid.New(), f.posID)
	require.NoError(t, err)

	_, err = f.svc.UndoApprove(p.PenukaranID)
	assert.ErrorIs(t, err, service.ErrAlreadyFulfilled)
	assert.Equal(t, int64(9), f.stok(t, f.berasID))
}

func TestPenukaran_UndoRejectDebitUlang(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 4}})
	require.NoError(t, err)
	_, err = f.svc.Reject(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, int64(1000), f.saldo(t))

	undone, err := f.svc.UndoReject(p.PenukaranID)
	require.NoError(t, err)

	assert.Equal(t, model.PenukaranStatusMenunggu, undone.PenukaranStatus)
	assert.Nil(t, undone.PenukaranAdminID)
	assert.Equal(t, int64(600), f.saldo(t))
}

func TestPenukaran_UndoRejectSaldoSudahTerpakai(t *testing.T) {
	f := newFixture(t)
	ledger := memberService.NewLedger()

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.minyakID, Jumlah: 2}})
	require.NoError(t, err)
	_, err = f.svc.Reject(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	// refund keburu dibelanjakan di tempat lain
	require.NoError(t, f.db.Transaction(func(tx *gorm.DB) error {
		return ledger.Debit(tx, f.nasabahID, 900)
	}))

	_, err = f.svc.UndoReject(p.PenukaranID)
	var saldoErr *memberService.InsufficientBalanceError
	require.ErrorAs(t, err, &saldoErr)

	assert.Equal(t, int64(100), f.saldo(t))
	assert.Equal(t, model.PenukaranStatusDibatalkan, f.reload(t, p.PenukaranID).PenukaranStatus)
}

func TestPenukaran_FinalizeRejectionTutupFinal(t *testing.T) {
	f := newFixture(t)
	adminID := uuid.New()

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	_, err = f.svc.Reject(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	saldoSebelum := f.saldo(t)

	final, err := f.svc.FinalizeRejection(p.PenukaranID, adminID)
	require.NoError(t, err)
	assert.True(t, final.PenukaranSelesai)
	require.NotNil(t, final.PenukaranCompletedAt)
	assert.Equal(t, saldoSebelum, f.saldo(t))

	// sudah final: tidak bisa di-undo maupun ditutup ulang
	_, err = f.svc.UndoReject(p.PenukaranID)
	assert.ErrorIs(t, err, service.ErrAlreadyFinalized)
	_, err = f.svc.FinalizeRejection(p.PenukaranID, adminID)
	assert.ErrorIs(t, err, service.ErrAlreadyFinalized)
}

func TestPenukaran_ScanByCode(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)

	// belum disetujui → belum siap diambil
	_, err = f.svc.ScanByCode(p.PenukaranKode)
	assert.ErrorIs(t, err, service.ErrNotReady)

	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	found, err := f.svc.ScanByCode(p.PenukaranKode)
	require.NoError(t, err)
	assert.Equal(t, p.PenukaranID, found.PenukaranID)
	assert.Len(t, found.PenukaranDetails, 1)

	_, err = f.svc.ScanByCode("TKR-00000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPenukaran_ScanByCodeLewatDeadline(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	base := f.svc.Clock()
	f.svc.Clock = func() time.Time { return base.Add(25 * time.Hour) }

	// status di DB masih disetujui, tapi jam sudah lewat deadline
	_, err = f.svc.ScanByCode(p.PenukaranKode)
	assert.ErrorIs(t, err, service.ErrExpired)
}

func TestPenukaran_SweepExpiredRefundDanRelease(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{
		{SembakoID: f.berasID, Jumlah: 2},
		{SembakoID: f.minyakID, Jumlah: 1},
	})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, int64(550), f.saldo(t))
	require.Equal(t, int64(8), f.stok(t, f.berasID))

	base := f.svc.Clock()
	f.svc.Clock = func() time.Time { return base.Add(25 * time.Hour) }

	count, err := f.svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	reloaded := f.reload(t, p.PenukaranID)
	assert.Equal(t, model.PenukaranStatusKadaluwarsa, reloaded.PenukaranStatus)
	assert.Equal(t, int64(1000), f.saldo(t))
	assert.Equal(t, int64(10), f.stok(t, f.berasID))
	assert.Equal(t, int64(2), f.stok(t, f.minyakID))

	// sapu kedua tidak menemukan apa-apa dan tidak refund dobel
	count, err = f.svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, int64(1000), f.saldo(t))

	// yang sudah kadaluwarsa tidak bisa diambil lagi
	_, err = f.svc.ConfirmPickup(p.PenukaranID, uuid.New(), f.posID)
	assert.ErrorIs(t, err, service.ErrExpired)
	_, err = f.svc.ScanByCode(p.PenukaranKode)
	assert.ErrorIs(t, err, service.ErrExpired)
}

func TestPenukaran_SweepTidakSentuhYangSudahDiambil(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 2}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)
	_, err = f.svc.ConfirmPickup(p.PenukaranID, uuid.New(), f.posID)
	require.NoError(t, err)

	base := f.svc.Clock()
	f.svc.Clock = func() time.Time { return base.Add(25 * time.Hour) }

	count, err := f.svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// tidak ada refund untuk barang yang sudah diserahkan
	assert.Equal(t, int64(800), f.saldo(t))
	assert.Equal(t, int64(8), f.stok(t, f.berasID))
}

func TestPenukaran_SweepTidakSentuhYangBelumLewat(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Checkout(f.nasabahID, f.posID, []service.CheckoutLine{{SembakoID: f.berasID, Jumlah: 1}})
	require.NoError(t, err)
	_, err = f.svc.Approve(p.PenukaranID, uuid.New())
	require.NoError(t, err)

	base := f.svc.Clock()
	f.svc.Clock = func() time.Time { return base.Add(23 * time.Hour) }

	count, err := f.svc.SweepExpired()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, model.PenukaranStatusDisetujui, f.reload(t, p.PenukaranID).PenukaranStatus)
}
