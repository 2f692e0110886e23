package service

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	posModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/model"
	rewardModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/model"
	rewardService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/model"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

// Error transisi state. Core tidak memformat pesan untuk user; controller
// yang menerjemahkan.
var (
	ErrAlreadyProcessed = errors.New("penukaran: sudah diproses, bukan lagi menunggu")
	ErrNotApproved      = errors.New("penukaran: belum/bukan berstatus disetujui")
	ErrNotRejected      = errors.New("penukaran: bukan berstatus dibatalkan")
	ErrAlreadyFulfilled = errors.New("penukaran: sudah diambil nasabah")
	ErrAlreadyFinalized = errors.New("penukaran: sudah ditutup final")
	ErrExpired          = errors.New("penukaran: sudah kadaluwarsa")
	ErrNotReady         = errors.New("penukaran: belum siap diambil")
	ErrWrongPos         = errors.New("penukaran: pos pengambilan tidak cocok")
)

// InvalidRewardError: checkout menunjuk sembako yang tidak ada di katalog.
type InvalidRewardError struct {
	SembakoID uuid.UUID
}

func (e *InvalidRewardError) Error() string {
	return fmt.Sprintf("penukaran: sembako %s tidak ditemukan", e.SembakoID)
}

// CheckoutLine = input satu baris penukaran.
type CheckoutLine struct {
	SembakoID uuid.UUID
	Jumlah    int64
}

// PenukaranService mengoordinasikan siklus hidup penukaran: checkout,
// persetujuan, pembatalan, undo, pengambilan, dan kadaluwarsa. Poin dikunci
// saat checkout; stok baru direservasi saat disetujui admin (cek stok di
// checkout hanya informasional; antara checkout dan approve stok bisa
// termakan persetujuan lain).
type PenukaranService struct {
	DB     *gorm.DB
	Ledger *memberService.Ledger
	Stok   *rewardService.StokService

	// Masa berlaku pengambilan setelah disetujui.
	TTL time.Duration

	// Clock bisa diganti di test.
	Clock func() time.Time
}

func NewPenukaranService(db *gorm.DB, ledger *memberService.Ledger, stok *rewardService.StokService, ttl time.Duration) *PenukaranService {
	return &PenukaranService{
		DB:     db,
		Ledger: ledger,
		Stok:   stok,
		TTL:    ttl,
		Clock:  time.Now,
	}
}

// Checkout membuat permintaan penukaran berstatus menunggu. Saldo nasabah
// didebit total poin di transaksi yang sama dengan pembuatan record; stok
// dicek defensif tapi belum direservasi.
func (s *PenukaranService) Checkout(nasabahID, posID uuid.UUID, lines []CheckoutLine) (*model.Penukaran, error) {
	if len(lines) == 0 {
		return nil, errors.New("penukaran: minimal satu baris")
	}

	var penukaran *model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		var pos posModel.Pos
		if err := tx.Where("pos_id = ?", posID).First(&pos).Error; err != nil {
			return fmt.Errorf("pos tidak ditemukan: %w", err)
		}

		details := make([]model.PenukaranDetail, 0, len(lines))
		var totalPoin int64

		for _, line := range lines {
			if line.Jumlah <= 0 {
				return fmt.Errorf("penukaran: jumlah tidak valid: %d", line.Jumlah)
			}

			var sembako rewardModel.Sembako
			err := tx.Where("sembako_id = ?", line.SembakoID).First(&sembako).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InvalidRewardError{SembakoID: line.SembakoID}
			}
			if err != nil {
				return err
			}

			// cek stok informasional; reservasi otoritatif terjadi saat approve
			tersedia, err := s.Stok.JumlahDiPos(tx, line.SembakoID, posID)
			if err != nil {
				return err
			}
			if tersedia < line.Jumlah {
				return &rewardService.InsufficientStockError{
					SembakoID: line.SembakoID,
					PosID:     posID,
					Diminta:   line.Jumlah,
					Tersedia:  tersedia,
				}
			}

			subtotal := sembako.SembakoPoinTukar * line.Jumlah
			totalPoin += subtotal
			details = append(details, model.PenukaranDetail{
				PenukaranDetailSembakoID:  sembako.SembakoID,
				PenukaranDetailJumlah:     line.Jumlah,
				PenukaranDetailPoinSatuan: sembako.SembakoPoinTukar,
				PenukaranDetailSubtotal:   subtotal,
			})
		}

		// poin dikunci sekarang
		if err := s.Ledger.Debit(tx, nasabahID, totalPoin); err != nil {
			return err
		}

		kode, err := helper.NextTransactionCode(tx, "penukaran", "penukaran_kode", helper.CodePrefixPenukaran, pos.PosKode, s.Clock())
		if err != nil {
			return err
		}

		header := model.Penukaran{
			PenukaranKode:      kode,
			PenukaranNasabahID: nasabahID,
			PenukaranPosID:     posID,
			PenukaranTotalPoin: totalPoin,
			PenukaranStatus:    model.PenukaranStatusMenunggu,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		for i := range details {
			details[i].PenukaranDetailPenukaranID = header.PenukaranID
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}

		header.PenukaranDetails = details
		penukaran = &header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return penukaran, nil
}

// Approve mereservasi stok untuk semua baris lalu memasang deadline
// pengambilan. Satu baris gagal = seluruh transisi rollback (reservasi baris
// sebelumnya ikut batal, bukan di-release satu-satu).
func (s *PenukaranService) Approve(penukaranID, adminID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := s.lockPenukaran(tx, penukaranID, &penukaran); err != nil {
			return err
		}
		if penukaran.PenukaranStatus != model.PenukaranStatusMenunggu {
			return ErrAlreadyProcessed
		}

		details, err := s.loadDetails(tx, penukaranID)
		if err != nil {
			return err
		}

		// urutan lock stabil antar transaksi → tidak saling deadlock
		sortDetailsBySembakoID(details)
		for _, d := range details {
			if err := s.Stok.Reserve(tx, d.PenukaranDetailSembakoID, penukaran.PenukaranPosID, d.PenukaranDetailJumlah); err != nil {
				return err
			}
		}

		now := s.Clock()
		expiredAt := now.Add(s.TTL)
		penukaran.PenukaranStatus = model.PenukaranStatusDisetujui
		penukaran.PenukaranAdminID = &adminID
		penukaran.PenukaranDisetujuiPada = &now
		penukaran.PenukaranExpiredAt = &expiredAt
		penukaran.PenukaranDetails = details

		return tx.Model(&model.Penukaran{}).
			Where("penukaran_id = ?", penukaranID).
			Updates(map[string]interface{}{
				"penukaran_status":         model.PenukaranStatusDisetujui,
				"penukaran_admin_id":       adminID,
				"penukaran_disetujui_pada": now,
				"penukaran_expired_at":     expiredAt,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

// Reject membatalkan permintaan menunggu dan mengembalikan poin. Stok tidak
// disentuh karena belum pernah direservasi.
func (s *PenukaranService) Reject(penukaranID, adminID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := s.lockPenukaran(tx, penukaranID, &penukaran); err != nil {
			return err
		}
		if penukaran.PenukaranStatus != model.PenukaranStatusMenunggu {
			return ErrAlreadyProcessed
		}

		if err := s.Ledger.Credit(tx, penukaran.PenukaranNasabahID, penukaran.PenukaranTotalPoin); err != nil {
			return err
		}

		penukaran.PenukaranStatus = model.PenukaranStatusDibatalkan
		penukaran.PenukaranAdminID = &adminID
		return tx.Model(&model.Penukaran{}).
			Where("penukaran_id = ?", penukaranID).
			Updates(map[string]interface{}{
				"penukaran_status":   model.PenukaranStatusDibatalkan,
				"penukaran_admin_id": adminID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

// UndoApprove mengembalikan penukaran disetujui (belum diambil) ke menunggu:
// stok di-release, stempel admin dan deadline dihapus.
func (s *PenukaranService) UndoApprove(penukaranID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := s.lockPenukaran(tx, penukaranID, &penukaran); err != nil {
			return err
		}
		if penukaran.PenukaranStatus != model.PenukaranStatusDisetujui {
			return ErrNotApproved
		}
		if penukaran.PenukaranSelesai {
			return ErrAlreadyFulfilled
		}

		details, err := s.loadDetails(tx, penukaranID)
		if err != nil {
			return err
		}
		sortDetailsBySembakoID(details)
		for _, d := range details {
			if err := s.Stok.Release(tx, d.PenukaranDetailSembakoID, penukaran.PenukaranPosID, d.PenukaranDetailJumlah); err != nil {
				return err
			}
		}

		penukaran.PenukaranStatus = model.PenukaranStatusMenunggu
		penukaran.PenukaranAdminID = nil
		penukaran.PenukaranDisetujuiPada = nil
		penukaran.PenukaranExpiredAt = nil
		return tx.Model(&model.Penukaran{}).
			Where("penukaran_id = ?", penukaranID).
			Updates(map[string]interface{}{
				"penukaran_status":         model.PenukaranStatusMenunggu,
				"penukaran_admin_id":       nil,
				"penukaran_disetujui_pada": nil,
				"penukaran_expired_at":     nil,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

// UndoReject mengembalikan penukaran dibatalkan ke menunggu dengan mendebit
// ulang poinnya; gagal bersih kalau saldo nasabah sudah tidak cukup. Stok
// sengaja tidak divalidasi ulang di sini; stok baru otoritatif lagi saat
// approve berikutnya.
func (s *PenukaranService) UndoReject(penukaranID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := s.lockPenukaran(tx, penukaranID, &penukaran); err != nil {
			return err
		}
		if penukaran.PenukaranStatus != model.PenukaranStatusDibatalkan {
			return ErrNotRejected
		}
		if penukaran.PenukaranSelesai {
			return ErrAlreadyFinalized
		}

		if err := s.Ledger.Debit(tx, penukaran.PenukaranNasabahID, penukaran.PenukaranTotalPoin); err != nil {
			return err
		}

		penukaran.PenukaranStatus = model.PenukaranStatusMenunggu
		penukaran.PenukaranAdminID = nil
		return tx.Model(&model.Penukaran{}).
			Where("penukaran_id = ?", penukaranID).
			Updates(map[string]interface{}{
				"penukaran_status":   model.PenukaranStatusMenunggu,
				"penukaran_admin_id": nil,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

// FinalizeRejection menutup final penukaran dibatalkan (arsip manual admin).
// Tanpa efek saldo/stok.
func (s *PenukaranService) FinalizeRejection(penukaranID, adminID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := s.lockPenukaran(tx, penukaranID, &penukaran); err != nil {
			return err
		}
		if penukaran.PenukaranStatus != model.PenukaranStatusDibatalkan {
			return ErrNotRejected
		}
		if penukaran.PenukaranSelesai {
			return ErrAlreadyFinalized
		}

		now := s.Clock()
		penukaran.PenukaranSelesai = true
		penukaran.PenukaranCompletedAt = &now
		penukaran.PenukaranAdminID = &adminID
		return tx.Model(&model.Penukaran{}).
			Where("penukaran_id = ?", penukaranID).
			Updates(map[string]interface{}{
				"penukaran_selesai":      true,
				"penukaran_completed_at": now,
				"penukaran_admin_id":     adminID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

// ConfirmPickup mencatat penyerahan barang oleh petugas di pos yang sesuai.
// Deadline dicek di sini juga (lazy), tidak mengandalkan sweeper.
func (s *PenukaranService) ConfirmPickup(penukaranID, petugasID, posID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := s.lockPenukaran(tx, penukaranID, &penukaran); err != nil {
			return err
		}
		if penukaran.PenukaranStatus == model.PenukaranStatusKadaluwarsa {
			return ErrExpired
		}
		if penukaran.PenukaranStatus != model.PenukaranStatusDisetujui {
			return ErrNotApproved
		}
		if penukaran.PenukaranSelesai {
			return ErrAlreadyFulfilled
		}
		if penukaran.PenukaranPosID != posID {
			return ErrWrongPos
		}

		now := s.Clock()
		if penukaran.PenukaranExpiredAt != nil && now.After(*penukaran.PenukaranExpiredAt) {
			return ErrExpired
		}

		penukaran.PenukaranSelesai = true
		penukaran.PenukaranCompletedAt = &now
		penukaran.PenukaranPetugasID = &petugasID
		return tx.Model(&model.Penukaran{}).
			Where("penukaran_id = ?", penukaranID).
			Updates(map[string]interface{}{
				"penukaran_selesai":      true,
				"penukaran_completed_at": now,
				"penukaran_petugas_id":   petugasID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

// ScanByCode mencari penukaran dari kode yang diketik/discan petugas.
// Kadaluwarsa dicek terhadap jam sekarang walau status belum disapu sweeper —
// sweeper asinkron, jadi cek di sini tidak boleh dilewati.
func (s *PenukaranService) ScanByCode(kode string) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := s.DB.Preload("PenukaranDetails").
		Where("penukaran_kode = ?", kode).
		First(&penukaran).Error
	if err != nil {
		return nil, err // gorm.ErrRecordNotFound diteruskan apa adanya
	}

	if penukaran.PenukaranStatus == model.PenukaranStatusKadaluwarsa {
		return nil, ErrExpired
	}
	if penukaran.PenukaranStatus != model.PenukaranStatusDisetujui {
		return nil, ErrNotReady
	}
	if penukaran.PenukaranExpiredAt != nil && s.Clock().After(*penukaran.PenukaranExpiredAt) {
		return nil, ErrExpired
	}
	return &penukaran, nil
}

// SweepExpired memindahkan semua penukaran disetujui yang melewati deadline
// ke kadaluwarsa: poin dikembalikan, stok di-release. Tiap kandidat diproses
// di transaksinya sendiri; gagal satu tidak menggagalkan sisanya. Status
// dicek ulang di dalam transaksi supaya aman balapan dengan konfirmasi
// pengambilan — yang kalah commit jadi no-op, bukan refund dobel.
func (s *PenukaranService) SweepExpired() (int, error) {
	now := s.Clock()

	var ids []uuid.UUID
	if err := s.DB.Model(&model.Penukaran{}).
		Where("penukaran_status = ?", model.PenukaranStatusDisetujui).
		Where("penukaran_selesai = ?", false).
		Where("penukaran_expired_at < ?", now).
		Pluck("penukaran_id", &ids).Error; err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		applied := false
		err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
			applied = false

			var penukaran model.Penukaran
			if err := s.lockPenukaran(tx, id, &penukaran); err != nil {
				return err
			}
			// re-check optimistik: antara seleksi dan lock, status bisa
			// sudah berubah (diambil nasabah / di-undo admin)
			if penukaran.PenukaranStatus != model.PenukaranStatusDisetujui ||
				penukaran.PenukaranSelesai ||
				penukaran.PenukaranExpiredAt == nil ||
				!now.After(*penukaran.PenukaranExpiredAt) {
				return nil
			}

			if err := s.Ledger.Credit(tx, penukaran.PenukaranNasabahID, penukaran.PenukaranTotalPoin); err != nil {
				return err
			}

			details, err := s.loadDetails(tx, id)
			if err != nil {
				return err
			}
			sortDetailsBySembakoID(details)
			for _, d := range details {
				if err := s.Stok.Release(tx, d.PenukaranDetailSembakoID, penukaran.PenukaranPosID, d.PenukaranDetailJumlah); err != nil {
					return err
				}
			}

			if err := tx.Model(&model.Penukaran{}).
				Where("penukaran_id = ?", id).
				Update("penukaran_status", model.PenukaranStatusKadaluwarsa).Error; err != nil {
				return err
			}
			applied = true
			return nil
		})
		if err != nil {
			log.Printf("[SWEEP] gagal proses penukaran %s: %v", id, err)
			continue
		}
		if applied {
			log.Printf("[SWEEP] penukaran %s → kadaluwarsa", id)
			count++
		}
	}
	return count, nil
}

// GetByID memuat satu penukaran beserta detailnya.
func (s *PenukaranService) GetByID(penukaranID uuid.UUID) (*model.Penukaran, error) {
	var penukaran model.Penukaran
	err := s.DB.Preload("PenukaranDetails").
		Where("penukaran_id = ?", penukaranID).
		First(&penukaran).Error
	if err != nil {
		return nil, err
	}
	return &penukaran, nil
}

func (s *PenukaranService) lockPenukaran(tx *gorm.DB, id uuid.UUID, dst *model.Penukaran) error {
	return database.LockForUpdate(tx).
		Where("penukaran_id = ?", id).
		First(dst).Error
}

func (s *PenukaranService) loadDetails(tx *gorm.DB, penukaranID uuid.UUID) ([]model.PenukaranDetail, error) {
	var details []model.PenukaranDetail
	err := tx.Where("penukaran_detail_penukaran_id = ?", penukaranID).
		Find(&details).Error
	return details, err
}

func sortDetailsBySembakoID(details []model.PenukaranDetail) {
	sort.Slice(details, func(i, j int) bool {
		a, b := details[i].PenukaranDetailSembakoID, details[j].PenukaranDetailSembakoID
		return bytes.Compare(a[:], b[:]) < 0
	})
}
