package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/model"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	posModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/model"
)

// InvalidCategoryError: baris setoran menunjuk kategori sampah yang tidak ada.
type InvalidCategoryError struct {
	KategoriID uuid.UUID
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("setoran: kategori sampah %s tidak ditemukan", e.KategoriID)
}

// ErrInvalidStatus: SetStatus dengan status di luar selesai/dibatalkan.
var ErrInvalidStatus = errors.New("setoran: status tidak dikenal")

// SetoranLine = input satu baris setoran dari petugas.
type SetoranLine struct {
	KategoriID uuid.UUID
	Berat      float64
}

// SetoranService mencatat setoran sampah dan mengkredit poin nasabah.
type SetoranService struct {
	DB     *gorm.DB
	Ledger *memberService.Ledger

	// Clock bisa diganti di test untuk tanggal kode yang deterministik.
	Clock func() time.Time
}

func NewSetoranService(db *gorm.DB, ledger *memberService.Ledger) *SetoranService {
	return &SetoranService{
		DB:     db,
		Ledger: ledger,
		Clock:  time.Now,
	}
}

// RecordDeposit mencatat setoran lengkap dengan detailnya dalam satu
// transaksi: hitung subtotal per baris dari tarif kategori, generate kode,
// insert header+detail, kredit saldo. Satu baris gagal lookup = seluruh
// setoran batal.
func (s *SetoranService) RecordDeposit(nasabahID, petugasID, posID uuid.UUID, lines []SetoranLine, fotoURLs []string) (*model.Setoran, error) {
	if len(lines) == 0 {
		return nil, errors.New("setoran: minimal satu baris")
	}

	var setoran *model.Setoran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		var pos posModel.Pos
		if err := tx.Where("pos_id = ?", posID).First(&pos).Error; err != nil {
			return fmt.Errorf("pos tidak ditemukan: %w", err)
		}

		now := s.Clock()
		details := make([]model.SetoranDetail, 0, len(lines))
		var totalBerat float64
		var totalPoin int64

		for _, line := range lines {
			if line.Berat <= 0 {
				return fmt.Errorf("setoran: berat tidak valid: %v", line.Berat)
			}

			var kategori model.KategoriSampah
			err := tx.Where("kategori_sampah_id = ?", line.KategoriID).First(&kategori).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &InvalidCategoryError{KategoriID: line.KategoriID}
			}
			if err != nil {
				return err
			}

			subtotal := int64(math.Round(float64(kategori.KategoriSampahPoinPerKg) * line.Berat))
			totalBerat += line.Berat
			totalPoin += subtotal

			details = append(details, model.SetoranDetail{
				SetoranDetailKategoriID: kategori.KategoriSampahID,
				SetoranDetailBerat:      line.Berat,
				SetoranDetailPoinPerKg:  kategori.KategoriSampahPoinPerKg,
				SetoranDetailSubtotal:   subtotal,
			})
		}

		kode, err := helper.NextTransactionCode(tx, "setoran", "setoran_kode", helper.CodePrefixSetoran, pos.PosKode, now)
		if err != nil {
			return err
		}

		var bukti datatypes.JSON
		if len(fotoURLs) > 0 {
			raw, err := json.Marshal(fotoURLs)
			if err != nil {
				return err
			}
			bukti = datatypes.JSON(raw)
		}

		header := model.Setoran{
			SetoranKode:       kode,
			SetoranNasabahID:  nasabahID,
			SetoranPetugasID:  petugasID,
			SetoranPosID:      posID,
			SetoranTotalBerat: totalBerat,
			SetoranTotalPoin:  totalPoin,
			SetoranStatus:     model.SetoranStatusSelesai,
			SetoranBuktiFoto:  bukti,
			SetoranTanggal:    now,
		}
		if err := tx.Create(&header).Error; err != nil {
			return err
		}

		for i := range details {
			details[i].SetoranDetailSetoranID = header.SetoranID
		}
		if err := tx.Create(&details).Error; err != nil {
			return err
		}

		// setoran lahir berstatus selesai → poin langsung dikredit
		if err := s.Ledger.Credit(tx, nasabahID, totalPoin); err != nil {
			return err
		}

		header.SetoranDetails = details
		setoran = &header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return setoran, nil
}

// SetStatus memindahkan status setoran dan menghitung delta saldo langsung
// dari pasangan (lama, baru), bukan lewat hook perubahan kolom:
//
//	selesai → dibatalkan : debit total poin (bisa gagal saldo kurang)
//	dibatalkan → selesai : kredit total poin
//	status sama          : no-op, kompensasi tidak pernah dobel
func (s *SetoranService) SetStatus(setoranID uuid.UUID, baru model.SetoranStatus) (*model.Setoran, error) {
	if baru != model.SetoranStatusSelesai && baru != model.SetoranStatusDibatalkan {
		return nil, ErrInvalidStatus
	}

	var setoran model.Setoran
	err := database.WithTxRetry(s.DB, func(tx *gorm.DB) error {
		if err := database.LockForUpdate(tx).
			Where("setoran_id = ?", setoranID).
			First(&setoran).Error; err != nil {
			return err
		}

		lama := setoran.SetoranStatus
		if lama == baru {
			return nil
		}

		switch {
		case lama == model.SetoranStatusSelesai && baru == model.SetoranStatusDibatalkan:
			if err := s.Ledger.Debit(tx, setoran.SetoranNasabahID, setoran.SetoranTotalPoin); err != nil {
				return err
			}
		case lama == model.SetoranStatusDibatalkan && baru == model.SetoranStatusSelesai:
			if err := s.Ledger.Credit(tx, setoran.SetoranNasabahID, setoran.SetoranTotalPoin); err != nil {
				return err
			}
		default:
			return ErrInvalidStatus
		}

		setoran.SetoranStatus = baru
		return tx.Model(&model.Setoran{}).
			Where("setoran_id = ?", setoranID).
			Update("setoran_status", baru).Error
	})
	if err != nil {
		return nil, err
	}
	return &setoran, nil
}
