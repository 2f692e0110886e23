package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/model"
)

// ErrNegativeStock: Adjust dengan jumlah < 0.
var ErrNegativeStock = errors.New("stok: jumlah tidak boleh negatif")

// InsufficientStockError: reservasi melebihi stok di pos tersebut.
type InsufficientStockError struct {
	SembakoID uuid.UUID
	PosID     uuid.UUID
	Diminta   int64
	Tersedia  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stok: sembako %s di pos %s tersisa %d, diminta %d",
		e.SembakoID, e.PosID, e.Tersedia, e.Diminta)
}

// StokService memegang counter stok per (sembako, pos). Reserve/Release/
// Adjust menerima transaksi dari pemanggil; disiplin locking terpusat di sini
// sehingga tidak ada jalur lain yang menyentuh baris stok.
type StokService struct{}

func NewStokService() *StokService {
	return &StokService{}
}

// Reserve mengurangi stok sejumlah jumlah. Baris dikunci sebelum dibandingkan
// supaya dua persetujuan paralel tidak sama-sama lolos cek terhadap bacaan
// basi. Pos tanpa baris stok dianggap stok 0.
func (s *StokService) Reserve(tx *gorm.DB, sembakoID, posID uuid.UUID, jumlah int64) error {
	if jumlah <= 0 {
		return fmt.Errorf("stok: jumlah reservasi tidak valid: %d", jumlah)
	}

	var stok model.StokSembako
	err := database.LockForUpdate(tx).
		Where("stok_sembako_sembako_id = ? AND stok_sembako_pos_id = ?", sembakoID, posID).
		First(&stok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &InsufficientStockError{SembakoID: sembakoID, PosID: posID, Diminta: jumlah, Tersedia: 0}
	}
	if err != nil {
		return err
	}

	if stok.StokSembakoJumlah < jumlah {
		return &InsufficientStockError{
			SembakoID: sembakoID,
			PosID:     posID,
			Diminta:   jumlah,
			Tersedia:  stok.StokSembakoJumlah,
		}
	}

	return tx.Model(&model.StokSembako{}).
		Where("stok_sembako_id = ?", stok.StokSembakoID).
		Update("stok_sembako_jumlah", gorm.Expr("stok_sembako_jumlah - ?", jumlah)).Error
}

// Release mengembalikan stok tanpa syarat (dipakai saat pembatalan, undo,
// kadaluwarsa). Idempotensi adalah tanggung jawab pemanggil: satu reservasi
// hanya boleh di-release sekali.
func (s *StokService) Release(tx *gorm.DB, sembakoID, posID uuid.UUID, jumlah int64) error {
	if jumlah <= 0 {
		return fmt.Errorf("stok: jumlah release tidak valid: %d", jumlah)
	}

	res := tx.Model(&model.StokSembako{}).
		Where("stok_sembako_sembako_id = ? AND stok_sembako_pos_id = ?", sembakoID, posID).
		Update("stok_sembako_jumlah", gorm.Expr("stok_sembako_jumlah + ?", jumlah))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// baris stok sudah dihapus admin; buat ulang supaya stok tidak hilang
		return tx.Create(&model.StokSembako{
			StokSembakoSembakoID: sembakoID,
			StokSembakoPosID:     posID,
			StokSembakoJumlah:    jumlah,
		}).Error
	}
	return nil
}

// Adjust menetapkan jumlah absolut (entry hitung stok manual oleh admin).
func (s *StokService) Adjust(tx *gorm.DB, sembakoID, posID uuid.UUID, jumlah int64) error {
	if jumlah < 0 {
		return ErrNegativeStock
	}

	var stok model.StokSembako
	err := database.LockForUpdate(tx).
		Where("stok_sembako_sembako_id = ? AND stok_sembako_pos_id = ?", sembakoID, posID).
		First(&stok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&model.StokSembako{
			StokSembakoSembakoID: sembakoID,
			StokSembakoPosID:     posID,
			StokSembakoJumlah:    jumlah,
		}).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&model.StokSembako{}).
		Where("stok_sembako_id = ?", stok.StokSembakoID).
		Update("stok_sembako_jumlah", jumlah).Error
}

// TotalAcrossPos menjumlahkan stok satu sembako di semua pos. Hanya untuk
// tampilan global; keputusan reservasi selalu per pos.
func (s *StokService) TotalAcrossPos(db *gorm.DB, sembakoID uuid.UUID) (int64, error) {
	var total int64
	err := db.Model(&model.StokSembako{}).
		Where("stok_sembako_sembako_id = ?", sembakoID).
		Select("COALESCE(SUM(stok_sembako_jumlah), 0)").
		Scan(&total).Error
	return total, err
}

// JumlahDiPos membaca stok satu sembako di satu pos (tanpa lock, untuk cek
// informasional).
func (s *StokService) JumlahDiPos(db *gorm.DB, sembakoID, posID uuid.UUID) (int64, error) {
	var stok model.StokSembako
	err := db.Where("stok_sembako_sembako_id = ? AND stok_sembako_pos_id = ?", sembakoID, posID).
		First(&stok).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stok.StokSembakoJumlah, nil
}
