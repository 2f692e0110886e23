package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
)

// ErrInvalidAmount: jumlah poin harus > 0.
var ErrInvalidAmount = errors.New("ledger: jumlah poin harus lebih dari nol")

// InsufficientBalanceError: debit ditolak karena saldo kurang. Membawa angka
// saldo vs kebutuhan supaya layer presentasi bisa menyusun pesannya sendiri.
type InsufficientBalanceError struct {
	NasabahID  uuid.UUID
	Saldo      int64
	Dibutuhkan int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("ledger: saldo %d kurang dari %d (nasabah %s)", e.Saldo, e.Dibutuhkan, e.NasabahID)
}

// Ledger memegang satu-satunya jalur mutasi saldo poin nasabah. Credit/Debit
// menerima *gorm.DB transaksi dari pemanggil supaya bisa satu unit atomik
// dengan reservasi stok atau insert transaksi.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Credit menambah saldo. Baris nasabah dikunci dulu supaya pembacaan saldo
// paralel di transaksi lain tidak kehilangan update.
func (l *Ledger) Credit(tx *gorm.DB, nasabahID uuid.UUID, jumlah int64) error {
	if jumlah <= 0 {
		return ErrInvalidAmount
	}

	var nasabah model.Nasabah
	if err := database.LockForUpdate(tx).
		Where("nasabah_id = ?", nasabahID).
		First(&nasabah).Error; err != nil {
		return err
	}

	return tx.Model(&model.Nasabah{}).
		Where("nasabah_id = ?", nasabahID).
		Update("nasabah_saldo_poin", gorm.Expr("nasabah_saldo_poin + ?", jumlah)).Error
}

// Debit mengurangi saldo; gagal dengan InsufficientBalanceError kalau saldo
// kurang. Cek saldo dilakukan setelah baris terkunci (bukan terhadap bacaan
// basi) sehingga dua checkout paralel nasabah yang sama tidak bisa dua-duanya
// lolos.
func (l *Ledger) Debit(tx *gorm.DB, nasabahID uuid.UUID, jumlah int64) error {
	if jumlah <= 0 {
		return ErrInvalidAmount
	}

	var nasabah model.Nasabah
	if err := database.LockForUpdate(tx).
		Where("nasabah_id = ?", nasabahID).
		First(&nasabah).Error; err != nil {
		return err
	}

	if nasabah.NasabahSaldoPoin < jumlah {
		return &InsufficientBalanceError{
			NasabahID:  nasabahID,
			Saldo:      nasabah.NasabahSaldoPoin,
			Dibutuhkan: jumlah,
		}
	}

	return tx.Model(&model.Nasabah{}).
		Where("nasabah_id = ?", nasabahID).
		Update("nasabah_saldo_poin", gorm.Expr("nasabah_saldo_poin - ?", jumlah)).Error
}

// Saldo membaca saldo saat ini (tanpa lock; jangan dipakai sebagai prasyarat
// debit).
func (l *Ledger) Saldo(db *gorm.DB, nasabahID uuid.UUID) (int64, error) {
	var nasabah model.Nasabah
	if err := db.Select("nasabah_saldo_poin").
		Where("nasabah_id = ?", nasabahID).
		First(&nasabah).Error; err != nil {
		return 0, err
	}
	return nasabah.NasabahSaldoPoin, nil
}
