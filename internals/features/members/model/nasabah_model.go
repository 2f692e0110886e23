package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Nasabah = anggota bank sampah. Saldo poin hanya boleh berubah lewat
// service Ledger (Credit/Debit), tidak pernah di-update langsung.
type Nasabah struct {
	NasabahID uuid.UUID `gorm:"column:nasabah_id;type:uuid;primaryKey" json:"nasabah_id"`

	NasabahNama    string  `gorm:"column:nasabah_nama;type:varchar(100);not null" json:"nasabah_nama"`
	NasabahTelepon *string `gorm:"column:nasabah_telepon;type:varchar(20)" json:"nasabah_telepon,omitempty"`
	NasabahAlamat  *string `gorm:"column:nasabah_alamat;type:text" json:"nasabah_alamat,omitempty"`

	// Saldo poin; tidak boleh negatif.
	NasabahSaldoPoin int64 `gorm:"column:nasabah_saldo_poin;not null;default:0;check:nasabah_saldo_poin>=0" json:"nasabah_saldo_poin"`

	NasabahCreatedAt time.Time      `gorm:"column:nasabah_created_at;not null" json:"nasabah_created_at"`
	NasabahUpdatedAt time.Time      `gorm:"column:nasabah_updated_at;not null" json:"nasabah_updated_at"`
	NasabahDeletedAt gorm.DeletedAt `gorm:"column:nasabah_deleted_at;index" json:"-"`
}

func (Nasabah) TableName() string {
	return "nasabah"
}

func (m *Nasabah) BeforeCreate(tx *gorm.DB) (err error) {
	if m.NasabahID == uuid.Nil {
		m.NasabahID = uuid.New()
	}
	now := time.Now()
	if m.NasabahCreatedAt.IsZero() {
		m.NasabahCreatedAt = now
	}
	m.NasabahUpdatedAt = now
	return nil
}

func (m *Nasabah) BeforeUpdate(tx *gorm.DB) (err error) {
	m.NasabahUpdatedAt = time.Now()
	return nil
}
