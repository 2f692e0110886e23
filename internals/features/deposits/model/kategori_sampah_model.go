package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KategoriSampah = jenis sampah yang diterima beserta tarif poin per kg.
// Tarif di-snapshot ke detail setoran saat transaksi dibuat.
type KategoriSampah struct {
	KategoriSampahID uuid.UUID `gorm:"column:kategori_sampah_id;type:uuid;primaryKey" json:"kategori_sampah_id"`

	KategoriSampahNama      string `gorm:"column:kategori_sampah_nama;type:varchar(100);not null" json:"kategori_sampah_nama"`
	KategoriSampahPoinPerKg int64  `gorm:"column:kategori_sampah_poin_per_kg;not null;check:kategori_sampah_poin_per_kg>=0" json:"kategori_sampah_poin_per_kg"`

	KategoriSampahCreatedAt time.Time      `gorm:"column:kategori_sampah_created_at;not null" json:"kategori_sampah_created_at"`
	KategoriSampahUpdatedAt time.Time      `gorm:"column:kategori_sampah_updated_at;not null" json:"kategori_sampah_updated_at"`
	KategoriSampahDeletedAt gorm.DeletedAt `gorm:"column:kategori_sampah_deleted_at;index" json:"-"`
}

func (KategoriSampah) TableName() string {
	return "kategori_sampah"
}

func (m *KategoriSampah) BeforeCreate(tx *gorm.DB) (err error) {
	if m.KategoriSampahID == uuid.Nil {
		m.KategoriSampahID = uuid.New()
	}
	now := time.Now()
	if m.KategoriSampahCreatedAt.IsZero() {
		m.KategoriSampahCreatedAt = now
	}
	m.KategoriSampahUpdatedAt = now
	return nil
}

func (m *KategoriSampah) BeforeUpdate(tx *gorm.DB) (err error) {
	m.KategoriSampahUpdatedAt = time.Now()
	return nil
}
