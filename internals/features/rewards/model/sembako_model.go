package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sembako = item katalog yang bisa ditukar poin. Harga poin (poin_tukar)
// di-snapshot ke detail penukaran saat checkout, jadi edit katalog tidak
// mengubah penukaran yang sudah berjalan.
type Sembako struct {
	SembakoID uuid.UUID `gorm:"column:sembako_id;type:uuid;primaryKey" json:"sembako_id"`

	SembakoNama     string  `gorm:"column:sembako_nama;type:varchar(100);not null" json:"sembako_nama"`
	SembakoKategori *string `gorm:"column:sembako_kategori;type:varchar(50)" json:"sembako_kategori,omitempty"`

	SembakoPoinTukar int64   `gorm:"column:sembako_poin_tukar;not null;check:sembako_poin_tukar>=0" json:"sembako_poin_tukar"`
	SembakoFoto      *string `gorm:"column:sembako_foto;type:text" json:"sembako_foto,omitempty"`

	SembakoCreatedAt time.Time      `gorm:"column:sembako_created_at;not null" json:"sembako_created_at"`
	SembakoUpdatedAt time.Time      `gorm:"column:sembako_updated_at;not null" json:"sembako_updated_at"`
	SembakoDeletedAt gorm.DeletedAt `gorm:"column:sembako_deleted_at;index" json:"-"`
}

func (Sembako) TableName() string {
	return "sembako"
}

func (m *Sembako) BeforeCreate(tx *gorm.DB) (err error) {
	if m.SembakoID == uuid.Nil {
		m.SembakoID = uuid.New()
	}
	now := time.Now()
	if m.SembakoCreatedAt.IsZero() {
		m.SembakoCreatedAt = now
	}
	m.SembakoUpdatedAt = now
	return nil
}

func (m *Sembako) BeforeUpdate(tx *gorm.DB) (err error) {
	m.SembakoUpdatedAt = time.Now()
	return nil
}
