package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pos = lokasi fisik tempat setor sampah & ambil sembako. Stok dan petugas
// ter-scope per pos.
type Pos struct {
	PosID uuid.UUID `gorm:"column:pos_id;type:uuid;primaryKey" json:"pos_id"`

	PosNama   string  `gorm:"column:pos_nama;type:varchar(100);not null" json:"pos_nama"`
	PosKode   string  `gorm:"column:pos_kode;type:varchar(4);not null;uniqueIndex:uniq_pos_kode" json:"pos_kode"`
	PosAlamat *string `gorm:"column:pos_alamat;type:text" json:"pos_alamat,omitempty"`

	PosCreatedAt time.Time      `gorm:"column:pos_created_at;not null" json:"pos_created_at"`
	PosUpdatedAt time.Time      `gorm:"column:pos_updated_at;not null" json:"pos_updated_at"`
	PosDeletedAt gorm.DeletedAt `gorm:"column:pos_deleted_at;index" json:"-"`
}

func (Pos) TableName() string {
	return "pos"
}

func (m *Pos) BeforeCreate(tx *gorm.DB) (err error) {
	if m.PosID == uuid.Nil {
		m.PosID = uuid.New()
	}
	now := time.Now()
	if m.PosCreatedAt.IsZero() {
		m.PosCreatedAt = now
	}
	m.PosUpdatedAt = now
	return nil
}

func (m *Pos) BeforeUpdate(tx *gorm.DB) (err error) {
	m.PosUpdatedAt = time.Now()
	return nil
}
