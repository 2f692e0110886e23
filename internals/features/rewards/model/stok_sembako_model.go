package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StokSembako = jumlah stok satu sembako di satu pos. Maksimal satu baris per
// pasangan (sembako, pos); jumlah tidak boleh negatif dan hanya dimutasi
// lewat StokService (Reserve/Release/Adjust).
type StokSembako struct {
	StokSembakoID uuid.UUID `gorm:"column:stok_sembako_id;type:uuid;primaryKey" json:"stok_sembako_id"`

	StokSembakoSembakoID uuid.UUID `gorm:"column:stok_sembako_sembako_id;type:uuid;not null;uniqueIndex:uniq_stok_sembako_pos,priority:1" json:"stok_sembako_sembako_id"`
	StokSembakoPosID     uuid.UUID `gorm:"column:stok_sembako_pos_id;type:uuid;not null;index;uniqueIndex:uniq_stok_sembako_pos,priority:2" json:"stok_sembako_pos_id"`

	StokSembakoJumlah int64 `gorm:"column:stok_sembako_jumlah;not null;default:0;check:stok_sembako_jumlah>=0" json:"stok_sembako_jumlah"`

	StokSembakoCreatedAt time.Time `gorm:"column:stok_sembako_created_at;not null" json:"stok_sembako_created_at"`
	StokSembakoUpdatedAt time.Time `gorm:"column:stok_sembako_updated_at;not null" json:"stok_sembako_updated_at"`
}

func (StokSembako) TableName() string {
	return "stok_sembako"
}

func (m *StokSembako) BeforeCreate(tx *gorm.DB) (err error) {
	if m.StokSembakoID == uuid.Nil {
		m.StokSembakoID = uuid.New()
	}
	now := time.Now()
	if m.StokSembakoCreatedAt.IsZero() {
		m.StokSembakoCreatedAt = now
	}
	m.StokSembakoUpdatedAt = now
	return nil
}

func (m *StokSembako) BeforeUpdate(tx *gorm.DB) (err error) {
	m.StokSembakoUpdatedAt = time.Now()
	return nil
}
