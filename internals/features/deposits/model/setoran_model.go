package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =========================================================
// ENUM: status setoran
// =========================================================

type SetoranStatus string

const (
	SetoranStatusSelesai    SetoranStatus = "selesai"
	SetoranStatusDibatalkan SetoranStatus = "dibatalkan"
)

// =========================================================
// MODEL
// =========================================================

// Setoran = catatan setor sampah yang sudah selesai. Dibuat atomik bersama
// detailnya; perubahan status selesai↔dibatalkan memicu kompensasi saldo
// lewat SetoranService.SetStatus, bukan lewat update kolom langsung.
type Setoran struct {
	SetoranID uuid.UUID `gorm:"column:setoran_id;type:uuid;primaryKey" json:"setoran_id"`

	SetoranKode string `gorm:"column:setoran_kode;type:varchar(20);not null;uniqueIndex:uniq_setoran_kode" json:"setoran_kode"`

	SetoranNasabahID uuid.UUID `gorm:"column:setoran_nasabah_id;type:uuid;not null;index" json:"setoran_nasabah_id"`
	SetoranPetugasID uuid.UUID `gorm:"column:setoran_petugas_id;type:uuid;not null" json:"setoran_petugas_id"`
	SetoranPosID     uuid.UUID `gorm:"column:setoran_pos_id;type:uuid;not null;index" json:"setoran_pos_id"`

	SetoranTotalBerat float64 `gorm:"column:setoran_total_berat;type:numeric(10,2);not null" json:"setoran_total_berat"`
	SetoranTotalPoin  int64   `gorm:"column:setoran_total_poin;not null" json:"setoran_total_poin"`

	SetoranStatus SetoranStatus `gorm:"column:setoran_status;type:varchar(20);not null;default:'selesai';index" json:"setoran_status"`

	// URL bukti foto dari storage eksternal; core hanya menyimpan referensi.
	SetoranBuktiFoto datatypes.JSON `gorm:"column:setoran_bukti_foto;type:jsonb" json:"setoran_bukti_foto,omitempty"`

	SetoranTanggal   time.Time `gorm:"column:setoran_tanggal;not null;index" json:"setoran_tanggal"`
	SetoranCreatedAt time.Time `gorm:"column:setoran_created_at;not null" json:"setoran_created_at"`
	SetoranUpdatedAt time.Time `gorm:"column:setoran_updated_at;not null" json:"setoran_updated_at"`

	SetoranDetails []SetoranDetail `gorm:"foreignKey:SetoranDetailSetoranID;references:SetoranID" json:"setoran_details,omitempty"`
}

func (Setoran) TableName() string {
	return "setoran"
}

func (m *Setoran) BeforeCreate(tx *gorm.DB) (err error) {
	if m.SetoranID == uuid.Nil {
		m.SetoranID = uuid.New()
	}
	now := time.Now()
	if m.SetoranCreatedAt.IsZero() {
		m.SetoranCreatedAt = now
	}
	m.SetoranUpdatedAt = now
	return nil
}

func (m *Setoran) BeforeUpdate(tx *gorm.DB) (err error) {
	m.SetoranUpdatedAt = time.Now()
	return nil
}

// SetoranDetail = satu baris (kategori, berat) dengan tarif yang di-snapshot.
type SetoranDetail struct {
	SetoranDetailID uuid.UUID `gorm:"column:setoran_detail_id;type:uuid;primaryKey" json:"setoran_detail_id"`

	SetoranDetailSetoranID  uuid.UUID `gorm:"column:setoran_detail_setoran_id;type:uuid;not null;index" json:"setoran_detail_setoran_id"`
	SetoranDetailKategoriID uuid.UUID `gorm:"column:setoran_detail_kategori_id;type:uuid;not null" json:"setoran_detail_kategori_id"`

	SetoranDetailBerat     float64 `gorm:"column:setoran_detail_berat;type:numeric(10,2);not null" json:"setoran_detail_berat"`
	SetoranDetailPoinPerKg int64   `gorm:"column:setoran_detail_poin_per_kg;not null" json:"setoran_detail_poin_per_kg"`
	SetoranDetailSubtotal  int64   `gorm:"column:setoran_detail_subtotal;not null" json:"setoran_detail_subtotal"`
}

func (SetoranDetail) TableName() string {
	return "setoran_detail"
}

func (m *SetoranDetail) BeforeCreate(tx *gorm.DB) (err error) {
	if m.SetoranDetailID == uuid.Nil {
		m.SetoranDetailID = uuid.New()
	}
	return nil
}
