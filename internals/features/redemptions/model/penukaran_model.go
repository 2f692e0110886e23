package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// =========================================================
// ENUM: status penukaran
// =========================================================

type PenukaranStatus string

const (
	PenukaranStatusMenunggu   PenukaranStatus = "menunggu"
	PenukaranStatusDisetujui  PenukaranStatus = "disetujui"
	PenukaranStatusDibatalkan PenukaranStatus = "dibatalkan"
	PenukaranStatusKadaluwarsa PenukaranStatus = "kadaluwarsa"
)

// =========================================================
// MODEL
// =========================================================

// Penukaran = permintaan tukar poin → sembako, diambil di satu pos.
// Total poin dikunci saat checkout (= Σ subtotal detail). Baris tidak pernah
// dihapus fisik; semua perpindahan status lewat PenukaranService.
//
// Pengambilan/penutupan ditandai flag PenukaranSelesai + CompletedAt yang
// eksplisit, bukan disimpulkan dari timestamp:
//   - status disetujui  + selesai → sudah diambil nasabah
//   - status dibatalkan + selesai → ditutup final oleh admin
type Penukaran struct {
	PenukaranID uuid.UUID `gorm:"column:penukaran_id;type:uuid;primaryKey" json:"penukaran_id"`

	PenukaranKode string `gorm:"column:penukaran_kode;type:varchar(20);not null;uniqueIndex:uniq_penukaran_kode" json:"penukaran_kode"`

	PenukaranNasabahID uuid.UUID `gorm:"column:penukaran_nasabah_id;type:uuid;not null;index" json:"penukaran_nasabah_id"`
	PenukaranPosID     uuid.UUID `gorm:"column:penukaran_pos_id;type:uuid;not null;index" json:"penukaran_pos_id"`

	PenukaranTotalPoin int64 `gorm:"column:penukaran_total_poin;not null" json:"penukaran_total_poin"`

	PenukaranStatus PenukaranStatus `gorm:"column:penukaran_status;type:varchar(20);not null;default:'menunggu';index" json:"penukaran_status"`

	// Admin yang menyetujui/membatalkan; petugas yang menyerahkan barang.
	PenukaranAdminID   *uuid.UUID `gorm:"column:penukaran_admin_id;type:uuid" json:"penukaran_admin_id,omitempty"`
	PenukaranPetugasID *uuid.UUID `gorm:"column:penukaran_petugas_id;type:uuid" json:"penukaran_petugas_id,omitempty"`

	PenukaranDisetujuiPada *time.Time `gorm:"column:penukaran_disetujui_pada" json:"penukaran_disetujui_pada,omitempty"`
	PenukaranExpiredAt     *time.Time `gorm:"column:penukaran_expired_at;index" json:"penukaran_expired_at,omitempty"`

	PenukaranSelesai     bool       `gorm:"column:penukaran_selesai;not null;default:false" json:"penukaran_selesai"`
	PenukaranCompletedAt *time.Time `gorm:"column:penukaran_completed_at" json:"penukaran_completed_at,omitempty"`

	PenukaranCreatedAt time.Time `gorm:"column:penukaran_created_at;not null" json:"penukaran_created_at"`
	PenukaranUpdatedAt time.Time `gorm:"column:penukaran_updated_at;not null" json:"penukaran_updated_at"`

	PenukaranDetails []PenukaranDetail `gorm:"foreignKey:PenukaranDetailPenukaranID;references:PenukaranID" json:"penukaran_details,omitempty"`
}

func (Penukaran) TableName() string {
	return "penukaran"
}

func (m *Penukaran) BeforeCreate(tx *gorm.DB) (err error) {
	if m.PenukaranID == uuid.Nil {
		m.PenukaranID = uuid.New()
	}
	now := time.Now()
	if m.PenukaranCreatedAt.IsZero() {
		m.PenukaranCreatedAt = now
	}
	m.PenukaranUpdatedAt = now
	return nil
}

func (m *Penukaran) BeforeUpdate(tx *gorm.DB) (err error) {
	m.PenukaranUpdatedAt = time.Now()
	return nil
}

// PenukaranDetail = satu baris sembako dengan harga poin yang di-snapshot
// saat checkout.
type PenukaranDetail struct {
	PenukaranDetailID uuid.UUID `gorm:"column:penukaran_detail_id;type:uuid;primaryKey" json:"penukaran_detail_id"`

	PenukaranDetailPenukaranID uuid.UUID `gorm:"column:penukaran_detail_penukaran_id;type:uuid;not null;index" json:"penukaran_detail_penukaran_id"`
	PenukaranDetailSembakoID   uuid.UUID `gorm:"column:penukaran_detail_sembako_id;type:uuid;not null" json:"penukaran_detail_sembako_id"`

	PenukaranDetailJumlah     int64 `gorm:"column:penukaran_detail_jumlah;not null;check:penukaran_detail_jumlah>0" json:"penukaran_detail_jumlah"`
	PenukaranDetailPoinSatuan int64 `gorm:"column:penukaran_detail_poin_satuan;not null" json:"penukaran_detail_poin_satuan"`
	PenukaranDetailSubtotal   int64 `gorm:"column:penukaran_detail_subtotal;not null" json:"penukaran_detail_subtotal"`
}

func (PenukaranDetail) TableName() string {
	return "penukaran_detail"
}

func (m *PenukaranDetail) BeforeCreate(tx *gorm.DB) (err error) {
	if m.PenukaranDetailID == uuid.Nil {
		m.PenukaranDetailID = uuid.New()
	}
	return nil
}
