package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pengguna = akun login (nasabah, petugas, admin). Petugas terikat ke satu
// pos; akun nasabah terhubung ke baris Nasabah miliknya.
type Pengguna struct {
	PenggunaID uuid.UUID `gorm:"column:pengguna_id;type:uuid;primaryKey" json:"pengguna_id"`

	PenggunaNama     string `gorm:"column:pengguna_nama;type:varchar(100);not null" json:"pengguna_nama"`
	PenggunaUsername string `gorm:"column:pengguna_username;type:varchar(50);not null;uniqueIndex:uniq_pengguna_username" json:"pengguna_username"`
	PenggunaPassword string `gorm:"column:pengguna_password;type:text;not null" json:"-"`

	PenggunaRole string `gorm:"column:pengguna_role;type:varchar(20);not null;default:'nasabah'" json:"pengguna_role"`

	PenggunaPosID     *uuid.UUID `gorm:"column:pengguna_pos_id;type:uuid" json:"pengguna_pos_id,omitempty"`
	PenggunaNasabahID *uuid.UUID `gorm:"column:pengguna_nasabah_id;type:uuid;index" json:"pengguna_nasabah_id,omitempty"`

	PenggunaCreatedAt time.Time      `gorm:"column:pengguna_created_at;not null" json:"pengguna_created_at"`
	PenggunaUpdatedAt time.Time      `gorm:"column:pengguna_updated_at;not null" json:"pengguna_updated_at"`
	PenggunaDeletedAt gorm.DeletedAt `gorm:"column:pengguna_deleted_at;index" json:"-"`
}

func (Pengguna) TableName() string {
	return "pengguna"
}

func (m *Pengguna) BeforeCreate(tx *gorm.DB) (err error) {
	if m.PenggunaID == uuid.Nil {
		m.PenggunaID = uuid.New()
	}
	now := time.Now()
	if m.PenggunaCreatedAt.IsZero() {
		m.PenggunaCreatedAt = now
	}
	m.PenggunaUpdatedAt = now
	return nil
}

func (m *Pengguna) BeforeUpdate(tx *gorm.DB) (err error) {
	m.PenggunaUpdatedAt = time.Now()
	return nil
}
