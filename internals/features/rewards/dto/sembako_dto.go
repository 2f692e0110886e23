package dto

import (
	"github.com/google/uuid"
)

type SembakoCreateDTO struct {
	Nama      string  `json:"nama" validate:"required"`
	Kategori  *string `json:"kategori,omitempty"`
	PoinTukar int64   `json:"poin_tukar" validate:"min=0"`
}

type SembakoUpdateDTO struct {
	Nama      *string `json:"nama,omitempty"`
	Kategori  *string `json:"kategori,omitempty"`
	PoinTukar *int64  `json:"poin_tukar,omitempty" validate:"omitempty,min=0"`
}

type StokAdjustDTO struct {
	SembakoID uuid.UUID `json:"sembako_id" validate:"required"`
	PosID     uuid.UUID `json:"pos_id" validate:"required"`
	Jumlah    int64     `json:"jumlah" validate:"min=0"`
}
