package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/model"
)

////////////////////////////////////////////////////////////////////////////////
// SETORAN: DTO
////////////////////////////////////////////////////////////////////////////////

type SetoranLineDTO struct {
	KategoriID uuid.UUID `json:"kategori_id" validate:"required"`
	Berat      float64   `json:"berat" validate:"required,gt=0"`
}

type SetoranCreateDTO struct {
	NasabahID uuid.UUID        `json:"nasabah_id" validate:"required"`
	Items     []SetoranLineDTO `json:"items" validate:"required,min=1,dive"`
	FotoURLs  []string         `json:"foto_urls,omitempty"`
}

type SetoranSetStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=selesai dibatalkan"`
}

// Kategori sampah (katalog tarif)

type KategoriSampahCreateDTO struct {
	Nama      string `json:"nama" validate:"required"`
	PoinPerKg int64  `json:"poin_per_kg" validate:"required,min=0"`
}

// Response

type SetoranDetailResponse struct {
	KategoriID uuid.UUID `json:"kategori_id"`
	Berat      float64   `json:"berat"`
	PoinPerKg  int64     `json:"poin_per_kg"`
	Subtotal   int64     `json:"subtotal"`
}

type SetoranResponse struct {
	SetoranID uuid.UUID `json:"setoran_id"`
	Kode      string    `json:"kode"`

	NasabahID uuid.UUID `json:"nasabah_id"`
	PetugasID uuid.UUID `json:"petugas_id"`
	PosID     uuid.UUID `json:"pos_id"`

	TotalBerat float64 `json:"total_berat"`
	TotalPoin  int64   `json:"total_poin"`
	Status     string  `json:"status"`

	BuktiFoto []string  `json:"bukti_foto,omitempty"`
	Tanggal   time.Time `json:"tanggal"`

	Details []SetoranDetailResponse `json:"details,omitempty"`
}

func ToSetoranResponse(m *model.Setoran) SetoranResponse {
	resp := SetoranResponse{
		SetoranID:  m.SetoranID,
		Kode:       m.SetoranKode,
		NasabahID:  m.SetoranNasabahID,
		PetugasID:  m.SetoranPetugasID,
		PosID:      m.SetoranPosID,
		TotalBerat: m.SetoranTotalBerat,
		TotalPoin:  m.SetoranTotalPoin,
		Status:     string(m.SetoranStatus),
		Tanggal:    m.SetoranTanggal,
	}
	if len(m.SetoranBuktiFoto) > 0 {
		_ = json.Unmarshal(m.SetoranBuktiFoto, &resp.BuktiFoto)
	}
	for _, d := range m.SetoranDetails {
		resp.Details = append(resp.Details, SetoranDetailResponse{
			KategoriID: d.SetoranDetailKategoriID,
			Berat:      d.SetoranDetailBerat,
			PoinPerKg:  d.SetoranDetailPoinPerKg,
			Subtotal:   d.SetoranDetailSubtotal,
		})
	}
	return resp
}
