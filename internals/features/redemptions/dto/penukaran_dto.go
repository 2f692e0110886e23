package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/model"
)

////////////////////////////////////////////////////////////////////////////////
// PENUKARAN: DTO
////////////////////////////////////////////////////////////////////////////////

type PenukaranItemDTO struct {
	SembakoID uuid.UUID `json:"sembako_id" validate:"required"`
	Jumlah    int64     `json:"jumlah" validate:"required,min=1"`
}

type PenukaranCheckoutDTO struct {
	PosID uuid.UUID          `json:"pos_id" validate:"required"`
	Items []PenukaranItemDTO `json:"items" validate:"required,min=1,dive"`
}

type PenukaranScanDTO struct {
	Kode string `json:"kode" validate:"required"`
}

// Response

type PenukaranDetailResponse struct {
	SembakoID  uuid.UUID `json:"sembako_id"`
	Jumlah     int64     `json:"jumlah"`
	PoinSatuan int64     `json:"poin_satuan"`
	Subtotal   int64     `json:"subtotal"`
}

type PenukaranResponse struct {
	PenukaranID uuid.UUID `json:"penukaran_id"`
	Kode        string    `json:"kode"`

	NasabahID uuid.UUID `json:"nasabah_id"`
	PosID     uuid.UUID `json:"pos_id"`

	TotalPoin int64  `json:"total_poin"`
	Status    string `json:"status"`
	Selesai   bool   `json:"selesai"`

	AdminID   *uuid.UUID `json:"admin_id,omitempty"`
	PetugasID *uuid.UUID `json:"petugas_id,omitempty"`

	DisetujuiPada *time.Time `json:"disetujui_pada,omitempty"`
	ExpiredAt     *time.Time `json:"expired_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`

	Details []PenukaranDetailResponse `json:"details,omitempty"`
}

func ToPenukaranResponse(m *model.Penukaran) PenukaranResponse {
	resp := PenukaranResponse{
		PenukaranID:   m.PenukaranID,
		Kode:          m.PenukaranKode,
		NasabahID:     m.PenukaranNasabahID,
		PosID:         m.PenukaranPosID,
		TotalPoin:     m.PenukaranTotalPoin,
		Status:        string(m.PenukaranStatus),
		Selesai:       m.PenukaranSelesai,
		AdminID:       m.PenukaranAdminID,
		PetugasID:     m.PenukaranPetugasID,
		DisetujuiPada: m.PenukaranDisetujuiPada,
		ExpiredAt:     m.PenukaranExpiredAt,
		CompletedAt:   m.PenukaranCompletedAt,
		CreatedAt:     m.PenukaranCreatedAt,
	}
	for _, d := range m.PenukaranDetails {
		resp.Details = append(resp.Details, PenukaranDetailResponse{
			SembakoID:  d.PenukaranDetailSembakoID,
			Jumlah:     d.PenukaranDetailJumlah,
			PoinSatuan: d.PenukaranDetailPoinSatuan,
			Subtotal:   d.PenukaranDetailSubtotal,
		})
	}
	return resp
}
