package controller

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	authModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/model"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/dto"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/service"
	rewardService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

type PenukaranController struct {
	DB       *gorm.DB
	Service  *service.PenukaranService
	Validate *validator.Validate
}

func NewPenukaranController(db *gorm.DB, svc *service.PenukaranService) *PenukaranController {
	return &PenukaranController{
		DB:       db,
		Service:  svc,
		Validate: validator.New(),
	}
}

// POST /api/penukaran : nasabah checkout
func (ctl *PenukaranController) Checkout(c *fiber.Ctx) error {
	var body dto.PenukaranCheckoutDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	nasabahID, err := ctl.nasabahIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	lines := make([]service.CheckoutLine, 0, len(body.Items))
	for _, item := range body.Items {
		lines = append(lines, service.CheckoutLine{SembakoID: item.SembakoID, Jumlah: item.Jumlah})
	}

	penukaran, err := ctl.Service.Checkout(nasabahID, body.PosID, lines)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonCreated(c, "Permintaan penukaran dibuat", dto.ToPenukaranResponse(penukaran))
}

// PATCH /api/penukaran/:id/approve : admin
func (ctl *PenukaranController) Approve(c *fiber.Ctx) error {
	id, adminID, err := ctl.idAndActor(c)
	if err != nil {
		return err
	}
	penukaran, err := ctl.Service.Approve(id, adminID)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Penukaran disetujui", dto.ToPenukaranResponse(penukaran))
}

// PATCH /api/penukaran/:id/reject : admin
func (ctl *PenukaranController) Reject(c *fiber.Ctx) error {
	id, adminID, err := ctl.idAndActor(c)
	if err != nil {
		return err
	}
	penukaran, err := ctl.Service.Reject(id, adminID)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Penukaran dibatalkan", dto.ToPenukaranResponse(penukaran))
}

// PATCH /api/penukaran/:id/undo-approve : admin
func (ctl *PenukaranController) UndoApprove(c *fiber.Ctx) error {
	id, err := ctl.pathID(c)
	if err != nil {
		return err
	}
	penukaran, err := ctl.Service.UndoApprove(id)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Persetujuan dibatalkan, kembali menunggu", dto.ToPenukaranResponse(penukaran))
}

// PATCH /api/penukaran/:id/undo-reject : admin
func (ctl *PenukaranController) UndoReject(c *fiber.Ctx) error {
	id, err := ctl.pathID(c)
	if err != nil {
		return err
	}
	penukaran, err := ctl.Service.UndoReject(id)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Pembatalan di-undo, kembali menunggu", dto.ToPenukaranResponse(penukaran))
}

// PATCH /api/penukaran/:id/finalize : admin, tutup final penukaran dibatalkan
func (ctl *PenukaranController) FinalizeRejection(c *fiber.Ctx) error {
	id, adminID, err := ctl.idAndActor(c)
	if err != nil {
		return err
	}
	penukaran, err := ctl.Service.FinalizeRejection(id, adminID)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Penukaran ditutup final", dto.ToPenukaranResponse(penukaran))
}

// PATCH /api/penukaran/:id/pickup : petugas di pos
func (ctl *PenukaranController) ConfirmPickup(c *fiber.Ctx) error {
	id, petugasID, err := ctl.idAndActor(c)
	if err != nil {
		return err
	}
	posID, ok := helper.GetPosIDFromLocals(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "Akun petugas tidak terikat ke pos")
	}
	penukaran, err := ctl.Service.ConfirmPickup(id, petugasID, posID)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Pengambilan dikonfirmasi", dto.ToPenukaranResponse(penukaran))
}

// POST /api/penukaran/scan : petugas scan/ketik kode
func (ctl *PenukaranController) ScanByCode(c *fiber.Ctx) error {
	var body dto.PenukaranScanDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	penukaran, err := ctl.Service.ScanByCode(body.Kode)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Penukaran siap diambil", dto.ToPenukaranResponse(penukaran))
}

// POST /api/penukaran/sweep : admin, jalankan sapuan kadaluwarsa on-demand
func (ctl *PenukaranController) Sweep(c *fiber.Ctx) error {
	count, err := ctl.Service.SweepExpired()
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Sapuan gagal")
	}
	return helper.JsonOK(c, "Sapuan selesai", fiber.Map{"count": count})
}

// GET /api/penukaran/:id
func (ctl *PenukaranController) GetByID(c *fiber.Ctx) error {
	id, err := ctl.pathID(c)
	if err != nil {
		return err
	}
	penukaran, err := ctl.Service.GetByID(id)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToPenukaranResponse(penukaran))
}

// GET /api/penukaran : riwayat milik nasabah login
func (ctl *PenukaranController) ListMine(c *fiber.Ctx) error {
	nasabahID, err := ctl.nasabahIDFromToken(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := ctl.DB.Model(&model.Penukaran{}).
		Where("penukaran_nasabah_id = ?", nasabahID).
		Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat riwayat")
	}

	var rows []model.Penukaran
	if err := ctl.DB.Preload("PenukaranDetails").
		Where("penukaran_nasabah_id = ?", nasabahID).
		Order("penukaran_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat riwayat")
	}

	resp := make([]dto.PenukaranResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, dto.ToPenukaranResponse(&rows[i]))
	}
	return helper.JsonList(c, "", resp, helper.BuildPagination(paging, total))
}

/* ===============================
   internal
=================================*/

func (ctl *PenukaranController) pathID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, "ID penukaran tidak valid")
	}
	return id, nil
}

func (ctl *PenukaranController) idAndActor(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, helper.JsonError(c, fiber.StatusBadRequest, "ID penukaran tidak valid")
	}
	actorID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	return id, actorID, nil
}

func (ctl *PenukaranController) nasabahIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return uuid.Nil, err
	}
	var pengguna authModel.Pengguna
	if err := ctl.DB.Where("pengguna_id = ?", userID).First(&pengguna).Error; err != nil {
		return uuid.Nil, errors.New("akun tidak ditemukan")
	}
	if pengguna.PenggunaNasabahID == nil {
		return uuid.Nil, errors.New("akun tidak terhubung ke profil nasabah")
	}
	return *pengguna.PenggunaNasabahID, nil
}

// mapError menerjemahkan error bertipe dari core jadi respons HTTP.
func (ctl *PenukaranController) mapError(c *fiber.Ctx, err error) error {
	var stokErr *rewardService.InsufficientStockError
	if errors.As(err, &stokErr) {
		return helper.JsonError(c, fiber.StatusConflict,
			fmt.Sprintf("Stok tidak mencukupi: tersisa %d, diminta %d", stokErr.Tersedia, stokErr.Diminta))
	}
	var saldoErr *memberService.InsufficientBalanceError
	if errors.As(err, &saldoErr) {
		return helper.JsonError(c, fiber.StatusConflict,
			fmt.Sprintf("Saldo poin tidak mencukupi: %d dari %d yang dibutuhkan", saldoErr.Saldo, saldoErr.Dibutuhkan))
	}
	var rewardErr *service.InvalidRewardError
	if errors.As(err, &rewardErr) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Sembako tidak ditemukan di katalog")
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Penukaran tidak ditemukan")
	case errors.Is(err, service.ErrAlreadyProcessed):
		return helper.JsonError(c, fiber.StatusConflict, "Penukaran sudah diproses")
	case errors.Is(err, service.ErrNotApproved):
		return helper.JsonError(c, fiber.StatusConflict, "Penukaran belum disetujui")
	case errors.Is(err, service.ErrNotRejected):
		return helper.JsonError(c, fiber.StatusConflict, "Penukaran tidak berstatus dibatalkan")
	case errors.Is(err, service.ErrAlreadyFulfilled):
		return helper.JsonError(c, fiber.StatusConflict, "Penukaran sudah diambil")
	case errors.Is(err, service.ErrAlreadyFinalized):
		return helper.JsonError(c, fiber.StatusConflict, "Penukaran sudah ditutup final")
	case errors.Is(err, service.ErrExpired):
		return helper.JsonError(c, fiber.StatusGone, "Penukaran sudah kadaluwarsa")
	case errors.Is(err, service.ErrNotReady):
		return helper.JsonError(c, fiber.StatusConflict, "Penukaran belum siap diambil")
	case errors.Is(err, service.ErrWrongPos):
		return helper.JsonError(c, fiber.StatusConflict, "Pengambilan harus di pos yang tertera")
	case errors.Is(err, database.ErrTransientFailure):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Sistem sibuk, coba lagi")
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan")
}
