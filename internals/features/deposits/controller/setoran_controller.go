package controller

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/dto"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/service"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

type SetoranController struct {
	DB       *gorm.DB
	Service  *service.SetoranService
	Validate *validator.Validate
}

func NewSetoranController(db *gorm.DB, svc *service.SetoranService) *SetoranController {
	return &SetoranController{
		DB:       db,
		Service:  svc,
		Validate: validator.New(),
	}
}

// POST /api/setoran : petugas mencatat setoran; bukti foto dikirim multipart
// bersama payload JSON di field "data".
func (ctl *SetoranController) Create(c *fiber.Ctx) error {
	var body dto.SetoranCreateDTO
	raw := c.FormValue("data")
	if raw != "" {
		if err := fiberJSONUnmarshal(c, raw, &body); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	} else if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	petugasID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}
	posID, ok := helper.GetPosIDFromLocals(c)
	if !ok {
		return helper.JsonError(c, fiber.StatusForbidden, "Akun petugas tidak terikat ke pos")
	}

	fotoURLs := body.FotoURLs
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["bukti_foto"] {
			url, err := helper.SaveImageAsWebp("setoran", fh)
			if err != nil {
				return helper.JsonError(c, fiber.StatusBadRequest, "Bukti foto tidak bisa diproses")
			}
			fotoURLs = append(fotoURLs, url)
		}
	}

	lines := make([]service.SetoranLine, 0, len(body.Items))
	for _, item := range body.Items {
		lines = append(lines, service.SetoranLine{KategoriID: item.KategoriID, Berat: item.Berat})
	}

	setoran, err := ctl.Service.RecordDeposit(body.NasabahID, petugasID, posID, lines, fotoURLs)
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonCreated(c, "Setoran dicatat", dto.ToSetoranResponse(setoran))
}

// PATCH /api/setoran/:id/status : admin membatalkan/memulihkan setoran;
// kompensasi saldo dihitung service dari pasangan status lama→baru.
func (ctl *SetoranController) SetStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID setoran tidak valid")
	}

	var body dto.SetoranSetStatusDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	setoran, err := ctl.Service.SetStatus(id, model.SetoranStatus(body.Status))
	if err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "Status setoran diperbarui", dto.ToSetoranResponse(setoran))
}

// GET /api/setoran/:id
func (ctl *SetoranController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID setoran tidak valid")
	}

	var setoran model.Setoran
	if err := ctl.DB.Preload("SetoranDetails").
		Where("setoran_id = ?", id).
		First(&setoran).Error; err != nil {
		return ctl.mapError(c, err)
	}
	return helper.JsonOK(c, "", dto.ToSetoranResponse(&setoran))
}

// GET /api/setoran?nasabah_id= : riwayat setoran
func (ctl *SetoranController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctl.DB.Model(&model.Setoran{})
	if v := c.Query("nasabah_id"); v != "" {
		nasabahID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "nasabah_id tidak valid")
		}
		q = q.Where("setoran_nasabah_id = ?", nasabahID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat riwayat")
	}

	var rows []model.Setoran
	if err := q.Preload("SetoranDetails").
		Order("setoran_created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat riwayat")
	}

	resp := make([]dto.SetoranResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, dto.ToSetoranResponse(&rows[i]))
	}
	return helper.JsonList(c, "", resp, helper.BuildPagination(paging, total))
}

func (ctl *SetoranController) mapError(c *fiber.Ctx, err error) error {
	var kategoriErr *service.InvalidCategoryError
	if errors.As(err, &kategoriErr) {
		return helper.JsonError(c, fiber.StatusBadRequest, "Kategori sampah tidak ditemukan")
	}
	var saldoErr *memberService.InsufficientBalanceError
	if errors.As(err, &saldoErr) {
		return helper.JsonError(c, fiber.StatusConflict,
			fmt.Sprintf("Saldo nasabah tinggal %d, tidak cukup untuk pembatalan %d poin", saldoErr.Saldo, saldoErr.Dibutuhkan))
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Setoran tidak ditemukan")
	case errors.Is(err, service.ErrInvalidStatus):
		return helper.JsonError(c, fiber.StatusBadRequest, "Status tidak dikenal")
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, "Terjadi kesalahan")
}

func fiberJSONUnmarshal(c *fiber.Ctx, raw string, out any) error {
	return c.App().Config().JSONDecoder([]byte(raw), out)
}
