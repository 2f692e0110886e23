package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

type NasabahController struct {
	DB     *gorm.DB
	Ledger *service.Ledger
}

func NewNasabahController(db *gorm.DB, ledger *service.Ledger) *NasabahController {
	return &NasabahController{DB: db, Ledger: ledger}
}

// GET /api/nasabah/me : profil + saldo nasabah login
func (ctl *NasabahController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromLocals(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	var pengguna authModel.Pengguna
	if err := ctl.DB.Where("pengguna_id = ?", userID).First(&pengguna).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Akun tidak ditemukan")
	}
	if pengguna.PenggunaNasabahID == nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Akun tidak terhubung ke profil nasabah")
	}

	var nasabah model.Nasabah
	if err := ctl.DB.Where("nasabah_id = ?", *pengguna.PenggunaNasabahID).First(&nasabah).Error; err != nil {
		return helper.JsonError(c, fiber.StatusNotFound, "Profil nasabah tidak ditemukan")
	}
	return helper.JsonOK(c, "", nasabah)
}

// GET /api/nasabah/:id : detail nasabah (petugas/admin)
func (ctl *NasabahController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID nasabah tidak valid")
	}

	var nasabah model.Nasabah
	if err := ctl.DB.Where("nasabah_id = ?", id).First(&nasabah).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Nasabah tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat nasabah")
	}
	return helper.JsonOK(c, "", nasabah)
}

// GET /api/nasabah : daftar nasabah (petugas/admin)
func (ctl *NasabahController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := ctl.DB.Model(&model.Nasabah{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat nasabah")
	}

	var rows []model.Nasabah
	if err := ctl.DB.Order("nasabah_nama ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat nasabah")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(paging, total))
}
