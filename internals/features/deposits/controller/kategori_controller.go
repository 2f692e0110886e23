package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/dto"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/model"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

type KategoriController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewKategoriController(db *gorm.DB) *KategoriController {
	return &KategoriController{DB: db, Validate: validator.New()}
}

// POST /api/kategori-sampah : admin kelola tarif
func (ctl *KategoriController) Create(c *fiber.Ctx) error {
	var body dto.KategoriSampahCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	kategori := model.KategoriSampah{
		KategoriSampahNama:      body.Nama,
		KategoriSampahPoinPerKg: body.PoinPerKg,
	}
	if err := ctl.DB.Create(&kategori).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat kategori")
	}
	return helper.JsonCreated(c, "Kategori dibuat", kategori)
}

// GET /api/kategori-sampah
func (ctl *KategoriController) List(c *fiber.Ctx) error {
	var rows []model.KategoriSampah
	if err := ctl.DB.Order("kategori_sampah_nama ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat kategori")
	}
	return helper.JsonOK(c, "", rows)
}
