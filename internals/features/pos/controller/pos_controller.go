package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/model"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

type PosCreateDTO struct {
	Nama   string  `json:"nama" validate:"required"`
	Kode   string  `json:"kode" validate:"required,len=2,numeric"`
	Alamat *string `json:"alamat,omitempty"`
}

type PosController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewPosController(db *gorm.DB) *PosController {
	return &PosController{DB: db, Validate: validator.New()}
}

// POST /api/pos : admin daftarkan pos baru
func (ctl *PosController) Create(c *fiber.Ctx) error {
	var body PosCreateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	pos := model.Pos{
		PosNama:   body.Nama,
		PosKode:   body.Kode,
		PosAlamat: body.Alamat,
	}
	if err := ctl.DB.Create(&pos).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return helper.JsonError(c, fiber.StatusConflict, "Kode pos sudah dipakai")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat pos")
	}
	return helper.JsonCreated(c, "Pos dibuat", pos)
}

// GET /api/pos
func (ctl *PosController) List(c *fiber.Ctx) error {
	var rows []model.Pos
	if err := ctl.DB.Order("pos_kode ASC").Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat pos")
	}
	return helper.JsonOK(c, "", rows)
}
