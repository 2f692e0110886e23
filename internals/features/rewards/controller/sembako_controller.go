package controller

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/cache"
	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/dto"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

const stokTotalCacheTTL = 60 * time.Second

type SembakoController struct {
	DB       *gorm.DB
	Stok     *service.StokService
	Validate *validator.Validate
}

func NewSembakoController(db *gorm.DB, stok *service.StokService) *SembakoController {
	return &SembakoController{
		DB:       db,
		Stok:     stok,
		Validate: validator.New(),
	}
}

// POST /api/sembako : admin tambah item katalog; foto opsional (multipart)
func (ctl *SembakoController) Create(c *fiber.Ctx) error {
	var body dto.SembakoCreateDTO
	if raw := c.FormValue("data"); raw != "" {
		if err := c.App().Config().JSONDecoder([]byte(raw), &body); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
		}
	} else if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	sembako := model.Sembako{
		SembakoNama:      body.Nama,
		SembakoKategori:  body.Kategori,
		SembakoPoinTukar: body.PoinTukar,
	}

	if fh, err := c.FormFile("foto"); err == nil && fh != nil {
		url, err := helper.SaveImageAsWebp("sembako", fh)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Foto tidak bisa diproses")
		}
		sembako.SembakoFoto = &url
	}

	if err := ctl.DB.Create(&sembako).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat sembako")
	}
	return helper.JsonCreated(c, "Sembako dibuat", sembako)
}

// GET /api/sembako
func (ctl *SembakoController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	var total int64
	if err := ctl.DB.Model(&model.Sembako{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat katalog")
	}

	var rows []model.Sembako
	if err := ctl.DB.Order("sembako_nama ASC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat katalog")
	}
	return helper.JsonList(c, "", rows, helper.BuildPagination(paging, total))
}

// PUT /api/sembako/:id : edit katalog (harga baru hanya berlaku untuk
// checkout berikutnya; penukaran berjalan memakai snapshot)
func (ctl *SembakoController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID sembako tidak valid")
	}

	var body dto.SembakoUpdateDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var sembako model.Sembako
	if err := ctl.DB.Where("sembako_id = ?", id).First(&sembako).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Sembako tidak ditemukan")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat sembako")
	}

	updates := map[string]interface{}{}
	if body.Nama != nil {
		updates["sembako_nama"] = *body.Nama
	}
	if body.Kategori != nil {
		updates["sembako_kategori"] = *body.Kategori
	}
	if body.PoinTukar != nil {
		updates["sembako_poin_tukar"] = *body.PoinTukar
	}
	if len(updates) > 0 {
		if err := ctl.DB.Model(&sembako).Updates(updates).Error; err != nil {
			return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui sembako")
		}
	}
	return helper.JsonOK(c, "Sembako diperbarui", sembako)
}

// PUT /api/sembako/stok : admin set stok absolut hasil hitung manual
func (ctl *SembakoController) AdjustStok(c *fiber.Ctx) error {
	var body dto.StokAdjustDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	err := database.WithTxRetry(ctl.DB, func(tx *gorm.DB) error {
		return ctl.Stok.Adjust(tx, body.SembakoID, body.PosID, body.Jumlah)
	})
	if err != nil {
		if errors.Is(err, service.ErrNegativeStock) {
			return helper.JsonError(c, fiber.StatusBadRequest, "Jumlah stok tidak boleh negatif")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengatur stok")
	}

	cache.Del(stokTotalCacheKey(body.SembakoID))
	return helper.JsonOK(c, "Stok diperbarui", body)
}

// GET /api/sembako/:id/stok-total : total stok semua pos (display saja,
// di-cache; keputusan reservasi selalu baca per pos)
func (ctl *SembakoController) StokTotal(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "ID sembako tidak valid")
	}

	key := stokTotalCacheKey(id)
	if cached, ok := cache.Get(key); ok {
		if total, err := strconv.ParseInt(cached, 10, 64); err == nil {
			return helper.JsonOK(c, "", fiber.Map{"sembako_id": id, "total": total, "cached": true})
		}
	}

	total, err := ctl.Stok.TotalAcrossPos(ctl.DB, id)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung stok")
	}

	cache.Set(key, strconv.FormatInt(total, 10), stokTotalCacheTTL)
	return helper.JsonOK(c, "", fiber.Map{"sembako_id": id, "total": total})
}

// GET /api/sembako/stok?pos_id= : daftar stok per pos
func (ctl *SembakoController) ListStok(c *fiber.Ctx) error {
	q := ctl.DB.Model(&model.StokSembako{})
	if v := c.Query("pos_id"); v != "" {
		posID, err := uuid.Parse(v)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "pos_id tidak valid")
		}
		q = q.Where("stok_sembako_pos_id = ?", posID)
	}

	var rows []model.StokSembako
	if err := q.Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat stok")
	}
	return helper.JsonOK(c, "", rows)
}

func stokTotalCacheKey(sembakoID uuid.UUID) string {
	return fmt.Sprintf("stok:total:%s", sembakoID)
}
