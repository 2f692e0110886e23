package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/configs"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/constants"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/dto"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/model"
	memberModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

const accessTokenTTL = 24 * time.Hour

type AuthController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validate: validator.New()}
}

// POST /api/auth/register : daftar nasabah baru: buat profil + akun login
// dalam satu transaksi.
func (ctl *AuthController) RegisterNasabah(c *fiber.Ctx) error {
	var body dto.RegisterNasabahDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memproses password")
	}

	var pengguna model.Pengguna
	err = ctl.DB.Transaction(func(tx *gorm.DB) error {
		nasabah := memberModel.Nasabah{
			NasabahNama:    body.Nama,
			NasabahTelepon: body.Telepon,
			NasabahAlamat:  body.Alamat,
		}
		if err := tx.Create(&nasabah).Error; err != nil {
			return err
		}

		pengguna = model.Pengguna{
			PenggunaNama:      body.Nama,
			PenggunaUsername:  body.Username,
			PenggunaPassword:  string(hash),
			PenggunaRole:      constants.RoleNasabah,
			PenggunaNasabahID: &nasabah.NasabahID,
		}
		return tx.Create(&pengguna).Error
	})
	if err != nil {
		return helper.JsonError(c, fiber.StatusConflict, "Username sudah dipakai")
	}

	return helper.JsonCreated(c, "Registrasi berhasil", fiber.Map{
		"pengguna_id": pengguna.PenggunaID,
		"username":    pengguna.PenggunaUsername,
	})
}

// POST /api/auth/login
func (ctl *AuthController) Login(c *fiber.Ctx) error {
	var body dto.LoginDTO
	if err := c.BodyParser(&body); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(body); err != nil {
		return helper.JsonValidationError(c, err)
	}

	var pengguna model.Pengguna
	if err := ctl.DB.Where("pengguna_username = ?", body.Username).First(&pengguna).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Username atau password salah")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal memuat akun")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(pengguna.PenggunaPassword), []byte(body.Password)); err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Username atau password salah")
	}

	claims := jwt.MapClaims{
		"id":   pengguna.PenggunaID.String(),
		"role": pengguna.PenggunaRole,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	}
	if pengguna.PenggunaPosID != nil {
		claims["pos_id"] = pengguna.PenggunaPosID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}

	return helper.JsonOK(c, "Login berhasil", dto.LoginResponse{
		AccessToken: signed,
		Role:        pengguna.PenggunaRole,
		Nama:        pengguna.PenggunaNama,
	})
}
