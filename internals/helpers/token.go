package helper

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocUserID = "user_id"
	LocRole   = "role"
	LocPosID  = "pos_id"
)

// GetRawAccessToken mengembalikan access token dari:
// 1) cookie "access_token"
// 2) Authorization header "Bearer <token>"
func GetRawAccessToken(c *fiber.Ctx) string {
	if v := strings.TrimSpace(c.Cookies("access_token")); v != "" {
		return v
	}
	const p = "Bearer "
	auth := c.Get("Authorization")
	if len(auth) > len(p) && strings.HasPrefix(auth, p) {
		return strings.TrimSpace(auth[len(p):])
	}
	return ""
}

// GetUserIDFromLocals membaca id pengguna yang diset middleware auth.
func GetUserIDFromLocals(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(LocUserID).(string)
	if !ok || v == "" {
		return uuid.Nil, errors.New("user id tidak ditemukan di token")
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, errors.New("user id pada token tidak valid")
	}
	return id, nil
}

func GetRoleFromLocals(c *fiber.Ctx) string {
	v, _ := c.Locals(LocRole).(string)
	return v
}

// GetPosIDFromLocals membaca pos tempat petugas bertugas (boleh kosong untuk admin).
func GetPosIDFromLocals(c *fiber.Ctx) (uuid.UUID, bool) {
	v, ok := c.Locals(LocPosID).(string)
	if !ok || v == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
