package auth

import (
	"github.com/gofiber/fiber/v2"

	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

// RequireRoles menolak request yang role-nya tidak ada di daftar.
func RequireRoles(message string, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role := helper.GetRoleFromLocals(c)
		if _, ok := allowed[role]; !ok {
			return helper.JsonError(c, fiber.StatusForbidden, message)
		}
		return c.Next()
	}
}
