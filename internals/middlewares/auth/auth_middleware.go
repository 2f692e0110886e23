package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/configs"
	helper "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/helpers"
)

// AuthMiddleware memverifikasi JWT dan menaruh identitas (id, role, pos) di
// Locals untuk dipakai controller.
func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := helper.GetRawAccessToken(c)
		if tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token tidak ditemukan")
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET kosong")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if exp, ok := claims["exp"].(float64); ok {
			if time.Now().After(time.Unix(int64(exp), 0)) {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
			}
		}

		if id, ok := claims["id"].(string); ok {
			c.Locals(helper.LocUserID, id)
		}
		if role, ok := claims["role"].(string); ok {
			c.Locals(helper.LocRole, role)
		}
		if posID, ok := claims["pos_id"].(string); ok {
			c.Locals(helper.LocPosID, posID)
		}

		return c.Next()
	}
}
