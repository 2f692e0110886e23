package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/controller"
)

func AuthRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewAuthController(db)

	auth := api.Group("/auth")
	auth.Post("/register", ctl.RegisterNasabah)
	auth.Post("/login", ctl.Login)
}
