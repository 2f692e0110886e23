package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/constants"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/controller"
	authMw "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares/auth"
)

func PosRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewPosController(db)

	admin := authMw.RequireRoles(constants.RoleErrorAdmin("pos"), constants.AdminOnly...)

	pos := api.Group("/pos")
	pos.Get("/", ctl.List)
	pos.Post("/", admin, ctl.Create)
}
