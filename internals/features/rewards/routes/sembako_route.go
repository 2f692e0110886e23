package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/constants"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/controller"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
	authMw "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares/auth"
)

func SembakoRoutes(api fiber.Router, db *gorm.DB, stok *service.StokService) {
	ctl := controller.NewSembakoController(db, stok)

	admin := authMw.RequireRoles(constants.RoleErrorAdmin("katalog sembako"), constants.AdminOnly...)

	sembako := api.Group("/sembako")
	sembako.Get("/", ctl.List)
	sembako.Get("/stok", ctl.ListStok)
	sembako.Get("/:id/stok-total", ctl.StokTotal)
	sembako.Post("/", admin, ctl.Create)
	sembako.Put("/stok", admin, ctl.AdjustStok)
	sembako.Put("/:id", admin, ctl.Update)
}
