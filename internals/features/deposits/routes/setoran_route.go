package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/constants"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/controller"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/service"
	authMw "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares/auth"
)

func SetoranRoutes(api fiber.Router, db *gorm.DB, svc *service.SetoranService) {
	ctl := controller.NewSetoranController(db, svc)
	kategoriCtl := controller.NewKategoriController(db)

	petugas := authMw.RequireRoles(constants.RoleErrorPetugas("setoran"), constants.StaffAndAbove...)
	admin := authMw.RequireRoles(constants.RoleErrorAdmin("setoran"), constants.AdminOnly...)

	setoran := api.Group("/setoran")
	setoran.Post("/", petugas, ctl.Create)
	setoran.Get("/", ctl.List)
	setoran.Get("/:id", ctl.GetByID)
	setoran.Patch("/:id/status", admin, ctl.SetStatus)

	kategori := api.Group("/kategori-sampah")
	kategori.Get("/", kategoriCtl.List)
	kategori.Post("/", admin, kategoriCtl.Create)
}
