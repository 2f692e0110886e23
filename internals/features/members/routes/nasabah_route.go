package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/constants"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/controller"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	authMw "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares/auth"
)

func NasabahRoutes(api fiber.Router, db *gorm.DB, ledger *service.Ledger) {
	ctl := controller.NewNasabahController(db, ledger)

	petugas := authMw.RequireRoles(constants.RoleErrorPetugas("data nasabah"), constants.StaffAndAbove...)

	nasabah := api.Group("/nasabah")
	nasabah.Get("/me", ctl.Me)
	nasabah.Get("/", petugas, ctl.List)
	nasabah.Get("/:id", petugas, ctl.GetByID)
}
