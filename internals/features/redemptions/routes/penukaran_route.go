package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/constants"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/controller"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/service"
	authMw "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares/auth"
)

func PenukaranRoutes(api fiber.Router, db *gorm.DB, svc *service.PenukaranService) {
	ctl := controller.NewPenukaranController(db, svc)

	penukaran := api.Group("/penukaran")

	// nasabah
	penukaran.Post("/", ctl.Checkout)
	penukaran.Get("/", ctl.ListMine)

	// petugas
	petugas := authMw.RequireRoles(constants.RoleErrorPetugas("penukaran"), constants.StaffAndAbove...)
	penukaran.Post("/scan", petugas, ctl.ScanByCode)
	penukaran.Patch("/:id/pickup", petugas, ctl.ConfirmPickup)

	// admin
	admin := authMw.RequireRoles(constants.RoleErrorAdmin("penukaran"), constants.AdminOnly...)
	penukaran.Patch("/:id/approve", admin, ctl.Approve)
	penukaran.Patch("/:id/reject", admin, ctl.Reject)
	penukaran.Patch("/:id/undo-approve", admin, ctl.UndoApprove)
	penukaran.Patch("/:id/undo-reject", admin, ctl.UndoReject)
	penukaran.Patch("/:id/finalize", admin, ctl.FinalizeRejection)
	penukaran.Post("/sweep", admin, ctl.Sweep)

	penukaran.Get("/:id", ctl.GetByID)
}
