package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/configs"
	authRoutes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/routes"
	setoranRoutes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/routes"
	setoranService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/service"
	nasabahRoutes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/routes"
	memberService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/service"
	posRoutes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/routes"
	penukaranRoutes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/routes"
	penukaranService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/service"
	sembakoRoutes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/routes"
	rewardService "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/service"
	authMw "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares/auth"
)

// Services menampung service core yang dibagikan ke route & scheduler.
type Services struct {
	Ledger    *memberService.Ledger
	Stok      *rewardService.StokService
	Setoran   *setoranService.SetoranService
	Penukaran *penukaranService.PenukaranService
}

func BuildServices(db *gorm.DB, settings configs.Settings) *Services {
	ledger := memberService.NewLedger()
	stok := rewardService.NewStokService()
	return &Services{
		Ledger:    ledger,
		Stok:      stok,
		Setoran:   setoranService.NewSetoranService(db, ledger),
		Penukaran: penukaranService.NewPenukaranService(db, ledger, stok, settings.PenukaranTTL),
	}
}

func SetupRoutes(app *fiber.App, db *gorm.DB, svcs *Services) {
	BaseRoutes(app, db)

	api := app.Group("/api")

	// publik
	authRoutes.AuthRoutes(api, db)

	// butuh login
	api.Use(authMw.AuthMiddleware())

	posRoutes.PosRoutes(api, db)
	nasabahRoutes.NasabahRoutes(api, db, svcs.Ledger)
	sembakoRoutes.SembakoRoutes(api, db, svcs.Stok)
	setoranRoutes.SetoranRoutes(api, db, svcs.Setoran)
	penukaranRoutes.PenukaranRoutes(api, db, svcs.Penukaran)
}
