package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/cache"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/configs"
	database "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/databases"
	authModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/auth/model"
	setoranModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/deposits/model"
	memberModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/members/model"
	posModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/pos/model"
	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/scheduler"
	penukaranModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/model"
	rewardModel "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/rewards/model"
	middlewares "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/middlewares"
	routes "github.com/ahaydeid/bank-sampah-kabta-sub000/internals/route"
)

func main() {
	configs.LoadEnv()
	settings := configs.LoadSettings()

	app := fiber.New(fiber.Config{
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// Request-ID + timing
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	middlewares.SetupMiddlewares(app)

	database.ConnectDB()
	database.TunePool()

	if configs.GetEnv("DB_AUTOMIGRATE") == "true" {
		if err := database.DB.AutoMigrate(
			&posModel.Pos{},
			&memberModel.Nasabah{},
			&authModel.Pengguna{},
			&rewardModel.Sembako{},
			&rewardModel.StokSembako{},
			&setoranModel.KategoriSampah{},
			&setoranModel.Setoran{},
			&setoranModel.SetoranDetail{},
			&penukaranModel.Penukaran{},
			&penukaranModel.PenukaranDetail{},
		); err != nil {
			log.Fatalf("❌ AutoMigrate gagal: %v", err)
		}
		log.Println("✅ AutoMigrate selesai.")
	}

	cache.ConnectRedis()

	svcs := routes.BuildServices(database.DB, settings)
	routes.SetupRoutes(app, database.DB, svcs)

	// sweeper penukaran kadaluwarsa
	cronRunner := scheduler.StartPenukaranSweeper(svcs.Penukaran)

	port := configs.GetEnv("PORT", "8080")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("❌ Server berhenti: %v", err)
		}
	}()
	log.Printf("✅ Server jalan di :%s", port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⏳ Shutdown...")
	cronRunner.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown err: %v", err)
	}
	log.Println("👋 Bye.")
}
