package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/features/redemptions/service"
)

// StartPenukaranSweeper menjalankan sapuan kadaluwarsa tiap 5 menit.
// Deadline tetap dicek lazy di jalur baca (scan/pickup), sweeper hanya
// merapikan state; aman jalan bersamaan dengan konfirmasi pengambilan.
func StartPenukaranSweeper(svc *service.PenukaranService) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("*/5 * * * *", func() {
		count, err := svc.SweepExpired()
		if err != nil {
			log.Printf("[SWEEP] error: %v", err)
			return
		}
		if count > 0 {
			log.Printf("[SWEEP] %d penukaran dikadaluwarsakan", count)
		}
	})
	if err != nil {
		log.Printf("[SWEEP] gagal daftar jadwal: %v", err)
		return c
	}
	c.Start()
	log.Println("✅ Sweeper penukaran kadaluwarsa aktif (tiap 5 menit).")
	return c
}
