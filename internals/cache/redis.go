package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahaydeid/bank-sampah-kabta-sub000/internals/configs"
)

var Ctx = context.Background()

// Redis nil kalau REDIS_ADDR tidak diset; semua helper di bawah nil-safe
// sehingga cache murni opsional (jalur baca katalog/stok global saja).
var Redis *redis.Client

func ConnectRedis() {
	addr := configs.GetEnv("REDIS_ADDR")
	if addr == "" {
		log.Println("⚠️ REDIS_ADDR kosong, cache dinonaktifkan")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: configs.GetEnv("REDIS_PASSWORD"),
		DB:       0,
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		log.Printf("⚠️ Gagal konek Redis (%v), cache dinonaktifkan", err)
		return
	}

	Redis = client
	log.Println("✅ Redis connected.")
}

func Get(key string) (string, bool) {
	if Redis == nil {
		return "", false
	}
	val, err := Redis.Get(Ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func Set(key, val string, ttl time.Duration) {
	if Redis == nil {
		return
	}
	if err := Redis.Set(Ctx, key, val, ttl).Err(); err != nil {
		log.Printf("[CACHE] set %s gagal: %v", key, err)
	}
}

func Del(keys ...string) {
	if Redis == nil || len(keys) == 0 {
		return
	}
	if err := Redis.Del(Ctx, keys...).Err(); err != nil {
		log.Printf("[CACHE] del gagal: %v", err)
	}
}
