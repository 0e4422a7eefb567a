package database

import (
	"context"
	"event_access/config"
	"log"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis khởi tạo client dùng cho replay guard của check-in.
// Redis hỏng thì check-in vẫn chạy (best-effort), nên chỉ log warning.
func ConnectRedis(cfg *config.App) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	Redis = redis.NewClient(&redis.Options{Addr: addr})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis not reachable at %s: %v", addr, err)
	}
}
