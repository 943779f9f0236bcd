package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/codetrek/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

func InitRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	_, err := Redis.Ping(Ctx).Result()
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Per-user submission quotas will be disabled.", err)
	} else {
		log.Println("Connected to Redis successfully")
	}
}

// CheckRateLimit enforces a fixed-window quota per key. The first call in a
// window sets the expiry; callers get false once the count exceeds the limit.
func CheckRateLimit(key string, limit int, duration time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := Redis.Incr(Ctx, redisKey).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		Redis.Expire(Ctx, redisKey, duration)
	}

	if count > int64(limit) {
		return false, nil
	}
	return true, nil
}
