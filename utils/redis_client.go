package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedis connects the process-wide Redis client. Cache helpers no-op
// until this runs, so the API stays usable without Redis (tests point it
// at miniredis instead).
func InitRedis(host string, port int, password string, db int) *redis.Client {
	redisClient = redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis ping failed, cache degraded: %v", err)
	}
	return redisClient
}

// GetRedis returns the initialized client, or nil when Redis is not
// configured.
func GetRedis() *redis.Client {
	return redisClient
}
