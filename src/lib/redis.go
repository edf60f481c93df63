package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// GetRedisClient returns nil when REDIS_HOST is not configured.
func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

const releaseLockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// AcquireLock takes key for ttl if nobody holds it. The token must be passed
// back to ReleaseLock.
func AcquireLock(ctx context.Context, rd redis.Cmdable, key string, token string, ttl time.Duration) (bool, error) {
	return rd.SetNX(ctx, key, token, ttl).Result()
}

// ReleaseLock deletes key only while it still holds token.
func ReleaseLock(ctx context.Context, rd redis.Cmdable, key string, token string) error {
	return rd.Eval(ctx, releaseLockScript, []string{key}, token).Err()
}
