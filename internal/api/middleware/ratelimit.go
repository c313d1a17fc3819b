package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "court-booking:ratelimit"

// NewRateLimitStore хранилище счётчиков лимита
// Без redisURL счётчики живут в памяти процесса и не делятся между инстансами
func NewRateLimitStore(redisURL string) (limiter.Store, error) {
	if redisURL == "" {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	store, err := sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: limiter.DefaultMaxRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("create redis rate limit store: %w", err)
	}
	return store, nil
}

// RateLimit ограничивает частоту запросов одного пользователя
// Ключ - X-User-ID, без него - адрес клиента
func RateLimit(store limiter.Store, limit int64, period time.Duration) func(http.Handler) http.Handler {
	rate := limiter.Rate{
		Period: period,
		Limit:  limit,
	}
	instance := limiter.New(store, rate)

	mw := limiterhttp.NewMiddleware(instance,
		limiterhttp.WithKeyGetter(func(r *http.Request) string {
			if userID := r.Header.Get(HeaderUserID); userID != "" {
				return "user:" + userID
			}
			return "ip:" + limiter.GetIP(r).String()
		}),
	)
	return mw.Handler
}
