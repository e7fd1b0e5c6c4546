package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a thin TTL cache over Redis, used for external-provider
// responses (weather, geocoding). The cache is optional: a nil Store is
// valid and every operation on it is a miss.
type Store struct {
	Client *redis.Client
}

// Connect initializes the cache from a Redis URL. Returns nil when the URL
// is empty or unparsable; callers treat a nil store as cache-disabled.
func Connect(redisURL string) *Store {
	if redisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, running without cache: %v", err)
		return nil
	}
	log.Println("Response cache enabled")
	return &Store{Client: redis.NewClient(opt)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	b, err := s.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("Cache get failed for %s: %v", key, err)
		return nil, false
	}
	return b, true
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if s == nil {
		return
	}
	if err := s.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("Cache set failed for %s: %v", key, err)
	}
}
