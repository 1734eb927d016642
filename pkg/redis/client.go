package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotInitialized is returned by every helper while no client is configured.
var ErrNotInitialized = errors.New("redis client not initialized")

var (
	client *redis.Client
	mu     sync.RWMutex
)

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init initializes the Redis client
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}

	if password != "" {
		opts.Password = password
	}

	c := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pingClient(ctx, c); err != nil {
		_ = c.Close()
		return err
	}

	SetClient(c)
	return nil
}

// SetClient sets the Redis client (used for testing)
func SetClient(c *redis.Client) {
	mu.Lock()
	defer mu.Unlock()
	client = c
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// Close closes the client when one is configured
func Close() error {
	c := GetClient()
	if c == nil {
		return nil
	}
	SetClient(nil)
	return c.Close()
}

// IsNil reports whether err means the key does not exist
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Set stores a key-value pair with expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c := GetClient()
	if c == nil {
		return ErrNotInitialized
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key
func Get(ctx context.Context, key string) (string, error) {
	c := GetClient()
	if c == nil {
		return "", ErrNotInitialized
	}
	return c.Get(ctx, key).Result()
}

// Del removes keys
func Del(ctx context.Context, keys ...string) error {
	c := GetClient()
	if c == nil {
		return ErrNotInitialized
	}
	return c.Del(ctx, keys...).Err()
}

// SetNX sets a key only if it does not exist
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	c := GetClient()
	if c == nil {
		return false, ErrNotInitialized
	}
	return c.SetNX(ctx, key, value, expiration).Result()
}

// Store exposes the package helpers as a value so use cases can take a cache
// interface instead of the global client.
type Store struct{}

// NewStore returns a Store backed by the global client
func NewStore() *Store {
	return &Store{}
}

func (Store) Get(ctx context.Context, key string) (string, error) {
	return Get(ctx, key)
}

func (Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return Set(ctx, key, value, ttl)
}

func (Store) Del(ctx context.Context, keys ...string) error {
	return Del(ctx, keys...)
}

// IsMiss reports whether err is a cache miss rather than a failure
func (Store) IsMiss(err error) bool {
	return IsNil(err)
}
