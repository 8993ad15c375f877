package kvstore

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures NewRedis. URL, when set, wins over Addr/Password/DB.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	URL      string
}

type redisStore struct {
	client    *redis.Client
	namespace string
}

var _ Store = (*redisStore)(nil)

func NewRedis(opts RedisOptions, namespace string) (Store, error) {
	ro := &redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}
	if opts.URL != "" {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, errors.Wrap(err, "kvstore: parse redis url")
		}
		ro = parsed
	}
	if ro.Addr == "" {
		return nil, errors.New("kvstore: redis address is required")
	}
	return NewRedisWithClient(redis.NewClient(ro), namespace), nil
}

// NewRedisWithClient wraps an existing client. Close closes the client.
func NewRedisWithClient(client *redis.Client, namespace string) Store {
	return &redisStore{client: client, namespace: namespace}
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "kvstore: redis get %q", key)
	}
	return val, nil
}

// Set stores value without expiry; carts live until explicitly cleared.
func (r *redisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "kvstore: redis set %q", key)
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "kvstore: redis del %q", key)
	}
	return nil
}

func (r *redisStore) GenerateKey(operation, key string) string {
	return generateKey(r.namespace, operation, key)
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
