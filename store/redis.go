package store

import (
	"context"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// valueField is the hash field every key keeps its snapshot in.
const valueField = "value"

const maxInitAttempts = 30

// RedisStore is a KV backed by Redis hashes.
type RedisStore struct {
	client *redis.Client
	log    logrus.FieldLogger
}

// NewRedisStore accepts either a redis:// URL or a plain "host:port" address.
func NewRedisStore(addr string, log logrus.FieldLogger) *RedisStore {
	client := redis.NewClient(redisOptions(addr))
	client.AddHook(redisotel.NewTracingHook())
	return &RedisStore{client: client, log: log}
}

func redisOptions(addr string) *redis.Options {
	if opts, err := redis.ParseURL(addr); err == nil {
		return opts
	}
	return &redis.Options{
		Addr:         addr,
		MinIdleConns: 1,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  180 * time.Second,
	}
}

// Initialize waits until Redis answers a ping, backing off exponentially up
// to 30s between attempts.
func (r *RedisStore) Initialize(ctx context.Context) error {
	for i := 0; i < maxInitAttempts; i++ {
		if r.Ping(ctx) {
			r.log.WithField("attempt", i+1).Info("redis store ready")
			return nil
		}

		backoff := time.Duration(1000*(1<<uint(i))) * time.Millisecond
		if backoff > 30*time.Second || backoff <= 0 {
			backoff = 30 * time.Second
		}
		r.log.WithFields(logrus.Fields{"attempt": i + 1, "backoff": backoff}).Warn("redis not reachable, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Errorf("failed to connect to redis after %d attempts", maxInitAttempts)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.HGet(ctx, key, valueField).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "redis HGET %s", key)
	}
	return val, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	err := r.client.HSet(ctx, key, valueField, value).Err()
	return errors.Wrapf(err, "redis HSET %s", key)
}

// Ping checks if Redis is alive.
func (r *RedisStore) Ping(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		r.log.WithError(err).Debug("redis ping failed")
		return false
	}
	return true
}

func (r *RedisStore) Close() error { return r.client.Close() }
