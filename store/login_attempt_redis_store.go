package store

import (
	"context"
	"errors"
	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"roombuddy/domain"
	"time"
)

const loginAttemptsPrefix = "login_attempts:"

type LoginAttemptRedisStore struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewLoginAttemptRedisStore(client *redis.Client, tracer trace.Tracer) domain.LoginAttemptStore {
	return &LoginAttemptRedisStore{
		client: client,
		tracer: tracer,
	}
}

func (store *LoginAttemptRedisStore) Count(ctx context.Context, key string) (int64, error) {
	_, span := store.tracer.Start(ctx, "LoginAttemptStore.Count")
	defer span.End()

	count, err := store.client.Get(loginAttemptsPrefix + key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return count, nil
}

// RecordFailure bumps the counter and restarts its window.
func (store *LoginAttemptRedisStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int64, error) {
	_, span := store.tracer.Start(ctx, "LoginAttemptStore.RecordFailure")
	defer span.End()

	pipe := store.client.TxPipeline()
	incr := pipe.Incr(loginAttemptsPrefix + key)
	pipe.Expire(loginAttemptsPrefix+key, window)
	if _, err := pipe.Exec(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return incr.Val(), nil
}

func (store *LoginAttemptRedisStore) Reset(ctx context.Context, key string) error {
	_, span := store.tracer.Start(ctx, "LoginAttemptStore.Reset")
	defer span.End()

	if err := store.client.Del(loginAttemptsPrefix + key).Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func GetRedisClient(host, port string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: host + ":" + port,
	})
}
