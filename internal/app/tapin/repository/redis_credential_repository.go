package repository

import (
	"context"
	"fmt"

	"tapin/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// Фиксированный ключ хранения - тот же, что использовал браузерный
// localStorage. Токен переживает перезапуск шлюза и очищается на logout.
const credentialKey = "access_token"

type redisCredentialRepository struct {
	client *redis.Client
}

// NewRedisCredentialRepository создает Redis репозиторий для credential
func NewRedisCredentialRepository(client *redis.Client) CredentialRepository {
	return &redisCredentialRepository{client: client}
}

// Save сохраняет токен без TTL: срок жизни определяет сам токен,
// а не хранилище
func (r *redisCredentialRepository) Save(ctx context.Context, token string) error {
	timer := metrics.NewRedisTimer("tapin", metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, credentialKey, token, 0).Err(); err != nil {
		metrics.RecordRedisError("tapin", metrics.RedisOpSet)
		return fmt.Errorf("failed to save credential to Redis: %w", err)
	}

	return nil
}

// Load читает сохранённый токен; ErrNotFound - пользователь разлогинен
func (r *redisCredentialRepository) Load(ctx context.Context) (string, error) {
	timer := metrics.NewRedisTimer("tapin", metrics.RedisOpGet)
	defer timer.ObserveDuration()

	token, err := r.client.Get(ctx, credentialKey).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		metrics.RecordRedisError("tapin", metrics.RedisOpGet)
		return "", fmt.Errorf("failed to load credential from Redis: %w", err)
	}

	return token, nil
}

// Delete очищает сохранённый токен (logout)
func (r *redisCredentialRepository) Delete(ctx context.Context) error {
	timer := metrics.NewRedisTimer("tapin", metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, credentialKey).Err(); err != nil {
		metrics.RecordRedisError("tapin", metrics.RedisOpDel)
		return fmt.Errorf("failed to delete credential from Redis: %w", err)
	}

	return nil
}
