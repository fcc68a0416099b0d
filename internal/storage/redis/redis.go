package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roxat-report/internal/storage"
)

const keyPrefix = "roxat:session:"

type Storage struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Storage, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: redis недоступен: %w", op, err)
	}

	return &Storage{client: client, ttl: ttl}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) SaveSession(ctx context.Context, sess storage.Session) error {
	const op = "storage.redis.SaveSession"

	if sess.ID == "" {
		return fmt.Errorf("%s: пустой id сессии", op)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// ttl 0 у go-redis означает ключ без срока жизни
	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: ошибка записи сессии: %w", op, err)
	}

	return nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (storage.Session, error) {
	const op = "storage.redis.GetSession"

	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return storage.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}
	if err != nil {
		return storage.Session{}, fmt.Errorf("%s: ошибка чтения сессии: %w", op, err)
	}

	var sess storage.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return storage.Session{}, fmt.Errorf("%s: битая запись сессии: %w", op, err)
	}

	return sess, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.redis.DeleteSession"

	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
