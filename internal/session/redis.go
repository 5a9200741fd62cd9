package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionKey = "betpanel:session"

// RedisPersistence stores the snapshot in Redis, for headless deployments
// where several client instances share one session.
type RedisPersistence struct {
	rdb *redis.Client
}

func NewRedisPersistence(addr, password string, db int) (*RedisPersistence, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisPersistence{rdb: rdb}, nil
}

func (p *RedisPersistence) Load() (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := p.rdb.Get(ctx, redisSessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.Token == "" {
		return nil, nil
	}
	return &snap, nil
}

func (p *RedisPersistence) Save(snap Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, redisSessionKey, data, 0).Err()
}

func (p *RedisPersistence) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.rdb.Del(ctx, redisSessionKey).Err()
}

func (p *RedisPersistence) Close() error {
	return p.rdb.Close()
}
