package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

// RedisSnapshotCache keeps the whole state as one JSON value in Redis.
type RedisSnapshotCache struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotCache constructs the cache under key.
func NewRedisSnapshotCache(client *redis.Client, key string) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, key: key}
}

// Load returns the saved snapshot or appErrors.ErrCacheMiss.
func (c *RedisSnapshotCache) Load(ctx context.Context) (models.Snapshot, error) {
	if c.client == nil {
		return models.Snapshot{}, appErrors.ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Snapshot{}, appErrors.ErrCacheMiss
		}
		return models.Snapshot{}, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	return decodeSnapshot(raw)
}

// Save overwrites the stored snapshot.
func (c *RedisSnapshotCache) Save(ctx context.Context, snap models.Snapshot) error {
	if c.client == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

// SQLiteSnapshotCache keeps the snapshot in a local SQLite file.
type SQLiteSnapshotCache struct {
	db  *sql.DB
	key string
}

// NewSQLiteSnapshotCache creates the cache table when missing.
func NewSQLiteSnapshotCache(ctx context.Context, db *sql.DB, key string) (*SQLiteSnapshotCache, error) {
	const ddl = `CREATE TABLE IF NOT EXISTS snapshot_cache (
key TEXT PRIMARY KEY,
payload BLOB NOT NULL,
saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create snapshot cache table: %w", err)
	}
	return &SQLiteSnapshotCache{db: db, key: key}, nil
}

// Load returns the saved snapshot or appErrors.ErrCacheMiss.
func (c *SQLiteSnapshotCache) Load(ctx context.Context) (models.Snapshot, error) {
	var raw []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM snapshot_cache WHERE key = ?`, c.key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Snapshot{}, appErrors.ErrCacheMiss
		}
		return models.Snapshot{}, fmt.Errorf("read snapshot cache: %w", err)
	}
	return decodeSnapshot(raw)
}

// Save overwrites the stored snapshot.
func (c *SQLiteSnapshotCache) Save(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	const query = `INSERT INTO snapshot_cache (key, payload, saved_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at`
	if _, err := c.db.ExecContext(ctx, query, c.key, payload); err != nil {
		return fmt.Errorf("write snapshot cache: %w", err)
	}
	return nil
}

func decodeSnapshot(raw []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
