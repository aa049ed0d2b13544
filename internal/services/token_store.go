package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/golf-scoreboard/internal/models"
)

// TokenStore persists the single bearer token across restarts. Load returns an
// empty string when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Name() string
}

// FileTokenStore keeps the token as plain text in one file
type FileTokenStore struct {
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Name() string { return "file" }

func (s *FileTokenStore) Load(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(ctx context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// write then rename so a crash never leaves a truncated token behind
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// RedisTokenStore keeps the token under a fixed redis key
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

func NewRedisTokenStore(client *redis.Client, key string) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		key:    TokenCacheKey(key),
	}
}

// TokenCacheKey namespaces the persisted credential key
func TokenCacheKey(key string) string {
	return fmt.Sprintf("golf-scoreboard:%s", key)
}

func (s *RedisTokenStore) Name() string { return "redis" }

func (s *RedisTokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DBTokenStore keeps the token in the stored_credentials table
type DBTokenStore struct {
	db  *gorm.DB
	key string
}

// NewDBTokenStore migrates the credentials table and returns a store bound to key
func NewDBTokenStore(db *gorm.DB, key string) (*DBTokenStore, error) {
	if err := db.AutoMigrate(&models.StoredCredential{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stored credentials: %w", err)
	}
	return &DBTokenStore{db: db, key: key}, nil
}

func (s *DBTokenStore) Name() string { return "database" }

func (s *DBTokenStore) Load(ctx context.Context) (string, error) {
	var cred models.StoredCredential
	err := s.db.WithContext(ctx).Where(&models.StoredCredential{Key: s.key}).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return cred.Token, nil
}

func (s *DBTokenStore) Save(ctx context.Context, token string) error {
	cred := models.StoredCredential{Key: s.key, Token: token}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&cred).Error
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (s *DBTokenStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Delete(&models.StoredCredential{Key: s.key}).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
