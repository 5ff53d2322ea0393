package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/studieplan/internal/models"
)

const (
	timeFormat   = "2006-01-02 15:04:05"
	sessionBytes = 24
	tokenPrefix  = "sp-"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps login sessions in redis hashes that expire after ttl.
type SessionStore struct {
	redis       *redis.Client
	keyTemplate string
	ttl         time.Duration
}

func NewSessionStore(client *redis.Client, keyTemplate string, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: client, keyTemplate: keyTemplate, ttl: ttl}
}

func generateToken() (string, error) {
	randomBytes := make([]byte, sessionBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return tokenPrefix + hex.EncodeToString(randomBytes), nil
}

func (s *SessionStore) key(token string) string {
	return strings.ReplaceAll(s.keyTemplate, "{token}", token)
}

func (s *SessionStore) Create(ctx context.Context) (*models.SessionInfo, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := s.key(token)

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"token":                 token,
		"request_count":         0,
		"last_request_dttm_utc": now.Format(timeFormat),
		"created_dttm_utc":      now.Format(timeFormat),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &models.SessionInfo{
		Token:           token,
		LastRequestTime: now.Truncate(time.Second),
		CreatedTime:     now.Truncate(time.Second),
	}, nil
}

// Touch validates a session and records one more request against it.
func (s *SessionStore) Touch(ctx context.Context, token string) (*models.SessionInfo, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	key := s.key(token)

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return nil, ErrSessionNotFound
	}

	pipe := s.redis.TxPipeline()
	pipe.HIncrBy(ctx, key, "request_count", 1)
	pipe.HSet(ctx, key, "last_request_dttm_utc", time.Now().UTC().Format(timeFormat))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update session stats: %w", err)
	}

	values, err := s.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session info: %w", err)
	}
	// the key may have expired between the two round trips
	if values["token"] != token {
		return nil, ErrSessionNotFound
	}

	lastReqTime, _ := time.Parse(timeFormat, values["last_request_dttm_utc"])
	createdTime, _ := time.Parse(timeFormat, values["created_dttm_utc"])
	reqCount, _ := strconv.Atoi(values["request_count"])

	return &models.SessionInfo{
		Token:           values["token"],
		RequestCount:    reqCount,
		LastRequestTime: lastReqTime,
		CreatedTime:     createdTime,
	}, nil
}

func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *SessionStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
