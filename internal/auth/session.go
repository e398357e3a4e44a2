package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionTokenType        = "session"
	revokedSessionKeyPrefix = "session:revoked:"
)

// ErrInvalidSession 表示会话令牌缺失、无效、过期或已注销。
var ErrInvalidSession = errors.New("invalid session")

// revocationStore 是会话注销所需的 Redis 命令子集，便于测试替换。
type revocationStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionClaims 是会话令牌中的字段，只携带登录邮箱。
type SessionClaims struct {
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// SessionManager 负责签发、校验与注销会话令牌。
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoked revocationStore
	now     func() time.Time
}

// NewSessionManager 构造会话管理器。
func NewSessionManager(secret string, ttl time.Duration, revoked revocationStore) (*SessionManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	if revoked == nil {
		return nil, errors.New("revocation store is required")
	}
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		now:     time.Now,
	}, nil
}

// Issue 为邮箱签发新的会话令牌。
func (m *SessionManager) Issue(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("email is required")
	}

	now := m.now()
	claims := SessionClaims{
		Email:     email,
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve 校验令牌并返回其中的邮箱。
// 无效或已注销的令牌返回 ErrInvalidSession；Redis 故障原样返回。
func (m *SessionManager) Resolve(ctx context.Context, token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}

	n, err := m.revoked.Exists(ctx, revokedSessionKeyPrefix+claims.ID).Result()
	if err != nil {
		return "", fmt.Errorf("check session revocation: %w", err)
	}
	if n > 0 {
		return "", ErrInvalidSession
	}
	return claims.Email, nil
}

// Revoke 将令牌加入黑名单直到其自然过期。无效令牌视为已注销。
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.parse(token)
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			return nil
		}
		return err
	}

	ttl := m.ttl
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Time.Sub(m.now())
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := m.revoked.Set(ctx, revokedSessionKeyPrefix+claims.ID, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (m *SessionManager) parse(token string) (*SessionClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidSession
	}

	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.TokenType != sessionTokenType || claims.Email == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
