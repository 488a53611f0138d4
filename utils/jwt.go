package utils

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	redis "github.com/redis/go-redis/v9"

	"github.com/botyak1234/marketplace-task/models"
)

// RedisClient is an optional shared Redis client used for token revocation.
// It stays nil when REDIS_ADDR is not configured; auth never fails because
// redis is unavailable.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		fmt.Printf("warning: redis ping failed: %v\n", err)
		return
	}
	RedisClient = rc
}

type contextKey string

const (
	UserIDKey    = contextKey("userID")
	UserRoleKey  = contextKey("userRole")
	RequestIDKey = contextKey("requestID")
)

// Claims carried by an access token after validation.
type Claims struct {
	UserID uint
	Role   models.Role
	JTI    string
	Expiry time.Time
}

// GenerateAccessToken issues a signed HS256 access token carrying the user id
// and role. Token lifetime comes from JWT_TTL_MINUTES (default 60).
func GenerateAccessToken(userID uint, role models.Role) (string, error) {
	return GenerateAccessTokenWithExpiry(userID, role, accessTokenTTL())
}

// GenerateAccessTokenWithExpiry issues an access token with a custom lifetime.
func GenerateAccessTokenWithExpiry(userID uint, role models.Role, expiry time.Duration) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	now := time.Now()
	jti, err := generateJTI(32)
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"id":   userID,
		"role": string(role),
		"exp":  now.Add(expiry).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  jti,
		"aud":  os.Getenv("JWT_AUD"),
		"iss":  os.Getenv("JWT_ISS"),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken parses and validates an access token, checking the
// signature, registered claims and the jti revocation store when configured.
func ValidateAccessToken(tokenStr string) (*Claims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	token, err := jwt.ParseWithClaims(tokenStr, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Require exact HS256 to avoid algorithm confusion.
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		// Keep the jwt error in the chain so callers can tell an expired
		// token apart from a malformed or forged one.
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	out := &Claims{}
	now := time.Now()

	if expRaw, ok := claims["exp"].(float64); ok {
		out.Expiry = time.Unix(int64(expRaw), 0)
		if now.Unix() > int64(expRaw) {
			return nil, jwt.ErrTokenExpired
		}
	}
	if nbfRaw, ok := claims["nbf"].(float64); ok {
		if now.Unix() < int64(nbfRaw) {
			return nil, errors.New("token not yet valid")
		}
	}
	if audEnv := os.Getenv("JWT_AUD"); audEnv != "" {
		if aud, _ := claims["aud"].(string); aud != audEnv {
			return nil, errors.New("invalid audience")
		}
	}
	if issEnv := os.Getenv("JWT_ISS"); issEnv != "" {
		if iss, _ := claims["iss"].(string); iss != issEnv {
			return nil, errors.New("invalid issuer")
		}
	}

	switch v := claims["id"].(type) {
	case float64:
		out.UserID = uint(v)
	default:
		return nil, errors.New("invalid token payload")
	}

	roleStr, _ := claims["role"].(string)
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return nil, errors.New("invalid role claim")
	}
	out.Role = role

	if jti, ok := claims["jti"].(string); ok && jti != "" {
		out.JTI = jti
		if RedisClient != nil {
			res, err := RedisClient.Get(context.Background(), "jwt:blacklist:"+jti).Result()
			if err == nil && res == "1" {
				return nil, errors.New("token revoked")
			}
			// ignore redis errors so an outage cannot lock everyone out
		}
	}

	return out, nil
}

// RevokeJTI blacklists a jti until its token would have expired anyway.
// Without a configured redis this is a no-op.
func RevokeJTI(jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Set(context.Background(), "jwt:blacklist:"+jti, "1", ttl).Err()
}

func accessTokenTTL() time.Duration {
	if s := os.Getenv("JWT_TTL_MINUTES"); s != "" {
		var m int
		if _, err := fmt.Sscanf(s, "%d", &m); err == nil && m > 0 {
			return time.Duration(m) * time.Minute
		}
	}
	return time.Hour
}

// generateJTI creates a URL-safe random identifier used as the JWT ID.
func generateJTI(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = hex[int(b[i])%len(hex)]
	}
	return string(out), nil
}

// TokenIssuer adapts the JWT helpers to the service layer, which only knows
// it can exchange a user id and role for an opaque signed token.
type TokenIssuer struct{}

func NewTokenIssuer() TokenIssuer {
	return TokenIssuer{}
}

func (TokenIssuer) Issue(userID uint, role models.Role) (string, error) {
	return GenerateAccessToken(userID, role)
}
