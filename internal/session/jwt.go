package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// directoryTTL bounds how long a display name learned from a token is served
// by Lookup before it must be re-learned.
const directoryTTL = 24 * time.Hour

// Claims are the forum auth service's token claims.
type Claims struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTProvider verifies HS256 tokens issued by the forum's auth service.
type JWTProvider struct {
	secret   []byte
	issuer   string
	cache    Cache
	cacheTTL time.Duration
}

// NewJWTProvider constructs a JWTProvider backed by the given cache.
func NewJWTProvider(secret, issuer string, cache Cache, cacheTTL time.Duration) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), issuer: issuer, cache: cache, cacheTTL: cacheTTL}
}

// Resolve verifies the token and returns the caller identity. Verified
// identities are cached under a hash of the token for cacheTTL.
func (p *JWTProvider) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrInvalidSession
	}

	cacheKey := "session:" + tokenDigest(token)
	if cached, err := p.cache.Get(ctx, cacheKey); err == nil {
		var ident Identity
		if err := json.Unmarshal([]byte(cached), &ident); err == nil {
			return ident, nil
		}
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer))
	if err != nil || !parsed.Valid || claims.UserID == 0 {
		return Identity{}, ErrInvalidSession
	}

	ident := Identity{UserID: claims.UserID, Username: claims.Username}
	p.remember(ctx, cacheKey, ident)
	return ident, nil
}

// Lookup returns the directory entry for a user id. Entries come from
// previously resolved sessions; a miss yields ErrUnknownUser.
func (p *JWTProvider) Lookup(ctx context.Context, userID int) (Identity, error) {
	name, err := p.cache.Get(ctx, userKey(userID))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return Identity{}, ErrUnknownUser
		}
		return Identity{}, err
	}
	return Identity{UserID: userID, Username: name}, nil
}

func (p *JWTProvider) remember(ctx context.Context, cacheKey string, ident Identity) {
	if encoded, err := json.Marshal(ident); err == nil {
		_ = p.cache.Set(ctx, cacheKey, string(encoded), p.cacheTTL)
	}
	if ident.Username != "" {
		_ = p.cache.Set(ctx, userKey(ident.UserID), ident.Username, directoryTTL)
	}
}

func userKey(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
