package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleReader    Role = "reader"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleReader:
		return true
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleLibrarian
}

type Config struct {
	Secret   string        `yaml:"secret" envconfig:"JWT_SECRET"`
	TokenTTL time.Duration `yaml:"tokenTTL" envconfig:"JWT_TTL"`
}

// Identity is the caller of an API operation as carried by the bearer token.
type Identity struct {
	Subject  string `json:"sub"`
	Role     Role   `json:"role"`
	UserID   int64  `json:"user_id"`
	ReaderID *int64 `json:"reader_id"`
}

func (i Identity) IsStaff() bool {
	return i.Role.IsStaff()
}

// OwnsReader reports whether the identity is bound to readerID.
func (i Identity) OwnsReader(readerID int64) bool {
	return i.ReaderID != nil && *i.ReaderID == readerID
}

type Claims struct {
	Role     Role   `json:"role"`
	UserID   int64  `json:"user_id"`
	ReaderID *int64 `json:"reader_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		Subject:  c.Subject,
		Role:     c.Role,
		UserID:   c.UserID,
		ReaderID: c.ReaderID,
	}
}

var ErrInvalidToken = errors.New("invalid token")

type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenManager(cfg Config) *TokenManager {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{
		key: []byte(cfg.Secret),
		ttl: ttl,
		now: time.Now,
	}
}

func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

func (m *TokenManager) Issue(id Identity) (string, error) {
	now := m.now()
	claims := &Claims{
		Role:     id.Role,
		UserID:   id.UserID,
		ReaderID: id.ReaderID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *TokenManager) Parse(tokenStr string) (Identity, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}
	return claims.Identity(), nil
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

func (i Identity) String() string {
	s := string(i.Role) + ":" + i.Subject
	if i.ReaderID != nil {
		s += "#" + strconv.FormatInt(*i.ReaderID, 10)
	}
	return s
}
