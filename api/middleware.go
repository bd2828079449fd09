package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/databases"
)

const (
	refreshTokenType = "refresh"
	expiresAtKey     = "expiresAt"
)

var (
	// ErrTokenInvalid is returned for tokens that fail signature or claim checks
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned for tokens past their exp claim
	ErrTokenExpired = errors.New("token has expired")
	// ErrRefreshToken is returned when a refresh token is presented as an api token
	ErrRefreshToken = errors.New("refresh tokens cannot be used to call the api")
)

// Claims are the fields the identity provider signs into its tokens
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// MiddlewareDB is a struct that holds the database and token settings
type MiddlewareDB struct {
	DB           databases.UserDatabase
	Secret       []byte
	TokenTTL     time.Duration
	PublicRoutes []string
	// Clock decides token expiry, wall time when nil
	Clock access.Clock

	authenticator auth.Authenticator
	cache         store.Cache
}

// SetupGoGuardian sets up the go-guardian bearer strategy. Verified tokens are
// cached for TokenTTL; the exp claim is still checked on every request.
func (m *MiddlewareDB) SetupGoGuardian() {
	ttl := m.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	m.authenticator = auth.New()
	m.cache = store.NewFIFO(context.Background(), ttl)
	tokenStrategy := bearer.New(m.ValidateToken, m.cache)
	m.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

func (m *MiddlewareDB) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock.Now()
}

// Middleware authenticates every request outside PublicRoutes and stores the
// caller on the request context
func (m *MiddlewareDB) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		info, err := m.authenticator.Authenticate(r)
		if err == nil && m.expired(info) {
			m.cache.Delete(bearerToken(r), r)
			err = ErrTokenExpired
		}
		if err != nil {
			unauthorized(w, r, err)
			return
		}
		agent, err := m.resolveAgent(r.Context(), info)
		if err != nil {
			unauthorized(w, r, err)
			return
		}
		zap.S().Debugf("User %s Authenticated\n", info.UserName())
		next.ServeHTTP(w, r.WithContext(WithAgent(r.Context(), agent)))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	zap.S().Errorw("unauthorized",
		"url", r.URL,
		"error", err)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "unauthorized"}`))
}

// expired reports whether the exp claim carried by a cached token has passed
func (m *MiddlewareDB) expired(info auth.Info) bool {
	exp := info.Extensions()[expiresAtKey]
	if len(exp) == 0 {
		return false
	}
	unix, err := strconv.ParseInt(exp[0], 10, 64)
	if err != nil {
		return true
	}
	return !m.now().Before(time.Unix(unix, 0))
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// ParseToken checks the signature and expiry of an HS256 token
func (m *MiddlewareDB) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ValidateToken checks a bearer token and returns the user id it was issued
// to. The result is cached, so nothing that can change during the token's life
// is put into it.
func (m *MiddlewareDB) ValidateToken(_ context.Context, _ *http.Request, token string) (auth.Info, error) {
	claims, err := m.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type == refreshTokenType {
		return nil, ErrRefreshToken
	}
	if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
		return nil, ErrTokenInvalid
	}

	extensions := map[string][]string{}
	if claims.ExpiresAt != nil {
		extensions[expiresAtKey] = []string{strconv.FormatInt(claims.ExpiresAt.Unix(), 10)}
	}
	return auth.NewDefaultUser(claims.UserID, claims.UserID, nil, extensions), nil
}

// resolveAgent loads the caller's current role and property from the users
// collection on every request
func (m *MiddlewareDB) resolveAgent(ctx context.Context, info auth.Info) (access.Agent, error) {
	id, err := primitive.ObjectIDFromHex(info.ID())
	if err != nil {
		return access.Agent{}, ErrTokenInvalid
	}

	ctx, cancel := WithQueryTimeout(ctx)
	defer cancel()
	user, err := m.DB.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		return access.Agent{}, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return access.Agent{ID: user.ID, Role: user.Role, Property: user.Property}, nil
}

func (m *MiddlewareDB) isPublic(path string) bool {
	for _, route := range m.PublicRoutes {
		if route == path || (strings.HasSuffix(route, "/") && strings.HasPrefix(path, route)) {
			return true
		}
	}
	return false
}
