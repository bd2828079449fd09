package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/wepass-api/access"
	"github.com/linesmerrill/wepass-api/api"
	mocksdb "github.com/linesmerrill/wepass-api/databases/mocks"
	"github.com/linesmerrill/wepass-api/models"
)

var secret = []byte("test-secret")

func signToken(t *testing.T, claims api.Claims, key []byte) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func accessClaims(userID primitive.ObjectID) api.Claims {
	return api.Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func newMiddleware(db *mocksdb.UserDatabase) *api.MiddlewareDB {
	m := &api.MiddlewareDB{
		DB:           db,
		Secret:       secret,
		TokenTTL:     time.Hour,
		PublicRoutes: []string{"/health"},
	}
	m.SetupGoGuardian()
	return m
}

// captureAgent records the agent the middleware put on the context
func captureAgent(agent *access.Agent, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*agent, _ = api.AgentFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ResolvesAgentFromUsers(t *testing.T) {
	user := models.User{
		ID:       primitive.NewObjectID(),
		Email:    "guard@wepass.mx",
		Role:     models.RoleAgent,
		Property: primitive.NewObjectID(),
	}
	db := &mocksdb.UserDatabase{}
	db.On("FindOne", mock.Anything, bson.M{"_id": user.ID}).Return(&user, nil)
	m := newMiddleware(db)

	var agent access.Agent
	var called bool
	handler := m.Middleware(captureAgent(&agent, &called))
	token := signToken(t, accessClaims(user.ID), secret)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/access/verify", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	assert.True(t, called)
	assert.Equal(t, access.Agent{ID: user.ID, Role: models.RoleAgent, Property: user.Property}, agent)
	db.AssertNumberOfCalls(t, "FindOne", 2)
}

func TestMiddleware_CachedTokenRejectedAfterExpiry(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID(), Role: models.RoleAgent, Property: primitive.NewObjectID()}
	db := &mocksdb.UserDatabase{}
	db.On("FindOne", mock.Anything, bson.M{"_id": user.ID}).Return(&user, nil)

	issued := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	now := issued
	m := newMiddleware(db)
	m.Clock = access.NewClockFunc(-6, func() time.Time { return now })

	claims := accessClaims(user.ID)
	claims.IssuedAt = jwt.NewNumericDate(issued)
	claims.ExpiresAt = jwt.NewNumericDate(issued.Add(time.Hour))
	token := signToken(t, claims, secret)

	var agent access.Agent
	var called bool
	handler := m.Middleware(captureAgent(&agent, &called))
	serve := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/access/verify", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, serve())
	called = false

	now = issued.Add(time.Hour)
	assert.Equal(t, http.StatusUnauthorized, serve())
	now = issued.Add(2 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, serve())

	assert.False(t, called)
	db.AssertNumberOfCalls(t, "FindOne", 1)
}

func TestMiddleware_ReadsCurrentScopeOnEveryRequest(t *testing.T) {
	userID := primitive.NewObjectID()
	before := models.User{ID: userID, Role: models.RoleAdmin, Property: primitive.NewObjectID()}
	after := models.User{ID: userID, Role: models.RoleAgent, Property: primitive.NewObjectID()}
	db := &mocksdb.UserDatabase{}
	db.On("FindOne", mock.Anything, bson.M{"_id": userID}).Return(&before, nil).Once()
	db.On("FindOne", mock.Anything, bson.M{"_id": userID}).Return(&after, nil).Once()
	m := newMiddleware(db)

	var agent access.Agent
	var called bool
	handler := m.Middleware(captureAgent(&agent, &called))
	token := signToken(t, accessClaims(userID), secret)

	var seen []access.Agent
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/access/verify", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		seen = append(seen, agent)
	}

	assert.Equal(t, access.Agent{ID: userID, Role: models.RoleAdmin, Property: before.Property}, seen[0])
	assert.Equal(t, access.Agent{ID: userID, Role: models.RoleAgent, Property: after.Property}, seen[1])
	db.AssertExpectations(t)
}

func TestMiddleware_Unauthorized(t *testing.T) {
	userID := primitive.NewObjectID()
	expired := accessClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	refresh := accessClaims(userID)
	refresh.Type = "refresh"

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a jwt", "Bearer abc123"},
		{"wrong secret", "Bearer " + signToken(t, accessClaims(userID), []byte("other"))},
		{"expired", "Bearer " + signToken(t, expired, secret)},
		{"refresh token", "Bearer " + signToken(t, refresh, secret)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mocksdb.UserDatabase{}
			m := newMiddleware(db)
			var agent access.Agent
			var called bool

			req := httptest.NewRequest(http.MethodGet, "/api/v1/access/history/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			m.Middleware(captureAgent(&agent, &called)).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.JSONEq(t, `{"error": "unauthorized"}`, rr.Body.String())
			assert.False(t, called)
			db.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
		})
	}
}

func TestMiddleware_UnknownUser(t *testing.T) {
	userID := primitive.NewObjectID()
	db := &mocksdb.UserDatabase{}
	db.On("FindOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	m := newMiddleware(db)
	var agent access.Agent
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/access/1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims(userID), secret))
	rr := httptest.NewRecorder()
	m.Middleware(captureAgent(&agent, &called)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestMiddleware_PublicRoute(t *testing.T) {
	db := &mocksdb.UserDatabase{}
	m := newMiddleware(db)
	var agent access.Agent
	var called bool

	rr := httptest.NewRecorder()
	m.Middleware(captureAgent(&agent, &called)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, called)
	assert.Equal(t, access.Agent{}, agent)
}

func TestParseToken(t *testing.T) {
	m := &api.MiddlewareDB{Secret: secret}
	userID := primitive.NewObjectID()

	claims, err := m.ParseToken(signToken(t, accessClaims(userID), secret))
	require.NoError(t, err)
	assert.Equal(t, userID.Hex(), claims.UserID)

	expired := accessClaims(userID)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = m.ParseToken(signToken(t, expired, secret))
	assert.ErrorIs(t, err, api.ErrTokenExpired)

	_, err = m.ParseToken("abc123")
	assert.ErrorIs(t, err, api.ErrTokenInvalid)
}
