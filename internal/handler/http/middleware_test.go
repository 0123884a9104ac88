package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/user"
)

func TestAuthenticate_MissingHeader(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/auth/profile", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication_error")
}

func TestAuthenticate_NotBearer(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/auth/profile", "Basic dXNlcjpwYXNz", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/auth/profile", "Bearer not-a-token", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication_error")
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	env := newTestEnv(t)

	id := primitive.NewObjectID()
	token, err := env.tokens.Generate(id, user.RoleUser)
	assert.NoError(t, err)

	env.users.On("GetByID", mock.Anything, id).Return(nil, user.ErrNotFound)

	rr := env.do(t, http.MethodGet, "/auth/profile", "Bearer "+token, nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "account no longer exists")
}

func TestAuthenticate_ValidToken(t *testing.T) {
	env := newTestEnv(t)
	u := testUser()

	rr := env.do(t, http.MethodGet, "/auth/profile", env.login(t, u), nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), u.Email)
}

func TestRequireAdmin_OrdinaryUser(t *testing.T) {
	env := newTestEnv(t)
	u := testUser()

	rr := env.do(t, http.MethodGet, "/orders", env.login(t, u), nil)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "authorization_error")
}
