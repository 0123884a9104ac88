package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	shopHttp "github.com/mavdeev/shop-backend/internal/handler/http"
	"github.com/mavdeev/shop-backend/internal/user"
)

func TestRegister_Success(t *testing.T) {
	env := newTestEnv(t)

	created := &user.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Email:    "alice@example.com",
		Role:     user.RoleUser,
	}

	env.users.On("Register", mock.Anything, "alice", "alice@example.com", "password123").
		Return(created, nil).Once()

	body, err := json.Marshal(shopHttp.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/auth/register", "", bytes.NewReader(body))

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp shopHttp.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, created.ID, resp.User.ID)
	assert.Equal(t, user.RoleUser, resp.User.Role)

	env.users.AssertExpectations(t)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing_email", body: `{"username":"alice","password":"password123"}`},
		{name: "bad_email", body: `{"username":"alice","email":"nope","password":"password123"}`},
		{name: "short_password", body: `{"username":"alice","email":"a@b.com","password":"short"}`},
		{name: "unknown_field", body: `{"username":"alice","email":"a@b.com","password":"password123","role":"ADMIN"}`},
		{name: "not_json", body: `gibberish`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rr := env.do(t, http.MethodPost, "/auth/register", "", bytes.NewBufferString(tt.body))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), "validation_error")
			env.users.AssertNotCalled(t, "Register")
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("Register", mock.Anything, "alice", "alice@example.com", "password123").
		Return(nil, user.ErrEmailExists).Once()

	rr := env.do(t, http.MethodPost, "/auth/register", "",
		bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"password123"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "conflict")
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	u := testUser()

	env.users.On("Login", mock.Anything, u.Email, "password123").Return(u, nil).Once()

	rr := env.do(t, http.MethodPost, "/auth/login", "",
		bytes.NewBufferString(`{"email":"alice@example.com","password":"password123"}`))

	require.Equal(t, http.StatusOK, rr.Code)

	var resp shopHttp.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// The issued token must resolve back to the same account.
	parsedID, role, err := env.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, parsedID)
	assert.Equal(t, u.Role, role)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := newTestEnv(t)

	env.users.On("Login", mock.Anything, "alice@example.com", "wrong").
		Return(nil, user.ErrInvalidCredentials).Once()

	rr := env.do(t, http.MethodPost, "/auth/login", "",
		bytes.NewBufferString(`{"email":"alice@example.com","password":"wrong"}`))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "authentication_error")
}
