package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/auth"
	"github.com/mavdeev/shop-backend/internal/user"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     user.Role          `json:"role"`
}

type ProfileResponse struct {
	UserResponse
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type AuthHandler struct {
	users    user.Service
	tokens   *auth.TokenManager
	validate *validator.Validate
}

func NewAuthHandler(users user.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, validationMessage(err))
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Registration failed")
		respondWithServiceError(w, err)
		return
	}

	token, err := h.tokens.Generate(u.ID, u.Role)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token after registration")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, AuthResponse{Token: token, User: userResponse(u)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, validationMessage(err))
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	token, err := h.tokens.Generate(u.ID, u.Role)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue token after login")
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{Token: token, User: userResponse(u)})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	respondWithJSON(w, http.StatusOK, ProfileResponse{
		UserResponse: userResponse(u),
		CreatedAt:    u.CreatedAt,
	})
}

func userResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// validationMessage flattens the first field failure into a readable
// client message.
func validationMessage(err error) string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return "invalid request payload"
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return "field '" + fe.Field() + "' is required"
	case "email":
		return "field '" + fe.Field() + "' must be a valid email"
	case "min":
		return "field '" + fe.Field() + "' must be at least " + fe.Param()
	case "oneof":
		return "field '" + fe.Field() + "' must be one of: " + fe.Param()
	default:
		return "field '" + fe.Field() + "' is invalid"
	}
}
