package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mavdeev/shop-backend/internal/auth"
	"github.com/mavdeev/shop-backend/internal/cart"
	"github.com/mavdeev/shop-backend/internal/order"
	"github.com/mavdeev/shop-backend/internal/product"
	"github.com/mavdeev/shop-backend/internal/upload"
	"github.com/mavdeev/shop-backend/internal/user"
)

// Error categories reported alongside the human-readable message.
const (
	codeValidation     = "validation_error"
	codeAuthentication = "authentication_error"
	codeAuthorization  = "authorization_error"
	codeNotFound       = "not_found"
	codeConflict       = "conflict"
	codeInternal       = "internal_error"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response","code":"internal_error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, status int, category, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: message, Code: category})
}

// respondWithServiceError maps domain errors onto the HTTP error taxonomy.
// Unexpected faults collapse into an opaque internal error so store
// details never reach a client.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidInput),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPayment),
		errors.Is(err, product.ErrNegativePrice),
		errors.Is(err, product.ErrInvalidCategory),
		errors.Is(err, upload.ErrNotImage):
		respondWithError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, err.Error())
	case errors.Is(err, order.ErrAccessDenied):
		respondWithError(w, http.StatusForbidden, codeAuthorization, err.Error())
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotInCart),
		errors.Is(err, order.ErrNotFound):
		respondWithError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, user.ErrEmailExists):
		respondWithError(w, http.StatusConflict, codeConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
