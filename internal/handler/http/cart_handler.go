package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/cart"
)

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type CartHandler struct {
	carts    cart.Service
	validate *validator.Validate
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	view, err := h.carts.GetOrCreate(r.Context(), u.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	var req AddItemRequest

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

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	view, err := h.carts.AddItem(r.Context(), u.ID, productID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	productID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "productID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	view, err := h.carts.RemoveItem(r.Context(), u.ID, productID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}
