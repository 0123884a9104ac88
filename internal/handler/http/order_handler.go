package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/order"
)

type ShippingAddressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

type CreateOrderRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required,oneof=CASH CARD PAYPAL STRIPE BINANCE"`
}

type UpdateOrderRequest struct {
	Status        *string `json:"status" validate:"omitempty,oneof=PENDING SHIPPED COMPLETED CANCELLED"`
	PaymentStatus *string `json:"paymentStatus" validate:"omitempty,oneof=PENDING PAID FAILED"`
}

type OrderHandler struct {
	orders   order.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	var req CreateOrderRequest

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

	addr := order.ShippingAddress{
		Street:  req.ShippingAddress.Street,
		City:    req.ShippingAddress.City,
		Zipcode: req.ShippingAddress.Zipcode,
		Country: req.ShippingAddress.Country,
	}

	o, err := h.orders.Create(r.Context(), u.ID, addr, order.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	orders, err := h.orders.ListByUser(r.Context(), u.ID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := identityFrom(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, codeAuthentication, "authentication required")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid order id")
		return
	}

	detail, err := h.orders.Get(r.Context(), u.ID, u.Role, id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, detail)
}

func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	details, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, details)
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid order id")
		return
	}

	var req UpdateOrderRequest

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

	var upd order.Update
	if req.Status != nil {
		status := order.Status(*req.Status)
		upd.Status = &status
	}
	if req.PaymentStatus != nil {
		ps := order.PaymentStatus(*req.PaymentStatus)
		upd.PaymentStatus = &ps
	}

	o, err := h.orders.Update(r.Context(), id, upd)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}
