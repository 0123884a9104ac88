package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mavdeev/shop-backend/internal/product"
	"github.com/mavdeev/shop-backend/internal/upload"
)

const maxUploadSize = 10 << 20

type createProductForm struct {
	Name        string  `validate:"required"`
	Price       float64 `validate:"min=0"`
	Description string  `validate:"required"`
	Category    string  `validate:"required,oneof=electronics clothing food books home sports other"`
}

type ProductHandler struct {
	products product.Service
	uploads  *upload.Store
	validate *validator.Validate
}

func NewProductHandler(products product.Service, uploads *upload.Store) *ProductHandler {
	return &ProductHandler{
		products: products,
		uploads:  uploads,
		validate: validator.New(),
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// Create accepts a multipart form so the product image can ride along
// with the fields.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid multipart form")
		return
	}

	form := createProductForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}

	priceRaw := r.FormValue("price")
	if priceRaw == "" {
		respondWithError(w, http.StatusBadRequest, codeValidation, "field 'price' is required")
		return
	}
	price, err := strconv.ParseFloat(priceRaw, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "field 'price' must be a number")
		return
	}
	form.Price = price

	if err := h.validate.Struct(form); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, validationMessage(err))
		return
	}

	p := &product.Product{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Category:    product.Category(form.Category),
	}

	if image := h.saveImage(w, r); image == nil {
		return
	} else if *image != "" {
		p.Image = *image
	}

	created, err := h.products.Create(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// Update applies only the form fields that were actually sent, so an
// admin can change a price without resubmitting the whole product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid multipart form")
		return
	}

	var upd product.Update

	if name := formValue(r, "name"); name != nil {
		upd.Name = name
	}
	if desc := formValue(r, "description"); desc != nil {
		upd.Description = desc
	}
	if category := formValue(r, "category"); category != nil {
		c := product.Category(*category)
		upd.Category = &c
	}
	if priceRaw := formValue(r, "price"); priceRaw != nil {
		price, err := strconv.ParseFloat(*priceRaw, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, codeValidation, "field 'price' must be a number")
			return
		}
		upd.Price = &price
	}

	if image := h.saveImage(w, r); image == nil {
		return
	} else if *image != "" {
		upd.Image = image
	}

	p, err := h.products.Update(r.Context(), id, upd)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid product id")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// saveImage stores an optional "image" part and returns its public path.
// The empty string means no file was sent; nil means the response has
// already been written.
func (h *ProductHandler) saveImage(w http.ResponseWriter, r *http.Request) *string {
	empty := ""

	_, fh, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return &empty
		}
		respondWithError(w, http.StatusBadRequest, codeValidation, "invalid image upload")
		return nil
	}

	path, err := h.uploads.Save(fh)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to store uploaded image")
		respondWithServiceError(w, err)
		return nil
	}

	return &path
}

// formValue distinguishes an absent multipart field from an empty one.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
