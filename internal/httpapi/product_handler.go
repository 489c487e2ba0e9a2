package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopmart-be/internal/middleware"
	"shopmart-be/internal/product"
)

type productListPayload struct {
	Products []*product.Product `json:"products"`
	Total    int64              `json:"total"`
	Page     int64              `json:"page"`
	Limit    int64              `json:"limit"`
	Pages    int64              `json:"pages"`
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := product.QueryOptions{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Search:   q.Get("search"),
	}
	opts.Page, _ = strconv.ParseInt(q.Get("page"), 10, 64)
	opts.Limit, _ = strconv.ParseInt(q.Get("limit"), 10, 64)

	if v := q.Get("minPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MinPrice = &p
		}
	}
	if v := q.Get("maxPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MaxPrice = &p
		}
	}

	res, err := h.products.GetList(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeData(w, http.StatusOK, productListPayload{
		Products: res.Items,
		Total:    res.Total,
		Page:     res.Page,
		Limit:    res.Limit,
		Pages:    res.Pages,
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeProductError(w, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !bind(w, r, &req) {
		return
	}

	p, err := h.products.Create(r.Context(), &product.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Brand:       req.Brand,
		Stock:       *req.Stock,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, http.StatusCreated, "Product created successfully", p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), product.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Brand:       req.Brand,
		Stock:       req.Stock,
		Images:      req.Images,
	})
	if err != nil {
		h.writeProductError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Product updated successfully", p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeProductError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req reviewRequest
	if !bind(w, r, &req) {
		return
	}

	p, err := h.products.AddReview(r.Context(), chi.URLParam(r, "id"), id.UserID, id.Name, req.Rating, req.Comment)
	if err != nil {
		h.writeProductError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, "Review added successfully", p)
}

func (h *Handler) writeProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, product.ErrDuplicateReview):
		writeError(w, http.StatusConflict, "You have already reviewed this product")
	case errors.Is(err, product.ErrNoFieldsToUpdate):
		writeError(w, http.StatusBadRequest, "No fields to update")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
