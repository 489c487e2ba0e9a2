package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopmart-be/internal/middleware"
	"shopmart-be/internal/order"
	"shopmart-be/internal/product"
	"shopmart-be/internal/user"
)

type orderListPayload struct {
	Orders []*order.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int64          `json:"page"`
	Limit  int64          `json:"limit"`
	Pages  int64          `json:"pages"`
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req placeOrderRequest
	if !bind(w, r, &req) {
		return
	}

	input := order.PlaceOrderInput{
		ShippingAddress: order.Address{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			State:   req.ShippingAddress.State,
			ZipCode: req.ShippingAddress.ZipCode,
			Country: req.ShippingAddress.Country,
		},
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, order.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.orders.PlaceOrder(r.Context(), id.UserID, input)
	if err != nil {
		var stockErr *order.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			writeError(w, http.StatusBadRequest, "Insufficient stock for product: "+stockErr.ProductName)
		case errors.Is(err, product.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, order.ErrEmptyOrder):
			writeError(w, http.StatusBadRequest, "Order must have at least one item")
		case errors.Is(err, order.ErrInvalidPayment):
			writeError(w, http.StatusBadRequest, "Invalid payment method")
		default:
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusCreated, "Order placed successfully", o)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	orders, err := h.orders.GetUserOrders(r.Context(), id.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeData(w, http.StatusOK, orders)
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	res, err := h.orders.GetAllOrders(r.Context(), page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeData(w, http.StatusOK, orderListPayload{
		Orders: res.Items,
		Total:  res.Total,
		Page:   res.Page,
		Limit:  res.Limit,
		Pages:  res.Pages,
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	o, err := h.orders.GetOrderDetail(r.Context(), chi.URLParam(r, "id"), id.UserID, id.Role == user.RoleAdmin)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	writeData(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if !bind(w, r, &req) {
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), order.Status(req.Status), req.TrackingURL)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Order status updated successfully", o)
}

func (h *Handler) writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "Invalid order status")
	case errors.Is(err, order.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
