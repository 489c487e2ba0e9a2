package httpapi

import (
	"net"
	"net/http"
	"strings"
	"time"

	"shopmart-be/internal/metrics"
	"shopmart-be/internal/order"
	"shopmart-be/internal/product"
	"shopmart-be/internal/user"
)

type Handler struct {
	users    user.Service
	products product.Service
	orders   order.Service
	counts   *metrics.Registry
	started  time.Time
}

func NewHandler(users user.Service, products product.Service, orders order.Service, counts *metrics.Registry) *Handler {
	return &Handler{
		users:    users,
		products: products,
		orders:   orders,
		counts:   counts,
		started:  time.Now(),
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
