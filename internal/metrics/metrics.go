package metrics

import "sync/atomic"

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Registry holds the process counters exposed on the health endpoint.
type Registry struct {
	RequestsTotal      Counter
	RequestErrors      Counter
	OrdersPlaced       Counter
	OversellRejections Counter
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"requests_total":      r.RequestsTotal.Load(),
		"request_errors":      r.RequestErrors.Load(),
		"orders_placed":       r.OrdersPlaced.Load(),
		"oversell_rejections": r.OversellRejections.Load(),
	}
}
