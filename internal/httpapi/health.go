package httpapi

import (
	"net/http"
	"time"
)

type healthPayload struct {
	Status   string            `json:"status"`
	Uptime   string            `json:"uptime"`
	Counters map[string]uint64 `json:"counters"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, healthPayload{
		Status:   "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Counters: h.counts.Snapshot(),
	})
}
