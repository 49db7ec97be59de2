package handler

import (
	"net/http"

	"github.com/kkkatsube/picc/internal/health"
)

// Health is unauthenticated. A degraded report keeps the full body but
// answers 503 so load balancers can act on the status code alone.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	code := http.StatusOK
	if report.Status == health.StatusError {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}
