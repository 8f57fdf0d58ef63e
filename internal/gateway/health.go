package gateway

import (
	"encoding/json"
	"net/http"
)

// rootBanner is the fixed liveness string on GET /. Uptime monitors
// poll it.
const rootBanner = "clonehost is running"

func (g *Gateway) handleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(rootBanner))
	}
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"` // "ok" or "degraded"
	Tenants int64  `json:"tenants"`
}

// handleHealth reports ok while the store answers, degraded otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok"}

		if g.health != nil {
			n, err := g.health(r.Context())
			if err != nil {
				resp.Status = "degraded"
			}
			resp.Tenants = n
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
