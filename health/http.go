package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// Response is the JSON body served on the health endpoint.
type Response struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// Handler serves the aggregate health report. Degraded services (for
// example a provider with no credentials) still answer 200; only an
// unhealthy component turns the endpoint into a 500.
func Handler(agg *Aggregator, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		status := OverallStatus(results)

		resp := Response{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   version,
			Services:  make(map[string]string, len(results)),
		}
		for name, result := range results {
			resp.Services[name] = result.Message
		}

		w.Header().Set("Content-Type", "application/json")
		if status == StatusUnhealthy {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
