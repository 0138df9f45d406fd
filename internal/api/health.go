package api

import (
	"context"
	"net/http"

	"github.com/eugenenazirov/actuator/internal/plugin"
)

// DefaultPrefix is used by the actuator plugins when Options.Prefix is empty.
const DefaultPrefix = "/actuator"

type healthResponse struct {
	Status string `json:"status"`
}

// Health mounts GET <prefix>/health, which always reports {"status":"up"}.
func Health() plugin.Plugin {
	return func(_ context.Context, r plugin.Router, opts plugin.Options) error {
		return r.Group(opts.PrefixOr(DefaultPrefix)).Handle(http.MethodGet, "/health", http.HandlerFunc(handleHealth))
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "up"})
}
