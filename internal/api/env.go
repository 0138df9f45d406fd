package api

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/eugenenazirov/actuator/internal/plugin"
	"github.com/eugenenazirov/actuator/internal/settings"
)

// Env mounts GET <prefix>/env. The settings files named by Options.Settings
// (or the loader's default file) are read once, when the plugin registers,
// and every request is served from that snapshot.
func Env(loader *settings.Loader, logger *zap.Logger) plugin.Plugin {
	if loader == nil {
		loader = settings.NewLoader()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(_ context.Context, r plugin.Router, opts plugin.Options) error {
		snap, err := loader.Load(opts.Settings)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		logger.Info("environment snapshot loaded",
			zap.Strings("files", settings.ResolveFiles(opts.Settings, loader.DefaultFile())),
			zap.Int("keys", snap.Len()),
		)

		return r.Group(opts.PrefixOr(DefaultPrefix)).Handle(http.MethodGet, "/env", envHandler(snap))
	}
}

func envHandler(snap settings.Snapshot) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, snap)
	})
}
