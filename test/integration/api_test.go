package integration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/actuator/internal/api"
	"github.com/eugenenazirov/actuator/internal/plugin"
	"github.com/eugenenazirov/actuator/internal/settings"
)

const settingsSource = `
export default defineEnv({
  PORT: num({ default: 3000 }),
  API_URL: url({ default: 'https://api.example.com' }),
  FEATURE_X: bool({ default: false }),
  RETRIES: num({ default: 007 }),
});
`

func newServer(t *testing.T, dir string, opts plugin.Options) *httptest.Server {
	t.Helper()

	logger := zaptest.NewLogger(t)
	loader := settings.NewLoader(settings.WithBaseDir(dir), settings.WithLogger(logger))
	metrics := api.NewMetrics(nil)

	mux := plugin.NewMux()
	plugins := plugin.Multi(api.Health(), api.Env(loader, logger), metrics.Plugin())
	if err := mux.Register(context.Background(), plugins, opts); err != nil {
		t.Fatalf("register plugins: %v", err)
	}

	srv := httptest.NewServer(api.NewRouter(mux, logger, api.WithRateLimit(0, 0), api.WithMetrics(metrics)))
	t.Cleanup(srv.Close)
	return srv
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIntegrationFlow(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "settings.ts"), []byte(settingsSource), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9090\n# local override\nFEATURE_X=true\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	srv := newServer(t, dir, plugin.Options{})

	code, body := fetch(t, srv.URL+"/actuator/health")
	if code != http.StatusOK || strings.TrimSpace(body) != `{"status":"up"}` {
		t.Fatalf("unexpected health response: %d %s", code, body)
	}

	code, body = fetch(t, srv.URL+"/actuator/env")
	if code != http.StatusOK {
		t.Fatalf("expected 200 from env, got %d", code)
	}
	var env map[string]string
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("decode env: %v", err)
	}
	want := map[string]string{
		"PORT":      "9090",
		"API_URL":   "https://api.example.com",
		"FEATURE_X": "true",
		"RETRIES":   "7",
	}
	if diff := cmp.Diff(want, env); diff != "" {
		t.Fatalf("unexpected env (-want +got):\n%s", diff)
	}

	code, body = fetch(t, srv.URL+"/actuator/metrics")
	if code != http.StatusOK || !strings.Contains(body, "actuator_http_requests_total") {
		t.Fatalf("unexpected metrics response: %d", code)
	}
}

func TestIntegrationCustomPrefixAndMissingFiles(t *testing.T) {
	srv := newServer(t, t.TempDir(), plugin.Options{Prefix: "/ops", Settings: []string{"missing.ts"}})

	if code, _ := fetch(t, srv.URL+"/ops/health"); code != http.StatusOK {
		t.Fatalf("expected 200 from /ops/health, got %d", code)
	}
	if code, _ := fetch(t, srv.URL+"/actuator/health"); code != http.StatusNotFound {
		t.Fatalf("expected 404 from /actuator/health, got %d", code)
	}
	code, body := fetch(t, srv.URL+"/ops/env")
	if code != http.StatusOK || strings.TrimSpace(body) != "{}" {
		t.Fatalf("expected empty env, got %d %s", code, body)
	}
}

func TestIntegrationMultiRegistrationFailure(t *testing.T) {
	boom := errors.New("plugin failed")
	thirdRan := false

	mux := plugin.NewMux()
	err := mux.Register(context.Background(), plugin.Multi(
		api.Health(),
		func(context.Context, plugin.Router, plugin.Options) error { return boom },
		func(context.Context, plugin.Router, plugin.Options) error {
			thirdRan = true
			return nil
		},
	), plugin.Options{})

	if !errors.Is(err, boom) {
		t.Fatalf("expected plugin error to propagate, got %v", err)
	}
	if thirdRan {
		t.Fatalf("expected registration to halt after failure")
	}
	if diff := cmp.Diff([]plugin.Route{{Method: http.MethodGet, Path: "/actuator/health"}}, mux.Routes()); diff != "" {
		t.Fatalf("unexpected routes (-want +got):\n%s", diff)
	}
}
