package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/actuator/internal/plugin"
	"github.com/eugenenazirov/actuator/internal/settings"
)

func decodeEnv(t *testing.T, mux http.Handler, target string) map[string]string {
	t.Helper()

	rec := get(t, mux, target)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestEnvEndpointEmptyWhenNoFiles(t *testing.T) {
	loader := settings.NewLoader(settings.WithBaseDir(t.TempDir()))
	mux := mountPlugin(t, Env(loader, zaptest.NewLogger(t)), plugin.Options{})

	rec := get(t, mux, "/actuator/env")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{}\n" {
		t.Fatalf("expected {}, got %q", got)
	}
}

func TestEnvEndpointMergesSettingsAndDotenv(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"settings.ts": `PORT: num({ default: 3000 }), NAME: str({ default: "svc" })`,
		".env":        "PORT=9090\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	loader := settings.NewLoader(settings.WithBaseDir(dir))
	mux := mountPlugin(t, Env(loader, zaptest.NewLogger(t)), plugin.Options{Prefix: "/ops"})

	got := decodeEnv(t, mux, "/ops/env")
	want := map[string]string{"PORT": "9090", "NAME": "svc"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected env (-want +got):\n%s", diff)
	}
}

func TestEnvEndpointServesFrozenSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ts")
	if err := os.WriteFile(path, []byte(`MODE: str({ default: "a" })`), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	loader := settings.NewLoader(settings.WithBaseDir(dir))
	mux := mountPlugin(t, Env(loader, nil), plugin.Options{Settings: []string{"app.ts"}})

	if err := os.WriteFile(path, []byte(`MODE: str({ default: "b" })`), 0o600); err != nil {
		t.Fatalf("rewrite settings: %v", err)
	}

	if got := decodeEnv(t, mux, "/actuator/env")["MODE"]; got != "a" {
		t.Fatalf("expected value captured at registration, got %q", got)
	}
}

func TestEnvEndpointReadErrorFailsRegistration(t *testing.T) {
	boom := errors.New("denied")
	loader := settings.NewLoader(settings.WithReadFile(func(string) ([]byte, error) {
		return nil, boom
	}))

	err := plugin.NewMux().Register(t.Context(), Env(loader, nil), plugin.Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error to propagate, got %v", err)
	}
}
