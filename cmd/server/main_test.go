package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseOverridesDefaults(t *testing.T) {
	overrides, err := parseOverrides(nil)
	if err != nil {
		t.Fatalf("parseOverrides returned error: %v", err)
	}

	if overrides.Port != nil || overrides.Prefix != nil || overrides.BaseDir != nil {
		t.Fatalf("expected unset string flags to stay nil, got %+v", overrides)
	}
	if overrides.EnableMetrics != nil {
		t.Fatalf("expected metrics override to stay nil")
	}
	if overrides.RateLimitRPS != nil || overrides.RateLimitBurst != nil {
		t.Fatalf("expected rate limit overrides to stay nil")
	}
	if len(overrides.Settings) != 0 {
		t.Fatalf("expected no settings files, got %v", overrides.Settings)
	}
}

func TestParseOverridesFlags(t *testing.T) {
	overrides, err := parseOverrides([]string{
		"--port", "9000",
		"--prefix", "/ops",
		"--settings", "settings.ts",
		"--settings", "extra.js",
		"--metrics", "false",
		"--rate-limit-rps", "0",
	})
	if err != nil {
		t.Fatalf("parseOverrides returned error: %v", err)
	}

	if overrides.Port == nil || *overrides.Port != "9000" {
		t.Fatalf("expected port override 9000")
	}
	if overrides.Prefix == nil || *overrides.Prefix != "/ops" {
		t.Fatalf("expected prefix override /ops")
	}
	if diff := cmp.Diff([]string{"settings.ts", "extra.js"}, overrides.Settings); diff != "" {
		t.Fatalf("unexpected settings files (-want +got):\n%s", diff)
	}
	if overrides.EnableMetrics == nil || *overrides.EnableMetrics {
		t.Fatalf("expected metrics to be disabled by --metrics false")
	}
	if overrides.RateLimitRPS == nil || *overrides.RateLimitRPS != 0 {
		t.Fatalf("expected rate limit rps override 0")
	}
}

func TestParseOverridesRejectsUnknownFlag(t *testing.T) {
	if _, err := parseOverrides([]string{"--unknown-flag", "1"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestParseOverridesRejectsInvalidMetrics(t *testing.T) {
	if _, err := parseOverrides([]string{"--metrics", "sometimes"}); err == nil {
		t.Fatalf("expected error for invalid --metrics value")
	}
}
