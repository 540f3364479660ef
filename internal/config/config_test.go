package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load(New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RPS != 4 || s.Concurrency != 10 || s.PageSize != 40 || s.MaxResults != 250 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.CacheTTL != 30*time.Minute || s.CacheSize != 512 {
		t.Fatalf("unexpected cache defaults: %+v", s)
	}
	if s.Output != OutputJSON {
		t.Fatalf("output = %q", s.Output)
	}
	b := s.OutboundBranding()
	if b == nil || b.Location == nil || b.FallbackURL == "" {
		t.Fatalf("expected default branding, got %+v", b)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gmailpack.yaml")
	content := []byte("rps: 2\noutput: YAML\ncache_ttl: 5m\nbranding:\n  host: https://coda.io\n  doc_id: abc\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GMAILPACK_CONCURRENCY", "3")
	t.Setenv("GMAILPACK_BRANDING_ENABLED", "true")

	v := New()
	if err := ReadFile(v, path); err != nil {
		t.Fatalf("read file: %v", err)
	}
	s, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RPS != 2 || s.Concurrency != 3 || s.Output != OutputYAML || s.CacheTTL != 5*time.Minute {
		t.Fatalf("unexpected settings: %+v", s)
	}
	b := s.OutboundBranding()
	if b.Location.ProtocolAndHost != "https://coda.io" || b.Location.DocID != "abc" {
		t.Fatalf("unexpected branding: %+v", b.Location)
	}
}

func TestReadFileMissing(t *testing.T) {
	if err := ReadFile(New(), filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "bad-output", key: "output", val: "xml"},
		{name: "zero-rps", key: "rps", val: 0},
		{name: "zero-concurrency", key: "concurrency", val: 0},
		{name: "page-too-large", key: "page_size", val: 501},
		{name: "negative-max", key: "max_results", val: -1},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			v := New()
			v.Set(tc.key, tc.val)
			if _, err := Load(v); err == nil {
				t.Fatalf("expected validation error for %s=%v", tc.key, tc.val)
			}
		})
	}
}

func TestBrandingDisabled(t *testing.T) {
	v := New()
	v.Set("branding.enabled", false)
	s, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.OutboundBranding() != nil {
		t.Fatalf("expected nil branding")
	}
}
