package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c := Defaults()

	if c.Addr != ":5002" {
		t.Errorf("Defaults() Addr = %q, want %q", c.Addr, ":5002")
	}
	if c.PostTableName != "posts" {
		t.Errorf("Defaults() PostTableName = %q, want %q", c.PostTableName, "posts")
	}
	if !c.SeedEnabled {
		t.Errorf("Defaults() SeedEnabled = false, want true")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := []byte("addr: \":9000\"\npost_table_name: blog_posts\nseed_enabled: false\ndebug_sql: true\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if c.Addr != ":9000" {
		t.Errorf("Load() Addr = %q, want %q", c.Addr, ":9000")
	}
	if c.PostTableName != "blog_posts" {
		t.Errorf("Load() PostTableName = %q, want %q", c.PostTableName, "blog_posts")
	}
	if c.SeedEnabled {
		t.Errorf("Load() SeedEnabled = true, want false")
	}
	if !c.DebugSQL {
		t.Errorf("Load() DebugSQL = false, want true")
	}

	// keys not present in the file keep their defaults
	if c.ReadTimeoutSeconds != 5 {
		t.Errorf("Load() ReadTimeoutSeconds = %d, want 5", c.ReadTimeoutSeconds)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	if !os.IsNotExist(err) {
		t.Fatalf("Load() error = %v, want not-exist", err)
	}

	// the returned config still carries the defaults so callers can fall back
	if c.Addr != ":5002" {
		t.Errorf("Load() fallback Addr = %q, want %q", c.Addr, ":5002")
	}
}

func TestLoadInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("Load() error = nil, want yaml error")
	}
}
