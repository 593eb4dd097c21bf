package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Hosts.SizeLimit != 1<<20 {
		t.Errorf("SizeLimit = %d, want %d", cfg.Hosts.SizeLimit, 1<<20)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.BaseDelay != time.Second {
		t.Errorf("BaseDelay = %v, want 1s", cfg.Retry.BaseDelay)
	}
	if !cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = false, want true")
	}
	if cfg.Watcher.SettleDelay != 500*time.Millisecond {
		t.Errorf("SettleDelay = %v, want 500ms", cfg.Watcher.SettleDelay)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" || cfg.Logging.Output != "stderr" {
		t.Errorf("Logging = %+v, want info/console/stderr", cfg.Logging)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("Metrics.Listen = %q, want empty", cfg.Metrics.Listen)
	}
	if cfg.Source() != "" {
		t.Errorf("Source() = %q, want empty", cfg.Source())
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, `
hosts:
  path: /tmp/hosts-test
  size_limit: 2048
retry:
  max_attempts: 5
  base_delay: 250ms
watcher:
  enabled: false
  settle_delay: 1s
logging:
  level: DEBUG
  format: json
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Hosts.Path != "/tmp/hosts-test" {
		t.Errorf("Hosts.Path = %q", cfg.Hosts.Path)
	}
	if cfg.Hosts.SizeLimit != 2048 {
		t.Errorf("SizeLimit = %d, want 2048", cfg.Hosts.SizeLimit)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != 250*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = true, want false")
	}
	if cfg.Watcher.SettleDelay != time.Second {
		t.Errorf("SettleDelay = %v, want 1s", cfg.Watcher.SettleDelay)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want normalized debug", cfg.Logging.Level)
	}
	if cfg.Source() != path {
		t.Errorf("Source() = %q, want %q", cfg.Source(), path)
	}
}

func TestLoadEnvAndOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOSTS_EDITOR_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("HOSTS_EDITOR_WATCHER_ENABLED", "false")

	cfg, err := Load("", map[string]interface{}{KeyHostsPath: "/srv/hosts"})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Retry.MaxAttempts != 7 {
		t.Errorf("MaxAttempts = %d, want 7 from env", cfg.Retry.MaxAttempts)
	}
	if cfg.Watcher.Enabled {
		t.Error("Watcher.Enabled = true, want false from env")
	}
	if cfg.Hosts.Path != "/srv/hosts" {
		t.Errorf("Hosts.Path = %q, want override", cfg.Hosts.Path)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"too many attempts", "retry:\n  max_attempts: 50\n", "retry.max_attempts"},
		{"negative size", "hosts:\n  size_limit: -1\n", "hosts.size_limit"},
		{"zero size", "hosts:\n  size_limit: 0\n", "hosts.size_limit"},
		{"zero attempts", "retry:\n  max_attempts: 0\n", "retry.max_attempts"},
		{"zero base delay", "retry:\n  base_delay: 0s\n", "retry.base_delay"},
		{"zero settle delay", "watcher:\n  settle_delay: 0s\n", "watcher.settle_delay"},
		{"relative path", "hosts:\n  path: etc/hosts\n", "hosts.path"},
		{"relative backup dir", "backup:\n  dir: backups\n", "backup.dir"},
		{"bad listen", "metrics:\n  listen: nope\n", "metrics.listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.body)
			_, err := Load(path, nil)
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hosts: [unclosed\n")
	if _, err := Load(path, nil); err == nil {
		t.Fatal("Load() expected error for malformed YAML")
	}
}

func TestLoadKeepsSingleAttemptWithoutDelay(t *testing.T) {
	path := writeFile(t, t.TempDir(), "retry:\n  max_attempts: 1\n  base_delay: 0s\n")
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Retry.MaxAttempts != 1 || cfg.Retry.BaseDelay != 0 {
		t.Errorf("retry = %+v, want explicit values kept", cfg.Retry)
	}
}

func TestValidateBaseDelayRequiredWithRetries(t *testing.T) {
	cfg := Default()
	cfg.Retry.BaseDelay = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("Validate() expected error for zero base delay with retries")
	}

	cfg.Retry.MaxAttempts = 1
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() single attempt: %v", err)
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() failed: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Fatal("WriteDefault() should refuse to overwrite")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Fatalf("WriteDefault(force) failed: %v", err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	def := Default()
	if cfg.Retry != def.Retry || cfg.Watcher != def.Watcher || cfg.Hosts != def.Hosts {
		t.Errorf("round trip mismatch: got %+v, want %+v", cfg, def)
	}
}

func TestYAMLRendersDurations(t *testing.T) {
	data, err := Default().YAML()
	if err != nil {
		t.Fatalf("YAML() failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"base_delay: 1s", "settle_delay: 500ms", "size_limit: 1048576"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != filepath.Join("/xdg", "hosts-editor") {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := DefaultPath(); got != filepath.Join("/xdg", "hosts-editor", "config.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
