package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modm-devices.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
devices:
  paths:
    - devices/stm32
    - /srv/devices/avr
logging:
  level: debug
  format: json
events:
  path: /tmp/run.mdlog
index:
  path: /tmp/index.db
resolve:
  workers: 3
  driver_cache_size: 8
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantFirst := filepath.Join(filepath.Dir(path), "devices/stm32")
	if len(cfg.Devices.Paths) != 2 || cfg.Devices.Paths[0] != wantFirst || cfg.Devices.Paths[1] != "/srv/devices/avr" {
		t.Errorf("Devices.Paths = %v", cfg.Devices.Paths)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("Logging.Output = %q, want default stderr", cfg.Logging.Output)
	}
	if cfg.Events.Path != "/tmp/run.mdlog" || cfg.Index.Path != "/tmp/index.db" {
		t.Errorf("Events/Index = %q/%q", cfg.Events.Path, cfg.Index.Path)
	}
	if cfg.Resolve.Workers != 3 || cfg.Resolve.DriverCacheSize != 8 {
		t.Errorf("Resolve = %+v", cfg.Resolve)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Resolve.Workers < 1 {
		t.Errorf("Resolve.Workers = %d, want >= 1", cfg.Resolve.Workers)
	}
	if cfg.Resolve.DriverCacheSize != 32 {
		t.Errorf("Resolve.DriverCacheSize = %d, want 32", cfg.Resolve.DriverCacheSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: loud
  format: xml
resolve:
  workers: 0
  driver_cache_size: -1
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"logging.level", "logging.format", "resolve.workers", "resolve.driver_cache_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: info
resolve:
  workers: 2
`)
	t.Setenv("MODM_DEVICES_PATHS", "/a"+string(os.PathListSeparator)+"/b")
	t.Setenv("MODM_DEVICES_LOG_LEVEL", "error")
	t.Setenv("MODM_DEVICES_LOG_FORMAT", "json")
	t.Setenv("MODM_DEVICES_LOG_OUTPUT", "stdout")
	t.Setenv("MODM_DEVICES_EVENTS_PATH", "/tmp/events.mdlog")
	t.Setenv("MODM_DEVICES_INDEX_PATH", "/tmp/index.json")
	t.Setenv("MODM_DEVICES_WORKERS", "6")
	t.Setenv("MODM_DEVICES_DRIVER_CACHE_SIZE", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Devices.Paths) != 2 || cfg.Devices.Paths[1] != "/b" {
		t.Errorf("Devices.Paths = %v", cfg.Devices.Paths)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || cfg.Logging.Output != "stdout" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Events.Path != "/tmp/events.mdlog" || cfg.Index.Path != "/tmp/index.json" {
		t.Errorf("Events/Index = %q/%q", cfg.Events.Path, cfg.Index.Path)
	}
	if cfg.Resolve.Workers != 6 || cfg.Resolve.DriverCacheSize != 0 {
		t.Errorf("Resolve = %+v", cfg.Resolve)
	}
}

func TestLoad_EnvNotANumber(t *testing.T) {
	t.Setenv("MODM_DEVICES_WORKERS", "many")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "MODM_DEVICES_WORKERS") {
		t.Errorf("Load() error = %v, want MODM_DEVICES_WORKERS parse error", err)
	}
}
