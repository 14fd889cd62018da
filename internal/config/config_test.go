package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8095" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	if cfg.Latitude != 51.4769 {
		t.Errorf("latitude = %v", cfg.Latitude)
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skyfeed.yaml")
	data := `
listen: ":9000"
log_level: debug
latitude: 40.7
longitude: -74.0
astronomy:
  app_id: my-app
  app_secret: my-secret
meteors:
  api_key: mk
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Latitude != 40.7 || cfg.Longitude != -74.0 {
		t.Errorf("location = %v, %v", cfg.Latitude, cfg.Longitude)
	}
	if cfg.Astronomy.AppID != "my-app" || cfg.Astronomy.AppSecret != "my-secret" {
		t.Errorf("astronomy = %+v", cfg.Astronomy)
	}
	if cfg.Meteors.APIKey != "mk" {
		t.Errorf("meteors = %+v", cfg.Meteors)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8095" {
		t.Errorf("listen = %q", cfg.Listen)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SKYFEED_LISTEN", ":7070")
	t.Setenv("SKYFEED_ASTRONOMY_APP_ID", "env-app")
	t.Setenv("SKYFEED_LATITUDE", "-33.86")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":7070" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Astronomy.AppID != "env-app" {
		t.Errorf("app_id = %q", cfg.Astronomy.AppID)
	}
	if cfg.Latitude != -33.86 {
		t.Errorf("latitude = %v", cfg.Latitude)
	}
}

func TestLoad_RejectsBadCoordinates(t *testing.T) {
	t.Setenv("SKYFEED_LATITUDE", "123.4")
	if _, err := Load(""); err == nil {
		t.Error("expected out-of-range latitude error")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
