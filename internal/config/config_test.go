package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scriptratio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_CreatesDefaultFromEmbedded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scriptratio.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.DefaultModel != "turbo" {
		t.Errorf("DefaultModel = %q; want turbo", cfg.DefaultModel)
	}
	names := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		names = append(names, m.Name)
	}
	if got := strings.Join(names, ","); got != "turbo,large-v2,large-v3" {
		t.Errorf("models = %s", got)
	}
	if cfg.Chart.Size != 600 || cfg.Server.Addr != ":5000" {
		t.Errorf("unexpected defaults: size=%d addr=%q", cfg.Chart.Size, cfg.Server.Addr)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "config_version: 1\nupload_dir: \"/tmp/x/../up\"\nchart:\n  size: 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UploadDir != "/tmp/up" {
		t.Errorf("UploadDir = %q; want cleaned /tmp/up", cfg.UploadDir)
	}
	if cfg.Chart.Size != defaultChartSize {
		t.Errorf("Chart.Size = %d; want default", cfg.Chart.Size)
	}
	if len(cfg.Models) != 3 || cfg.DefaultModel != "turbo" {
		t.Errorf("models/default not kept: %+v / %q", cfg.Models, cfg.DefaultModel)
	}
	if cfg.Log.Mode != "dev" {
		t.Errorf("Log.Mode = %q", cfg.Log.Mode)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("Load should fail on invalid YAML")
	}
}

func TestLoad_MigratesLegacyModelNames(t *testing.T) {
	path := writeConfig(t, "model_names:\n  - small\n  - medium\ndefault_model: large-v3\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Errorf("ConfigVersion = %d", cfg.ConfigVersion)
	}
	if len(cfg.Models) != 2 || cfg.Models[0].Name != "small" || cfg.Models[1].Kind != KindWhisperCLI {
		t.Fatalf("Models = %+v", cfg.Models)
	}
	if cfg.DefaultModel != "small" {
		t.Errorf("DefaultModel = %q; want small", cfg.DefaultModel)
	}
	if cfg.LegacyModelNames != nil {
		t.Errorf("legacy names should be cleared")
	}

	// sauvegarde créée et fichier réécrit en version courante
	matches, _ := filepath.Glob(path + ".bak.*")
	if len(matches) != 1 {
		t.Errorf("backup files = %v", matches)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "config_version: 1") || strings.Contains(string(b), "model_names") {
		t.Errorf("rewritten config:\n%s", b)
	}
}

func TestLoad_UnversionedFileIsUpgraded(t *testing.T) {
	path := writeConfig(t, "upload_dir: up\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion || len(cfg.Models) != 3 {
		t.Errorf("version = %d, models = %+v", cfg.ConfigVersion, cfg.Models)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "config_version: 1") {
		t.Errorf("file not rewritten:\n%s", b)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"unknown default", func(c *Config) { c.DefaultModel = "tiny" }, "default_model"},
		{"duplicate", func(c *Config) { c.Models = append(c.Models, ModelConfig{Name: "turbo", Kind: KindWhisperCLI}) }, "deux fois"},
		{"unknown kind", func(c *Config) { c.Models[0].Kind = "vosk" }, "type inconnu"},
		{"http without endpoint", func(c *Config) { c.Models[0].Kind = KindWhisperHTTP }, "endpoint"},
		{"no models", func(c *Config) { c.Models = nil }, "aucun modèle"},
		{"tiny chart", func(c *Config) { c.Chart.Size = 10 }, "chart.size"},
		{"bad cors origin", func(c *Config) { c.Server.CORSOrigins = []string{"localhost:5000"} }, "cors_origins"},
		{"wildcard cors", func(c *Config) { c.Server.CORSOrigins = []string{"*"} }, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate = %v; want error containing %q", err, tc.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error should wrap ErrInvalidConfig")
			}
		})
	}
}

func TestListenAddr(t *testing.T) {
	c := Default()
	c.Server.Addr = "127.0.0.1:5000"
	c.Server.PortEnv = "SCRIPTRATIO_TEST_PORT"

	t.Setenv("SCRIPTRATIO_TEST_PORT", "")
	if got := c.ListenAddr(); got != "127.0.0.1:5000" {
		t.Errorf("ListenAddr = %q", got)
	}
	t.Setenv("SCRIPTRATIO_TEST_PORT", "8080")
	if got := c.ListenAddr(); got != "127.0.0.1:8080" {
		t.Errorf("ListenAddr with env = %q", got)
	}
}

func TestResolveWhisperPath(t *testing.T) {
	c := Default()
	c.WhisperCLI.Name = "whisper"
	c.WhisperCLI.Path = ""
	c.ResolveWhisperPath()
	if c.WhisperCLI.ResolvedPath != "" {
		t.Errorf("empty path should resolve through PATH, got %q", c.WhisperCLI.ResolvedPath)
	}

	dir := t.TempDir()
	c.WhisperCLI.Path = dir
	c.ResolveWhisperPath()
	if want := filepath.Join(dir, c.WhisperCLI.Name); c.WhisperCLI.ResolvedPath != want {
		t.Errorf("ResolvedPath = %q; want %q", c.WhisperCLI.ResolvedPath, want)
	}

	c.WhisperCLI.Path = filepath.Join(dir, c.WhisperCLI.Name)
	c.ResolveWhisperPath()
	if c.WhisperCLI.ResolvedPath != filepath.Join(dir, c.WhisperCLI.Name) {
		t.Errorf("ResolvedPath = %q", c.WhisperCLI.ResolvedPath)
	}
}

func TestModelLookup(t *testing.T) {
	c := Default()
	m, ok := c.Model("large-v3")
	if !ok || m.BackendModel() != "large-v3" {
		t.Fatalf("Model(large-v3) = %+v, %v", m, ok)
	}
	m.Model = "large-v3-q5"
	if m.BackendModel() != "large-v3-q5" {
		t.Fatalf("BackendModel override ignored")
	}
	if _, ok := c.Model("missing"); ok {
		t.Fatalf("missing model found")
	}
}
