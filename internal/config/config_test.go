package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "global" {
		t.Errorf("Region = %q, want global", cfg.Region)
	}
	if cfg.Direct.Model != "gemini-3-pro-preview" {
		t.Errorf("Direct.Model = %q", cfg.Direct.Model)
	}
	if cfg.Direct.MaxTokens != 65536 {
		t.Errorf("Direct.MaxTokens = %d", cfg.Direct.MaxTokens)
	}
	if cfg.Gateway.MaxTokens != 32000 {
		t.Errorf("Gateway.MaxTokens = %d", cfg.Gateway.MaxTokens)
	}
	if cfg.CachePath == "" || cfg.ArtifactPath == "" {
		t.Error("state paths not defaulted")
	}
}

func TestLoadEnvBindings(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-project")
	t.Setenv("ASK_REGION", "us-east5")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "env-project" {
		t.Errorf("Project = %q", cfg.Project)
	}
	if cfg.Region != "us-east5" {
		t.Errorf("Region = %q", cfg.Region)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("project: file-project\nregion: europe-west4\ndirect:\n  max_tokens: 4096\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Project != "file-project" || cfg.Region != "europe-west4" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Direct.MaxTokens != 4096 {
		t.Errorf("Direct.MaxTokens = %d", cfg.Direct.MaxTokens)
	}
}
