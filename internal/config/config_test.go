package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "gdprmask.yaml", `language: hr
threads: 4
preserve_types: [LOC, ORG]
mask_char: "#"
phone_regions: [AT]
ner:
  backend: remote
  endpoint: http://localhost:9000/ner
  timeout: 5s
  serialize: true
`)
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 4, *cfg.Threads)
	require.NotNil(t, cfg.Language)
	assert.Equal(t, "hr", *cfg.Language)
	assert.Equal(t, []string{"LOC", "ORG"}, cfg.PreserveTypes)
	assert.Equal(t, "#", *cfg.MaskChar)
	assert.Equal(t, []string{"AT"}, cfg.PhoneRegions)
	assert.Nil(t, cfg.Descriptive)

	nc := cfg.GetNERConfig()
	assert.Equal(t, BackendRemote, nc.GetBackend())
	assert.Equal(t, "http://localhost:9000/ner", nc.GetEndpoint())
	d, err := nc.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
	assert.True(t, nc.IsSerialized())
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "bad.yml", "threads: [oops\n")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestGetNERConfig_Defaults(t *testing.T) {
	nc := FileConfig{}.GetNERConfig()
	assert.Equal(t, BackendGazetteer, nc.GetBackend())
	assert.Equal(t, "", nc.GetEndpoint())
	d, err := nc.GetTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
	assert.False(t, nc.IsSerialized())

	bad := "soon"
	_, err = NERConfig{Timeout: &bad}.GetTimeout()
	assert.Error(t, err)
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "gdprmask.yaml", "threads: 1\n")
	writeTemp(t, dir, ".gdprmask.yaml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 7 {
		t.Fatalf("expected threads=7 from .gdprmask.yaml, got %#v", cfg.Threads)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); err == nil {
		t.Fatal("expected error when no local config exists")
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "gdprmask")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	p := filepath.Join(cfgDir, "config.yml")
	if err := os.WriteFile(p, []byte("threads: 9\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 9 {
		t.Fatalf("expected threads=9 from global config, got %#v", cfg.Threads)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); err == nil {
		t.Fatal("expected error when no global config dir exists")
	}
}

func TestTemplateParses(t *testing.T) {
	var cfg FileConfig
	require.NoError(t, yaml.Unmarshal([]byte(Template), &cfg))
	require.NotNil(t, cfg.Language)
	assert.Equal(t, "sl", *cfg.Language)
	assert.Equal(t, "*", *cfg.MaskChar)
	assert.Equal(t, BackendGazetteer, cfg.GetNERConfig().GetBackend())
	assert.True(t, *cfg.Audit)
}
