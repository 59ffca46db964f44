package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/memsession/internal/config"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-config", "c.yaml", "-address", ":9999", "-version"})
	require.NoError(t, err)
	assert.Equal(t, "c.yaml", opts.configPath)
	assert.Equal(t, ":9999", opts.address)
	assert.True(t, opts.showVersion)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(serverOptions{})
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Minute, cfg.Session.TTL)
}

func TestLoadConfig_FileAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  ttl: 10s\n"), 0o600))

	cfg, err := loadConfig(serverOptions{configPath: path, address: ":7000"})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Session.TTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: xml\n"), 0o600))

	_, err := loadConfig(serverOptions{configPath: path})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()

	var buf bytes.Buffer
	newLogger(cfg, &buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello")

	buf.Reset()
	cfg.Log.Format = "json"
	newLogger(cfg, &buf).Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(cfg, &buf).Debug("hidden")
	assert.Empty(t, buf.String(), "debug is below the default level")
}
