package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidLogLevel(t *testing.T) {
	var stderr bytes.Buffer
	exitCode := run("", "", "stdio", 8080, "verbose", &stderr)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Invalid log level")
}

func TestRun_MissingEnvFile(t *testing.T) {
	var stderr bytes.Buffer
	exitCode := run("", "/nonexistent/.env", "stdio", 8080, "info", &stderr)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error loading env file")
}

func TestRun_MissingConfigFile(t *testing.T) {
	var stderr bytes.Buffer
	exitCode := run("/nonexistent/config.yaml", "", "stdio", 8080, "info", &stderr)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error loading config")
}

func TestRun_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	content := `
max_retries: 3
initial_retry_delay: 10s
max_retry_delay: 1s
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	var stderr bytes.Buffer
	exitCode := run(cfgPath, "", "stdio", 8080, "info", &stderr)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Invalid config")
}

func TestRun_UnknownTransport(t *testing.T) {
	var stderr bytes.Buffer
	exitCode := run("", "", "carrier-pigeon", 8080, "error", &stderr)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "unknown transport")
}

func TestRun_EnvFileProvidesAPIKey(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SERPER_API_KEY=from-dotenv\n"), 0644))
	t.Setenv("SERPER_API_KEY", "")
	os.Unsetenv("SERPER_API_KEY")

	// Unknown transport stops run after the server is wired, keeping the
	// test from blocking on stdio
	var stderr bytes.Buffer
	exitCode := run("", envPath, "carrier-pigeon", 8080, "error", &stderr)

	assert.Equal(t, 1, exitCode)
	assert.NotContains(t, stderr.String(), "serper_api_key not set")
	assert.Equal(t, "from-dotenv", os.Getenv("SERPER_API_KEY"))
}
