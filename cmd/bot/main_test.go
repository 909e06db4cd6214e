package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReturnsStartupFailure(t *testing.T) {
	logDir := t.TempDir()
	t.Setenv("botToken", "test-token")
	t.Setenv("storageBackend", "memory")
	t.Setenv("logDir", logDir)
	t.Setenv("allowedHosts", "(")
	t.Setenv("MQTT_Host", "")
	t.Setenv("errorWebhook", "")
	t.Setenv("logsWebhook", "")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating web server")

	logged, readErr := os.ReadFile(filepath.Join(logDir, "combined.log"))
	require.NoError(t, readErr)
	assert.Contains(t, string(logged), "Error creando el servidor web")
}
