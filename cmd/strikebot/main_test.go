package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebot/internal/logger"
)

// unreachableConfig points both upstreams at a closed local port so the cycle
// fails fast and logs while doing it.
func unreachableConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`
app:
  http_addr: "off"
  log_path: %q
  hot_reload: false
reference:
  rest_base_url: "http://127.0.0.1:1"
  timeout_seconds: 1
  candle_limit: 0
venue:
  base_url: "http://127.0.0.1:1"
  timeout_seconds: 1
store:
  path: %q
`, filepath.Join(dir, "logs", "strikebot.log"), filepath.Join(dir, "strikebot.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestOnceWritesOnlyTheReportToStdout(t *testing.T) {
	t.Cleanup(func() {
		logger.SetOutput(os.Stdout)
		log.SetOutput(os.Stderr)
	})
	path := unreachableConfig(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"once", "--config", path})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	dec := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	var rep map[string]any
	require.NoError(t, dec.Decode(&rep), "stdout: %s", stdout.String())
	assert.Contains(t, []any{"no_price", "no_market"}, rep["outcome"])
	assert.NotEmpty(t, rep["trace_id"])
	assert.ErrorIs(t, dec.Decode(&rep), io.EOF, "stdout must hold exactly one document")

	assert.Contains(t, stderr.String(), "config loaded")
	logged, err := os.ReadFile(filepath.Join(filepath.Dir(path), "logs", "strikebot.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "config loaded")
}
