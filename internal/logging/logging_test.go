package logging

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	prev := log.Writer()
	t.Cleanup(func() { log.SetOutput(prev) })
}

func TestSetup_ConsoleOnly(t *testing.T) {
	restoreLogger(t)
	var console bytes.Buffer

	closer, err := Setup(Options{Console: &console})
	require.NoError(t, err)
	defer closer.Close()

	log.Printf("[TEST] hello")
	assert.Contains(t, console.String(), "[TEST] hello")
}

func TestSetup_RotatingFile(t *testing.T) {
	restoreLogger(t)
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "sync.log")

	closer, err := Setup(Options{File: path, MaxSizeMB: 1, MaxBackups: 1, Console: &console})
	require.NoError(t, err)

	log.Printf("[TEST] written twice")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[TEST] written twice")
	assert.Contains(t, console.String(), "[TEST] written twice")
}
