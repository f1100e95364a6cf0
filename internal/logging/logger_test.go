package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestNew_WritesFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	l, err := New(Config{Dir: dir, Level: "info", Console: true, Out: &console})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	log := l.Component("engine")
	log.Info().Msg("hello")
	log.Debug().Msg("hidden")

	assert.Contains(t, console.String(), "hello")
	assert.NotContains(t, console.String(), "hidden")

	files, err := filepath.Glob(filepath.Join(dir, "affectd_*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"engine"`)
}

func TestNop(t *testing.T) {
	l := Nop()
	log := l.Component("x")
	log.Error().Msg("dropped")
	assert.NoError(t, l.Close())
}
