package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
)

func TestNewWithWriter_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, logrus.InfoLevel)

	log.WithFields(Fields{"label": "Peace", "component": "pipeline"}).Info("Gesture: Peace")
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "Gesture: Peace")
	assert.Contains(t, out, "[label:Peace]")
	assert.Contains(t, out, "logger_test.go")
	assert.NotContains(t, out, "hidden")
}

func TestNew(t *testing.T) {
	t.Run("writes rotated file outside tests", func(t *testing.T) {
		cfg := config.Default()
		cfg.DataDir = t.TempDir()
		cfg.Env = "production"

		log, err := New(cfg)
		require.NoError(t, err)
		log.Info("hello")

		data, err := os.ReadFile(cfg.LogPath())
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})

	t.Run("test env stays off disk", func(t *testing.T) {
		cfg := config.Default()
		cfg.DataDir = t.TempDir()
		cfg.Env = "test"

		_, err := New(cfg)
		require.NoError(t, err)
		assert.NoFileExists(t, cfg.LogPath())
	})

	t.Run("bad level", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogLevel = "loud"
		_, err := New(cfg)
		assert.Error(t, err)
	})
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.NotPanics(t, func() { log.Error("dropped") })
}
