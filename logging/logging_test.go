package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevel(t *testing.T) {
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		Discard()
	})

	var buf bytes.Buffer
	Init(&buf, "warn", false)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	Init(&buf, "nonsense", true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestWithComponent(t *testing.T) {
	t.Cleanup(Discard)

	var buf bytes.Buffer
	Init(&buf, "debug", false)
	l := WithComponent("editor")
	l.Debug().Msg("split")
	assert.Contains(t, buf.String(), "component=editor")
}

func TestInitFile(t *testing.T) {
	t.Cleanup(Discard)

	closer, err := InitFile(t.TempDir(), "info", false)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}
