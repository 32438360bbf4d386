package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""), "nivel desconocido cae en info")
}

func TestNop_NoEmiteEventos(t *testing.T) {
	l := Nop().Component("test")
	// Los eventos de un logger Nop son nil y zerolog los ignora sin pánico.
	assert.NotPanics(t, func() {
		l.Info().Str("k", "v").Msg("ignorado")
		l.Error().Err(assert.AnError).Msg("ignorado")
	})
}
