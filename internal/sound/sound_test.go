package sound

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/roulette/internal/engine"
)

var _ engine.Sound = (*Player)(nil)

func TestPlayer_Cues(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlayer(&buf)

	p.PlayBeep()
	assert.Equal(t, "\a", buf.String())

	buf.Reset()
	p.PlayFinish()
	assert.Equal(t, strings.Repeat("\a", FinishBells), buf.String())
}

func TestPlayer_Mute(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlayer(&buf)

	p.SetMute(true)
	assert.True(t, p.Muted())
	p.PlayBeep()
	p.PlayFinish()
	assert.Empty(t, buf.String())

	p.SetMute(false)
	p.PlayBeep()
	assert.Equal(t, "\a", buf.String())
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write([]byte) (int, error) {
	w.calls++
	return 0, errors.New("broken pipe")
}

func TestPlayer_WriteFailureIsSwallowed(t *testing.T) {
	w := &failingWriter{}
	p := NewPlayer(w)

	assert.NotPanics(t, func() {
		p.PlayFinish()
		p.PlayBeep()
	})
	assert.Equal(t, 2, w.calls, "finish stops after the first failed note")
}

func TestPlayer_NilWriter(t *testing.T) {
	p := NewPlayer(nil)
	assert.NotPanics(t, p.PlayBeep)
}
