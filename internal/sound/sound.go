// Package sound renders spin audio cues on a terminal.
//
// A terminal has one sound: the bell. Each cue is a number of bells
// written back to back. Write failures are logged and swallowed; a spin
// never fails because audio did.
package sound

import (
	"io"
	"log/slog"
	"sync"
)

const bell = "\a"

// Bells rung per cue.
const (
	BeepBells   = 1
	FinishBells = 3
)

// Player plays cues by writing the bell character to a writer, usually the
// controlling terminal. It implements engine.Sound.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Player struct {
	mu     sync.Mutex
	w      io.Writer
	muted  bool
	logger *slog.Logger
}

// NewPlayer creates an unmuted player writing to w.
func NewPlayer(w io.Writer) *Player {
	return &Player{w: w, logger: slog.Default()}
}

// SetMute turns playback off or on.
func (p *Player) SetMute(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

// Muted reports whether playback is off.
func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// PlayBeep rings the bell once.
func (p *Player) PlayBeep() {
	p.play("beep", BeepBells)
}

// PlayFinish rings the finish cue.
func (p *Player) PlayFinish() {
	p.play("finish", FinishBells)
}

func (p *Player) play(cue string, bells int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.muted || p.w == nil {
		return
	}
	for range bells {
		if _, err := io.WriteString(p.w, bell); err != nil {
			p.logger.Warn("audio play failed", "cue", cue, "error", err)
			return
		}
	}
}
