package testutil

import "sync"

// RecordingSound counts audio cues. It implements engine.Sound.
type RecordingSound struct {
	mu       sync.Mutex
	beeps    int
	finishes int
	muted    bool
}

// PlayBeep records a beep.
func (s *RecordingSound) PlayBeep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.muted {
		s.beeps++
	}
}

// PlayFinish records a finish cue.
func (s *RecordingSound) PlayFinish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.muted {
		s.finishes++
	}
}

// SetMute suppresses recording while muted.
func (s *RecordingSound) SetMute(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
}

// Beeps returns the number of recorded beeps.
func (s *RecordingSound) Beeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beeps
}

// Finishes returns the number of recorded finish cues.
func (s *RecordingSound) Finishes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishes
}
