package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/roulette/internal/model"
)

const (
	// SequenceLength is the number of entries in a display sequence.
	SequenceLength = 50

	// DefaultDuration is how long a spin lasts before the winner is announced.
	DefaultDuration = 4 * time.Second

	// MaxBeeps caps the beep interval. Beeps are spaced Duration/MaxBeeps apart.
	MaxBeeps = 20
)

// Sound receives the audio cues of a spin.
// Implementations must not block; the engine never waits on them.
type Sound interface {
	PlayBeep()
	PlayFinish()
}

// SpinRequest is the input of one spin.
type SpinRequest struct {
	// Items is the full item collection of the selected list.
	Items []model.Item

	// History is the session history, most recent first.
	History []model.Item

	// AllowDuplicates disables history-based exclusion.
	AllowDuplicates bool

	// SoundEnabled turns on the beep interval and the finish cue.
	SoundEnabled bool
}

// SpinResult describes a committed spin.
type SpinResult struct {
	// Winner is the item the spin will land on.
	Winner model.Item

	// Sequence is the display sequence; its last entry is Winner.
	Sequence []model.Item

	// Generation identifies the spin.
	Generation int64

	// Candidates is the size of the candidate set the winner was drawn from.
	Candidates int
}

// Engine runs the Idle -> Spinning -> Idle state machine.
//
// Thread-safety model:
//   - Spin(), Close() and all accessors are safe from any goroutine
//   - timer callbacks take the same lock and re-check the generation
//   - the completion callback and sound cues run outside the lock, so the
//     completion callback may call back into the engine or the state store
type Engine struct {
	mu sync.Mutex

	gen       *Generation
	scheduler Scheduler
	rng       RNG
	sound     Sound
	duration  time.Duration
	onSpinEnd func(model.Item)
	logger    *slog.Logger

	spinning bool
	closed   bool
	winner   *model.Item
	display  []model.Item

	finishTimer Timer
	beepTimer   Timer

	// inflight counts callbacks past the generation check; Close waits on it.
	inflight sync.WaitGroup
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithScheduler sets the timer source. Default: RealScheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithRNG sets the random source. Default: DefaultRNG.
func WithRNG(r RNG) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithSound sets the audio cue sink. Default: none.
func WithSound(s Sound) Option {
	return func(e *Engine) {
		e.sound = s
	}
}

// WithDuration sets the spin duration. Default: DefaultDuration (4s).
// Non-positive values are ignored.
func WithDuration(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.duration = d
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Idle engine.
//
// onSpinEnd is called exactly once per completed spin with its winner; the
// caller typically appends the winner to session history. It may be nil.
func New(onSpinEnd func(model.Item), opts ...Option) *Engine {
	e := &Engine{
		gen:       NewGeneration(),
		scheduler: RealScheduler{},
		rng:       DefaultRNG{},
		duration:  DefaultDuration,
		onSpinEnd: onSpinEnd,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Spin starts a spin.
//
// Returns ErrAlreadySpinning while Spinning, ErrClosed after Close, and
// *NoCandidatesError when nothing is eligible. In every error case the engine
// state is untouched.
func (e *Engine) Spin(req SpinRequest) (SpinResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return SpinResult{}, ErrClosed
	}
	if e.spinning {
		return SpinResult{}, ErrAlreadySpinning
	}

	candidates, err := Candidates(req.Items, req.History, req.AllowDuplicates)
	if err != nil {
		e.logger.Debug("spin rejected", "error", err)
		return SpinResult{}, err
	}

	winner := candidates[e.rng.Intn(len(candidates))]
	sequence := BuildSequence(req.Items, winner, e.rng)

	// Transition to Spinning. Stopping old handles and bumping the
	// generation together neutralise anything left from a previous spin.
	e.stopTimersLocked()
	gen := e.gen.Next()
	e.spinning = true
	e.winner = nil
	e.display = sequence

	e.finishTimer = e.scheduler.AfterFunc(e.duration, func() {
		e.finish(gen, winner, req.SoundEnabled)
	})
	if req.SoundEnabled {
		e.scheduleBeepLocked(gen, 1)
	}

	e.logger.Debug("spin started",
		"generation", gen,
		"items", len(req.Items),
		"candidates", len(candidates),
		"duration", e.duration,
	)

	return SpinResult{
		Winner:     winner,
		Sequence:   model.CloneItems(sequence),
		Generation: gen,
		Candidates: len(candidates),
	}, nil
}

// scheduleBeepLocked arms beep number n of the interval.
// Caller must hold e.mu.
func (e *Engine) scheduleBeepLocked(gen int64, n int) {
	interval := e.duration / MaxBeeps
	e.beepTimer = e.scheduler.AfterFunc(interval, func() {
		e.beep(gen, n)
	})
}

// beep is the interval tick. Ticks carry no state responsibility beyond
// re-arming the next one, so a tick racing the finish timer is harmless.
func (e *Engine) beep(gen int64, n int) {
	e.mu.Lock()
	if e.closed || !e.spinning || gen != e.gen.Current() {
		e.mu.Unlock()
		return
	}
	if n < MaxBeeps {
		e.scheduleBeepLocked(gen, n+1)
	} else {
		e.beepTimer = nil
	}
	e.inflight.Add(1)
	e.mu.Unlock()
	defer e.inflight.Done()

	e.play("beep", func(s Sound) { s.PlayBeep() })
}

// finish ends the spin tagged gen. Stale or post-Close calls are no-ops.
func (e *Engine) finish(gen int64, winner model.Item, soundEnabled bool) {
	e.mu.Lock()
	if e.closed || !e.spinning || gen != e.gen.Current() {
		e.mu.Unlock()
		return
	}
	e.spinning = false
	w := winner
	e.winner = &w
	e.finishTimer = nil
	if e.beepTimer != nil {
		e.beepTimer.Stop()
		e.beepTimer = nil
	}
	onSpinEnd := e.onSpinEnd
	e.inflight.Add(1)
	e.mu.Unlock()
	defer e.inflight.Done()

	e.logger.Debug("spin finished", "generation", gen, "winner", winner.ID)

	if soundEnabled {
		e.play("finish", func(s Sound) { s.PlayFinish() })
	}
	if onSpinEnd != nil {
		onSpinEnd(winner)
	}
}

// play invokes a sound cue, swallowing and logging any panic so audio
// problems never reach the spin sequence.
func (e *Engine) play(cue string, fn func(Sound)) {
	if e.sound == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("audio play failed", "cue", cue, "error", fmt.Sprint(r))
		}
	}()
	fn(e.sound)
}

// Close tears the engine down. Outstanding timers are stopped and the
// generation is bumped, so no callback has any effect afterwards. Close
// returns once callbacks already running have finished, so it must not be
// called from the completion callback. Close is idempotent.
func (e *Engine) Close() {
	e.mu.Lock()
	if !e.closed {
		e.stopTimersLocked()
		e.gen.Next()
		e.closed = true
		e.spinning = false
	}
	e.mu.Unlock()

	e.inflight.Wait()
}

// stopTimersLocked cancels the finish timer and beep interval.
// Caller must hold e.mu.
func (e *Engine) stopTimersLocked() {
	if e.finishTimer != nil {
		e.finishTimer.Stop()
		e.finishTimer = nil
	}
	if e.beepTimer != nil {
		e.beepTimer.Stop()
		e.beepTimer = nil
	}
}

// IsSpinning reports whether a spin is in progress.
func (e *Engine) IsSpinning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spinning
}

// Winner returns the winner of the last completed spin.
// Returns false while Spinning and before the first spin completes.
func (e *Engine) Winner() (model.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.winner == nil {
		return model.Item{}, false
	}
	return *e.winner, true
}

// DisplayItems returns a copy of the current display sequence.
func (e *Engine) DisplayItems() []model.Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.CloneItems(e.display)
}

// Generation returns the current generation.
func (e *Engine) Generation() int64 {
	return e.gen.Current()
}

// Duration returns the configured spin duration.
func (e *Engine) Duration() time.Duration {
	return e.duration
}

// Candidates returns the items eligible to win.
//
// With allowDuplicates the items are returned as-is; otherwise any item whose
// ID occurs in history is dropped. An empty result is reported as a
// *NoCandidatesError distinguishing an empty collection from exhausted history.
func Candidates(items, history []model.Item, allowDuplicates bool) ([]model.Item, error) {
	if len(items) == 0 {
		return nil, &NoCandidatesError{Reason: ReasonListEmpty}
	}
	if allowDuplicates {
		return items, nil
	}

	seen := make(map[string]bool, len(history))
	for _, h := range history {
		seen[h.ID] = true
	}

	candidates := make([]model.Item, 0, len(items))
	for _, it := range items {
		if !seen[it.ID] {
			candidates = append(candidates, it)
		}
	}

	if len(candidates) == 0 {
		return nil, &NoCandidatesError{
			Reason:   ReasonDuplicatesExhausted,
			Items:    len(items),
			Excluded: len(items),
		}
	}
	return candidates, nil
}

// BuildSequence returns a SequenceLength-entry display sequence.
// Entries 0..SequenceLength-2 are drawn with replacement from items (already
// won items included); the last entry is winner. items must be non-empty.
func BuildSequence(items []model.Item, winner model.Item, rng RNG) []model.Item {
	sequence := make([]model.Item, SequenceLength)
	for i := 0; i < SequenceLength-1; i++ {
		sequence[i] = items[rng.Intn(len(items))]
	}
	sequence[SequenceLength-1] = winner
	return sequence
}
