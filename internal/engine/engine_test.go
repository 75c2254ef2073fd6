package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/roulette/internal/engine"
	"github.com/roach88/roulette/internal/model"
	"github.com/roach88/roulette/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func items(texts ...string) []model.Item {
	out := make([]model.Item, len(texts))
	for i, text := range texts {
		out[i] = model.Item{ID: string(rune('a' + i)), Text: text}
	}
	return out
}

// spinRecorder collects completion callbacks.
type spinRecorder struct {
	winners []model.Item
}

func (r *spinRecorder) onSpinEnd(it model.Item) {
	r.winners = append(r.winners, it)
}

func newManualEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, *testutil.ManualScheduler, *spinRecorder) {
	t.Helper()
	sched := testutil.NewManualScheduler()
	rec := &spinRecorder{}
	e := engine.New(rec.onSpinEnd, append([]engine.Option{engine.WithScheduler(sched)}, opts...)...)
	t.Cleanup(e.Close)
	return e, sched, rec
}

func TestSpin_AllowDuplicatesWinnerIsMember(t *testing.T) {
	list := items("A", "B", "C", "D")
	history := list // full history is ignored when duplicates are allowed

	for i := 0; i < 200; i++ {
		e, sched, rec := newManualEngine(t)

		res, err := e.Spin(engine.SpinRequest{Items: list, History: history, AllowDuplicates: true})
		require.NoError(t, err)
		assert.Contains(t, list, res.Winner)
		assert.Equal(t, len(list), res.Candidates)

		sched.Advance(engine.DefaultDuration)
		require.Len(t, rec.winners, 1)
		assert.Equal(t, res.Winner, rec.winners[0])
	}
}

func TestSpin_NoDuplicatesWinnerNotInHistory(t *testing.T) {
	list := items("A", "B", "C", "D", "E")
	history := []model.Item{list[0], list[2], list[4]}

	for i := 0; i < 200; i++ {
		e, _, _ := newManualEngine(t)

		res, err := e.Spin(engine.SpinRequest{Items: list, History: history, AllowDuplicates: false})
		require.NoError(t, err)
		assert.NotContains(t, history, res.Winner)
		assert.Equal(t, 2, res.Candidates)
	}
}

func TestSpin_DuplicatesExhausted(t *testing.T) {
	e, sched, rec := newManualEngine(t)
	list := []model.Item{{ID: "1", Text: "A"}}

	_, err := e.Spin(engine.SpinRequest{
		Items:           list,
		History:         []model.Item{{ID: "1", Text: "A"}},
		AllowDuplicates: false,
	})
	require.Error(t, err)
	assert.True(t, engine.IsDuplicatesExhausted(err))
	assert.False(t, engine.IsListEmpty(err))
	assert.True(t, engine.IsNoCandidates(err))

	assert.False(t, e.IsSpinning())
	assert.Equal(t, int64(0), e.Generation())
	assert.Empty(t, e.DisplayItems())
	assert.Equal(t, 0, sched.Pending())
	assert.Empty(t, rec.winners)
}

func TestSpin_ListEmptyRegardlessOfDuplicates(t *testing.T) {
	for _, allow := range []bool{true, false} {
		e, sched, _ := newManualEngine(t)

		_, err := e.Spin(engine.SpinRequest{Items: nil, AllowDuplicates: allow})
		require.Error(t, err)
		assert.True(t, engine.IsListEmpty(err), "allowDuplicates=%v", allow)
		assert.False(t, engine.IsDuplicatesExhausted(err))
		assert.False(t, e.IsSpinning())
		assert.Equal(t, 0, sched.Pending())
	}
}

func TestSpin_SequenceShape(t *testing.T) {
	list := items("A", "B", "C")

	for i := 0; i < 50; i++ {
		e, _, _ := newManualEngine(t)

		res, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
		require.NoError(t, err)
		require.Len(t, res.Sequence, engine.SequenceLength)
		assert.Equal(t, res.Winner, res.Sequence[engine.SequenceLength-1])
		for _, it := range res.Sequence {
			assert.Contains(t, list, it)
		}
		assert.Equal(t, res.Sequence, e.DisplayItems())
	}
}

func TestSpin_SequenceDrawsFromFullItems(t *testing.T) {
	// Winner must be C (only candidate); RNG value 0 makes every filler draw A,
	// which already won and is excluded from the candidate set.
	list := items("A", "B", "C")
	history := []model.Item{list[0], list[1]}
	e, _, _ := newManualEngine(t, engine.WithRNG(testutil.NewSequenceRNG(0)))

	res, err := e.Spin(engine.SpinRequest{Items: list, History: history})
	require.NoError(t, err)
	assert.Equal(t, list[2], res.Winner)
	for _, it := range res.Sequence[:engine.SequenceLength-1] {
		assert.Equal(t, list[0], it)
	}
}

func TestSpin_SingleCandidateIsDeterministic(t *testing.T) {
	list := items("only")
	e, _, _ := newManualEngine(t)

	res, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: false})
	require.NoError(t, err)
	assert.Equal(t, list[0], res.Winner)
}

func TestSpin_RejectedWhileSpinning(t *testing.T) {
	list := items("A", "B", "C")
	e, sched, rec := newManualEngine(t)

	first, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
	require.NoError(t, err)
	gen := e.Generation()
	display := e.DisplayItems()

	sched.Advance(engine.DefaultDuration / 2)
	_, err = e.Spin(engine.SpinRequest{Items: items("X", "Y"), AllowDuplicates: true})
	require.ErrorIs(t, err, engine.ErrAlreadySpinning)

	assert.Equal(t, gen, e.Generation())
	assert.Equal(t, display, e.DisplayItems())
	assert.True(t, e.IsSpinning())

	sched.Advance(engine.DefaultDuration / 2)
	require.Len(t, rec.winners, 1, "rejected spin was not queued")
	assert.Equal(t, first.Winner, rec.winners[0])
}

func TestSpin_FinishTransitionsToIdle(t *testing.T) {
	list := items("A", "B")
	e, sched, rec := newManualEngine(t)

	_, ok := e.Winner()
	assert.False(t, ok)

	res, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Generation)
	assert.True(t, e.IsSpinning())

	sched.Advance(engine.DefaultDuration - time.Millisecond)
	assert.True(t, e.IsSpinning(), "finish must not fire early")
	assert.Empty(t, rec.winners)

	sched.Advance(time.Millisecond)
	assert.False(t, e.IsSpinning())
	w, ok := e.Winner()
	require.True(t, ok)
	assert.Equal(t, res.Winner, w)
	require.Len(t, rec.winners, 1)

	// Nothing left to fire; completion stays exactly-once.
	sched.Advance(time.Hour)
	assert.Len(t, rec.winners, 1)
	assert.Equal(t, 0, sched.Pending())
}

func TestSpin_NewSpinClearsRememberedWinner(t *testing.T) {
	list := items("A", "B")
	e, sched, _ := newManualEngine(t)

	_, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
	require.NoError(t, err)
	sched.Advance(engine.DefaultDuration)
	_, ok := e.Winner()
	require.True(t, ok)

	res, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Generation)
	_, ok = e.Winner()
	assert.False(t, ok, "winner cleared while spinning")
}

func TestSpin_SoundCues(t *testing.T) {
	snd := &testutil.RecordingSound{}
	e, sched, _ := newManualEngine(t, engine.WithSound(snd))

	_, err := e.Spin(engine.SpinRequest{Items: items("A", "B"), AllowDuplicates: true, SoundEnabled: true})
	require.NoError(t, err)

	sched.Advance(engine.DefaultDuration / engine.MaxBeeps * 5)
	assert.Equal(t, 5, snd.Beeps())

	sched.Advance(engine.DefaultDuration)
	// The last tick shares its deadline with the finish timer and may lose the race.
	assert.GreaterOrEqual(t, snd.Beeps(), engine.MaxBeeps-1)
	assert.LessOrEqual(t, snd.Beeps(), engine.MaxBeeps)
	assert.Equal(t, 1, snd.Finishes())
	assert.Equal(t, 0, sched.Pending(), "beep interval cancelled")
}

func TestSpin_SoundDisabled(t *testing.T) {
	snd := &testutil.RecordingSound{}
	e, sched, rec := newManualEngine(t, engine.WithSound(snd))

	_, err := e.Spin(engine.SpinRequest{Items: items("A"), AllowDuplicates: true, SoundEnabled: false})
	require.NoError(t, err)
	assert.Equal(t, 1, sched.Pending(), "only the finish timer")

	sched.Advance(engine.DefaultDuration)
	assert.Equal(t, 0, snd.Beeps())
	assert.Equal(t, 0, snd.Finishes())
	assert.Len(t, rec.winners, 1)
}

type panickingSound struct{}

func (panickingSound) PlayBeep()   { panic("no audio device") }
func (panickingSound) PlayFinish() { panic("no audio device") }

func TestSpin_SoundFailureDoesNotBreakSpin(t *testing.T) {
	e, sched, rec := newManualEngine(t, engine.WithSound(panickingSound{}))

	_, err := e.Spin(engine.SpinRequest{Items: items("A"), AllowDuplicates: true, SoundEnabled: true})
	require.NoError(t, err)

	sched.Advance(engine.DefaultDuration)
	assert.False(t, e.IsSpinning())
	assert.Len(t, rec.winners, 1)
}

func TestClose_CancelsOutstandingTimers(t *testing.T) {
	snd := &testutil.RecordingSound{}
	e, sched, rec := newManualEngine(t, engine.WithSound(snd))

	_, err := e.Spin(engine.SpinRequest{Items: items("A", "B"), AllowDuplicates: true, SoundEnabled: true})
	require.NoError(t, err)
	gen := e.Generation()

	e.Close()
	assert.Equal(t, 0, sched.Pending())
	assert.Greater(t, e.Generation(), gen)
	assert.False(t, e.IsSpinning())

	sched.Advance(time.Hour)
	assert.Empty(t, rec.winners)
	assert.Equal(t, 0, snd.Beeps())

	_, err = e.Spin(engine.SpinRequest{Items: items("A"), AllowDuplicates: true})
	require.ErrorIs(t, err, engine.ErrClosed)

	e.Close() // idempotent
}

// leakyScheduler never cancels, so stale callbacks still fire and only the
// generation check can neutralise them.
type leakyScheduler struct {
	*testutil.ManualScheduler
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

func (s leakyScheduler) AfterFunc(d time.Duration, f func()) engine.Timer {
	s.ManualScheduler.AfterFunc(d, f)
	return noopTimer{}
}

func TestClose_GenerationGuardWhenCancellationFails(t *testing.T) {
	sched := leakyScheduler{testutil.NewManualScheduler()}
	snd := &testutil.RecordingSound{}
	rec := &spinRecorder{}
	e := engine.New(rec.onSpinEnd, engine.WithScheduler(sched), engine.WithSound(snd))

	_, err := e.Spin(engine.SpinRequest{Items: items("A", "B"), AllowDuplicates: true, SoundEnabled: true})
	require.NoError(t, err)
	e.Close()

	sched.Advance(time.Hour)
	assert.Empty(t, rec.winners)
	assert.Equal(t, 0, snd.Beeps())
	assert.Equal(t, 0, snd.Finishes())
}

func TestSpin_CompletionCallbackMayReenter(t *testing.T) {
	sched := testutil.NewManualScheduler()
	list := items("A", "B", "C")

	var e *engine.Engine
	var second error
	spins := 0
	e = engine.New(func(model.Item) {
		spins++
		if spins == 1 {
			_, second = e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
		}
	}, engine.WithScheduler(sched))
	defer e.Close()

	_, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
	require.NoError(t, err)

	sched.Advance(engine.DefaultDuration)
	require.NoError(t, second, "engine is Idle before the callback runs")
	assert.True(t, e.IsSpinning())

	sched.Advance(engine.DefaultDuration)
	assert.Equal(t, 2, spins)
}

func TestSpin_WinnerIsUniform(t *testing.T) {
	list := items("A", "B", "C")
	counts := make(map[string]int)
	const spins = 6000

	sched := testutil.NewManualScheduler()
	e := engine.New(func(it model.Item) { counts[it.ID]++ }, engine.WithScheduler(sched))
	defer e.Close()

	for i := 0; i < spins; i++ {
		_, err := e.Spin(engine.SpinRequest{Items: list, AllowDuplicates: true})
		require.NoError(t, err)
		sched.Advance(engine.DefaultDuration)
	}

	// Expected 2000 each; sd ~36.5, so +-300 is far outside chance.
	for _, it := range list {
		assert.InDelta(t, spins/3, counts[it.ID], 300, "item %s", it.Text)
	}
}

func TestSpin_RealScheduler(t *testing.T) {
	done := make(chan model.Item, 1)
	e := engine.New(func(it model.Item) { done <- it }, engine.WithDuration(20*time.Millisecond))
	defer e.Close()

	res, err := e.Spin(engine.SpinRequest{Items: items("A", "B"), AllowDuplicates: true, SoundEnabled: true})
	require.NoError(t, err)

	select {
	case w := <-done:
		assert.Equal(t, res.Winner, w)
	case <-time.After(2 * time.Second):
		t.Fatal("spin did not finish")
	}
	assert.False(t, e.IsSpinning())
	assert.Equal(t, 20*time.Millisecond, e.Duration())
}

func TestCandidates(t *testing.T) {
	list := items("A", "B", "C")

	got, err := engine.Candidates(list, list[:1], false)
	require.NoError(t, err)
	assert.Equal(t, list[1:], got)

	got, err = engine.Candidates(list, list, true)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	_, err = engine.Candidates(list, list, false)
	var nc *engine.NoCandidatesError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, engine.ReasonDuplicatesExhausted, nc.Reason)
	assert.Equal(t, 3, nc.Items)
	assert.Contains(t, err.Error(), "clear history or allow duplicates")

	// History entries for items no longer in the list are irrelevant.
	got, err = engine.Candidates(list, []model.Item{{ID: "gone"}}, false)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}
