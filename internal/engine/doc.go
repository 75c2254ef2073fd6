// Package engine implements the roulette spin engine.
//
// The engine picks a winner from a list of items, builds the presentational
// display sequence that ends on that winner, and owns the timers that end
// the spin.
//
// STATE MACHINE:
//
//	Idle --Spin()--> Spinning --finish timer--> Idle
//
// Idle may remember the winner of the last completed spin. Spinning is an
// irrevocable commitment to the chosen winner. Spin() while Spinning is
// rejected with ErrAlreadySpinning, never queued.
//
// TIMERS:
//
// Every spin bumps the generation counter (see Generation). Each timer
// callback carries the generation it was scheduled under and is a no-op if
// the engine has moved on, whether a newer spin started or Close() was
// called. Cancellation through the Scheduler is best-effort; the generation
// check is what guarantees stale callbacks have no effect.
//
// Timers come from an injectable Scheduler so tests can drive time manually
// (see internal/testutil.ManualScheduler).
//
// SELECTION:
//
// Candidates are the items, minus anything in history when duplicates are
// disallowed. The winner is drawn uniformly from the candidates. The 50-entry
// display sequence draws its first 49 entries with replacement from all
// items and always ends on the winner; it never influences the winner.
package engine
