package engine

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing if it has not fired yet.
	// Returns false if the callback already fired or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
// Callbacks run on a goroutine owned by the scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules callbacks on the runtime timer wheel via time.AfterFunc.
type RealScheduler struct{}

// AfterFunc implements Scheduler.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
