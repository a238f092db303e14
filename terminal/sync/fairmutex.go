// Package sync provides the fairness primitive that serializes access
// to terminal state between the PTY reader and a renderer.
package sync

import "sync"

// FairMutex is a mutex that stays acquirable under contention from a
// hot loop. A plain sync.Mutex lets a loop that releases and instantly
// re-acquires starve everyone else; the PTY reader is exactly such a
// loop, and a renderer stuck behind it drops frames.
//
// Fair lockers go through a ticket lock before touching the data lock,
// so anyone holding the ticket gets the next slot no matter how fast
// the current holder re-locks.
type FairMutex struct {
	// next is the ticket: held briefly while acquiring data, or held
	// across a Lease to reserve the upcoming slot.
	next sync.Mutex
	data sync.Mutex
}

// Lock acquires the mutex fairly, queueing behind any lease holder.
func (m *FairMutex) Lock() {
	m.next.Lock()
	m.data.Lock()
	m.next.Unlock()
}

// LockUnfair acquires the mutex without taking a ticket. Meant for
// accessors that run rarely enough that they cannot starve anyone.
func (m *FairMutex) LockUnfair() {
	m.data.Lock()
}

// Unlock releases the mutex regardless of how it was acquired.
func (m *FairMutex) Unlock() {
	m.data.Unlock()
}

// Lease reserves the next lock slot without blocking on the data lock.
// Fair lockers queue behind the lease until Unlease. The holder takes
// the data lock itself with LockUnfair when it is ready.
func (m *FairMutex) Lease() {
	m.next.Lock()
}

// Unlease gives up a reservation taken with Lease.
func (m *FairMutex) Unlease() {
	m.next.Unlock()
}
