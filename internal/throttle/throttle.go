// Package throttle tracks failed login attempts per identity and
// decides whether further attempts may proceed. State is process-owned
// and in-memory; it does not survive a restart and is not shared
// across instances.
package throttle

import (
	"hash/fnv"
	"sync"
	"time"
)

const (
	// DefaultMaxFailures is the failure count above which an identity is locked out.
	DefaultMaxFailures = 5
	// DefaultWindow is how long a lockout blocks, measured from the most recent failure.
	DefaultWindow = 1800 * time.Second

	shardCount = 32
)

// Decision is the outcome of a lockout check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // remaining lockout, zero when allowed
}

// record tracks failures for one identity. windowStart is refreshed on
// every failure, so the lockout window runs from the last failure.
type record struct {
	failures    int
	windowStart time.Time
}

type shard struct {
	mu      sync.Mutex
	records map[string]*record
}

// Tracker is the shared failure-count state, sharded by identity so
// unrelated identities never contend on the same lock while mutations
// to the same identity's record serialize.
type Tracker struct {
	shards      [shardCount]shard
	maxFailures int
	window      time.Duration
	now         func() time.Time
}

// New creates a Tracker. Non-positive maxFailures or window fall back
// to the defaults.
func New(maxFailures int, window time.Duration) *Tracker {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultWindow
	}

	t := &Tracker{
		maxFailures: maxFailures,
		window:      window,
		now:         time.Now,
	}
	for i := range t.shards {
		t.shards[i].records = make(map[string]*record)
	}
	return t
}

// SetClock overrides the time source. Tests use this to step through
// the lockout window without sleeping.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

func (t *Tracker) shardFor(identity string) *shard {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return &t.shards[h.Sum32()%shardCount]
}

// Check decides whether an attempt for identity may proceed. The first
// check for an unknown identity counts as an attempt and creates a
// record with one failure. An identity over the failure limit is
// blocked until the window elapses from its last failure; an expired
// lockout stops blocking but the record survives until a success or
// a sweep removes it.
func (t *Tracker) Check(identity string) Decision {
	s := t.shardFor(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok {
		s.records[identity] = &record{failures: 1, windowStart: t.now()}
		return Decision{Allowed: true}
	}

	if rec.failures > t.maxFailures {
		remaining := t.window - t.now().Sub(rec.windowStart)
		if remaining > 0 {
			return Decision{Allowed: false, RetryAfter: remaining}
		}
	}

	return Decision{Allowed: true}
}

// RecordFailure increments the failure count for identity and restarts
// its window from now.
func (t *Tracker) RecordFailure(identity string) {
	s := t.shardFor(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok {
		s.records[identity] = &record{failures: 1, windowStart: t.now()}
		return
	}
	rec.failures++
	rec.windowStart = t.now()
}

// RecordSuccess removes the identity's record entirely. A later Check
// behaves as a first-ever attempt.
func (t *Tracker) RecordSuccess(identity string) {
	s := t.shardFor(identity)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identity)
}

// Sweep evicts records whose window has fully elapsed and returns how
// many were removed. Without it, one record per all-time unique
// identity would accumulate for the life of the process.
func (t *Tracker) Sweep() int {
	evicted := 0
	now := t.now()

	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for identity, rec := range s.records {
			if now.Sub(rec.windowStart) >= t.window {
				delete(s.records, identity)
				evicted++
			}
		}
		s.mu.Unlock()
	}

	return evicted
}

// Len reports the number of tracked identities across all shards.
func (t *Tracker) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.records)
		s.mu.Unlock()
	}
	return n
}
