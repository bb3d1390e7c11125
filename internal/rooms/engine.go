// internal/rooms/engine.go
//
// Engine runs the Registry on a single goroutine.
//
// Every mutation enters the loop as a closure: client events through Do,
// timer callbacks through the loop scheduler, and the periodic TTL sweep
// from a ticker. Each closure runs to completion before the next one starts,
// so the registry and its rooms need no locks.
//
// Timers: time.AfterFunc callbacks only post back into the loop. Each key
// carries a generation number; a callback whose generation is no longer
// current (cancelled or rescheduled meanwhile) is dropped on arrival.

package rooms

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine serializes access to a Registry.
type Engine struct {
	reg   *Registry
	ops   chan func()
	done  chan struct{}
	sched *loopScheduler
	sweep time.Duration
}

// NewEngine builds an engine and its registry. deps.Scheduler is ignored;
// the engine installs its own.
func NewEngine(opts Options, deps Deps, sweepEvery time.Duration) *Engine {
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}
	e := &Engine{
		ops:   make(chan func(), 64),
		done:  make(chan struct{}),
		sweep: sweepEvery,
	}
	e.sched = &loopScheduler{post: e.post, timers: make(map[string]*pending)}
	deps.Scheduler = e.sched
	e.reg = NewRegistry(opts, deps)
	return e
}

// Run processes operations until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	ticker := time.NewTicker(e.sweep)
	defer ticker.Stop()

	log.Info().Dur("sweep", e.sweep).Msg("room engine started")
	for {
		select {
		case <-ctx.Done():
			e.sched.stopAll()
			log.Info().Int("rooms", e.reg.Len()).Msg("room engine stopped")
			return
		case op := <-e.ops:
			e.exec(op)
		case now := <-ticker.C:
			e.exec(func() { e.reg.Sweep(now) })
		}
	}
}

// Done is closed once Run has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Do runs fn on the engine goroutine and waits for it to return.
func (e *Engine) Do(ctx context.Context, fn func(*Registry)) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn(e.reg)
	}
	select {
	case e.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineStopped
	}
	select {
	case <-finished:
		return nil
	case <-e.done:
		return ErrEngineStopped
	}
}

// post enqueues fn from a timer goroutine.
func (e *Engine) post(fn func()) {
	select {
	case e.ops <- fn:
	case <-e.done:
	}
}

func (e *Engine) exec(op func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("room engine operation panicked")
		}
	}()
	op()
}

// ------------------------------ scheduler ----------------------------------

type pending struct {
	timer *time.Timer
	gen   uint64
}

// loopScheduler implements Scheduler for the engine. Schedule and Cancel are
// only called from the loop, so the map needs no lock.
type loopScheduler struct {
	post   func(func())
	timers map[string]*pending
	gen    uint64
}

func (s *loopScheduler) Schedule(key string, d time.Duration, fn func()) {
	s.Cancel(key)
	s.gen++
	gen := s.gen
	t := time.AfterFunc(d, func() {
		s.post(func() {
			cur, ok := s.timers[key]
			if !ok || cur.gen != gen {
				log.Debug().Str("timer", key).Msg("stale timer dropped")
				return
			}
			delete(s.timers, key)
			fn()
		})
	})
	s.timers[key] = &pending{timer: t, gen: gen}
}

func (s *loopScheduler) Cancel(key string) {
	if cur, ok := s.timers[key]; ok {
		cur.timer.Stop()
		delete(s.timers, key)
	}
}

func (s *loopScheduler) stopAll() {
	for key := range s.timers {
		s.Cancel(key)
	}
}
