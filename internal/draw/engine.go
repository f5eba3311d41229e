/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package draw implements the prize draw: a depletable pool of participants,
// a timed spin that reveals random names before committing a winner, and the
// record of winners.
package draw

import (
	"math/rand/v2"
	"time"

	"github.com/Seednode/eventbox/internal/roster"
)

const (
	DefaultTick     = 80 * time.Millisecond
	DefaultDuration = 2 * time.Second
	DefaultJitter   = time.Second
)

type Option func(*Engine)

// WithTiming sets the tick interval and the spin duration range
// [duration, duration+jitter).
func WithTiming(tick, duration, jitter time.Duration) Option {
	return func(e *Engine) {
		if tick > 0 {
			e.tick = tick
		}
		if duration >= 0 {
			e.duration = duration
		}
		if jitter >= 0 {
			e.jitter = jitter
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// OnTick registers a callback receiving each name shown during a spin.
func OnTick(fn func(name string)) Option {
	return func(e *Engine) {
		e.onTick = fn
	}
}

// OnCommit registers a callback receiving each committed winner.
func OnCommit(fn func(winner roster.Participant)) Option {
	return func(e *Engine) {
		e.onCommit = fn
	}
}

// Engine is a single-owner state machine (Idle -> Spinning -> Idle). All
// methods and scheduled ticks must run on the same goroutine.
type Engine struct {
	sched    Scheduler
	rng      *rand.Rand
	tick     time.Duration
	duration time.Duration
	jitter   time.Duration

	onTick   func(string)
	onCommit func(roster.Participant)

	pool            []roster.Participant
	drawn           map[string]bool
	winners         []roster.Participant
	current         string
	allowDuplicates bool

	spinning bool
	gen      uint64
	stop     func()
}

// New returns an idle engine. With a nil sched only DrawNow can pick winners.
func New(sched Scheduler, opts ...Option) *Engine {
	e := &Engine{
		sched:    sched,
		tick:     DefaultTick,
		duration: DefaultDuration,
		jitter:   DefaultJitter,
		drawn:    make(map[string]bool),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return e
}

// StartSpin begins a spin. It reports false and does nothing when the pool
// is empty, a spin is already in progress, or the engine has no scheduler.
func (e *Engine) StartSpin() bool {
	if e.sched == nil || e.spinning || len(e.pool) == 0 {
		return false
	}

	total := e.duration
	if e.jitter > 0 {
		total += time.Duration(e.rng.Int64N(int64(e.jitter)))
	}

	e.spinning = true
	e.gen++
	gen := e.gen

	var elapsed time.Duration

	e.stop = e.sched.Every(e.tick, func() {
		if !e.spinning || e.gen != gen {
			return
		}

		pick := e.pool[e.rng.IntN(len(e.pool))]
		e.current = pick.Name
		if e.onTick != nil {
			e.onTick(pick.Name)
		}

		elapsed += e.tick
		if elapsed >= total {
			e.commit(pick)
		}
	})

	return true
}

// DrawNow picks and commits a winner immediately, skipping the reveal. It
// follows the same preconditions as StartSpin.
func (e *Engine) DrawNow() (roster.Participant, bool) {
	if e.spinning || len(e.pool) == 0 {
		return roster.Participant{}, false
	}

	pick := e.pool[e.rng.IntN(len(e.pool))]
	e.current = pick.Name
	e.commit(pick)

	return pick, true
}

func (e *Engine) commit(winner roster.Participant) {
	e.halt()

	e.winners = append([]roster.Participant{winner}, e.winners...)

	if !e.allowDuplicates {
		e.drawn[winner.ID] = true

		for i, p := range e.pool {
			if p.ID == winner.ID {
				e.pool = append(e.pool[:i:i], e.pool[i+1:]...)

				break
			}
		}
	}

	if e.onCommit != nil {
		e.onCommit(winner)
	}
}

// halt stops any in-flight spin without committing it.
func (e *Engine) halt() {
	if e.stop != nil {
		e.stop()
		e.stop = nil
	}
	e.spinning = false
	e.gen++
}

// Reset stops any spin, refills the pool from participants and clears the
// winners and the displayed name.
func (e *Engine) Reset(participants []roster.Participant) {
	e.halt()

	e.pool = clone(participants)
	e.drawn = make(map[string]bool)
	e.winners = nil
	e.current = ""
}

// Sync rebuilds the pool after the participant set changed. Participants
// already removed by a win stay out until Reset; an in-flight spin is
// abandoned.
func (e *Engine) Sync(participants []roster.Participant) {
	e.Cancel()

	e.pool = make([]roster.Participant, 0, len(participants))
	for _, p := range participants {
		if !e.drawn[p.ID] {
			e.pool = append(e.pool, p)
		}
	}
}

// Cancel abandons an in-flight spin without committing a winner.
func (e *Engine) Cancel() {
	if e.spinning {
		e.halt()
		e.current = ""
	}
}

// SetAllowDuplicates controls whether future winners stay in the pool.
func (e *Engine) SetAllowDuplicates(allow bool) {
	e.allowDuplicates = allow
}

func (e *Engine) AllowDuplicates() bool {
	return e.allowDuplicates
}

func (e *Engine) Spinning() bool {
	return e.spinning
}

// Current is the name most recently shown, or empty after a reset.
func (e *Engine) Current() string {
	return e.current
}

func (e *Engine) Pool() []roster.Participant {
	return clone(e.pool)
}

// Winners returns the winners, most recent first.
func (e *Engine) Winners() []roster.Participant {
	return clone(e.winners)
}

func clone(in []roster.Participant) []roster.Participant {
	out := make([]roster.Participant, len(in))
	copy(out, in)

	return out
}
