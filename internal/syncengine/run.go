package syncengine

import (
	"context"
	"sync"

	"github.com/ejoffe/profiletimer"
	"github.com/nexusbridge/hubstore/internal/hub"
	"github.com/nexusbridge/hubstore/internal/store"
	"github.com/rs/zerolog/log"
)

// Policy selects how the engine's Run loop behaves.
type Policy int

const (
	// Once runs a single tick (first_sync on a fresh engine, sync_once
	// otherwise) and returns.
	Once Policy = iota
	// Repeat runs ticks forever, triggered by branch-head changes, until
	// ctx is cancelled.
	Repeat
)

// EngineState is the three-state machine an Engine moves through:
// Starting (no tick has succeeded yet) -> Running (at least one tick has)
// -> Terminated (ctx was cancelled). A failing tick logs and stays
// Running; it never regresses to Starting.
type EngineState int

const (
	Starting EngineState = iota
	Running
	Terminated
)

// Engine orchestrates the sync loop across one (pub, priv) branch pair.
type Engine struct {
	Pub    store.Branch
	Priv   store.Branch
	Client hub.Client
	Dry    bool

	mu    sync.Mutex
	state EngineState
	last  snapshotPair
	timer profiletimer.Timer
}

// ProfilingEnable switches the engine's per-tick step timer from a noop
// to a real stopwatch.
func (e *Engine) ProfilingEnable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer = profiletimer.StartProfileTimer()
}

// ProfilingSummary prints the accumulated step timings to stdout.
func (e *Engine) ProfilingSummary() error {
	e.mu.Lock()
	t := e.timer
	e.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.ShowResults()
}

func (e *Engine) stepTimer() profiletimer.Timer {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer == nil {
		e.timer = profiletimer.StartNoopTimer()
	}
	return e.timer
}

// State reports the engine's current lifecycle state.
func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Run drives the engine according to policy until ctx is cancelled (for
// Repeat) or a single tick completes (for Once).
func (e *Engine) Run(ctx context.Context, policy Policy) error {
	if err := InitSync(e.Pub, e.Priv); err != nil {
		return err
	}

	if policy == Once {
		return e.runOnceTick(ctx)
	}
	return e.runRepeat(ctx)
}

func (e *Engine) runOnceTick(ctx context.Context) error {
	err := e.tick(ctx)
	if err != nil {
		log.Error().Str("component", "syncengine").Err(err).Msg("tick failed")
	}
	return err
}

// tick runs FirstSync when the engine hasn't completed a tick yet, else
// SyncOnce, recording the resulting snapshot pair and advancing state to
// Running on success.
func (e *Engine) tick(ctx context.Context) error {
	e.mu.Lock()
	starting := e.state == Starting
	last := e.last
	e.mu.Unlock()
	timer := e.stepTimer()

	var result snapshotPair
	var err error
	if starting {
		timer.Step("tick::FirstSync::Start")
		result, err = FirstSync(ctx, e.Pub, e.Priv, e.Client, e.Dry)
		timer.Step("tick::FirstSync::Done")
	} else {
		timer.Step("tick::SyncOnce::Start")
		result, err = SyncOnce(ctx, e.Pub, e.Priv, e.Client, e.Dry, last)
		timer.Step("tick::SyncOnce::Done")
	}
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.last = result
	e.state = Running
	e.mu.Unlock()
	return nil
}

// runRepeat spawns watcher goroutines for both branches plus a reactor
// that processes at most one tick at a time, guarded by a dirty flag and
// condition variable. Terminates when ctx is cancelled.
func (e *Engine) runRepeat(ctx context.Context) error {
	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	dirty := true // run the first tick unconditionally

	watch := func(branch store.Branch) {
		for {
			if err := branch.WaitForHead(ctx); err != nil {
				return
			}
			mu.Lock()
			dirty = true
			cond.Signal()
			mu.Unlock()
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); watch(e.Pub) }()
	go func() { defer wg.Done(); watch(e.Priv) }()

	go func() {
		<-ctx.Done()
		mu.Lock()
		cond.Broadcast()
		mu.Unlock()
	}()

	for {
		mu.Lock()
		for !dirty && ctx.Err() == nil {
			cond.Wait()
		}
		if ctx.Err() != nil {
			mu.Unlock()
			break
		}
		dirty = false
		mu.Unlock()

		if err := e.tick(ctx); err != nil {
			log.Error().Str("component", "syncengine").Err(err).Msg("tick failed, remaining in Running")
		}
	}

	e.mu.Lock()
	e.state = Terminated
	e.mu.Unlock()

	wg.Wait()
	return nil
}
