// Package driver owns the running game: the ticker that advances it, the
// current state, and the subscribers that observe it.
package driver

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

// Driver serializes timer ticks and input events around one GameState.
type Driver struct {
	engine   *snake.Engine
	interval time.Duration
	cellSize int

	mu      sync.Mutex
	state   structs.GameState
	session string
	tick    uint64
	subs    map[chan structs.Snapshot]struct{}
	closed  bool

	stopOnce sync.Once
	stopChan chan struct{}
}

// Option configures a Driver.
type Option func(*Driver)

// WithCellSize sets the pixel size reported in snapshots.
func WithCellSize(px int) Option {
	return func(d *Driver) { d.cellSize = px }
}

// New builds a driver with a fresh game. It does not start ticking.
func New(engine *snake.Engine, interval time.Duration, opts ...Option) *Driver {
	d := &Driver{
		engine:   engine,
		interval: interval,
		state:    engine.Initial(),
		session:  uuid.NewString(),
		subs:     make(map[chan structs.Snapshot]struct{}),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run ticks at the configured interval until ctx is done or Stop is called.
// Subscriber channels are closed on return.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	defer d.closeSubscribers()

	log.Printf("driver: ticking every %v, session %s", d.interval, d.sessionID())
	for {
		select {
		case <-ctx.Done():
			log.Printf("driver: stopped by context")
			return
		case <-d.stopChan:
			log.Printf("driver: stopped")
			return
		case <-ticker.C:
			d.Tick()
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stopChan) })
}

// Tick advances the game by one step and publishes the result. Paused and
// finished games still publish so observers see the tick counter move.
func (d *Driver) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.state
	d.state = d.engine.Advance(d.state)
	d.tick++

	if err := d.engine.Validate(d.state); err != nil {
		log.Printf("driver: tick %d produced %v", d.tick, err)
	}
	if d.state.GameOver && !prev.GameOver {
		log.Printf("driver: game over, session %s score %d length %d", d.session, d.state.Score, len(d.state.Snake))
	}
	d.publishLocked()
}

// ChangeDirection queues a heading for the next tick.
func (d *Driver) ChangeDirection(dir structs.Direction) {
	d.update(func(s structs.GameState) structs.GameState {
		return snake.SetDirection(s, dir)
	})
}

// TogglePause flips the paused flag.
func (d *Driver) TogglePause() {
	d.update(snake.TogglePause)
}

// Reset replaces the game with a fresh one. The ticker keeps its cadence.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = d.engine.Reset()
	d.session = uuid.NewString()
	log.Printf("driver: reset, session %s", d.session)
	d.publishLocked()
}

func (d *Driver) update(fn func(structs.GameState) structs.GameState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = fn(d.state)
	d.publishLocked()
}

// Snapshot returns a copy of the current game.
func (d *Driver) Snapshot() structs.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Driver) sessionID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

func (d *Driver) snapshotLocked() structs.Snapshot {
	return structs.Snapshot{
		State:    d.state.Clone(),
		Width:    d.engine.Width(),
		Height:   d.engine.Height(),
		CellSize: d.cellSize,
		Session:  d.session,
		Tick:     d.tick,
	}
}

// Subscribe returns a channel receiving every published snapshot and a
// function to cancel the subscription. A subscriber that falls behind
// loses its oldest pending snapshot instead of stalling the game.
func (d *Driver) Subscribe(buffer int) (<-chan structs.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan structs.Snapshot, buffer)

	d.mu.Lock()
	if d.closed {
		close(ch)
	} else {
		d.subs[ch] = struct{}{}
	}
	d.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			if _, ok := d.subs[ch]; ok {
				delete(d.subs, ch)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// publishLocked must be called with d.mu held.
func (d *Driver) publishLocked() {
	if len(d.subs) == 0 {
		return
	}
	snap := d.snapshotLocked()
	for ch := range d.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// drop the oldest and retry once
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (d *Driver) closeSubscribers() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for ch := range d.subs {
		delete(d.subs, ch)
		close(ch)
	}
	d.closed = true
}
