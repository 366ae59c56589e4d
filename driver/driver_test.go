package driver

import (
	"context"
	"testing"
	"time"

	"github.com/hoshinonyaruko/snake-in-browser/config"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
	"golang.org/x/exp/rand"
)

func newTestDriver(t *testing.T, interval time.Duration) *Driver {
	t.Helper()
	e, err := snake.NewEngine(config.GridWidth, config.GridHeight, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return New(e, interval, WithCellSize(config.CellSize))
}

func TestSnapshotMetadata(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	snap := d.Snapshot()

	if snap.Width != 20 || snap.Height != 15 || snap.CellSize != 20 {
		t.Errorf("Expected 20x15 @20px, got %dx%d @%dpx", snap.Width, snap.Height, snap.CellSize)
	}
	if snap.Session == "" {
		t.Error("Expected a session id")
	}
	if len(snap.State.Snake) != 3 {
		t.Errorf("Expected starting length 3, got %d", len(snap.State.Snake))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	snap := d.Snapshot()
	snap.State.Snake[0].X = 99

	if got := d.Snapshot().State.Snake[0].X; got != 3 {
		t.Errorf("Expected driver state untouched, got head x %d", got)
	}
}

func TestTickAdvances(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	before := d.Snapshot()
	d.Tick()
	after := d.Snapshot()

	if after.Tick != before.Tick+1 {
		t.Errorf("Expected tick %d, got %d", before.Tick+1, after.Tick)
	}
	if after.State.Snake[0].ID != before.State.Snake[0].ID+1 {
		t.Errorf("Expected head id to advance, got %d", after.State.Snake[0].ID)
	}
}

func TestDirectionVisibleBeforeTick(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	ch, cancel := d.Subscribe(4)
	defer cancel()

	d.ChangeDirection(structs.Up)

	select {
	case snap := <-ch:
		if snap.State.NextDirection != structs.Up {
			t.Errorf("Expected pending UP, got %s", snap.State.NextDirection)
		}
		if snap.State.Direction != structs.Right {
			t.Errorf("Expected committed RIGHT until the next tick, got %s", snap.State.Direction)
		}
		if snap.Tick != 0 {
			t.Errorf("Expected no tick yet, got %d", snap.Tick)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a published snapshot")
	}
}

func TestHandleKey(t *testing.T) {
	d := newTestDriver(t, time.Hour)

	if !d.HandleKey("ArrowDown") {
		t.Fatal("Expected ArrowDown bound")
	}
	if got := d.Snapshot().State.NextDirection; got != structs.Down {
		t.Errorf("Expected DOWN, got %s", got)
	}

	if !d.HandleKey(" ") || !d.Snapshot().State.IsPaused {
		t.Error("Expected space to pause")
	}
	if !d.HandleKey("Space") || d.Snapshot().State.IsPaused {
		t.Error("Expected Space to resume")
	}

	if d.HandleKey("x") {
		t.Error("Expected x unbound")
	}
}

func TestResetKeepsTicking(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	d.Tick()
	d.Tick()
	before := d.Snapshot()

	if !d.HandleKey("R") {
		t.Fatal("Expected R bound")
	}
	after := d.Snapshot()

	if after.Session == before.Session {
		t.Error("Expected a new session after reset")
	}
	if after.Tick != before.Tick {
		t.Errorf("Expected tick counter %d kept, got %d", before.Tick, after.Tick)
	}
	if after.State.Snake[0].ID != 2 || after.State.Score != 0 {
		t.Errorf("Expected a fresh game, got %+v", after.State)
	}
}

func TestSlowSubscriberKeepsNewest(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	ch, cancel := d.Subscribe(1)
	defer cancel()

	d.Tick()
	d.Tick()
	d.Tick()

	snap := <-ch
	if snap.Tick != 3 {
		t.Errorf("Expected newest tick 3, got %d", snap.Tick)
	}
}

func TestUnsubscribe(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	ch, cancel := d.Subscribe(1)
	cancel()
	cancel()

	d.Tick()
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cancel")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	d := newTestDriver(t, 5*time.Millisecond)
	ch, _ := d.Subscribe(64)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected a tick from Run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after cancel")
	}

	for range ch {
	}
	late, _ := d.Subscribe(1)
	if _, ok := <-late; ok {
		t.Error("Expected subscriptions after teardown to be closed")
	}
}

func TestStop(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(done)
	}()

	d.Stop()
	d.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to return after Stop")
	}
}

func TestPausedTicksLeaveStateAlone(t *testing.T) {
	d := newTestDriver(t, time.Hour)
	d.TogglePause()
	before := d.Snapshot()
	d.Tick()
	after := d.Snapshot()

	if after.State.Snake[0] != before.State.Snake[0] {
		t.Errorf("Expected head unchanged while paused, got %v", after.State.Snake[0])
	}
}
