package tui

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/quake-view/internal/coordinator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutbox_PushDoesNotBlockOnStalledLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := newOutbox()
	stalled := make(chan struct{})
	delivered := make(chan coordinator.Event, 1024)
	go o.run(ctx, func(ev coordinator.Event) {
		<-stalled
		delivered <- ev
	})

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			o.push(coordinator.MarkerHovered{Key: "quake-1", On: i%2 == 0})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked while the consumer was stalled")
	}

	close(stalled)
	for i := 0; i < 1000; i++ {
		select {
		case ev := <-delivered:
			assert.Equal(t, coordinator.MarkerHovered{Key: "quake-1", On: i%2 == 0}, ev, "event %d", i)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d events delivered", i)
		}
	}
}

func TestOutbox_DeliversInPushOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	o := newOutbox()
	o.push(coordinator.YearStepped{Delta: -1})
	o.push(coordinator.AnimationToggled{})
	o.push(coordinator.BrushesReset{})

	got := make(chan coordinator.Event, 3)
	go o.run(ctx, func(ev coordinator.Event) { got <- ev })

	want := []coordinator.Event{coordinator.YearStepped{Delta: -1}, coordinator.AnimationToggled{}, coordinator.BrushesReset{}}
	for _, w := range want {
		select {
		case ev := <-got:
			require.Equal(t, w, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
}
