//go:build !tinygo

package hal

import "time"

// baseTick is the firmware base tick period. All app timing constants
// (input divider, keepalive timeout) count these.
const baseTick = time.Millisecond

// hostTime turns wall time into the base tick stream the firmware loop
// drains. Runners call advance once per wakeup; elapsed real time is
// converted to whole ticks and the remainder carried into the next call, so
// the stream tracks 1ms real time regardless of the runner's frame rate.
type hostTime struct {
	ch   chan uint64
	tick uint64

	prev time.Time
	rem  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 4096)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) advance() {
	now := time.Now()
	if t.prev.IsZero() {
		t.prev = now
		t.emit(1)
		return
	}

	elapsed := now.Sub(t.prev) + t.rem
	t.prev = now
	t.rem = elapsed % baseTick
	t.emit(uint64(elapsed / baseTick))
}

// emit pushes n ticks without blocking; when the consumer is that far
// behind, overflow ticks are dropped rather than stalling the runner.
func (t *hostTime) emit(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.tick++
		select {
		case t.ch <- t.tick:
		default:
		}
	}
}
