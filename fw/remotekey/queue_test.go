package remotekey

import (
	"testing"

	"k5remote/keys"
	"k5remote/wire"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		key       keys.Code
		action    wire.Action
		predicted keys.Code
		want      Status
	}{
		{"press idle", keys.KeyMenu, wire.ActionPress, keys.KeyInvalid, Accepted},
		{"release own key", keys.KeyMenu, wire.ActionRelease, keys.KeyMenu, Accepted},
		{"sentinel key", keys.KeyInvalid, wire.ActionPress, keys.KeyInvalid, Invalid},
		{"out of range key", keys.Code(200), wire.ActionPress, keys.KeyInvalid, Invalid},
		{"ptt excluded", keys.KeyPTT, wire.ActionPress, keys.KeyInvalid, Invalid},
		{"bad action", keys.KeyMenu, wire.Action(7), keys.KeyInvalid, Invalid},
		{"press while outstanding", keys.KeyExit, wire.ActionPress, keys.KeyMenu, Invalid},
		{"press same key twice", keys.KeyMenu, wire.ActionPress, keys.KeyMenu, Invalid},
		{"release other key", keys.KeyExit, wire.ActionRelease, keys.KeyMenu, Invalid},
		{"release while idle", keys.KeyMenu, wire.ActionRelease, keys.KeyInvalid, Invalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.key, tt.action, tt.predicted); got != tt.want {
				t.Fatalf("Validate(%s, %s, %s) = %s, want %s",
					tt.key, tt.action, tt.predicted, got, tt.want)
			}
		})
	}
}

func TestEnqueueTracksPredictedState(t *testing.T) {
	q := New(DefaultHoldTicks)

	if st := q.Enqueue(keys.KeyMenu, wire.ActionPress); st != Accepted {
		t.Fatalf("press: %s", st)
	}
	if st := q.Enqueue(keys.KeyMenu, wire.ActionPress); st != Invalid {
		t.Fatalf("second press should be invalid, got %s", st)
	}
	if st := q.Enqueue(keys.KeyExit, wire.ActionRelease); st != Invalid {
		t.Fatalf("release of other key should be invalid, got %s", st)
	}
	if st := q.Enqueue(keys.KeyMenu, wire.ActionRelease); st != Accepted {
		t.Fatalf("release: %s", st)
	}
	if st := q.Enqueue(keys.KeyExit, wire.ActionPress); st != Accepted {
		t.Fatalf("press after queued release should be accepted, got %s", st)
	}
	if got := q.Depth(); got != 3 {
		t.Fatalf("depth = %d, want 3", got)
	}
}

func TestEnqueueBusyLeavesQueueUnchanged(t *testing.T) {
	q := New(DefaultHoldTicks)

	// Alternating press/release pairs fill the queue with legal events.
	for i := 0; i < QueueSize/2; i++ {
		if st := q.Enqueue(keys.KeyUp, wire.ActionPress); st != Accepted {
			t.Fatalf("press %d: %s", i, st)
		}
		if st := q.Enqueue(keys.KeyUp, wire.ActionRelease); st != Accepted {
			t.Fatalf("release %d: %s", i, st)
		}
	}
	if got := q.Depth(); got != QueueSize {
		t.Fatalf("depth = %d, want %d", got, QueueSize)
	}

	before := q.events
	if st := q.Enqueue(keys.KeyDown, wire.ActionPress); st != Busy {
		t.Fatalf("overflow enqueue = %s, want busy", st)
	}
	if q.events != before {
		t.Fatal("busy rejection modified ring contents")
	}
	if got := q.Depth(); got != QueueSize {
		t.Fatalf("depth after busy = %d, want %d", got, QueueSize)
	}
}

func TestDrainHoldsPressForMinimumTicks(t *testing.T) {
	const hold = 4
	q := New(hold)

	if st := q.Enqueue(keys.KeyMenu, wire.ActionPress); st != Accepted {
		t.Fatalf("press: %s", st)
	}
	if st := q.Enqueue(keys.KeyMenu, wire.ActionRelease); st != Accepted {
		t.Fatalf("release: %s", st)
	}

	q.DrainOneTick()
	if got := q.Injected(); got != keys.KeyMenu {
		t.Fatalf("injected after press drain = %s, want MENU", got)
	}

	// The press drain tick counts toward the hold window; the release
	// queued right behind must not clear it on the remaining hold ticks.
	for i := 0; i < hold-1; i++ {
		q.DrainOneTick()
		if got := q.Injected(); got != keys.KeyMenu {
			t.Fatalf("tick %d: injected = %s, want MENU", i, got)
		}
	}

	q.DrainOneTick()
	if got := q.Injected(); got != keys.KeyInvalid {
		t.Fatalf("injected after hold expiry = %s, want NONE", got)
	}
	if got := q.Depth(); got != 0 {
		t.Fatalf("depth after full drain = %d, want 0", got)
	}
}

func TestDrainEmptyQueueIsNoop(t *testing.T) {
	q := New(DefaultHoldTicks)
	for i := 0; i < 10; i++ {
		q.DrainOneTick()
	}
	if got := q.Injected(); got != keys.KeyInvalid {
		t.Fatalf("injected = %s, want NONE", got)
	}
}

func TestAtMostOneInjectedKeyEver(t *testing.T) {
	q := New(2)

	seq := []struct {
		key    keys.Code
		action wire.Action
	}{
		{keys.Key1, wire.ActionPress},
		{keys.Key1, wire.ActionRelease},
		{keys.KeyStar, wire.ActionPress},
		{keys.KeyStar, wire.ActionRelease},
		{keys.KeySide1, wire.ActionPress},
		{keys.KeySide1, wire.ActionRelease},
	}
	for _, ev := range seq {
		if st := q.Enqueue(ev.key, ev.action); st != Accepted {
			t.Fatalf("enqueue(%s, %s): %s", ev.key, ev.action, st)
		}
	}

	var down keys.Code = keys.KeyInvalid
	for tick := 0; tick < 40; tick++ {
		q.DrainOneTick()
		inj := q.Injected()
		if inj != keys.KeyInvalid && down != keys.KeyInvalid && inj != down {
			t.Fatalf("tick %d: injected switched %s -> %s without a release",
				tick, down, inj)
		}
		down = inj
	}
	if q.Depth() != 0 {
		t.Fatalf("queue not fully drained, depth = %d", q.Depth())
	}
	if down != keys.KeyInvalid {
		t.Fatalf("key %s left stuck down", down)
	}
}

func TestMergePhysicalWins(t *testing.T) {
	physical := []keys.Code{keys.Key0, keys.KeyMenu, keys.KeyPTT, keys.KeySide1}
	injected := []keys.Code{keys.KeyInvalid, keys.Key5, keys.KeyExit}
	for _, p := range physical {
		for _, in := range injected {
			if got := Merge(p, in); got != p {
				t.Fatalf("Merge(%s, %s) = %s, want %s", p, in, got, p)
			}
		}
	}
	if got := Merge(keys.KeyInvalid, keys.Key5); got != keys.Key5 {
		t.Fatalf("Merge(NONE, 5) = %s, want 5", got)
	}
	if got := Merge(keys.KeyInvalid, keys.KeyInvalid); got != keys.KeyInvalid {
		t.Fatalf("Merge(NONE, NONE) = %s, want NONE", got)
	}
}
