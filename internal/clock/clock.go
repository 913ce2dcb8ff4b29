// Package clock abstracts time for the host-side components so ack timeouts,
// retry pacing and send rate limiting are deterministic under test.
// Production code injects Real(); tests inject NewFake().
package clock

import "time"

// Clock is the minimal time surface the host components need.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

// Real returns the wall clock.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (realClock) Sleep(d time.Duration)                  { time.Sleep(d) }
