// Package stream maintains the host's shadow copy of the radio screen from
// the mirror frame stream.
package stream

import (
	"sync"

	"github.com/rs/zerolog"

	"k5remote/wire"
)

// Viewer folds mirror frames into a shadow framebuffer. Safe for one
// applier goroutine plus any number of Snapshot readers.
type Viewer struct {
	mu     sync.Mutex
	frame  [wire.ScreenFrameBytes]byte
	synced bool
	gen    uint64
	log    zerolog.Logger
}

func New(log zerolog.Logger) *Viewer {
	return &Viewer{log: log}
}

// Apply folds one decoded mirror frame into the shadow. Diff frames arriving
// before the first full frame are dropped, since their blocks would patch an
// unknown baseline.
func (v *Viewer) Apply(typ byte, payload []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch typ {
	case wire.MirrorFull:
		if len(payload) < wire.ScreenFrameBytes {
			v.log.Debug().Int("len", len(payload)).Msg("short full frame")
			return
		}
		copy(v.frame[:], payload[:wire.ScreenFrameBytes])
		v.synced = true
		v.gen++

	case wire.MirrorDiff:
		if !v.synced {
			v.log.Debug().Msg("diff before first full frame, dropped")
			return
		}
		if v.applyDiff(payload) {
			v.gen++
		}

	default:
		v.log.Debug().Uint8("type", typ).Msg("unknown mirror frame type")
	}
}

// applyDiff patches changed blocks until the terminator byte. A malformed
// chunk stops the walk; whatever was applied before it stands, the next full
// frame resyncs.
func (v *Viewer) applyDiff(payload []byte) bool {
	changed := false
	for len(payload) > 0 {
		block := payload[0]
		if block >= wire.MirrorDiffEnd {
			break
		}
		if len(payload) < wire.MirrorDiffChunkLen {
			v.log.Debug().Msg("truncated diff chunk")
			break
		}
		off := int(block) * wire.ScreenBlockBytes
		copy(v.frame[off:off+wire.ScreenBlockBytes], payload[1:wire.MirrorDiffChunkLen])
		payload = payload[wire.MirrorDiffChunkLen:]
		changed = true
	}
	return changed
}

// Synced reports whether at least one full frame has arrived.
func (v *Viewer) Synced() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.synced
}

// Generation increments on every visible change; renderers use it to skip
// redraws.
func (v *Viewer) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen
}

// Snapshot copies the shadow framebuffer into dst, which must hold
// wire.ScreenFrameBytes bytes. It returns the generation of the copy.
func (v *Viewer) Snapshot(dst []byte) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	copy(dst, v.frame[:])
	return v.gen
}
