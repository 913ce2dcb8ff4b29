package screen

import "k5remote/wire"

// Mirror frame emission. A viewer (re)attach gets a full snapshot; after
// that, only changed blocks travel as diff frames.

// FullMirrorFrame encodes the whole framebuffer as a mirror frame and resets
// dirty tracking.
func (s *Screen) FullMirrorFrame() []byte {
	s.clearDirty()
	return wire.EncodeMirror(wire.MirrorFull, s.buf[:])
}

// DiffMirrorFrame encodes the blocks that changed since the last emission,
// or returns nil when nothing changed. When most of the frame is dirty a full
// frame is cheaper than the diff and is emitted instead.
func (s *Screen) DiffMirrorFrame() []byte {
	n := s.dirtyCount()
	if n == 0 {
		return nil
	}
	if (n+1)*wire.MirrorDiffChunkLen >= wire.ScreenFrameBytes {
		return s.FullMirrorFrame()
	}

	// The terminator is a full chunk too: viewers only accept diff
	// payloads that are a whole number of chunks.
	payload := make([]byte, 0, (n+1)*wire.MirrorDiffChunkLen)
	for b := 0; b < wire.ScreenBlockCount; b++ {
		if s.dirty[b/64]&(1<<(b%64)) == 0 {
			continue
		}
		off := b * wire.ScreenBlockBytes
		payload = append(payload, byte(b))
		payload = append(payload, s.buf[off:off+wire.ScreenBlockBytes]...)
	}
	payload = append(payload, wire.MirrorDiffEnd)
	payload = append(payload, make([]byte, wire.ScreenBlockBytes)...)
	s.clearDirty()
	return wire.EncodeMirror(wire.MirrorDiff, payload)
}
