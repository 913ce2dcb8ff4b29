package screen

import (
	"image/color"
	"testing"

	"k5remote/keys"
	"k5remote/wire"
)

var white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
var black = color.RGBA{A: 0xFF}

func TestNewEmitsFullFrameFirst(t *testing.T) {
	s := New()
	frame := s.DiffMirrorFrame()
	if frame == nil {
		t.Fatal("fresh screen must emit something")
	}
	typ, payload, _, res := wire.DecodeMirror(frame)
	if res != wire.DecodeOK || typ != wire.MirrorFull {
		t.Fatalf("typ=%#x res=%d, want full frame", typ, res)
	}
	if len(payload) != wire.ScreenFrameBytes {
		t.Fatalf("payload len = %d", len(payload))
	}
}

func TestCleanScreenEmitsNothing(t *testing.T) {
	s := New()
	s.FullMirrorFrame()
	if f := s.DiffMirrorFrame(); f != nil {
		t.Fatalf("clean screen emitted %d bytes", len(f))
	}
}

func TestSetPixelMarksOnlyItsBlock(t *testing.T) {
	s := New()
	s.FullMirrorFrame()

	s.SetPixel(0, 0, white)
	frame := s.DiffMirrorFrame()
	typ, payload, _, res := wire.DecodeMirror(frame)
	if res != wire.DecodeOK || typ != wire.MirrorDiff {
		t.Fatalf("typ=%#x res=%d, want diff", typ, res)
	}
	// One chunk plus the terminator chunk.
	if len(payload) != 2*wire.MirrorDiffChunkLen {
		t.Fatalf("payload len = %d, want one chunk", len(payload))
	}
	if payload[0] != 0 {
		t.Fatalf("block = %d, want 0", payload[0])
	}
	if payload[1]&0x01 == 0 {
		t.Fatal("pixel (0,0) bit not set in chunk")
	}
	if payload[wire.MirrorDiffChunkLen] < wire.MirrorDiffEnd {
		t.Fatal("diff not terminated")
	}
}

func TestDiffPayloadIsWholeChunks(t *testing.T) {
	// Viewers only accept diff payloads that are a whole number of 9-byte
	// chunks; anything else is silently ignored on the other end.
	for _, blocks := range []int{1, 2, 7} {
		s := New()
		s.FullMirrorFrame()
		for b := 0; b < blocks; b++ {
			// Rows are 16 bytes, so row 8b starts a distinct block.
			s.SetPixel(0, int16(8*b), white)
		}
		frame := s.DiffMirrorFrame()
		typ, payload, _, res := wire.DecodeMirror(frame)
		if res != wire.DecodeOK || typ != wire.MirrorDiff {
			t.Fatalf("%d blocks: typ=%#x res=%d", blocks, typ, res)
		}
		if len(payload) != (blocks+1)*wire.MirrorDiffChunkLen {
			t.Fatalf("%d blocks: payload len %d, want %d whole chunks",
				blocks, len(payload), blocks+1)
		}
	}
}

func TestRedundantSetPixelStaysClean(t *testing.T) {
	s := New()
	s.SetPixel(3, 3, white)
	s.FullMirrorFrame()

	s.SetPixel(3, 3, white)
	s.SetPixel(10, 10, black)
	if f := s.DiffMirrorFrame(); f != nil {
		t.Fatal("no-op pixel writes produced mirror traffic")
	}
}

func TestOutOfRangePixelIgnored(t *testing.T) {
	s := New()
	s.FullMirrorFrame()
	s.SetPixel(-1, 0, white)
	s.SetPixel(wire.ScreenWidth, 0, white)
	s.SetPixel(0, wire.ScreenHeight, white)
	if f := s.DiffMirrorFrame(); f != nil {
		t.Fatal("out-of-range pixels dirtied the screen")
	}
}

func TestCopyFromMarksChangedBlocksOnly(t *testing.T) {
	lcd := New()
	lcd.FullMirrorFrame()

	draw := New()
	draw.SetPixel(0, 8, white) // bit 1024, byte 128, block 16

	lcd.CopyFrom(draw)
	frame := lcd.DiffMirrorFrame()
	if frame == nil {
		t.Fatal("changed copy emitted nothing")
	}
	typ, payload, _, _ := wire.DecodeMirror(frame)
	if typ != wire.MirrorDiff {
		t.Fatalf("typ = %#x, want diff", typ)
	}
	if len(payload) != 2*wire.MirrorDiffChunkLen {
		t.Fatalf("payload len = %d, want one chunk", len(payload))
	}

	// Copying the same frame again must stay clean.
	lcd.CopyFrom(draw)
	if f := lcd.DiffMirrorFrame(); f != nil {
		t.Fatal("identical copy produced mirror traffic")
	}
}

func TestMostlyDirtyFallsBackToFull(t *testing.T) {
	s := New()
	s.FullMirrorFrame()

	// Touch every block; the diff would outweigh a full frame.
	for b := 0; b < wire.ScreenBlockCount; b++ {
		bit := b * wire.ScreenBlockBytes * 8
		s.SetPixel(int16(bit%wire.ScreenWidth), int16(bit/wire.ScreenWidth), white)
	}
	frame := s.DiffMirrorFrame()
	typ, _, _, res := wire.DecodeMirror(frame)
	if res != wire.DecodeOK || typ != wire.MirrorFull {
		t.Fatalf("typ=%#x res=%d, want full fallback", typ, res)
	}
	if f := s.DiffMirrorFrame(); f != nil {
		t.Fatal("fallback did not reset dirty state")
	}
}

func TestRenderStatusDrawsText(t *testing.T) {
	s := New()
	s.Clear()
	s.FullMirrorFrame()

	RenderStatus(s, Status{EffectiveKey: keys.Key5, Injected: true, QueueDepth: 2, SessionLive: true})
	set := 0
	for _, b := range s.Frame() {
		if b != 0 {
			set++
		}
	}
	if set == 0 {
		t.Fatal("status render left the frame blank")
	}
	if s.DiffMirrorFrame() == nil {
		t.Fatal("status render produced no mirror traffic")
	}
}
