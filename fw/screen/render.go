package screen

import (
	"fmt"
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"k5remote/keys"
)

var pixelOn = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// Status is what the radio shows on its LCD. It is deliberately small; the
// point is that the mirror stream has real, state-dependent content.
type Status struct {
	EffectiveKey keys.Code
	Injected     bool
	QueueDepth   uint8
	SessionLive  bool
	Mirroring    bool
}

// RenderStatus redraws the whole status screen.
func RenderStatus(s *Screen, st Status) {
	s.Clear()
	font := &proggy.TinySZ8pt7b

	tinyfont.WriteLine(s, font, 2, 10, "K5 REMOTE", pixelOn)
	for x := int16(0); x < 128; x++ {
		s.SetPixel(x, 13, pixelOn)
	}

	keyLine := "KEY  --"
	if st.EffectiveKey != keys.KeyInvalid {
		src := "HW"
		if st.Injected {
			src = "RMT"
		}
		keyLine = fmt.Sprintf("KEY  %s (%s)", st.EffectiveKey, src)
	}
	tinyfont.WriteLine(s, font, 2, 26, keyLine, pixelOn)
	tinyfont.WriteLine(s, font, 2, 38, fmt.Sprintf("QUEUE %d", st.QueueDepth), pixelOn)

	session := "SESSION --"
	if st.SessionLive {
		session = "SESSION OK"
	}
	tinyfont.WriteLine(s, font, 2, 50, session, pixelOn)

	if st.Mirroring {
		tinyfont.WriteLine(s, font, 2, 62, "MIRROR ON", pixelOn)
	}
}
