//go:build !tinygo

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"k5remote/internal/buildinfo"
	"k5remote/wire"
)

// RunWindow starts a desktop window that displays the radio LCD and maps the
// desktop keyboard to the keypad. It blocks until the window closes.
func RunWindow(h HAL, step func() error) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return ErrNotImplemented
	}

	g := &hostGame{h: hh, step: step}
	hh.kbd.active.Store(true)
	ebiten.SetWindowTitle("k5remote (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(wire.ScreenWidth*4, wire.ScreenHeight*4)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
}

// LCD-ish palette, dark pixels on a grey background.
const (
	lcdBG = 202
	lcdFG = 0
)

func (g *hostGame) Update() error {
	g.h.t.advance()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, wire.ScreenWidth, wire.ScreenHeight))
		g.fbImg = ebiten.NewImage(wire.ScreenWidth, wire.ScreenHeight)
	}

	g.scratch = g.h.disp.snapshot(g.scratch)
	frame := g.scratch
	dst := g.img.Pix
	for bit := 0; bit < wire.ScreenWidth*wire.ScreenHeight; bit++ {
		v := uint8(lcdBG)
		if bit/8 < len(frame) && frame[bit/8]&(1<<(bit%8)) != 0 {
			v = lcdFG
		}
		j := bit * 4
		dst[j+0] = v
		dst[j+1] = v
		dst[j+2] = v
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return wire.ScreenWidth, wire.ScreenHeight
}
