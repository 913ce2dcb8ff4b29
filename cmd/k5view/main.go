// k5view mirrors the radio screen into a desktop window and forwards
// keyboard input as remote button events.
//
//	k5view -port /dev/ttyUSB0
//
// Keys: digits, M (menu), arrows, Esc (exit), * (star), F, [ and ] for the
// side buttons.
package main

import (
	"fmt"
	"image"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"go.bug.st/serial"

	"k5remote/host/config"
	"k5remote/host/link"
	"k5remote/host/sender"
	"k5remote/host/stream"
	"k5remote/internal/buildinfo"
	"k5remote/internal/clock"
	"k5remote/keys"
	"k5remote/wire"
)

const (
	lcdBG = 0xCA
	lcdFG = 0x00
)

var keyMap = map[ebiten.Key]keys.Code{
	ebiten.KeyDigit0:       keys.Key0,
	ebiten.KeyDigit1:       keys.Key1,
	ebiten.KeyDigit2:       keys.Key2,
	ebiten.KeyDigit3:       keys.Key3,
	ebiten.KeyDigit4:       keys.Key4,
	ebiten.KeyDigit5:       keys.Key5,
	ebiten.KeyDigit6:       keys.Key6,
	ebiten.KeyDigit7:       keys.Key7,
	ebiten.KeyDigit8:       keys.Key8,
	ebiten.KeyDigit9:       keys.Key9,
	ebiten.KeyM:            keys.KeyMenu,
	ebiten.KeyArrowUp:      keys.KeyUp,
	ebiten.KeyArrowDown:    keys.KeyDown,
	ebiten.KeyEscape:       keys.KeyExit,
	ebiten.KeyKPMultiply:   keys.KeyStar,
	ebiten.KeyF:            keys.KeyF,
	ebiten.KeyBracketLeft:  keys.KeySide1,
	ebiten.KeyBracketRight: keys.KeySide2,
}

type keyEvent struct {
	key    keys.Code
	action wire.Action
}

type game struct {
	viewer *stream.Viewer
	events chan<- keyEvent
	log    zerolog.Logger

	frame   []byte
	gen     uint64
	img     *image.RGBA
	fbImg   *ebiten.Image
	pressed map[ebiten.Key]bool
}

func (g *game) Update() error {
	for k, code := range keyMap {
		down := ebiten.IsKeyPressed(k)
		if down == g.pressed[k] {
			continue
		}
		g.pressed[k] = down
		action := wire.ActionRelease
		if down {
			action = wire.ActionPress
		}
		select {
		case g.events <- keyEvent{key: code, action: action}:
		default:
			g.log.Warn().Stringer("key", code).Msg("event dropped, sender busy")
		}
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, wire.ScreenWidth, wire.ScreenHeight))
		g.fbImg = ebiten.NewImage(wire.ScreenWidth, wire.ScreenHeight)
	}

	gen := g.viewer.Snapshot(g.frame)
	if gen == g.gen && gen != 0 {
		screen.DrawImage(g.fbImg, nil)
		return
	}
	g.gen = gen

	dst := g.img.Pix
	for bit := 0; bit < wire.ScreenWidth*wire.ScreenHeight; bit++ {
		v := uint8(lcdBG)
		if g.frame[bit/8]&(1<<(bit%8)) != 0 {
			v = lcdFG
		}
		j := bit * 4
		dst[j], dst[j+1], dst[j+2], dst[j+3] = v, v, v, 0xFF
	}
	g.fbImg.WritePixels(dst)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(int, int) (int, int) {
	return wire.ScreenWidth, wire.ScreenHeight
}

func main() {
	var (
		cfgPath = flag.String("config", "", "Config file (default "+config.DefaultPath()+").")
		port    = flag.String("port", "", "Serial device path (overrides config).")
		scale   = flag.Int("scale", 4, "Window scale factor.")
		verbose = flag.Bool("verbose", false, "Debug logging.")
		version = flag.Bool("version", false, "Print version and exit.")
	)
	flag.Parse()

	if *version {
		fmt.Println("k5view", buildinfo.Short())
		return
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if cfg.Port == "" {
		fatalf("no serial port: pass -port or set port in the config file")
	}

	log := newLogger(cfg.LogLevel, *verbose)

	p, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: cfg.Baud})
	if err != nil {
		fatalf("open %s: %v", cfg.Port, err)
	}
	defer p.Close()

	clk := clock.Real()
	arb := link.New(p, clk, log, link.Config{
		CommandSpacing:    cfg.CommandSpacing.D(),
		KeepaliveInterval: cfg.KeepaliveInterval.D(),
	})
	ctl := sender.New(arb, clk, log, sender.Config{
		AckTimeout:       cfg.AckTimeout.D(),
		StreamAckTimeout: cfg.StreamAckTimeout.D(),
		MaxAttempts:      cfg.MaxAttempts,
	})
	if err := ctl.StartSession(); err != nil {
		fatalf("%v", err)
	}

	viewer := stream.New(log)
	go func() {
		for f := range arb.Mirror() {
			viewer.Apply(f.Type, f.Payload)
		}
	}()

	stop := arb.StartStream()
	defer stop()

	// One sender worker keeps button round trips off the render loop.
	events := make(chan keyEvent, 8)
	go func() {
		for ev := range events {
			out, err := ctl.SendButtonEvent(ev.key, ev.action)
			if err != nil {
				log.Error().Err(err).Msg("send button event")
				continue
			}
			if out.Result != sender.Accepted {
				log.Warn().Stringer("key", ev.key).Stringer("action", ev.action).
					Stringer("result", out.Result).Msg("event not accepted")
			}
		}
	}()

	ebiten.SetWindowSize(wire.ScreenWidth**scale, wire.ScreenHeight**scale)
	ebiten.SetWindowTitle("k5view " + buildinfo.Short())
	g := &game{
		viewer:  viewer,
		events:  events,
		log:     log,
		frame:   make([]byte, wire.ScreenFrameBytes),
		pressed: make(map[ebiten.Key]bool),
	}
	if err := ebiten.RunGame(g); err != nil {
		fatalf("window: %v", err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path, true)
	}
	return config.Load(config.DefaultPath(), false)
}

func newLogger(level string, verbose bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
