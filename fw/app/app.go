// Package app wires the radio firmware together: UART RX dispatch into the
// command endpoint, the per-tick input loop that drains the remote key queue
// and merges it with the physical keypad, the status screen, and the mirror
// stream.
package app

import (
	"time"

	"k5remote/fw/remotekey"
	"k5remote/fw/screen"
	"k5remote/fw/uartcmd"
	"k5remote/hal"
	"k5remote/keys"
)

const (
	// inputDividerTicks spaces input ticks on the 1ms base tick: the
	// keyboard path runs every 10ms, matching the hardware scan cadence.
	inputDividerTicks = 10

	// mirrorTimeoutTicks stops the mirror stream when the viewer's
	// keepalives go quiet.
	mirrorTimeoutTicks = 1000
)

// Config adjusts firmware behavior for tests and odd deployments.
type Config struct {
	// HoldTicks overrides the minimum injected-press hold (input ticks).
	HoldTicks uint8
}

// App is the firmware application state, stepped by the host runner.
type App struct {
	h     hal.HAL
	queue *remotekey.Queue
	cmds  *uartcmd.Service
	lcd   *screen.Screen
	draw  *screen.Screen

	tick          uint64
	lastKeepalive uint64
	mirroring     bool
	rendered      bool
	lastStatus    screen.Status
}

// New builds the firmware and starts the serial RX pump. The returned App is
// stepped once per 1ms tick.
func New(h hal.HAL, cfg Config) *App {
	hold := cfg.HoldTicks
	if hold == 0 {
		hold = remotekey.DefaultHoldTicks
	}

	a := &App{
		h:     h,
		queue: remotekey.New(hold),
		lcd:   screen.New(),
		draw:  screen.New(),
	}
	a.cmds = uartcmd.New(h.Serial(), h.Logger(), a.queue)

	go a.readLoop()
	return a
}

// readLoop is the RX dispatch context: bytes in, bounded parse work, queue
// enqueues and reply writes out. Nothing here touches the input path state.
func (a *App) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := a.h.Serial().Read(buf)
		if n > 0 {
			a.cmds.Feed(buf[:n])
		}
		if err != nil {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Step services one runner wakeup. Runner frame rates (window TPS, headless
// Hz) are far below the base tick rate, so each wakeup drains the tick
// stream and advances the firmware once per elapsed tick; the timing
// constants above count real milliseconds, not wakeups.
func (a *App) Step() error {
	ticks := a.h.Time().Ticks()
	for {
		select {
		case seq := <-ticks:
			a.tick = seq
			a.baseTick()
		default:
			return nil
		}
	}
}

// baseTick advances one base tick.
func (a *App) baseTick() {
	if a.cmds.TakeKeepalive() {
		a.lastKeepalive = a.tick
	}
	wasMirroring := a.mirroring
	a.mirroring = a.lastKeepalive > 0 && a.tick-a.lastKeepalive < mirrorTimeoutTicks

	if a.tick%inputDividerTicks == 0 {
		a.inputTick()
	}

	if a.mirroring {
		var frame []byte
		if !wasMirroring {
			frame = a.lcd.FullMirrorFrame()
		} else {
			frame = a.lcd.DiffMirrorFrame()
		}
		if frame != nil {
			if _, err := a.h.Serial().Write(frame); err != nil {
				a.h.Logger().WriteLineString("app: mirror write: " + err.Error())
			}
		}
	}
}

// inputTick is one pass of the firmware input loop: drain at most one remote
// event transition, then merge with the physical scan.
func (a *App) inputTick() {
	a.queue.DrainOneTick()

	physical := keys.Code(a.h.Keypad().Scan())
	injected := a.queue.Injected()
	effective := remotekey.Merge(physical, injected)

	st := screen.Status{
		EffectiveKey: effective,
		Injected:     physical == keys.KeyInvalid && injected != keys.KeyInvalid,
		QueueDepth:   a.queue.Depth(),
		SessionLive:  a.cmds.SessionLive(),
		Mirroring:    a.mirroring,
	}
	if a.rendered && st == a.lastStatus {
		return
	}
	a.lastStatus = st
	a.rendered = true

	screen.RenderStatus(a.draw, st)
	a.lcd.CopyFrom(a.draw)
	a.h.Display().Present(a.lcd.Frame())
}
