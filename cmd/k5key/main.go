// k5key sends remote button events to a radio over its programming cable.
//
//	k5key -port /dev/ttyUSB0 -key menu
//	k5key -port /dev/ttyUSB0 -key 5 -action press
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"go.bug.st/serial"

	"k5remote/host/config"
	"k5remote/host/link"
	"k5remote/host/sender"
	"k5remote/internal/buildinfo"
	"k5remote/internal/clock"
	"k5remote/keys"
	"k5remote/wire"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "Config file (default "+config.DefaultPath()+").")
		port    = flag.String("port", "", "Serial device path (overrides config).")
		keyName = flag.String("key", "", "Key to send: 0-9, menu, up, down, exit, star, f, side1, side2.")
		action  = flag.String("action", "tap", "press|release|tap.")
		verbose = flag.Bool("verbose", false, "Debug logging.")
		version = flag.Bool("version", false, "Print version and exit.")
	)
	flag.Parse()

	if *version {
		fmt.Println("k5key", buildinfo.Short())
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
	if *keyName == "" {
		fatalf("usage: k5key -port /dev/ttyUSB0 -key menu [-action press|release|tap]")
	}

	key, ok := keys.Parse(*keyName)
	if !ok {
		fatalf("unknown key %q", *keyName)
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

	var actions []wire.Action
	switch strings.ToLower(*action) {
	case "press":
		actions = []wire.Action{wire.ActionPress}
	case "release":
		actions = []wire.Action{wire.ActionRelease}
	case "tap":
		actions = []wire.Action{wire.ActionPress, wire.ActionRelease}
	default:
		fatalf("unknown action %q", *action)
	}

	for _, a := range actions {
		out, err := ctl.SendButtonEvent(key, a)
		if err != nil {
			fatalf("send %s %s: %v", key, a, err)
		}
		fmt.Printf("%s %s: %s (queue depth %d, %d attempt(s))\n",
			key, a, out.Result, out.QueueDepth, out.Attempts)
		if out.Result != sender.Accepted {
			os.Exit(1)
		}
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
