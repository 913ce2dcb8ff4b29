//go:build !tinygo

// k5remote runs the radio firmware on the desktop: the LCD in a window (or
// headless), the keypad on the PC keyboard, and the UART on a pty so the host
// tools under cmd/ can talk to it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"k5remote/fw/app"
	"k5remote/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var serialPath string
	flag.StringVar(&serialPath, "serial", "", "Serial endpoint (pty path); empty uses stdin/stdout.")
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 100, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Parse()

	h, err := hal.New(hal.Options{SerialPath: serialPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fw := app.New(h, app.Config{})

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, h, fw.Step, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(h, fw.Step); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
