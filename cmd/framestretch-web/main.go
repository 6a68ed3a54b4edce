package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	stretch "framestretch/pkg/framestretch"
	"framestretch/pkg/viewserver"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fset := flag.NewFlagSet("framestretch-web", flag.ContinueOnError)
	addr := fset.String("addr", ":8080", "listen address")
	framePath := fset.String("frame", "", "FITS frame to serve")
	settingsPath := fset.String("settings", "", "YAML stretch settings file")
	reload := fset.Duration("reload", 0, "re-read the frame at this interval (0 = never)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *framePath == "" {
		return fmt.Errorf("usage: framestretch-web -frame <file.fits> [-addr :8080]")
	}

	settings := stretch.DefaultStretchSettings()
	if *settingsPath != "" {
		var err error
		settings, err = stretch.LoadStretchSettings(*settingsPath)
		if err != nil {
			return err
		}
	}

	renderer := stretch.NewRenderer(settings)
	notifier := stretch.NewNotifier()
	srv := viewserver.New(renderer, notifier)

	frame, err := stretch.ReadFrame(*framePath)
	if err != nil {
		return err
	}
	srv.SetFrame(frame)
	fmt.Printf("Serving %s (%dx%d, pattern %s) on %s\n",
		*framePath, frame.Width, frame.Height, frame.Pattern, *addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *reload > 0 {
		go func() {
			ticker := time.NewTicker(*reload)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					frame, err := stretch.ReadFrame(*framePath)
					if err != nil {
						fmt.Fprintf(os.Stderr, "reload: %v\n", err)
						continue
					}
					srv.SetFrame(frame)
				}
			}
		}()
	}

	return srv.Run(ctx, *addr)
}
