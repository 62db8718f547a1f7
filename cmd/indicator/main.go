// Package main runs the duty-cycled LED indicator node over the UDP
// link transport.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/radio-control/indicator/internal/config"
	"github.com/radio-control/indicator/internal/diag"
	"github.com/radio-control/indicator/internal/gpio"
	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/link/udp"
	"github.com/radio-control/indicator/internal/node"
	"github.com/radio-control/indicator/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (defaults to indicator.yaml when present)")
	flag.Parse()

	log.Printf("starting indicator node")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	dlog := diag.New(cfg.Log.Path, cfg.Log.MaxSizeMb, cfg.Log.MaxBackups, diag.ParseLevel(cfg.Log.Level))
	defer dlog.Close()

	self, err := link.ParseAddr(cfg.NodeAddr)
	if err != nil {
		log.Fatalf("node address: %v", err)
	}

	transport := udp.New(self, cfg.Listen)
	for a, ep := range cfg.Peers {
		addr, err := link.ParseAddr(a)
		if err != nil {
			log.Fatalf("peer address %q: %v", a, err)
		}
		if err := transport.AddEndpoint(addr, ep); err != nil {
			log.Fatalf("peer endpoint: %v", err)
		}
	}

	n := node.New(cfg, transport, gpio.NewSim(), store.NewFileStore(cfg.StatePath),
		node.NewWallClock(), node.TimerSleeper{}, dlog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- n.Run(ctx)
	}()

	log.Printf("indicator %s listening on %s, channel %d", self, cfg.Listen, cfg.Channel)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Printf("received %v, shutting down", sig)
		cancel()
		<-runErr
	case err := <-runErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			// The supervisor restarting this process is the device
			// restart: radio init failure has no in-process recovery.
			log.Fatalf("node stopped: %v", err)
		}
	}

	transport.Deinit()
	log.Printf("indicator node stopped")
}
