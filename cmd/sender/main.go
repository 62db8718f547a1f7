// Package main runs the commanding peer: it rotates through the LED
// indexes, retrying each command until the indicator acknowledges.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/radio-control/indicator/internal/config"
	"github.com/radio-control/indicator/internal/diag"
	"github.com/radio-control/indicator/internal/link"
	"github.com/radio-control/indicator/internal/link/udp"
	"github.com/radio-control/indicator/internal/sender"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (defaults to indicator.yaml when present)")
	flag.Parse()

	log.Printf("starting sender")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	dlog := diag.New(cfg.Log.Path, cfg.Log.MaxSizeMb, cfg.Log.MaxBackups, diag.ParseLevel(cfg.Log.Level))
	defer dlog.Close()

	self, err := link.ParseAddr(cfg.Sender.Addr)
	if err != nil {
		log.Fatalf("sender address: %v", err)
	}
	target, err := link.ParseAddr(cfg.Sender.Target)
	if err != nil {
		log.Fatalf("target address: %v", err)
	}

	transport := udp.New(self, cfg.Sender.Listen)
	if ep, ok := cfg.Peers[cfg.Sender.Target]; ok {
		if err := transport.AddEndpoint(target, ep); err != nil {
			log.Fatalf("target endpoint: %v", err)
		}
	}

	s := sender.New(transport, dlog, target, cfg.NumLeds, cfg.Sender)
	if err := s.Start(); err != nil {
		log.Fatalf("sender start: %v", err)
	}

	log.Printf("sender %s targeting %s, %d attempts every %dms",
		self, target, cfg.Sender.MaxRetries, cfg.Sender.RetryIntervalMs)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		s.Run(done)
		close(finished)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown
	log.Printf("received %v, shutting down", sig)

	close(done)
	<-finished
	transport.Deinit()
	log.Printf("sender stopped")
}
