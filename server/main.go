package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	udpAddr := flag.String("addr", ":50000", "UDP game listen address")
	httpAddr := flag.String("http", ":8080", "HTTP status/spectator listen address")
	dbPath := flag.String("db", "cloudsnake.db", "Path to the stats database")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	stats, err := OpenStats(*dbPath)
	if err != nil {
		log.Fatalf("stats: open %s: %v", *dbPath, err)
	}

	game := NewGame(stats, *seed)
	hub := NewSpectatorHub()
	game.SetSpectators(hub)

	udp, err := ListenUDP(*udpAddr, game)
	if err != nil {
		log.Fatalf("udp: listen on %s: %v", *udpAddr, err)
	}
	game.SetSender(udp)

	go game.Run()
	go udp.Run()

	mux := SetupRoutes(game, hub, stats, udp.Addr())
	httpServer := &http.Server{Addr: *httpAddr, Handler: mux}
	go func() {
		log.Printf("http: listening on %s", *httpAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("game server listening on udp %s", udp.Addr())

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	game.Stop()
	udp.Close()
	httpServer.Close()
	if err := stats.Close(); err != nil {
		log.Printf("stats: close: %v", err)
	}
}
