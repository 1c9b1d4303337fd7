package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	spectatorSendBuf = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// Spectator is a read-only websocket subscriber that receives the same
// snapshots broadcast over UDP. Binary spectators get msgpack frames.
type Spectator struct {
	conn   *websocket.Conn
	send   chan []byte
	binary bool
}

// SpectatorHub tracks the live spectator set. It is touched from HTTP
// handler goroutines and from the game loop, so it carries its own lock;
// it never reaches into game state.
type SpectatorHub struct {
	mu    sync.Mutex
	specs map[*Spectator]struct{}
}

func NewSpectatorHub() *SpectatorHub {
	return &SpectatorHub{specs: make(map[*Spectator]struct{})}
}

func (h *SpectatorHub) add(s *Spectator) {
	h.mu.Lock()
	h.specs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *SpectatorHub) remove(s *Spectator) {
	h.mu.Lock()
	if _, ok := h.specs[s]; ok {
		delete(h.specs, s)
		close(s.send)
	}
	h.mu.Unlock()
}

// Count returns the number of connected spectators.
func (h *SpectatorHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.specs)
}

// Broadcast fans one snapshot out to every spectator. The msgpack frame is
// encoded at most once, and only if some spectator asked for binary. Slow
// spectators have the frame dropped rather than stalling the game loop.
func (h *SpectatorHub) Broadcast(jsonPayload []byte, msg *GameStateMsg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.specs) == 0 {
		return
	}

	var binPayload []byte
	for s := range h.specs {
		payload := jsonPayload
		if s.binary {
			if binPayload == nil {
				var err error
				binPayload, err = msgpack.Marshal(msg)
				if err != nil {
					log.Printf("web: msgpack encode error: %v", err)
					continue
				}
			}
			payload = binPayload
		}
		select {
		case s.send <- payload:
		default:
		}
	}
}

// writePump pushes frames to the spectator and keeps the connection alive
// with pings.
func (s *Spectator) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	msgType := websocket.TextMessage
	if s.binary {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(msgType, payload); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards anything the spectator sends; the feed is one-way.
func (s *Spectator) readPump(hub *SpectatorHub) {
	defer func() {
		hub.remove(s)
		s.conn.Close()
	}()
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// SetupRoutes configures the HTTP side: status, leaderboard, a QR join
// code for the UDP address, and the spectator websocket.
func SetupRoutes(g *Game, hub *SpectatorHub, stats *Stats, udpAddr string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		connected, inGame := g.PlayerGauges()
		writeJSON(w, map[string]interface{}{
			"players":        connected,
			"in_game":        inGame,
			"max_players":    MaxPlayers,
			"spectators":     hub.Count(),
			"message_count":  g.MessageCount(),
			"uptime_seconds": time.Since(g.startedAt).Seconds(),
		})
	})

	mux.HandleFunc("/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stats.Leaderboard(10))
	})

	mux.HandleFunc("/qr.png", func(w http.ResponseWriter, r *http.Request) {
		png, err := qrcode.Encode("udp://"+udpAddr, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: upgrade error: %v", err)
			return
		}
		spec := &Spectator{
			conn:   conn,
			send:   make(chan []byte, spectatorSendBuf),
			binary: r.URL.Query().Get("bin") == "1",
		}
		hub.add(spec)
		go spec.writePump()
		go spec.readPump(hub)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: response encode error: %v", err)
	}
}
