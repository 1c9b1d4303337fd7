package main

import (
	"encoding/json"
	"log"
	"net"
)

const maxDatagramSize = 2048

// UDPServer owns the datagram socket. The read loop decodes envelopes and
// queues them into the game loop; it never touches game state itself.
type UDPServer struct {
	conn *net.UDPConn
	game *Game
}

// ListenUDP binds the game socket. A bind failure is the one fatal startup
// condition.
func ListenUDP(addr string, game *Game) (*UDPServer, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &UDPServer{conn: conn, game: game}, nil
}

// Run reads datagrams until the socket is closed. Malformed payloads are
// dropped; they must never take the loop down.
func (s *UDPServer) Run() {
	buf := make([]byte, maxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			log.Printf("udp: read loop stopping: %v", err)
			return
		}
		var msg Inbound
		if err := json.Unmarshal(buf[:n], &msg); err != nil {
			log.Printf("udp: dropping malformed datagram from %s: %v", addr, err)
			continue
		}
		s.game.Enqueue(addr, msg)
	}
}

// SendTo implements Sender.
func (s *UDPServer) SendTo(addr *net.UDPAddr, payload []byte) {
	if _, err := s.conn.WriteToUDP(payload, addr); err != nil {
		log.Printf("udp: send to %s failed: %v", addr, err)
	}
}

// Close shuts the socket, which unblocks Run.
func (s *UDPServer) Close() error {
	return s.conn.Close()
}

// Addr returns the bound address string.
func (s *UDPServer) Addr() string {
	return s.conn.LocalAddr().String()
}
