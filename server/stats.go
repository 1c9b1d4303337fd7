package main

import (
	"database/sql"
	"log"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const statsFlushInterval = 2 * time.Second

// PlayerRecord is the durable per-name stats row.
type PlayerRecord struct {
	Name        string
	Highscore   int
	GamesPlayed int
	Kills       int
	Deaths      int
}

// Stats keeps per-name player records. Reads and writes go through an
// in-memory map guarded by a mutex so the game loop never waits on disk;
// a background writer batches dirty rows into SQLite on a fixed cadence
// and on shutdown.
type Stats struct {
	db *sql.DB

	mu          sync.RWMutex
	players     map[string]*PlayerRecord
	dirty       map[string]bool
	allTimeHigh int
	allTimeName string

	stop chan struct{}
	wg   sync.WaitGroup
}

// OpenStats opens (or creates) the SQLite store at path, loads all records
// into memory and starts the background writer.
func OpenStats(path string) (*Stats, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	s := newStats(db)
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

// NewMemoryStats returns a store with no persistence, for tests and for
// running without a database file.
func NewMemoryStats() *Stats {
	return newStats(nil)
}

func newStats(db *sql.DB) *Stats {
	return &Stats{
		db:      db,
		players: make(map[string]*PlayerRecord),
		dirty:   make(map[string]bool),
		stop:    make(chan struct{}),
	}
}

func (s *Stats) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS players (
		name TEXT PRIMARY KEY,
		highscore INTEGER NOT NULL DEFAULT 0,
		games_played INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_players_highscore ON players(highscore);
	`)
	return err
}

func (s *Stats) load() error {
	rows, err := s.db.Query("SELECT name, highscore, games_played, kills, deaths FROM players")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		r := &PlayerRecord{}
		if err := rows.Scan(&r.Name, &r.Highscore, &r.GamesPlayed, &r.Kills, &r.Deaths); err != nil {
			return err
		}
		s.players[r.Name] = r
		if r.Highscore > s.allTimeHigh {
			s.allTimeHigh = r.Highscore
			s.allTimeName = r.Name
		}
	}
	return rows.Err()
}

// record returns the entry for name, creating it on first sight.
// Caller must hold s.mu.
func (s *Stats) record(name string) *PlayerRecord {
	r, ok := s.players[name]
	if !ok {
		r = &PlayerRecord{Name: name}
		s.players[name] = r
	}
	return r
}

// Caller must hold s.mu.
func (s *Stats) noteScore(r *PlayerRecord, score int) {
	if score > r.Highscore {
		r.Highscore = score
	}
	if r.Highscore > s.allTimeHigh {
		s.allTimeHigh = r.Highscore
		s.allTimeName = r.Name
	}
}

// RecordDeath bumps the death count and folds the final score into the
// highscore.
func (s *Stats) RecordDeath(name string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(name)
	r.Deaths++
	s.noteScore(r, score)
	s.dirty[name] = true
}

// RecordKill bumps the kill count.
func (s *Stats) RecordKill(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(name).Kills++
	s.dirty[name] = true
}

// RecordGameEnd is fired on disconnect: one game played, final score folded
// into the highscore.
func (s *Stats) RecordGameEnd(name string, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(name)
	r.GamesPlayed++
	s.noteScore(r, score)
	s.dirty[name] = true
}

// Leaderboard returns the top n records ordered by highscore.
func (s *Stats) Leaderboard(n int) []LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*PlayerRecord, 0, len(s.players))
	for _, r := range s.players {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Highscore != all[j].Highscore {
			return all[i].Highscore > all[j].Highscore
		}
		return all[i].Name < all[j].Name
	})
	if len(all) > n {
		all = all[:n]
	}

	out := make([]LeaderboardEntry, len(all))
	for i, r := range all {
		out[i] = LeaderboardEntry{
			Name:        r.Name,
			Highscore:   r.Highscore,
			GamesPlayed: r.GamesPlayed,
			Kills:       r.Kills,
			Deaths:      r.Deaths,
		}
	}
	return out
}

// AllTime returns the best score ever seen and who holds it.
func (s *Stats) AllTime() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allTimeHigh, s.allTimeName
}

// writer flushes dirty records on a fixed cadence until stopped.
func (s *Stats) writer() {
	defer s.wg.Done()
	ticker := time.NewTicker(statsFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				log.Printf("stats: flush error: %v", err)
			}
		case <-s.stop:
			if err := s.Flush(); err != nil {
				log.Printf("stats: final flush error: %v", err)
			}
			return
		}
	}
}

// Flush upserts every dirty record in one transaction.
func (s *Stats) Flush() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	batch := make([]PlayerRecord, 0, len(s.dirty))
	for name := range s.dirty {
		if r, ok := s.players[name]; ok {
			batch = append(batch, *r)
		}
	}
	s.dirty = make(map[string]bool)
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (name, highscore, games_played, kills, deaths)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			highscore = excluded.highscore,
			games_played = excluded.games_played,
			kills = excluded.kills,
			deaths = excluded.deaths`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range batch {
		if _, err := stmt.Exec(r.Name, r.Highscore, r.GamesPlayed, r.Kills, r.Deaths); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close stops the writer, flushes once more and closes the database.
func (s *Stats) Close() error {
	if s.db == nil {
		return nil
	}
	close(s.stop)
	s.wg.Wait()
	return s.db.Close()
}
