package main

// Client -> server message types
const (
	MsgConnect    = "connect"
	MsgDisconnect = "disconnect"
	MsgJoinGame   = "join_game"
	MsgUpdate     = "update"
	MsgShoot      = "shoot"
	MsgThrowBomb  = "throw_bomb"
	MsgPing       = "ping"
)

// Server -> client message types
const (
	MsgWelcome    = "welcome"
	MsgServerFull = "server_full"
	MsgPong       = "pong"
	MsgGameState  = "game_state"
)

// Inbound is the decoded form of every client datagram. Unknown types fall
// through the dispatch switch and are ignored.
type Inbound struct {
	Type       string      `json:"type"`
	PlayerName string      `json:"player_name,omitempty"`
	PlayerID   string      `json:"player_id,omitempty"`
	Data       *UpdateData `json:"data,omitempty"`
}

// UpdateData carries the optional fields of an update message.
type UpdateData struct {
	Direction string `json:"direction,omitempty"`
	Respawn   bool   `json:"respawn,omitempty"`
}

// WelcomeMsg confirms a new session.
type WelcomeMsg struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	PlayerID    string `json:"player_id"`
	PlayerCount int    `json:"player_count"`
	Color       RGB    `json:"color"`
}

// ServerFullMsg rejects a connect beyond the session cap.
type ServerFullMsg struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	MaxPlayers     int    `json:"max_players"`
	CurrentPlayers int    `json:"current_players"`
}

// PongMsg answers a heartbeat ping.
type PongMsg struct {
	Type      string  `json:"type"`
	Timestamp float64 `json:"timestamp"`
}

// PlayerState is the per-player slice of a snapshot.
type PlayerState struct {
	PlayerName string    `json:"player_name"`
	Snake      []Cell    `json:"snake"`
	Direction  Direction `json:"direction"`
	Score      int       `json:"score"`
	Alive      bool      `json:"alive"`
	Color      RGB       `json:"color"`
	Bullets    int       `json:"bullets"`
	Bombs      int       `json:"bombs"`
	InGame     bool      `json:"in_game"`
}

type BulletState struct {
	Pos       Cell      `json:"pos"`
	Direction Direction `json:"direction"`
	Owner     string    `json:"owner"`
}

type BombState struct {
	Pos       Cell    `json:"pos"`
	Remaining float64 `json:"remaining"`
}

type ExplosionState struct {
	Pos      Cell    `json:"pos"`
	Progress float64 `json:"progress"`
}

// Snapshot is the complete world description sent each broadcast cycle.
// Clients are stateless renderers, so nothing here is a delta.
type Snapshot struct {
	Players      map[string]PlayerState `json:"players"`
	Bricks       []Cell                 `json:"bricks"`
	BulletBricks []Cell                 `json:"bullet_bricks"`
	BombBricks   []Cell                 `json:"bomb_bricks"`
	Bullets      []BulletState          `json:"bullets"`
	Bombs        []BombState            `json:"bombs"`
	Explosions   []ExplosionState       `json:"explosions"`
	Timestamp    float64                `json:"timestamp"`
	GameTime     float64                `json:"game_time"`
	Leaderboard  []LeaderboardEntry     `json:"leaderboard"`
	AllTimeHigh  int                    `json:"all_time_highscore"`
	AllTimeName  string                 `json:"all_time_highscore_player"`
}

// GameStateMsg wraps a snapshot with its monotonically increasing counter.
type GameStateMsg struct {
	Type         string   `json:"type"`
	State        Snapshot `json:"state"`
	MessageCount uint64   `json:"message_count"`
}

// LeaderboardEntry is one row of the persistent top list.
type LeaderboardEntry struct {
	Name        string `json:"name"`
	Highscore   int    `json:"highscore"`
	GamesPlayed int    `json:"games_played"`
	Kills       int    `json:"kills"`
	Deaths      int    `json:"deaths"`
}
