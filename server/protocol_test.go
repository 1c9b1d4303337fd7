package main

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCellMarshalsAsArray(t *testing.T) {
	out, err := json.Marshal(Cell{8, 5})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[8,5]" {
		t.Errorf("expected [8,5], got %s", out)
	}

	var c Cell
	if err := json.Unmarshal([]byte("[12,29]"), &c); err != nil {
		t.Fatal(err)
	}
	if c != (Cell{12, 29}) {
		t.Errorf("expected (12,29), got %v", c)
	}
}

func TestDirectionMarshalsAsString(t *testing.T) {
	out, err := json.Marshal(DirLeft)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"LEFT"` {
		t.Errorf(`expected "LEFT", got %s`, out)
	}

	var d Direction
	if err := json.Unmarshal([]byte(`"DOWN"`), &d); err != nil {
		t.Fatal(err)
	}
	if d != DirDown {
		t.Errorf("expected DOWN, got %v", d)
	}
	if err := json.Unmarshal([]byte(`"SIDEWAYS"`), &d); err == nil {
		t.Error("unknown direction strings must fail to decode")
	}
}

func TestInboundDecode(t *testing.T) {
	raw := `{"type":"update","data":{"direction":"LEFT","respawn":true}}`
	var msg Inbound
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MsgUpdate {
		t.Errorf("type = %q", msg.Type)
	}
	if msg.Data == nil || msg.Data.Direction != "LEFT" || !msg.Data.Respawn {
		t.Errorf("data = %+v", msg.Data)
	}
}

func TestInboundDecodeConnect(t *testing.T) {
	raw := `{"type":"connect","player_name":"Alice"}`
	var msg Inbound
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != MsgConnect || msg.PlayerName != "Alice" || msg.Data != nil {
		t.Errorf("decoded %+v", msg)
	}
}

func TestSnapshotWireShape(t *testing.T) {
	g := newTestGame()
	p := addTestPlayer(g, "Alice", 10001, []Cell{{10, 10}, {9, 10}}, DirRight)
	p.Score = 42
	g.world.Bricks = append(g.world.Bricks,
		Brick{Cell: Cell{5, 5}, Kind: BrickRegular},
		Brick{Cell: Cell{6, 6}, Kind: BrickBullet},
		Brick{Cell: Cell{7, 7}, Kind: BrickBomb},
	)

	msg := GameStateMsg{Type: MsgGameState, State: g.buildSnapshot(time.Now()), MessageCount: 7}
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatal(err)
	}
	state, ok := decoded["state"].(map[string]interface{})
	if !ok {
		t.Fatal("missing state object")
	}
	for _, field := range []string{
		"players", "bricks", "bullet_bricks", "bomb_bricks",
		"bullets", "bombs", "explosions", "timestamp", "game_time",
		"leaderboard", "all_time_highscore", "all_time_highscore_player",
	} {
		if _, present := state[field]; !present {
			t.Errorf("snapshot missing field %q", field)
		}
	}
	// Brick kinds are split into their own lists.
	if n := len(state["bricks"].([]interface{})); n != 1 {
		t.Errorf("expected 1 regular brick, got %d", n)
	}
	if n := len(state["bullet_bricks"].([]interface{})); n != 1 {
		t.Errorf("expected 1 bullet brick, got %d", n)
	}

	players := state["players"].(map[string]interface{})
	alice, ok := players[p.Key].(map[string]interface{})
	if !ok {
		t.Fatalf("player keyed by endpoint missing, keys %v", players)
	}
	if alice["player_name"] != "Alice" || alice["score"] != float64(42) {
		t.Errorf("player state wrong: %v", alice)
	}
	if alice["direction"] != "RIGHT" {
		t.Errorf("direction should be a string, got %v", alice["direction"])
	}
	snake := alice["snake"].([]interface{})
	if len(snake) != 2 {
		t.Errorf("snake length %d", len(snake))
	}
}

func TestEmptySnapshotHasNoNullLists(t *testing.T) {
	g := newTestGame()
	payload, err := json.Marshal(g.buildSnapshot(time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	var state map[string]interface{}
	if err := json.Unmarshal(payload, &state); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"bricks", "bullets", "bombs", "explosions"} {
		if state[field] == nil {
			t.Errorf("field %q must be an empty list, not null", field)
		}
	}
}

func TestMalformedDatagramIgnored(t *testing.T) {
	var msg Inbound
	if err := json.Unmarshal([]byte("{not json"), &msg); err == nil {
		t.Error("malformed payloads must fail to decode")
	}
}
