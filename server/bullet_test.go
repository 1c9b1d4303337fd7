package main

import "testing"

func TestBulletTravelsOneCellPerEngineTick(t *testing.T) {
	g := newTestGame()
	addTestPlayer(g, "Victim", 10001, []Cell{{9, 5}, {8, 5}}, DirDown)
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{8, 8}, Heading: DirUp, Owner: "shooter", OwnerName: "Shooter",
	})

	g.advanceBullets()
	if g.world.Bullets[0].Cell != (Cell{8, 7}) {
		t.Fatalf("after one tick expected (8,7), got %v", g.world.Bullets[0].Cell)
	}
	g.advanceBullets()
	if g.world.Bullets[0].Cell != (Cell{8, 6}) {
		t.Fatalf("after two ticks expected (8,6), got %v", g.world.Bullets[0].Cell)
	}

	// Third tick lands on the victim's body segment at (8,5).
	g.advanceBullets()
	if len(g.world.Bullets) != 0 {
		t.Error("bullet should be consumed on its first hit")
	}
}

func TestBulletBodyHitTruncatesAndDeductsScore(t *testing.T) {
	g := newTestGame()
	victim := addTestPlayer(g, "Victim", 10001,
		[]Cell{{10, 5}, {10, 6}, {10, 7}, {10, 8}, {10, 9}}, DirUp)
	victim.Score = 500
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{9, 7}, Heading: DirRight, Owner: "shooter", OwnerName: "Shooter",
	})

	g.advanceBullets()

	if !victim.Alive {
		t.Fatal("a body hit must not kill")
	}
	if len(victim.Body) != 2 {
		t.Errorf("expected truncation at index 2, length %d", len(victim.Body))
	}
	// 3 segments removed at 50 apiece.
	if victim.Score != 350 {
		t.Errorf("expected score 350, got %d", victim.Score)
	}
}

func TestBulletScoreDeductionClampsAtZero(t *testing.T) {
	g := newTestGame()
	victim := addTestPlayer(g, "Victim", 10001,
		[]Cell{{10, 5}, {10, 6}, {10, 7}}, DirUp)
	victim.Score = 30
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{9, 6}, Heading: DirRight, Owner: "shooter", OwnerName: "Shooter",
	})

	g.advanceBullets()

	if victim.Score != 0 {
		t.Errorf("score must clamp at zero, got %d", victim.Score)
	}
}

func TestBulletHeadshotKillsAndAwards(t *testing.T) {
	g := newTestGame()
	shooter := addTestPlayer(g, "Shooter", 10001, []Cell{{5, 20}}, DirUp)
	victim := addTestPlayer(g, "Victim", 10002, []Cell{{10, 5}, {10, 6}}, DirUp)
	victim.Score = 400
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{9, 5}, Heading: DirRight, Owner: shooter.Key, OwnerName: shooter.Name,
	})

	g.advanceBullets()

	if victim.Alive {
		t.Fatal("a headshot must kill")
	}
	if shooter.Score != ScoreKill {
		t.Errorf("shooter should be awarded %d, got %d", ScoreKill, shooter.Score)
	}
	lb := g.stats.Leaderboard(10)
	var shooterKills, victimDeaths int
	for _, e := range lb {
		if e.Name == "Shooter" {
			shooterKills = e.Kills
		}
		if e.Name == "Victim" {
			victimDeaths = e.Deaths
		}
	}
	if shooterKills != 1 || victimDeaths != 1 {
		t.Errorf("expected 1 kill / 1 death in stats, got %d / %d", shooterKills, victimDeaths)
	}
}

func TestBulletPassesThroughOwner(t *testing.T) {
	g := newTestGame()
	shooter := addTestPlayer(g, "Shooter", 10001,
		[]Cell{{10, 5}, {10, 6}, {10, 7}}, DirUp)
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{9, 6}, Heading: DirRight, Owner: shooter.Key, OwnerName: shooter.Name,
	})

	g.advanceBullets()

	if len(g.world.Bullets) != 1 {
		t.Error("a bullet must not hit its own shooter")
	}
	if len(shooter.Body) != 3 {
		t.Error("shooter body must be untouched by own bullet")
	}
}

func TestBulletHitsAtMostOnePlayer(t *testing.T) {
	g := newTestGame()
	// Two victims with a body segment on the same cell. Key order is the
	// sorted endpoint string, so 10001 resolves first.
	first := addTestPlayer(g, "First", 10001, []Cell{{10, 5}, {10, 6}}, DirUp)
	second := addTestPlayer(g, "Second", 10002, []Cell{{10, 6}, {10, 7}}, DirUp)
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{9, 6}, Heading: DirRight, Owner: "shooter", OwnerName: "Shooter",
	})

	g.advanceBullets()

	if len(g.world.Bullets) != 0 {
		t.Fatal("bullet should be consumed")
	}
	if len(first.Body) != 1 {
		t.Errorf("first player should be truncated, length %d", len(first.Body))
	}
	if !second.Alive || len(second.Body) != 2 {
		t.Error("only one player may be hit per bullet")
	}
}

func TestBulletLeavesGridSilently(t *testing.T) {
	g := newTestGame()
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{GridWidth - 1, 10}, Heading: DirRight, Owner: "s", OwnerName: "S",
	})

	g.advanceBullets()

	if len(g.world.Bullets) != 0 {
		t.Error("bullets must be removed at the grid edge")
	}
}

func TestBulletIgnoresDeadAndLobbyPlayers(t *testing.T) {
	g := newTestGame()
	dead := addTestPlayer(g, "Dead", 10001, []Cell{{10, 6}}, DirUp)
	dead.Alive = false
	lobby := addTestPlayer(g, "Lobby", 10002, []Cell{{10, 6}}, DirUp)
	lobby.InGame = false
	g.world.Bullets = append(g.world.Bullets, &Bullet{
		Cell: Cell{9, 6}, Heading: DirRight, Owner: "s", OwnerName: "S",
	})

	g.advanceBullets()

	if len(g.world.Bullets) != 1 {
		t.Error("dead or lobby players must not absorb bullets")
	}
}
