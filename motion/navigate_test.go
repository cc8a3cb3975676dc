package motion

import (
	"math"
	"testing"
)

func TestSpeedSelectionByDistance(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 0, 0)

	tests := []struct {
		name   string
		gx, gy int
		want   SpeedMode
	}{
		{"adjacent", 1, 0, SpeedWalk},
		{"walk band edge", 4, 4, SpeedWalk},
		{"run band", 8, 3, SpeedRun},
		{"run band edge", 12, 12, SpeedRun},
		{"sprint", 13, 0, SpeedSprint},
		{"long route", 20, 20, SpeedSprint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.c.NavigateToGrid(h, tt.gx, tt.gy, NavigateOptions{})
			if res == nil {
				t.Fatal("navigate rejected")
			}
			if res.Speed != tt.want {
				t.Fatalf("speed = %v, want %v", res.Speed, tt.want)
			}
			if res.Goal.Tolerance != f.c.Config().Tolerance(tt.want) {
				t.Fatalf("tolerance = %v, want %v", res.Goal.Tolerance, f.c.Config().Tolerance(tt.want))
			}
		})
	}
}

func TestPreferredSpeedOverride(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 0, 0)

	walk := SpeedWalk
	res := f.c.NavigateToGrid(h, 20, 0, NavigateOptions{PreferredSpeed: &walk})
	if res == nil {
		t.Fatal("navigate rejected")
	}
	if res.Speed != SpeedWalk {
		t.Fatalf("speed = %v, want forced walk", res.Speed)
	}
}

func TestToleranceOverride(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 0, 0)

	res := f.c.NavigateToGrid(h, 3, 0, NavigateOptions{Tolerance: 0.05})
	if res == nil {
		t.Fatal("navigate rejected")
	}
	if res.Goal.Tolerance != 0.05 {
		t.Fatalf("tolerance = %v, want 0.05", res.Goal.Tolerance)
	}
}

func TestNavigateOutOfBounds(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 5, 5)
	tok, _ := f.c.Tokens().Get(h)

	if res := f.c.NavigateToGrid(h, 40, 5, NavigateOptions{}); res != nil {
		t.Fatalf("expected rejection, got %+v", res)
	}
	for i := 0; i < 30; i++ {
		f.stage.Step(frameDT)
	}
	if tok.GridX != 5 || tok.GridY != 5 {
		t.Fatalf("rejected navigation moved the token to %d,%d", tok.GridX, tok.GridY)
	}
}

func TestTolerancesAndClearancesOrdered(t *testing.T) {
	cfg := DefaultConfig()

	if !(cfg.Tolerance(SpeedSprint) < cfg.Tolerance(SpeedRun) && cfg.Tolerance(SpeedRun) < cfg.Tolerance(SpeedWalk)) {
		t.Fatalf("tolerances not decreasing: %v %v %v",
			cfg.Tolerance(SpeedWalk), cfg.Tolerance(SpeedRun), cfg.Tolerance(SpeedSprint))
	}
	if !(cfg.WallClearance(SpeedWalk) < cfg.WallClearance(SpeedRun) && cfg.WallClearance(SpeedRun) < cfg.WallClearance(SpeedSprint)) {
		t.Fatalf("clearances not increasing: %v %v %v",
			cfg.WallClearance(SpeedWalk), cfg.WallClearance(SpeedRun), cfg.WallClearance(SpeedSprint))
	}
}

func TestConfigValidateRejectsBadOrdering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"thresholds swapped", func(c *Config) { c.FallThreshold = 9 }},
		{"tolerances inverted", func(c *Config) { c.SprintTolerance = 0.5 }},
		{"clearances inverted", func(c *Config) { c.WalkWallClearance = 0.9 }},
		{"bands collapsed", func(c *Config) { c.RunMaxCells = 2 }},
		{"step up above threshold", func(c *Config) { c.StepUpMax = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNavigateToRaisedCellPlansClimb(t *testing.T) {
	f := newFixture(t)
	f.terrain.Set(6, 3, 4) // 2 world units up

	h := f.c.PlaceToken("grunt", 3, 3)
	tok, _ := f.c.Tokens().Get(h)

	res := f.c.NavigateToGrid(h, 6, 3, NavigateOptions{})
	if res == nil {
		t.Fatal("navigate rejected")
	}
	if res.Climb == nil {
		t.Fatal("2-unit rise must produce a climb plan")
	}
	if res.Climb.WallGridX != 6 || res.Climb.WallGridY != 3 {
		t.Fatalf("wall cell = %d,%d, want 6,3", res.Climb.WallGridX, res.Climb.WallGridY)
	}
	if res.Climb.Clearance != f.c.Config().WallClearance(res.Speed) {
		t.Fatalf("clearance = %v, want %v", res.Climb.Clearance, f.c.Config().WallClearance(res.Speed))
	}

	// Approach point stands half a tile plus the clearance short of the
	// wall center, at the token's current height.
	wall := f.board.GridToWorld(6, 3, 4)
	wantBack := f.board.HalfExtent() + res.Climb.Clearance
	gotBack := res.Climb.ApproachWorld.Planar().Distance(wall.Planar())
	if math.Abs(gotBack-wantBack) > 1e-9 {
		t.Fatalf("approach standoff = %v, want %v", gotBack, wantBack)
	}
	if res.Climb.ApproachWorld.Y != tok.World.Y {
		t.Fatalf("approach height = %v, want token height %v", res.Climb.ApproachWorld.Y, tok.World.Y)
	}
}

func TestClimbAscendsToWallTop(t *testing.T) {
	f := newFixture(t)
	f.terrain.Set(6, 3, 4)

	h := f.c.PlaceToken("grunt", 3, 3)
	tok, _ := f.c.Tokens().Get(h)
	if res := f.c.NavigateToGrid(h, 6, 3, NavigateOptions{}); res == nil {
		t.Fatal("navigate rejected")
	}

	f.run(t, 1200, func() bool {
		st, _ := f.c.State(h)
		return tok.GridX == 6 && tok.GridY == 3 && st.Phase() == PhaseIdle
	})

	want := f.board.GridToWorld(6, 3, 4)
	if tok.World != want {
		t.Fatalf("final world = %v, want %v", tok.World, want)
	}
}

func TestNavigateDuringFallQueuesResume(t *testing.T) {
	f := newFixture(t)
	f.terrain.Fill(0, 0, 5, 10, 20) // 10-unit cliff east of column 5

	h := f.c.PlaceToken("grunt", 4, 4)
	tok, _ := f.c.Tokens().Get(h)
	f.c.NavigateToGrid(h, 8, 4, NavigateOptions{})

	// Walk off the edge into the aerial loop.
	f.run(t, 600, func() bool {
		st, _ := f.c.State(h)
		return st.Phase() == PhaseFall
	})

	res := f.c.NavigateToGrid(h, 10, 4, NavigateOptions{})
	if res == nil {
		t.Fatal("mid-fall navigate rejected")
	}
	st, _ := f.c.State(h)
	if st.resumeGoal == nil || st.resumeGoal.GridX != 10 {
		t.Fatalf("mid-fall navigation must queue a resume goal, got %+v", st.resumeGoal)
	}

	f.run(t, 2400, func() bool {
		stNow, _ := f.c.State(h)
		return tok.GridX == 10 && tok.GridY == 4 && stNow.Phase() == PhaseIdle
	})
}

func TestResumeAfterFallPlansClimbFromLanding(t *testing.T) {
	f := newFixture(t)
	f.terrain.Fill(0, 0, 5, 10, 20) // 10-unit cliff east of column 5
	f.terrain.Set(10, 4, 4)         // raised shelf past the landing zone

	h := f.c.PlaceToken("grunt", 4, 4)
	tok, _ := f.c.Tokens().Get(h)
	f.c.NavigateToGrid(h, 8, 4, NavigateOptions{})

	f.run(t, 600, func() bool {
		st, _ := f.c.State(h)
		return st.Phase() == PhaseFall
	})

	// From the cliff top the shelf sits below the token, so the rise only
	// becomes a climb relative to the landing position. The queued result
	// must defer the plan rather than bake in the in-flight altitude.
	res := f.c.NavigateToGrid(h, 10, 4, NavigateOptions{})
	if res == nil {
		t.Fatal("mid-fall navigate rejected")
	}
	if res.Climb != nil {
		t.Fatalf("queued route planned a climb mid-flight: %+v", res.Climb)
	}

	// Once grounded, the promoted goal re-plans: the shelf is a 2-unit rise
	// from the landing height and must be climbed, not walked into.
	f.run(t, 2400, func() bool {
		st, _ := f.c.State(h)
		return tok.GridX == 10 && tok.GridY == 4 && st.Phase() == PhaseIdle
	})
	want := f.board.GridToWorld(10, 4, 4)
	if tok.World != want {
		t.Fatalf("final world = %v, want shelf top %v", tok.World, want)
	}
}
