package motion

import (
	"math"
	"strings"
	"testing"

	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/token"
)

func TestSanitizeRootMotion(t *testing.T) {
	cfg := DefaultConfig()
	step := &Step{HorizontalDistance: 1.0, HeightDrop: 4.0}

	t.Run("non-finite components zeroed", func(t *testing.T) {
		got := sanitizeRootMotion(cfg, grid.Vec3{X: math.NaN(), Y: math.Inf(1), Z: 0.2}, step, LandingFall)
		if got.X != 0 || got.Y != 0 {
			t.Fatalf("non-finite components survived: %v", got)
		}
		if got.Z != 0.2 {
			t.Fatalf("finite component altered: %v", got)
		}
	})

	t.Run("horizontal clamp", func(t *testing.T) {
		got := sanitizeRootMotion(cfg, grid.Vec3{X: 5, Z: 5}, step, LandingFall)
		maxH := step.HorizontalDistance * cfg.FallHorizontalAllowance
		if h := math.Hypot(got.X, got.Z); h > maxH+1e-9 {
			t.Fatalf("horizontal magnitude %v exceeds %v", h, maxH)
		}
	})

	t.Run("hard landing gets the looser allowance", func(t *testing.T) {
		soft := sanitizeRootMotion(cfg, grid.Vec3{X: 5}, step, LandingFall)
		hard := sanitizeRootMotion(cfg, grid.Vec3{X: 5}, step, LandingHard)
		if !(hard.X > soft.X) {
			t.Fatalf("hard allowance %v should exceed soft %v", hard.X, soft.X)
		}
	})

	t.Run("vertical clamp tracks drop", func(t *testing.T) {
		got := sanitizeRootMotion(cfg, grid.Vec3{Y: 9}, step, LandingFall)
		maxV := step.HeightDrop * cfg.VerticalAllowance
		if got.Y != maxV {
			t.Fatalf("vertical offset %v, want clamp at %v", got.Y, maxV)
		}
		got = sanitizeRootMotion(cfg, grid.Vec3{Y: -9}, step, LandingFall)
		if got.Y != -maxV {
			t.Fatalf("downward offset %v, want clamp at %v", got.Y, -maxV)
		}
	})

	t.Run("small offsets pass through", func(t *testing.T) {
		in := grid.Vec3{X: 0.1, Y: 0.05, Z: 0.1}
		got := sanitizeRootMotion(cfg, in, step, LandingFall)
		if got != in {
			t.Fatalf("in-bounds offset mutated: %v -> %v", in, got)
		}
	})
}

func TestTileClampOffset(t *testing.T) {
	board := grid.NewBoard(8, 8)
	landing := board.GridToWorld(3, 3, 0)

	t.Run("inside the tile untouched", func(t *testing.T) {
		in := grid.Vec3{X: 0.2, Z: -0.3}
		got := tileClampOffset(board, landing, in, 3, 3)
		if got != in {
			t.Fatalf("offset mutated: %v -> %v", in, got)
		}
	})

	t.Run("overshoot scaled back preserving direction", func(t *testing.T) {
		in := grid.Vec3{X: 2, Z: 1}
		got := tileClampOffset(board, landing, in, 3, 3)
		end := landing.Add(got)
		center := board.TileCenter(3, 3)
		half := board.HalfExtent()
		if math.Abs(end.X-center.X) > half+1e-9 || math.Abs(end.Z-center.Y) > half+1e-9 {
			t.Fatalf("clamped end %v escapes the tile", end)
		}
		if got.X == 0 {
			t.Fatal("clamp zeroed the offset instead of scaling it")
		}
		if math.Abs(got.X/got.Z-2.0) > 1e-9 {
			t.Fatalf("direction changed: %v", got)
		}
	})

	t.Run("landing already at the edge", func(t *testing.T) {
		edge := landing
		edge.X += board.HalfExtent()
		got := tileClampOffset(board, edge, grid.Vec3{X: 1}, 3, 3)
		if got.X != 0 {
			t.Fatalf("offset past the edge not zeroed: %v", got)
		}
	})
}

// dropFixture stands the token on a plateau so that walking one cell east
// goes over a cliff of the given world-unit height.
func dropFixture(t *testing.T, drop float64) (*fixture, token.Handle) {
	t.Helper()
	f := newFixture(t)
	f.terrain.Fill(0, 0, 4, 31, drop/f.board.ElevationUnit)
	h := f.c.PlaceToken("grunt", 4, 4)
	return f, h
}

func TestDropScenarios(t *testing.T) {
	tests := []struct {
		name    string
		drop    float64
		variant LandingVariant
	}{
		{"soft landing", 4.0, LandingFall},
		{"hard landing", 6.0, LandingHard},
		{"fall to roll", 10.0, LandingRoll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, h := dropFixture(t, tt.drop)
			tok, _ := f.c.Tokens().Get(h)
			f.c.SetPathingLoggingEnabled(true)
			f.c.NavigateToGrid(h, 8, 4, NavigateOptions{})

			landed := false
			f.run(t, 2400, func() bool {
				st, _ := f.c.State(h)
				if !landed {
					for _, ev := range f.c.PathingLogArchive() {
						if ev.Kind == "land" {
							landed = true
						}
					}
				}
				return landed && tok.GridX == 8 && st.Phase() == PhaseIdle
			})

			var fallDetail string
			for _, ev := range f.c.PathingLogArchive() {
				if ev.Kind == "fall" {
					fallDetail = ev.Detail
				}
			}
			if fallDetail == "" {
				t.Fatal("no fall event recorded")
			}
			want := "variant=" + string(tt.variant)
			if !strings.Contains(fallDetail, want) {
				t.Fatalf("fall detail %q missing %q", fallDetail, want)
			}
		})
	}
}

func TestShallowDropSkipsFall(t *testing.T) {
	f, h := dropFixture(t, 2.5)
	tok, _ := f.c.Tokens().Get(h)
	f.c.SetPathingLoggingEnabled(true)
	f.c.NavigateToGrid(h, 8, 4, NavigateOptions{})

	f.run(t, 1200, func() bool {
		st, _ := f.c.State(h)
		return tok.GridX == 8 && st.Phase() == PhaseIdle
	})

	for _, ev := range f.c.PathingLogArchive() {
		if ev.Kind == "fall" {
			t.Fatalf("2.5-unit drop must not fall: %v", ev)
		}
	}
}

func TestShallowFallResolvesSameTick(t *testing.T) {
	// Above the fall threshold but below the fall-loop minimum: the landing
	// resolves without ever entering the aerial loop.
	f := newFixture(t)
	f.terrain.Fill(0, 0, 4, 31, 6.4) // 3.2 world units, just past the fall threshold

	h := f.c.PlaceToken("grunt", 4, 4)
	tok, _ := f.c.Tokens().Get(h)
	st := f.c.ensureState(h, tok)
	st.profile.FallLoopMinDrop = 4.0 // gate the loop above this drop

	f.c.SetPathingLoggingEnabled(true)
	f.c.NavigateToGrid(h, 8, 4, NavigateOptions{})

	sawFallPhase := false
	f.run(t, 1200, func() bool {
		stNow, _ := f.c.State(h)
		if stNow.Phase() == PhaseFall {
			sawFallPhase = true
		}
		return tok.GridX == 8 && stNow.Phase() == PhaseIdle
	})

	if sawFallPhase {
		t.Fatal("drop below fall_loop_min_drop entered the aerial loop")
	}
	landed := false
	for _, ev := range f.c.PathingLogArchive() {
		if ev.Kind == "land" {
			landed = true
		}
	}
	if !landed {
		t.Fatal("shallow fall never landed")
	}
}

func TestRollFinalCellFromLandingAnchor(t *testing.T) {
	f, h := dropFixture(t, 10)
	tok, _ := f.c.Tokens().Get(h)
	f.c.SetPathingLoggingEnabled(true)
	f.c.NavigateToGrid(h, 5, 4, NavigateOptions{})

	f.run(t, 2400, func() bool {
		st, _ := f.c.State(h)
		return st.Phase() == PhaseIdle && tok.GridX == 5
	})

	// The roll clip's baked motion carried the mesh forward, but the
	// authoritative cell comes from where the fall landed.
	if tok.GridX != 5 || tok.GridY != 4 {
		t.Fatalf("final cell = %d,%d, want 5,4", tok.GridX, tok.GridY)
	}
	if got := tok.Mesh.WorldPosition(); got != tok.World {
		t.Fatalf("mesh %v detached from token %v after roll", got, tok.World)
	}
}

func TestLandingStaysOnTile(t *testing.T) {
	for _, drop := range []float64{4.0, 6.0} {
		f, h := dropFixture(t, drop)
		tok, _ := f.c.Tokens().Get(h)
		f.c.SetPathingLoggingEnabled(true)
		f.c.NavigateToGrid(h, 5, 4, NavigateOptions{})

		f.run(t, 2400, func() bool {
			st, _ := f.c.State(h)
			return st.Phase() == PhaseIdle && tok.GridX == 5
		})

		center := f.board.TileCenter(5, 4)
		half := f.board.HalfExtent()
		if math.Abs(tok.World.X-center.X) > half+1e-9 || math.Abs(tok.World.Z-center.Y) > half+1e-9 {
			t.Fatalf("drop %v: landing %v escaped tile 5,4", drop, tok.World)
		}
	}
}
