package motion

import (
	"math"

	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/token"
)

// Step is one unit of forward travel, recomputed each time the token leaves
// a cell. Positions are world-space only: Node.SetWorldPosition compensates
// for the parent transform when the mesh moves, so interpolation needs no
// mesh-local copies of the endpoints.
type Step struct {
	StartWorld  grid.Vec3
	TargetWorld grid.Vec3

	TotalDistance      float64
	HorizontalDistance float64
	// HeightDrop = StartWorld.Y - TargetWorld.Y, before any root-motion
	// adjustment. Always >= 0 when RequiresFall.
	HeightDrop float64

	RequiresFall bool
	Landing      LandingVariant

	GridTargetX int
	GridTargetY int

	progress float64
}

// classifyLanding buckets a height drop into a landing variant. Thresholds
// come from config and are validated monotonic at load.
func classifyLanding(cfg Config, drop float64) (bool, LandingVariant) {
	if math.IsNaN(drop) || drop <= cfg.FallThreshold {
		return false, LandingNone
	}
	switch {
	case drop <= cfg.HardLandingThreshold:
		return true, LandingFall
	case drop <= cfg.RollThreshold:
		return true, LandingHard
	}
	return true, LandingRoll
}

// stepDirection picks the next cell: toward the goal when one is set
// (dominant axis first), else straight along the token's facing.
func stepDirection(tok *token.Token, goal *PathGoal) (int, int) {
	if goal != nil {
		dx := goal.GridX - tok.GridX
		dy := goal.GridY - tok.GridY
		if dx == 0 && dy == 0 {
			return 0, 0
		}
		if abs(dx) >= abs(dy) {
			return sign(dx), 0
		}
		return 0, sign(dy)
	}
	dir := grid.FacingDir(tok.FacingAngle)
	if math.Abs(dir.X) >= math.Abs(dir.Y) {
		return sign(int(math.Round(dir.X * 2))), 0
	}
	return 0, sign(int(math.Round(dir.Y * 2)))
}

// planForwardStep builds the next forward motion unit from the token's cell
// and the terrain one step ahead. Returns nil when there is nowhere to go:
// off the board, at the goal cell, or facing a rise too tall to walk.
func (c *Coordinator) planForwardStep(tok *token.Token, st *MovementState) *Step {
	if c == nil || tok == nil {
		return nil
	}
	if st.goal == nil && st.moveSign == 0 {
		return nil
	}
	dx, dy := stepDirection(tok, st.goal)
	if dx == 0 && dy == 0 {
		return nil
	}
	if st.goal == nil && st.moveSign < 0 {
		dx, dy = -dx, -dy
	}
	nx, ny := tok.GridX+dx, tok.GridY+dy
	if !c.board.InBounds(nx, ny) {
		return nil
	}

	aheadLevel := c.terrainHeight(nx, ny)
	start := tok.World
	target := c.board.GridToWorld(nx, ny, aheadLevel)

	drop := start.Y - target.Y
	if drop < -c.cfg.StepUpMax {
		// Too tall to walk up; reachable only through a planned climb.
		return nil
	}

	requiresFall, variant := classifyLanding(c.cfg, drop)

	horizontal := start.Planar().Distance(target.Planar())
	total := math.Sqrt(horizontal*horizontal + drop*drop)

	step := &Step{
		StartWorld:         start,
		TargetWorld:        target,
		TotalDistance:      total,
		HorizontalDistance: horizontal,
		HeightDrop:         drop,
		RequiresFall:       requiresFall,
		Landing:            variant,
		GridTargetX:        nx,
		GridTargetY:        ny,
	}
	return step
}

// terrainHeight reads the height source with the NaN-to-zero rule applied.
func (c *Coordinator) terrainHeight(gx, gy int) float64 {
	if c == nil || c.terrain == nil {
		return 0
	}
	h := c.terrain.TerrainHeight(gx, gy)
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return 0
	}
	return h
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
