package motion

import (
	"fmt"

	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/token"
)

// NavigateOptions tune a single navigation request.
type NavigateOptions struct {
	// PreferredSpeed overrides the distance-based speed selection.
	PreferredSpeed *SpeedMode
	// Tolerance overrides the speed mode's arrival tolerance when > 0.
	Tolerance float64
}

// NavigateResult describes the accepted route.
type NavigateResult struct {
	Goal  PathGoal
	Speed SpeedMode
	Climb *ClimbPlan
}

// NavigateToGrid routes a token toward a destination cell. The returned
// result is nil when the token is missing or the destination is off the
// board. State is mutated synchronously, so a request made this frame is
// honored by this frame's advancement.
func (c *Coordinator) NavigateToGrid(h token.Handle, gx, gy int, opts NavigateOptions) *NavigateResult {
	tok, ok := c.tokens.Get(h)
	if !ok {
		return nil
	}
	if !c.board.InBounds(gx, gy) {
		c.log.append(c.frame, h, "navigate_rejected", fmt.Sprintf("cell=%d,%d out of bounds", gx, gy))
		return nil
	}
	st := c.ensureState(h, tok)

	speed := opts.PreferredSpeed
	var mode SpeedMode
	if speed != nil {
		mode = *speed
	} else {
		mode = c.cfg.speedForDistance(chebyshev(tok.GridX, tok.GridY, gx, gy))
	}
	tolerance := c.cfg.Tolerance(mode)
	if opts.Tolerance > 0 {
		tolerance = opts.Tolerance
	}

	destLevel := c.terrainHeight(gx, gy)
	destWorld := c.board.GridToWorld(gx, gy, destLevel)

	goal := &PathGoal{
		GridX:     gx,
		GridY:     gy,
		World:     destWorld,
		Tolerance: tolerance,
		Speed:     mode,
	}

	if st.phase == PhaseFall || st.phase == PhaseRollRecover || tok.WorldLocked() {
		// Airborne or otherwise world-locked: queue the route for after the
		// landing resolves instead of tearing the in-flight step. Any climb
		// is planned when the goal is promoted; the rise only means anything
		// relative to where the token actually lands.
		st.resumeGoal = goal
		st.pendingStop = false
		c.log.append(c.frame, h, "navigate_queued", fmt.Sprintf("to=%d,%d speed=%s", gx, gy, mode))
		return &NavigateResult{Goal: *goal, Speed: mode}
	}

	var climb *ClimbPlan
	if destWorld.Y-tok.World.Y > c.cfg.StepUpMax {
		climb = c.planClimb(tok, gx, gy, destWorld, mode)
	}

	st.goal = goal
	st.resumeGoal = nil
	st.step = nil
	st.climbQueue = climb
	st.pendingStop = false

	tok.FacingAngle = angleToward(tok.World, destWorld)
	c.updateOrientation(tok)

	c.log.append(c.frame, h, "navigate", fmt.Sprintf("to=%d,%d speed=%s tol=%.2f climb=%v",
		gx, gy, mode, tolerance, climb != nil))

	res := &NavigateResult{Goal: *goal, Speed: mode, Climb: climb}
	if climb != nil {
		plan := *climb
		res.Climb = &plan
	}
	return res
}

// planClimb computes the approach point a wall clearance short of the wall
// face, backing away along the token-to-wall direction at the token's
// current height.
func (c *Coordinator) planClimb(tok *token.Token, gx, gy int, destWorld grid.Vec3, mode SpeedMode) *ClimbPlan {
	clearance := c.cfg.WallClearance(mode)
	dir := destWorld.Planar().Sub(tok.World.Planar())
	if dir.Length() == 0 {
		dir = grid.FacingDir(tok.FacingAngle)
	}
	dir = dir.Normalize()
	back := c.board.HalfExtent() + clearance
	approach := destWorld.Planar().Sub(dir.Mult(back))
	return &ClimbPlan{
		ApproachWorld: grid.FromPlanar(approach, tok.World.Y),
		WallGridX:     gx,
		WallGridY:     gy,
		TargetLevel:   destWorld.Y / c.board.ElevationUnit,
		Clearance:     clearance,
	}
}

// promoteResumeGoal installs a queued route once the token is back under
// normal movement, planning any climb from the position it landed at.
func (c *Coordinator) promoteResumeGoal(tok *token.Token, st *MovementState) {
	goal := st.resumeGoal
	st.resumeGoal = nil
	st.goal = goal
	st.step = nil
	st.climbQueue = nil
	if goal == nil {
		return
	}
	if goal.World.Y-tok.World.Y > c.cfg.StepUpMax {
		st.climbQueue = c.planClimb(tok, goal.GridX, goal.GridY, goal.World, goal.Speed)
	}
}

func chebyshev(x0, y0, x1, y1 int) int {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
