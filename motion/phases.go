package motion

import (
	"fmt"

	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/token"
)

// Phase advancer singletons (avoid allocations on transitions).
var (
	advIdle         phaseAdvancer = &idlePhase{}
	advWalk         phaseAdvancer = &walkPhase{}
	advClimbAscend  phaseAdvancer = &climbAscendPhase{}
	advClimbRecover phaseAdvancer = &climbRecoverPhase{}
	advFall         phaseAdvancer = &fallPhase{}
	advRollRecover  phaseAdvancer = &rollRecoverPhase{}
	advStop         phaseAdvancer = &stopPhase{}
)

// phaseContext gives one advancer tick everything it may touch.
type phaseContext struct {
	c   *Coordinator
	h   token.Handle
	tok *token.Token
	st  *MovementState
	dt  float64
}

// phaseAdvancer mutates the movement state, mesh transform, and companion
// sprite for one phase. Each is invoked once per frame.
type phaseAdvancer interface {
	Phase() Phase
	Enter(ctx *phaseContext)
	Update(ctx *phaseContext)
}

func advancerFor(p Phase) phaseAdvancer {
	switch p {
	case PhaseWalk:
		return advWalk
	case PhaseClimbAscend:
		return advClimbAscend
	case PhaseClimbRecover:
		return advClimbRecover
	case PhaseFall:
		return advFall
	case PhaseRollRecover:
		return advRollRecover
	case PhaseStop:
		return advStop
	}
	return advIdle
}

func (c *Coordinator) changePhase(ctx *phaseContext, next phaseAdvancer) {
	prev := ctx.st.phase
	ctx.st.phase = next.Phase()
	if prev != next.Phase() {
		c.log.append(c.frame, ctx.h, "phase", fmt.Sprintf("%s -> %s", prev, next.Phase()))
	}
	next.Enter(ctx)
}

type idlePhase struct{}

func (idlePhase) Phase() Phase { return PhaseIdle }
func (idlePhase) Enter(ctx *phaseContext) {
	st := ctx.st
	st.step = nil
	if st.animator != nil {
		st.animator.Play(st.profile.IdleClip, st.profile.FadeIn)
	}
}
func (idlePhase) Update(ctx *phaseContext) {
	st := ctx.st
	if st.pendingStop {
		st.pendingStop = false
	}
	if st.moveSign != 0 || st.goal != nil {
		ctx.c.changePhase(ctx, advWalk)
	}
}

type walkPhase struct{}

func (walkPhase) Phase() Phase { return PhaseWalk }
func (walkPhase) Enter(ctx *phaseContext) {
	st := ctx.st
	if st.animator != nil {
		st.animator.Play(st.profile.WalkClip, st.profile.FadeIn)
	}
}
func (walkPhase) Update(ctx *phaseContext) {
	c, st, tok := ctx.c, ctx.st, ctx.tok

	if st.pendingStop {
		c.changePhase(ctx, advStop)
		return
	}

	// A queued climb takes over once the token reaches its approach point.
	// The approach sits between cell centers, so steer straight at it
	// instead of planning whole-cell steps.
	if st.climbQueue != nil {
		st.step = nil
		approach := st.climbQueue.ApproachWorld
		dist := tok.World.Planar().Distance(approach.Planar())
		if dist <= approachEpsilon {
			c.changePhase(ctx, advClimbAscend)
			return
		}
		c.faceToward(tok, angleToward(tok.World, approach), ctx.dt)
		travel := st.travelSpeed() * ctx.dt
		if travel >= dist {
			tok.World = approach
		} else {
			tok.World = tok.World.Lerp(approach, travel/dist)
		}
		tok.GridX, tok.GridY = c.board.WorldToGrid(tok.World.X, tok.World.Z)
		c.placeMesh(tok)
		return
	}

	if st.step == nil {
		if st.goal != nil && c.goalReached(tok, st.goal) {
			c.log.append(c.frame, ctx.h, "arrived", fmt.Sprintf("cell=%d,%d", tok.GridX, tok.GridY))
			st.goal = nil
			c.changePhase(ctx, advStop)
			return
		}
		st.step = c.planForwardStep(tok, st)
		if st.step == nil {
			if st.moveSign == 0 && st.goal == nil {
				c.changePhase(ctx, advStop)
			} else if st.goal != nil && st.climbQueue == nil {
				// Goal set but no walkable step toward it; give up rather
				// than spin.
				c.log.append(c.frame, ctx.h, "blocked", fmt.Sprintf("goal=%d,%d", st.goal.GridX, st.goal.GridY))
				st.goal = nil
				c.changePhase(ctx, advStop)
			}
			return
		}
		c.log.append(c.frame, ctx.h, "step", fmt.Sprintf("to=%d,%d drop=%.2f variant=%s",
			st.step.GridTargetX, st.step.GridTargetY, st.step.HeightDrop, st.step.Landing))
	}

	step := st.step
	if step.RequiresFall {
		c.beginFall(ctx, step)
		return
	}

	c.faceToward(tok, angleToward(step.StartWorld, step.TargetWorld), ctx.dt)

	step.progress += st.travelSpeed() * ctx.dt
	if step.progress >= step.TotalDistance {
		tok.GridX, tok.GridY = step.GridTargetX, step.GridTargetY
		tok.World = step.TargetWorld
		c.placeMesh(tok)
		st.step = nil
		return
	}
	t := step.progress / step.TotalDistance
	c.setMeshWorld(tok, step.StartWorld.Lerp(step.TargetWorld, t))
}

// approachEpsilon is how close counts as "at the climb approach point".
const approachEpsilon = 0.1

// goalReached checks planar distance against the goal tolerance, with the
// goal cell itself always counting as arrival.
func (c *Coordinator) goalReached(tok *token.Token, goal *PathGoal) bool {
	if tok.GridX == goal.GridX && tok.GridY == goal.GridY {
		return true
	}
	return tok.World.Planar().Distance(goal.World.Planar()) <= goal.Tolerance
}

// travelSpeed is walk speed scaled by the active goal's speed mode.
func (st *MovementState) travelSpeed() float64 {
	sp := st.profile.WalkSpeed
	if st.goal != nil {
		switch st.goal.Speed {
		case SpeedRun:
			sp *= st.profile.RunMultiplier
		case SpeedSprint:
			sp *= st.profile.SprintMultiplier
		}
	}
	return sp
}

// beginFall takes world authority and either enters the aerial loop or, for
// drops too shallow for the fall-loop clip, resolves the landing within the
// same tick.
func (c *Coordinator) beginFall(ctx *phaseContext, step *Step) {
	st := ctx.st
	st.fallVariant = step.Landing
	st.fallVelocity = 0
	switch step.Landing {
	case LandingHard:
		st.fallLandingKey = st.profile.HardLandClip
	case LandingRoll:
		st.fallLandingKey = st.profile.RollClip
	default:
		st.fallLandingKey = st.profile.LandClip
	}
	st.fallAuthority = c.acquireWorldAuthority(ctx.h, ctx.tok, st)
	c.log.append(c.frame, ctx.h, "fall", fmt.Sprintf("drop=%.2f variant=%s", step.HeightDrop, step.Landing))

	if step.HeightDrop < st.profile.FallLoopMinDrop {
		st.fallMode = fallModeLanding
		st.phase = PhaseFall
		c.finishFallPhase(ctx)
		return
	}
	st.fallMode = fallModeLoop
	c.changePhase(ctx, advFall)
}

type fallPhase struct{}

func (fallPhase) Phase() Phase { return PhaseFall }
func (fallPhase) Enter(ctx *phaseContext) {
	st := ctx.st
	if st.fallMode == fallModeLoop && st.animator != nil {
		st.animator.Play(st.profile.FallLoopClip, st.profile.FadeIn)
	}
}
func (fallPhase) Update(ctx *phaseContext) {
	c, st, tok := ctx.c, ctx.st, ctx.tok
	step := st.step
	if step == nil {
		// Nothing to land on; release and settle.
		if st.fallAuthority != nil {
			a := st.fallAuthority
			st.fallAuthority = nil
			a.Release()
		}
		c.changePhase(ctx, advIdle)
		return
	}

	pos := tok.World
	if tok.Mesh != nil {
		pos = tok.Mesh.WorldPosition()
	}

	st.fallVelocity += c.cfg.FallAcceleration * ctx.dt
	newY := pos.Y - st.fallVelocity*ctx.dt
	if newY <= step.TargetWorld.Y {
		c.finishFallPhase(ctx)
		return
	}

	span := step.StartWorld.Y - step.TargetWorld.Y
	frac := 0.0
	if span > 0 {
		frac = (step.StartWorld.Y - newY) / span
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
	}
	planar := step.StartWorld.Planar().Lerp(step.TargetWorld.Planar(), frac)
	c.setMeshWorld(tok, grid.FromPlanar(planar, newY))
}

type climbAscendPhase struct{}

func (climbAscendPhase) Phase() Phase { return PhaseClimbAscend }
func (climbAscendPhase) Enter(ctx *phaseContext) {
	c, st := ctx.c, ctx.st
	plan := st.climbQueue
	if plan == nil {
		c.changePhase(ctx, advIdle)
		return
	}
	st.climbQueue = nil
	st.step = nil
	st.climb = &climbState{
		plan: *plan,
		topY: plan.TargetLevel * c.board.ElevationUnit,
	}
	if st.animator != nil {
		st.animator.Play(st.profile.ClimbClip, st.profile.FadeIn)
	}
}
func (climbAscendPhase) Update(ctx *phaseContext) {
	c, st, tok := ctx.c, ctx.st, ctx.tok
	if st.climb == nil {
		c.changePhase(ctx, advIdle)
		return
	}
	pos := tok.World
	if tok.Mesh != nil {
		pos = tok.Mesh.WorldPosition()
	}
	newY := pos.Y + st.profile.ClimbSpeed*ctx.dt
	if newY >= st.climb.topY {
		plan := st.climb.plan
		tok.GridX, tok.GridY = plan.WallGridX, plan.WallGridY
		tok.World = c.board.GridToWorld(plan.WallGridX, plan.WallGridY, plan.TargetLevel)
		c.placeMesh(tok)
		st.climb.recover = c.cfg.ClimbRecoverDuration
		c.changePhase(ctx, advClimbRecover)
		return
	}
	c.setMeshWorld(tok, grid.Vec3{X: pos.X, Y: newY, Z: pos.Z})
}

type climbRecoverPhase struct{}

func (climbRecoverPhase) Phase() Phase { return PhaseClimbRecover }
func (climbRecoverPhase) Enter(ctx *phaseContext) {
	st := ctx.st
	if st.animator != nil {
		st.animator.Play(st.profile.IdleClip, st.profile.FadeOut)
	}
}
func (climbRecoverPhase) Update(ctx *phaseContext) {
	c, st := ctx.c, ctx.st
	if st.climb == nil {
		c.changePhase(ctx, advIdle)
		return
	}
	st.climb.recover -= ctx.dt
	if st.climb.recover > 0 {
		return
	}
	st.climb = nil
	if st.goal != nil {
		c.changePhase(ctx, advWalk)
		return
	}
	c.changePhase(ctx, advStop)
}

type rollRecoverPhase struct{}

func (rollRecoverPhase) Phase() Phase { return PhaseRollRecover }
func (rollRecoverPhase) Enter(ctx *phaseContext) {
	st, tok := ctx.st, ctx.tok
	st.roll = &rollState{
		anchor:   tok.World,
		dir:      grid.FacingDir(tok.FacingAngle),
		duration: st.profile.RollDuration,
		distance: st.profile.RollDistance,
	}
	if st.animator != nil {
		st.animator.Play(st.profile.RollClip, st.profile.FadeIn)
	}
}
func (rollRecoverPhase) Update(ctx *phaseContext) {
	c, st, tok := ctx.c, ctx.st, ctx.tok
	roll := st.roll
	if roll == nil {
		c.changePhase(ctx, advIdle)
		return
	}
	roll.elapsed += ctx.dt
	if roll.elapsed < roll.duration {
		// Ease out so the roll bleeds momentum toward its end.
		t := roll.elapsed / roll.duration
		t = t * (2 - t)
		offset := roll.dir.Mult(roll.distance * t)
		c.setMeshWorld(tok, grid.Vec3{
			X: roll.anchor.X + offset.X,
			Y: roll.anchor.Y,
			Z: roll.anchor.Z + offset.Y,
		})
		return
	}

	// The roll carried the mesh past the landing tile; the authoritative
	// cell comes from the landing anchor, not from where the roll ended.
	gx, gy := c.board.WorldToGrid(roll.anchor.X, roll.anchor.Z)
	tok.GridX, tok.GridY = gx, gy
	tok.World = roll.anchor
	c.placeMesh(tok)
	st.roll = nil
	c.log.append(c.frame, ctx.h, "roll_done", fmt.Sprintf("cell=%d,%d", gx, gy))

	if st.resumeGoal != nil {
		c.promoteResumeGoal(tok, st)
		c.changePhase(ctx, advWalk)
		return
	}
	if st.goal != nil {
		c.changePhase(ctx, advWalk)
		return
	}
	c.changePhase(ctx, advStop)
}

type stopPhase struct{}

func (stopPhase) Phase() Phase { return PhaseStop }
func (stopPhase) Enter(ctx *phaseContext) {
	st := ctx.st
	st.step = nil
	st.stopBlend = st.profile.StopFadeOut
	if st.animator != nil {
		st.animator.Play(st.profile.IdleClip, st.profile.StopFadeOut)
	}
}
func (stopPhase) Update(ctx *phaseContext) {
	st := ctx.st
	st.stopBlend -= ctx.dt
	if st.stopBlend > 0 {
		return
	}
	st.pendingStop = false
	ctx.c.changePhase(ctx, advIdle)
}
