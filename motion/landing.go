package motion

import (
	"fmt"
	"math"

	"github.com/pcallahan/gridstage/grid"
)

// finishFallPhase resolves a completed fall: authoritative position from the
// step target, root-motion transfer from the landing clip (sanitized and,
// for non-roll variants, clamped to the landing tile), then authority
// release and hand-off to the next phase.
func (c *Coordinator) finishFallPhase(ctx *phaseContext) {
	st, tok := ctx.st, ctx.tok
	step := st.step
	if step == nil {
		c.releaseFallAuthority(st)
		c.changePhase(ctx, advIdle)
		return
	}

	variant := st.fallVariant

	// (a) authoritative world position from the step target.
	tok.World = step.TargetWorld

	// (b) root motion baked into the landing clip.
	var offset grid.Vec3
	if st.animator != nil && st.fallLandingKey != "" {
		offset = st.animator.RootMotion(st.fallLandingKey)
	}

	// (c) sanitize against the step's actual travel.
	offset = sanitizeRootMotion(c.cfg, offset, step, variant)

	// (d) tile clamp; fallToRoll is exempt because the roll carries the
	// token past the tile and its cell is fixed at roll completion.
	if variant == LandingFall || variant == LandingHard {
		offset = tileClampOffset(c.board, tok.World, offset, step.GridTargetX, step.GridTargetY)
	}

	// (e) transfer into the authoritative position and bookkeeping.
	tok.World = tok.World.Add(offset)
	tok.GridX, tok.GridY = step.GridTargetX, step.GridTargetY
	c.placeMesh(tok)
	st.step = nil

	if st.animator != nil && st.fallLandingKey != "" {
		st.animator.Play(st.fallLandingKey, st.profile.FadeIn)
	}
	c.log.append(c.frame, ctx.h, "land", fmt.Sprintf("variant=%s offset=%.2f,%.2f,%.2f",
		variant, offset.X, offset.Y, offset.Z))

	st.fallLandingKey = ""
	st.fallVariant = LandingNone
	st.fallVelocity = 0

	// Release before resuming queued movement so deferred resets flush
	// first; they may clear the resume goal.
	c.releaseFallAuthority(st)
	if st.phase != PhaseFall {
		// A flushed reset redirected the phase; it owns the hand-off.
		return
	}

	if variant == LandingRoll {
		c.changePhase(ctx, advRollRecover)
		return
	}
	if st.resumeGoal != nil {
		c.promoteResumeGoal(ctx.tok, st)
		c.changePhase(ctx, advWalk)
		return
	}
	if st.goal != nil {
		c.changePhase(ctx, advWalk)
		return
	}
	c.changePhase(ctx, advStop)
}

func (c *Coordinator) releaseFallAuthority(st *MovementState) {
	if st.fallAuthority == nil {
		return
	}
	a := st.fallAuthority
	st.fallAuthority = nil
	a.Release()
}

// sanitizeRootMotion bounds a clip's baked displacement against the step it
// lands: horizontal magnitude relative to horizontal travel, vertical
// relative to height drop. Pathological authoring data (NaN, huge outliers)
// clamps instead of propagating.
func sanitizeRootMotion(cfg Config, offset grid.Vec3, step *Step, variant LandingVariant) grid.Vec3 {
	offset = offset.Finite()

	allowance := cfg.FallHorizontalAllowance
	if variant == LandingHard || variant == LandingRoll {
		allowance = cfg.HardLandHorizontalAllowance
	}
	maxH := step.HorizontalDistance * allowance
	if maxH < 0 {
		maxH = 0
	}
	h := offset.Planar().Clamp(maxH)

	maxV := math.Abs(step.HeightDrop) * cfg.VerticalAllowance
	y := offset.Y
	if y > maxV {
		y = maxV
	} else if y < -maxV {
		y = -maxV
	}

	return grid.Vec3{X: h.X, Y: y, Z: h.Y}
}

// tileClampOffset scales the offset down, preserving direction, so the
// final world position stays within the destination tile's footprint.
func tileClampOffset(board *grid.Board, landing grid.Vec3, offset grid.Vec3, gx, gy int) grid.Vec3 {
	center := board.TileCenter(gx, gy)
	half := board.HalfExtent()

	sx := axisClampScale(landing.X, offset.X, center.X, half)
	sz := axisClampScale(landing.Z, offset.Z, center.Y, half)

	s := math.Min(sx, sz)
	if s >= 1 {
		return offset
	}
	if s < 0 {
		s = 0
	}
	return offset.Scale(s)
}

// axisClampScale finds the largest s in [0, 1] keeping p + d*s within
// [c-half, c+half].
func axisClampScale(p, d, c, half float64) float64 {
	if d == 0 {
		return 1
	}
	var room float64
	if d > 0 {
		room = c + half - p
	} else {
		room = p - (c - half)
	}
	if room <= 0 {
		return 0
	}
	s := room / math.Abs(d)
	if s > 1 {
		return 1
	}
	return s
}
