package motion

import "github.com/pcallahan/gridstage/token"

// WorldAuthority is an exclusive-write guarantee over a token's transform,
// taken for the span of a landing so no other call site can tear it mid
// flight. Acquire through the coordinator; Release is idempotent and flushes
// deferred resets when the last holder lets go.
type WorldAuthority struct {
	c        *Coordinator
	h        token.Handle
	tok      *token.Token
	st       *MovementState
	released bool
}

// acquireWorldAuthority takes (or re-enters) the token's world lock.
func (c *Coordinator) acquireWorldAuthority(h token.Handle, tok *token.Token, st *MovementState) *WorldAuthority {
	tok.LockWorldAuthority()
	st.lockActive = true
	return &WorldAuthority{c: c, h: h, tok: tok, st: st}
}

// Release drops one lock level. When the count reaches zero the merged
// pending reset options are applied exactly once.
func (a *WorldAuthority) Release() {
	if a == nil || a.released {
		return
	}
	a.released = true

	depth := a.tok.UnlockWorldAuthority()
	a.st.lockActive = depth > 0
	if depth > 0 {
		return
	}
	if pending := a.st.pendingReset; pending != nil {
		a.st.pendingReset = nil
		a.c.applyReset(a.h, a.tok, a.st, *pending)
	}
}

// resetMovementState requests a movement reset. While the token's world
// authority is locked the animation-transition side effects are deferred:
// option flags merge by OR into the pending record and fire once on unlock.
func (c *Coordinator) resetMovementState(h token.Handle, tok *token.Token, st *MovementState, opts ResetOptions) {
	if c == nil || tok == nil || st == nil {
		return
	}
	if tok.WorldLocked() {
		merged := opts
		if st.pendingReset != nil {
			merged = st.pendingReset.merge(opts)
		}
		st.pendingReset = &merged
		c.log.append(c.frame, h, "reset_deferred", merged.describe())
		return
	}
	c.applyReset(h, tok, st, opts)
}

// applyReset performs the reset side effects immediately.
func (c *Coordinator) applyReset(h token.Handle, tok *token.Token, st *MovementState, opts ResetOptions) {
	if opts.ClearGoal {
		st.goal = nil
		st.climbQueue = nil
		st.step = nil
	}
	if opts.ClearResume {
		st.resumeGoal = nil
	}
	if opts.ClearStop {
		st.pendingStop = false
		st.stopBlend = 0
	}
	if opts.BlendToIdle {
		st.step = nil
		st.climb = nil
		st.roll = nil
		st.fallLandingKey = ""
		st.fallVariant = LandingNone
		st.phase = PhaseIdle
		if st.animator != nil {
			st.animator.Play(st.profile.IdleClip, st.profile.StopFadeOut)
		}
	}
	c.log.append(c.frame, h, "reset_applied", opts.describe())
}

func (o ResetOptions) describe() string {
	out := ""
	if o.ClearGoal {
		out += "goal "
	}
	if o.ClearResume {
		out += "resume "
	}
	if o.ClearStop {
		out += "stop "
	}
	if o.BlendToIdle {
		out += "idle "
	}
	if out == "" {
		return "none"
	}
	return out[:len(out)-1]
}
