package motion

import (
	"github.com/jakecoffman/cp"

	"github.com/pcallahan/gridstage/anim"
	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/token"
)

// Phase is the movement state machine position for one token.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseWalk
	PhaseClimbAscend
	PhaseClimbRecover
	PhaseFall
	PhaseRollRecover
	PhaseStop
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWalk:
		return "walk"
	case PhaseClimbAscend:
		return "climb_ascend"
	case PhaseClimbRecover:
		return "climb_recover"
	case PhaseFall:
		return "fall"
	case PhaseRollRecover:
		return "roll_recover"
	case PhaseStop:
		return "stop"
	}
	return "unknown"
}

// LandingVariant classifies how a fall resolves visually.
type LandingVariant string

const (
	LandingNone LandingVariant = ""
	LandingFall LandingVariant = "fall"
	LandingHard LandingVariant = "hardLanding"
	LandingRoll LandingVariant = "fallToRoll"
)

// PathGoal is the destination of in-progress navigation.
type PathGoal struct {
	GridX     int
	GridY     int
	World     grid.Vec3
	Tolerance float64
	Speed     SpeedMode
}

// ClimbPlan describes a queued climb: free movement ends at ApproachWorld,
// then the token ascends the wall cell.
type ClimbPlan struct {
	ApproachWorld grid.Vec3
	WallGridX     int
	WallGridY     int
	TargetLevel   float64
	Clearance     float64
}

type fallMode int

const (
	fallModeLanding fallMode = iota
	fallModeLoop
)

// climbState is live only during the climb phases.
type climbState struct {
	plan    ClimbPlan
	topY    float64
	recover float64
}

// rollState is live only during roll recovery. The anchor is the landing
// world point; the final grid cell is derived from it, not from where the
// roll visually carries the mesh.
type rollState struct {
	anchor   grid.Vec3
	dir      cp.Vector
	elapsed  float64
	duration float64
	distance float64
}

// ResetOptions are the side-effect flags of a movement reset. While a token's
// world authority is locked, options from every caller are merged by OR and
// applied exactly once on the final unlock.
type ResetOptions struct {
	ClearGoal   bool
	ClearResume bool
	ClearStop   bool
	BlendToIdle bool
}

func (o ResetOptions) merge(other ResetOptions) ResetOptions {
	return ResetOptions{
		ClearGoal:   o.ClearGoal || other.ClearGoal,
		ClearResume: o.ClearResume || other.ClearResume,
		ClearStop:   o.ClearStop || other.ClearStop,
		BlendToIdle: o.BlendToIdle || other.BlendToIdle,
	}
}

// MovementState is the coordinator-owned mutable record for one token.
// Created on the first navigation request, destroyed with the token.
type MovementState struct {
	phase Phase

	goal       *PathGoal
	resumeGoal *PathGoal
	step       *Step
	climbQueue *ClimbPlan

	climb *climbState
	roll  *rollState

	fallLandingKey string
	fallMode       fallMode
	fallVariant    LandingVariant
	fallVelocity   float64
	fallAuthority  *WorldAuthority

	moveSign    int
	intentHold  bool
	pendingStop bool
	stopBlend   float64

	lockActive   bool
	pendingReset *ResetOptions

	profile  anim.Profile
	animator *anim.Animator

	behavior *behaviorRuntime
}

// Phase returns the current machine phase.
func (s *MovementState) Phase() Phase {
	if s == nil {
		return PhaseIdle
	}
	return s.phase
}

// Goal returns the active path goal, if any.
func (s *MovementState) Goal() *PathGoal {
	if s == nil {
		return nil
	}
	return s.goal
}

// Step returns the in-progress forward motion unit, if any.
func (s *MovementState) Step() *Step {
	if s == nil {
		return nil
	}
	return s.step
}

// WorldLockActive mirrors "token lock depth > 0" as a fast-path cache.
func (s *MovementState) WorldLockActive() bool {
	return s != nil && s.lockActive
}

// Profile returns the cached animation timing for the token's kind.
func (s *MovementState) Profile() anim.Profile {
	if s == nil {
		return anim.DefaultProfile()
	}
	return s.profile
}

// Animator exposes the mesh animator, mainly for tests and the demo viewer.
func (s *MovementState) Animator() *anim.Animator {
	if s == nil {
		return nil
	}
	return s.animator
}

// stateStore maps token handles to movement states with dense iteration,
// sparse-indexed by slot id.
type stateStore struct {
	denseHandles []token.Handle
	denseStates  []*MovementState
	sparse       []int
}

func (s *stateStore) get(h token.Handle) (*MovementState, bool) {
	if s == nil || h.ID <= 0 || h.ID-1 >= len(s.sparse) {
		return nil, false
	}
	idx := s.sparse[h.ID-1]
	if idx < 0 || idx >= len(s.denseHandles) || s.denseHandles[idx] != h {
		return nil, false
	}
	return s.denseStates[idx], true
}

func (s *stateStore) set(h token.Handle, st *MovementState) {
	if s == nil || h.ID <= 0 || st == nil {
		return
	}
	for h.ID-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if idx := s.sparse[h.ID-1]; idx >= 0 && idx < len(s.denseHandles) && s.denseHandles[idx] == h {
		s.denseStates[idx] = st
		return
	}
	s.denseHandles = append(s.denseHandles, h)
	s.denseStates = append(s.denseStates, st)
	s.sparse[h.ID-1] = len(s.denseHandles) - 1
}

func (s *stateStore) remove(h token.Handle) {
	if _, ok := s.get(h); !ok {
		return
	}
	idx := s.sparse[h.ID-1]
	last := len(s.denseHandles) - 1
	lastHandle := s.denseHandles[last]

	s.denseHandles[idx] = s.denseHandles[last]
	s.denseStates[idx] = s.denseStates[last]
	s.sparse[lastHandle.ID-1] = idx

	s.denseHandles = s.denseHandles[:last]
	s.denseStates = s.denseStates[:last]
	s.sparse[h.ID-1] = -1
}

func (s *stateStore) each(fn func(token.Handle, *MovementState)) {
	if s == nil || fn == nil {
		return
	}
	// Iterate over a snapshot of handles so an advancer removing its own
	// state cannot skew the walk.
	handles := append([]token.Handle(nil), s.denseHandles...)
	for _, h := range handles {
		if st, ok := s.get(h); ok {
			fn(h, st)
		}
	}
}
