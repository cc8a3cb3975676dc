package motion

import (
	"fmt"
	"log"

	"github.com/pcallahan/gridstage/anim"
	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/scene"
	"github.com/pcallahan/gridstage/token"
)

// Params wires a coordinator to its collaborators.
type Params struct {
	Board    *grid.Board
	Terrain  grid.HeightSource
	Stage    *scene.Stage
	Clips    *anim.Registry
	Profiles *anim.Library
	Models   scene.ModelSource

	// Config zero value means DefaultConfig.
	Config Config

	// AsyncModelLoad loads model resources off the frame loop; completion
	// is applied at the start of a later frame after a liveness check.
	AsyncModelLoad bool
}

type meshResult struct {
	h     token.Handle
	model *scene.Model
	err   error
}

// Coordinator owns every token's movement state and mesh, advancing them all
// from a single per-frame callback.
type Coordinator struct {
	board    *grid.Board
	terrain  grid.HeightSource
	stage    *scene.Stage
	clips    *anim.Registry
	profiles *anim.Library
	models   scene.ModelSource
	cfg      Config
	async    bool

	tokens *token.Collection
	states stateStore

	facingLeft bool
	frame      uint64
	log        *PathLog

	meshResults chan meshResult
	unregister  func()

	selected  token.Handle
	indicator *scene.Node
}

// NewCoordinator validates the tuning and registers the per-frame callback.
func NewCoordinator(p Params) (*Coordinator, error) {
	if p.Board == nil || p.Stage == nil {
		return nil, fmt.Errorf("motion: board and stage are required")
	}
	cfg := p.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clips := p.Clips
	if clips == nil {
		clips = anim.NewRegistry()
	}
	profiles := p.Profiles
	if profiles == nil {
		profiles = anim.NewLibrary()
	}

	c := &Coordinator{
		board:       p.Board,
		terrain:     p.Terrain,
		stage:       p.Stage,
		clips:       clips,
		profiles:    profiles,
		models:      p.Models,
		cfg:         cfg,
		async:       p.AsyncModelLoad,
		tokens:      token.NewCollection(),
		log:         &PathLog{},
		meshResults: make(chan meshResult, 32),
	}
	c.tokens.OnRemove(c.handleRemove)
	c.unregister = p.Stage.OnFrame(c.advance)
	return c, nil
}

// Close unregisters the frame callback. Tokens and their meshes survive
// until removed.
func (c *Coordinator) Close() {
	if c != nil && c.unregister != nil {
		c.unregister()
		c.unregister = nil
	}
}

// Tokens exposes the collection, e.g. for the demo viewer.
func (c *Coordinator) Tokens() *token.Collection {
	if c == nil {
		return nil
	}
	return c.tokens
}

// Config returns the active tuning.
func (c *Coordinator) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// State returns the movement state for a token, if navigation ever created
// one.
func (c *Coordinator) State(h token.Handle) (*MovementState, bool) {
	if c == nil {
		return nil, false
	}
	return c.states.get(h)
}

// PlaceToken adds a token at a cell and starts its mesh load. Out-of-bounds
// placement returns an invalid handle.
func (c *Coordinator) PlaceToken(kind string, gx, gy int) token.Handle {
	if c == nil || !c.board.InBounds(gx, gy) {
		return token.Handle{}
	}
	level := c.terrainHeight(gx, gy)
	world := c.board.GridToWorld(gx, gy, level)
	tok := &token.Token{
		Kind:  kind,
		GridX: gx,
		GridY: gy,
		World: world,
		Sprite: &token.Sprite{
			X:      world.X,
			Y:      world.Z,
			ScaleX: 1,
			ScaleY: 1,
		},
	}
	h := c.tokens.Place(tok)
	c.requestMesh(h, kind)
	return h
}

// RemoveToken removes a token, disposing its mesh. Stale handles no-op.
func (c *Coordinator) RemoveToken(h token.Handle) bool {
	if c == nil {
		return false
	}
	return c.tokens.Remove(h)
}

func (c *Coordinator) handleRemove(h token.Handle, tok *token.Token) {
	if c.selected == h {
		c.SetSelectedToken(token.Handle{})
	}
	if tok.Mesh != nil {
		c.stage.Remove(tok.Mesh)
		tok.Mesh.Dispose()
		tok.Mesh = nil
	}
	c.states.remove(h)
}

func (c *Coordinator) requestMesh(h token.Handle, kind string) {
	if c.models == nil {
		return
	}
	if !c.async {
		model, err := c.models.Load(kind)
		c.applyMeshResult(meshResult{h: h, model: model, err: err})
		return
	}
	go func() {
		model, err := c.models.Load(kind)
		c.meshResults <- meshResult{h: h, model: model, err: err}
	}()
}

func (c *Coordinator) drainMeshResults() {
	for {
		select {
		case r := <-c.meshResults:
			c.applyMeshResult(r)
		default:
			return
		}
	}
}

func (c *Coordinator) applyMeshResult(r meshResult) {
	if r.err != nil {
		// Degrade to no mesh; the 2D companion stays fully functional.
		log.Printf("motion: model load for token %d: %v", r.h.ID, r.err)
		return
	}
	tok, ok := c.tokens.Get(r.h)
	if !ok {
		// Token removed while its model was still loading; never attach a
		// late mesh, just release what was built.
		r.model.Geometry.Dispose()
		r.model.Material.Dispose()
		return
	}
	if tok.Mesh != nil {
		return
	}
	st := c.ensureState(r.h, tok)
	node := scene.NewNode("token_" + r.model.Kind)
	node.Geometry = r.model.Geometry
	node.Material = r.model.Material
	tok.MeshBaseYaw = r.model.BaseYaw + st.profile.BaseYawOffset
	tok.MeshHeightOff = r.model.HeightOff
	c.stage.Add(node)
	tok.Mesh = node
	c.placeMesh(tok)
	c.updateOrientation(tok)
	if c.selected == r.h {
		c.attachIndicator(tok)
	}
}

// placeMesh snaps the mesh to the token's authoritative world position.
func (c *Coordinator) placeMesh(tok *token.Token) {
	if tok != nil {
		c.setMeshWorld(tok, tok.World)
	}
}

// setMeshWorld moves only the visual mesh; authoritative token state is
// untouched.
func (c *Coordinator) setMeshWorld(tok *token.Token, pos grid.Vec3) {
	if tok != nil && tok.Mesh != nil {
		pos.Y += tok.MeshHeightOff
		tok.Mesh.SetWorldPosition(pos)
	}
}

// advance is the per-frame callback: apply finished mesh loads, run
// behaviors (navigation requested this frame is visible to this frame's
// advancement), then advance every state one tick.
func (c *Coordinator) advance(dt float64) {
	if c == nil || dt <= 0 {
		return
	}
	c.frame++
	c.drainMeshResults()
	c.runBehaviors(dt)

	c.states.each(func(h token.Handle, st *MovementState) {
		tok, ok := c.tokens.Get(h)
		if !ok {
			c.states.remove(h)
			return
		}
		if tok.Mesh == nil {
			// Mesh still loading (or failed); skip phase advancement.
			return
		}
		ctx := &phaseContext{c: c, h: h, tok: tok, st: st, dt: dt}
		advancerFor(st.phase).Update(ctx)
		if st.animator != nil {
			st.animator.Update(dt)
		}
		if !st.intentHold {
			st.moveSign = 0
		}
	})
}

// ensureState creates the movement state on first use, resolving the
// profile once.
func (c *Coordinator) ensureState(h token.Handle, tok *token.Token) *MovementState {
	if st, ok := c.states.get(h); ok {
		return st
	}
	st := &MovementState{
		phase:   PhaseIdle,
		profile: c.profiles.Resolve(tok.Kind),
	}
	set, ok := c.clips.Set(tok.Kind)
	if !ok {
		set = anim.NewSet()
	}
	st.animator = anim.NewAnimator(set)
	c.states.set(h, st)
	return st
}

// ReloadProfiles re-reads authored timing from a YAML file and pushes the
// result into every live movement state, so an edit reaches tokens placed
// long before it. Mesh yaw picks up a changed base offset immediately.
func (c *Coordinator) ReloadProfiles(filename string) error {
	if err := c.profiles.Reload(filename); err != nil {
		return err
	}
	c.states.each(func(h token.Handle, st *MovementState) {
		tok, ok := c.tokens.Get(h)
		if !ok {
			return
		}
		old := st.profile
		st.profile = c.profiles.Resolve(tok.Kind)
		if tok.Mesh != nil && st.profile.BaseYawOffset != old.BaseYawOffset {
			tok.MeshBaseYaw += st.profile.BaseYawOffset - old.BaseYawOffset
			c.updateOrientation(tok)
		}
	})
	return nil
}

// SetMovementIntent sets held directional intent: sign > 0 walks forward
// along facing, sign < 0 backward. hold keeps the intent across frames.
func (c *Coordinator) SetMovementIntent(h token.Handle, sign int, hold bool) {
	tok, ok := c.tokens.Get(h)
	if !ok {
		return
	}
	st := c.ensureState(h, tok)
	st.moveSign = sign
	st.intentHold = hold && sign != 0
	if sign != 0 {
		st.pendingStop = false
	}
}

// StopToken requests a stop. If the token's world authority is locked the
// animation side effects are deferred to the unlock.
func (c *Coordinator) StopToken(h token.Handle) {
	tok, ok := c.tokens.Get(h)
	if !ok {
		return
	}
	st, ok := c.states.get(h)
	if !ok {
		return
	}
	st.moveSign = 0
	st.intentHold = false
	if tok.WorldLocked() {
		// An airborne or otherwise world-locked token keeps its trajectory;
		// the stop side effects apply when authority is released.
		c.resetMovementState(h, tok, st, ResetOptions{
			ClearGoal:   true,
			ClearResume: true,
			ClearStop:   true,
			BlendToIdle: true,
		})
		return
	}
	st.goal = nil
	st.resumeGoal = nil
	st.climbQueue = nil
	if st.phase == PhaseIdle || st.phase == PhaseStop {
		return
	}
	st.pendingStop = true
}

// SetSelectedToken parents the selection indicator under the token's mesh;
// an invalid handle just detaches it. Materials are never touched.
func (c *Coordinator) SetSelectedToken(h token.Handle) {
	if c == nil {
		return
	}
	if c.indicator != nil && c.indicator.Parent() != nil {
		c.indicator.Parent().RemoveChild(c.indicator)
	}
	c.selected = token.Handle{}
	tok, ok := c.tokens.Get(h)
	if !ok {
		return
	}
	c.selected = h
	c.attachIndicator(tok)
}

// SelectedToken returns the current selection.
func (c *Coordinator) SelectedToken() token.Handle {
	if c == nil {
		return token.Handle{}
	}
	return c.selected
}

func (c *Coordinator) attachIndicator(tok *token.Token) {
	if tok.Mesh == nil {
		return
	}
	if c.indicator == nil {
		c.indicator = scene.NewNode("selection_indicator")
	}
	tok.Mesh.AddChild(c.indicator)
}

// SetPathingLoggingEnabled toggles the diagnostics archive.
func (c *Coordinator) SetPathingLoggingEnabled(enabled bool) {
	c.log.SetEnabled(enabled)
}

// PathingLogArchive returns a copy of the archived pathing events.
func (c *Coordinator) PathingLogArchive() []PathEvent {
	return c.log.Archive()
}

// ClearPathingLogArchive drops the archive.
func (c *Coordinator) ClearPathingLogArchive() {
	c.log.Clear()
}

// PathingLogDump renders the archive for export.
func (c *Coordinator) PathingLogDump() string {
	return c.log.Dump()
}
