package motion

import (
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/pcallahan/gridstage/token"
)

// behaviorRuntime holds a compiled tengo behavior attached to one token.
type behaviorRuntime struct {
	path      string
	compiled  *tengo.Compiled
	stateData *tengo.Map
	interval  float64
	countdown float64
	failed    bool
}

const behaviorDispatchScript = `
if __run {
	update(__engine, __token, __state)
}
`

// AttachBehavior compiles a tengo script from disk and runs its update
// function against the token every interval seconds. The script must
// define update(engine, token, state).
func (c *Coordinator) AttachBehavior(h token.Handle, path string, interval float64) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("motion: load behavior %s: %w", path, err)
	}
	return c.attachBehaviorSource(h, path, string(src), interval)
}

// AttachBehaviorSource is AttachBehavior for in-memory script source.
func (c *Coordinator) AttachBehaviorSource(h token.Handle, name, source string, interval float64) error {
	return c.attachBehaviorSource(h, name, source, interval)
}

func (c *Coordinator) attachBehaviorSource(h token.Handle, name, source string, interval float64) error {
	tok, ok := c.tokens.Get(h)
	if !ok {
		return fmt.Errorf("motion: attach behavior: no such token")
	}

	script := tengo.NewScript([]byte(source + "\n" + behaviorDispatchScript))
	_ = script.Add("__run", false)
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__token", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("motion: compile behavior %s: %w", name, err)
	}

	if interval <= 0 {
		interval = defaultBehaviorInterval
	}
	st := c.ensureState(h, tok)
	st.behavior = &behaviorRuntime{
		path:      name,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
		interval:  interval,
	}
	return nil
}

// DetachBehavior removes a token's behavior, if any.
func (c *Coordinator) DetachBehavior(h token.Handle) {
	if st, ok := c.states.get(h); ok {
		st.behavior = nil
	}
}

const defaultBehaviorInterval = 0.25

// runBehaviors ticks every attached behavior. Behaviors run before phase
// advancement so a navigation they request is honored the same frame.
func (c *Coordinator) runBehaviors(dt float64) {
	c.states.each(func(h token.Handle, st *MovementState) {
		rt := st.behavior
		if rt == nil || rt.failed {
			return
		}
		tok, ok := c.tokens.Get(h)
		if !ok {
			return
		}
		rt.countdown -= dt
		if rt.countdown > 0 {
			return
		}
		rt.countdown = rt.interval
		if err := c.runBehavior(h, tok, st, rt); err != nil {
			log.Printf("motion: behavior %s for token %d: %v", rt.path, h.ID, err)
			rt.failed = true
		}
	})
}

func (c *Coordinator) runBehavior(h token.Handle, tok *token.Token, st *MovementState, rt *behaviorRuntime) error {
	engine := c.behaviorEngine(h, st)
	tokenMap := &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"grid_x": &tengo.Int{Value: int64(tok.GridX)},
		"grid_y": &tengo.Int{Value: int64(tok.GridY)},
		"facing": &tengo.Float{Value: tok.FacingAngle},
		"phase":  &tengo.String{Value: st.phase.String()},
	}}

	if err := rt.compiled.Set("__run", true); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__token", tokenMap); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	return rt.compiled.Run()
}

func (c *Coordinator) behaviorEngine(h token.Handle, st *MovementState) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["navigate"] = &tengo.UserFunction{Name: "navigate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		gx, ok := tengo.ToInt(args[0])
		if !ok {
			return tengo.FalseValue, nil
		}
		gy, ok := tengo.ToInt(args[1])
		if !ok {
			return tengo.FalseValue, nil
		}
		var opts NavigateOptions
		if len(args) > 2 {
			if name, ok := tengo.ToString(args[2]); ok {
				mode := ParseSpeedMode(strings.TrimSpace(name))
				opts.PreferredSpeed = &mode
			}
		}
		if c.NavigateToGrid(h, gx, gy, opts) == nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["stop"] = &tengo.UserFunction{Name: "stop", Value: func(args ...tengo.Object) (tengo.Object, error) {
		c.StopToken(h)
		return tengo.TrueValue, nil
	}}

	values["rotate"] = &tengo.UserFunction{Name: "rotate", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		delta, ok := tengo.ToFloat64(args[0])
		if !ok || math.IsNaN(delta) {
			return tengo.FalseValue, nil
		}
		c.RotateToken(h, delta)
		return tengo.TrueValue, nil
	}}

	values["moving"] = &tengo.UserFunction{Name: "moving", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if st.phase != PhaseIdle && st.phase != PhaseStop {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}
