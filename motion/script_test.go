package motion

import "testing"

const patrolScript = `
update := func(engine, token, state) {
	if is_undefined(state.leg) {
		state.leg = 0
	}
	if engine.moving() {
		return
	}
	if state.leg % 2 == 0 {
		engine.navigate(8, 2, "walk")
	} else {
		engine.navigate(2, 2)
	}
	state.leg += 1
}
`

func TestBehaviorDrivesPatrol(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 2, 2)
	tok, _ := f.c.Tokens().Get(h)

	if err := f.c.AttachBehaviorSource(h, "patrol", patrolScript, 0.1); err != nil {
		t.Fatalf("attach: %v", err)
	}

	// First leg: out to (8,2).
	f.run(t, 1200, func() bool { return tok.GridX == 8 && tok.GridY == 2 })
	// Second leg: the script turns the token around.
	f.run(t, 1200, func() bool { return tok.GridX == 2 && tok.GridY == 2 })
}

func TestBehaviorCompileError(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 2, 2)

	if err := f.c.AttachBehaviorSource(h, "broken", `update := func(`, 0.1); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestBehaviorRuntimeErrorDropsBehavior(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 2, 2)

	// Selecting a missing field only yields undefined; calling it is what
	// actually raises at runtime.
	src := `
update := func(engine, token, state) {
	token.no_such_method()
}
`
	if err := f.c.AttachBehaviorSource(h, "faulty", src, 0.01); err != nil {
		t.Fatalf("attach: %v", err)
	}

	for i := 0; i < 10; i++ {
		f.stage.Step(frameDT)
	}
	st, _ := f.c.State(h)
	if st.behavior == nil || !st.behavior.failed {
		t.Fatal("erroring behavior must be disabled after its first failure")
	}
}

func TestDetachBehavior(t *testing.T) {
	f := newFixture(t)
	h := f.c.PlaceToken("grunt", 2, 2)

	if err := f.c.AttachBehaviorSource(h, "patrol", patrolScript, 0.1); err != nil {
		t.Fatalf("attach: %v", err)
	}
	f.c.DetachBehavior(h)
	st, _ := f.c.State(h)
	if st.behavior != nil {
		t.Fatal("behavior still attached")
	}
}
