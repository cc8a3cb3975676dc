package anim

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProfileNormalizeFillsDefaults(t *testing.T) {
	p := Profile{WalkSpeed: 2.5}.normalize()
	def := DefaultProfile()

	if p.WalkSpeed != 2.5 {
		t.Fatalf("authored walk speed overwritten: %v", p.WalkSpeed)
	}
	if p.FadeIn != def.FadeIn || p.IdleClip != def.IdleClip {
		t.Fatalf("zero fields should fall back to defaults: %+v", p)
	}
	if !(p.SprintMultiplier > p.RunMultiplier && p.RunMultiplier > 1) {
		t.Fatalf("speed multipliers should stay ordered: run=%v sprint=%v", p.RunMultiplier, p.SprintMultiplier)
	}
}

func TestLibraryResolveCachesAndFallsBack(t *testing.T) {
	l := NewLibrary()
	l.Put("goblin", Profile{WalkSpeed: 4})

	got := l.Resolve("goblin")
	if got.WalkSpeed != 4 {
		t.Fatalf("Resolve(goblin).WalkSpeed = %v, want 4", got.WalkSpeed)
	}

	other := l.Resolve("unknown_kind")
	if other.WalkSpeed != DefaultProfile().WalkSpeed {
		t.Fatalf("unknown kind should resolve to defaults, got %+v", other)
	}

	// Replacing an authored profile must invalidate the cache.
	l.Put("goblin", Profile{WalkSpeed: 6})
	if got := l.Resolve("goblin"); got.WalkSpeed != 6 {
		t.Fatalf("stale cache after Put: %v", got.WalkSpeed)
	}
}

func TestLoadLibraryFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	data := []byte(`profiles:
  humanoid:
    walk_speed: 1.8
    fall_loop_min_drop: 2.0
    land_clip: landing
  wolf:
    walk_speed: 3.1
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}

	h := l.Resolve("humanoid")
	if h.WalkSpeed != 1.8 || h.FallLoopMinDrop != 2.0 || h.LandClip != "landing" {
		t.Fatalf("humanoid profile = %+v", h)
	}
	if h.RollClip != DefaultProfile().RollClip {
		t.Fatalf("missing fields should default, got %q", h.RollClip)
	}
	if w := l.Resolve("wolf"); w.WalkSpeed != 3.1 {
		t.Fatalf("wolf profile = %+v", w)
	}
}

func TestLoadLibraryMissingFile(t *testing.T) {
	if _, err := LoadLibrary(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestAnimatorPlaybackAndTransitions(t *testing.T) {
	set := NewSet()
	set.Register(&Clip{Name: "idle", Duration: 1, Loop: true})
	set.Register(&Clip{Name: "land", Duration: 0.5})

	a := NewAnimator(set)
	a.Play("idle", 0.1)
	a.Play("idle", 0.1) // re-playing the active clip is a no-op
	if a.Transitions != 1 {
		t.Fatalf("Transitions = %d, want 1", a.Transitions)
	}

	a.Play("land", 0)
	if a.Transitions != 2 {
		t.Fatalf("Transitions = %d, want 2", a.Transitions)
	}

	a.Update(0.3)
	if a.Finished() {
		t.Fatalf("clip should still be playing at 0.3/0.5")
	}
	a.Update(0.3)
	if !a.Finished() {
		t.Fatalf("non-looping clip should finish after its duration")
	}

	a.Play("unknown", 0)
	if a.Transitions != 2 {
		t.Fatalf("unknown clip must not count as a transition")
	}
}
