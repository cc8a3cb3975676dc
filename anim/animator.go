package anim

import "github.com/pcallahan/gridstage/grid"

// Animator drives one mesh's animation playback. It is deliberately small:
// the coordinator only needs clip selection with cross fades, elapsed-time
// tracking, and root-motion lookup.
type Animator struct {
	set *Set

	current  string
	elapsed  float64
	fadeLeft float64
	playing  bool

	// Transitions counts clip changes since creation.
	Transitions int
}

// NewAnimator creates an animator over a clip set.
func NewAnimator(set *Set) *Animator {
	return &Animator{set: set}
}

// Play switches to a clip with a fade-in, restarting it if already active
// and finished. Unknown clips are ignored.
func (a *Animator) Play(name string, fadeIn float64) {
	if a == nil {
		return
	}
	if _, ok := a.set.Clip(name); !ok {
		return
	}
	if a.current == name && a.playing {
		return
	}
	a.current = name
	a.elapsed = 0
	if fadeIn < 0 {
		fadeIn = 0
	}
	a.fadeLeft = fadeIn
	a.playing = true
	a.Transitions++
}

// Stop halts playback without changing the selected clip.
func (a *Animator) Stop() {
	if a != nil {
		a.playing = false
	}
}

// Update advances playback by dt seconds.
func (a *Animator) Update(dt float64) {
	if a == nil || !a.playing || dt <= 0 {
		return
	}
	if a.fadeLeft > 0 {
		a.fadeLeft -= dt
		if a.fadeLeft < 0 {
			a.fadeLeft = 0
		}
	}
	a.elapsed += dt
	clip, ok := a.set.Clip(a.current)
	if !ok || clip.Duration <= 0 {
		return
	}
	if a.elapsed >= clip.Duration {
		if clip.Loop {
			for a.elapsed >= clip.Duration {
				a.elapsed -= clip.Duration
			}
		} else {
			a.elapsed = clip.Duration
			a.playing = false
		}
	}
}

// Current returns the active clip name.
func (a *Animator) Current() string {
	if a == nil {
		return ""
	}
	return a.current
}

// Playing reports whether a clip is running.
func (a *Animator) Playing() bool {
	return a != nil && a.playing
}

// Finished reports that a non-looping clip ran to its end.
func (a *Animator) Finished() bool {
	if a == nil || a.playing {
		return false
	}
	clip, ok := a.set.Clip(a.current)
	if !ok {
		return false
	}
	return !clip.Loop && a.elapsed >= clip.Duration
}

// ClipDuration returns a clip's duration, or 0 when unknown.
func (a *Animator) ClipDuration(name string) float64 {
	if a == nil {
		return 0
	}
	clip, ok := a.set.Clip(name)
	if !ok {
		return 0
	}
	return clip.Duration
}

// RootMotion returns the displacement baked into a clip, zero when unknown.
// The caller is responsible for sanitizing it; authored data can carry
// outliers.
func (a *Animator) RootMotion(name string) grid.Vec3 {
	if a == nil {
		return grid.Vec3{}
	}
	clip, ok := a.set.Clip(name)
	if !ok {
		return grid.Vec3{}
	}
	return clip.RootMotion
}
