package anim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the resolved per-creature movement/animation timing. The
// coordinator resolves it once per token and caches it on the movement state.
type Profile struct {
	FadeIn      float64 `yaml:"fade_in"`
	FadeOut     float64 `yaml:"fade_out"`
	StopFadeOut float64 `yaml:"stop_fade_out"`

	WalkSpeed        float64 `yaml:"walk_speed"`
	RunMultiplier    float64 `yaml:"run_multiplier"`
	SprintMultiplier float64 `yaml:"sprint_multiplier"`
	ClimbSpeed       float64 `yaml:"climb_speed"`

	// FallLoopMinDrop gates the aerial fall loop: shallower drops resolve
	// their landing in the same tick they leave the ledge.
	FallLoopMinDrop float64 `yaml:"fall_loop_min_drop"`

	RollDuration float64 `yaml:"roll_duration"`
	RollDistance float64 `yaml:"roll_distance"`

	// BaseYawOffset corrects models authored facing a different axis.
	BaseYawOffset float64 `yaml:"base_yaw_offset"`

	IdleClip     string `yaml:"idle_clip"`
	WalkClip     string `yaml:"walk_clip"`
	ClimbClip    string `yaml:"climb_clip"`
	FallLoopClip string `yaml:"fall_loop_clip"`
	LandClip     string `yaml:"land_clip"`
	HardLandClip string `yaml:"hard_land_clip"`
	RollClip     string `yaml:"roll_clip"`
}

// DefaultProfile returns the timing used when a kind has no authored profile.
func DefaultProfile() Profile {
	return Profile{
		FadeIn:           0.15,
		FadeOut:          0.2,
		StopFadeOut:      0.25,
		WalkSpeed:        1.6,
		RunMultiplier:    2.0,
		SprintMultiplier: 3.2,
		ClimbSpeed:       1.0,
		FallLoopMinDrop:  1.5,
		RollDuration:     0.7,
		RollDistance:     1.2,
		IdleClip:         "idle",
		WalkClip:         "walk",
		ClimbClip:        "climb",
		FallLoopClip:     "fall_loop",
		LandClip:         "land",
		HardLandClip:     "land_hard",
		RollClip:         "roll",
	}
}

// normalize fills zero fields from the defaults so partial YAML profiles
// stay usable.
func (p Profile) normalize() Profile {
	def := DefaultProfile()
	if p.FadeIn <= 0 {
		p.FadeIn = def.FadeIn
	}
	if p.FadeOut <= 0 {
		p.FadeOut = def.FadeOut
	}
	if p.StopFadeOut <= 0 {
		p.StopFadeOut = def.StopFadeOut
	}
	if p.WalkSpeed <= 0 {
		p.WalkSpeed = def.WalkSpeed
	}
	if p.RunMultiplier <= 1 {
		p.RunMultiplier = def.RunMultiplier
	}
	if p.SprintMultiplier <= p.RunMultiplier {
		p.SprintMultiplier = def.SprintMultiplier
	}
	if p.ClimbSpeed <= 0 {
		p.ClimbSpeed = def.ClimbSpeed
	}
	if p.FallLoopMinDrop <= 0 {
		p.FallLoopMinDrop = def.FallLoopMinDrop
	}
	if p.RollDuration <= 0 {
		p.RollDuration = def.RollDuration
	}
	if p.RollDistance <= 0 {
		p.RollDistance = def.RollDistance
	}
	if p.IdleClip == "" {
		p.IdleClip = def.IdleClip
	}
	if p.WalkClip == "" {
		p.WalkClip = def.WalkClip
	}
	if p.ClimbClip == "" {
		p.ClimbClip = def.ClimbClip
	}
	if p.FallLoopClip == "" {
		p.FallLoopClip = def.FallLoopClip
	}
	if p.LandClip == "" {
		p.LandClip = def.LandClip
	}
	if p.HardLandClip == "" {
		p.HardLandClip = def.HardLandClip
	}
	if p.RollClip == "" {
		p.RollClip = def.RollClip
	}
	return p
}

// ProfileFile is the on-disk YAML layout: profiles keyed by creature kind.
type ProfileFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadSpec reads and unmarshals one YAML file into T.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := os.ReadFile(filename)
	if err != nil {
		return zero, fmt.Errorf("anim: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("anim: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

// Library resolves and caches profiles by creature kind, falling back to the
// defaults for kinds with no authored entry.
type Library struct {
	authored map[string]Profile
	resolved map[string]Profile
}

// NewLibrary creates a library with no authored profiles.
func NewLibrary() *Library {
	return &Library{
		authored: make(map[string]Profile),
		resolved: make(map[string]Profile),
	}
}

// LoadLibrary reads a profile YAML file into a fresh library.
func LoadLibrary(filename string) (*Library, error) {
	spec, err := LoadSpec[ProfileFile](filename)
	if err != nil {
		return nil, err
	}
	l := NewLibrary()
	for kind, p := range spec.Profiles {
		l.authored[kind] = p
	}
	return l, nil
}

// Put registers or replaces an authored profile and drops the stale cache
// entry.
func (l *Library) Put(kind string, p Profile) {
	if l == nil || kind == "" {
		return
	}
	l.authored[kind] = p
	delete(l.resolved, kind)
}

// Resolve returns the normalized profile for a kind, caching the result.
func (l *Library) Resolve(kind string) Profile {
	if l == nil {
		return DefaultProfile()
	}
	if p, ok := l.resolved[kind]; ok {
		return p
	}
	p, ok := l.authored[kind]
	if !ok {
		p = DefaultProfile()
	}
	p = p.normalize()
	l.resolved[kind] = p
	return p
}

// Reload replaces all authored profiles from a YAML file, clearing the cache.
func (l *Library) Reload(filename string) error {
	if l == nil {
		return nil
	}
	spec, err := LoadSpec[ProfileFile](filename)
	if err != nil {
		return err
	}
	l.authored = make(map[string]Profile, len(spec.Profiles))
	for kind, p := range spec.Profiles {
		l.authored[kind] = p
	}
	l.resolved = make(map[string]Profile)
	return nil
}
