package anim

import "github.com/pcallahan/gridstage/grid"

// Clip is one named animation with its timing and any root motion the
// authoring tool baked into it.
type Clip struct {
	Name       string
	Duration   float64
	Loop       bool
	RootMotion grid.Vec3
}

// Set holds the clips available for one creature kind.
type Set struct {
	clips map[string]*Clip
}

// NewSet creates an empty clip set.
func NewSet() *Set {
	return &Set{clips: make(map[string]*Clip)}
}

// Register adds a clip to the set.
func (s *Set) Register(c *Clip) {
	if s == nil || c == nil || c.Name == "" {
		return
	}
	s.clips[c.Name] = c
}

// Clip returns a clip by name.
func (s *Set) Clip(name string) (*Clip, bool) {
	if s == nil || name == "" {
		return nil, false
	}
	c, ok := s.clips[name]
	return c, ok
}

// Registry stores clip sets by creature kind.
type Registry struct {
	sets map[string]*Set
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*Set)}
}

// Register adds a clip set for a kind.
func (r *Registry) Register(kind string, s *Set) {
	if r == nil || kind == "" || s == nil {
		return
	}
	r.sets[kind] = s
}

// Set returns the clip set for a kind.
func (r *Registry) Set(kind string) (*Set, bool) {
	if r == nil || kind == "" {
		return nil, false
	}
	s, ok := r.sets[kind]
	return s, ok
}

// Clip resolves a clip by kind and name.
func (r *Registry) Clip(kind, name string) (*Clip, bool) {
	s, ok := r.Set(kind)
	if !ok {
		return nil, false
	}
	return s.Clip(name)
}
