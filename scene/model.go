package scene

import "fmt"

// Model bundles the loaded pieces a token mesh is built from.
type Model struct {
	Kind      string
	Geometry  *Geometry
	Material  *Material
	BaseYaw   float64
	HeightOff float64
}

// ModelSource loads model resources for a creature kind. Load may block;
// callers run it off the frame loop and apply the result on a later frame.
type ModelSource interface {
	Load(kind string) (*Model, error)
}

// StaticModelSource serves models from a fixed catalog, for tests and the
// demo viewer.
type StaticModelSource struct {
	BaseYawByKind   map[string]float64
	HeightOffByKind map[string]float64
}

// Load builds fresh geometry/material handles for the kind.
func (s *StaticModelSource) Load(kind string) (*Model, error) {
	if kind == "" {
		return nil, fmt.Errorf("scene: empty model kind")
	}
	var baseYaw, heightOff float64
	if s != nil {
		baseYaw = s.BaseYawByKind[kind]
		heightOff = s.HeightOffByKind[kind]
	}
	return &Model{
		Kind:      kind,
		Geometry:  &Geometry{Name: kind + "_geo"},
		Material:  &Material{Name: kind + "_mat"},
		BaseYaw:   baseYaw,
		HeightOff: heightOff,
	}, nil
}

// FailingModelSource always fails; tokens degrade to their 2D companion.
type FailingModelSource struct {
	Err error
}

func (s *FailingModelSource) Load(kind string) (*Model, error) {
	if s != nil && s.Err != nil {
		return nil, s.Err
	}
	return nil, fmt.Errorf("scene: model %q unavailable", kind)
}
