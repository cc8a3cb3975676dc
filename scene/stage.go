package scene

import "github.com/pcallahan/gridstage/grid"

// FrameFunc is invoked once per rendered frame with elapsed seconds.
type FrameFunc func(dt float64)

// Camera is the viewer pose, exposed for look-direction queries.
type Camera struct {
	Position grid.Vec3
	Yaw      float64
	Pitch    float64
}

// Stage owns the scene root and the per-frame callback order. Callbacks run
// in registration order; registering returns an unregister handle.
type Stage struct {
	root   *Node
	camera Camera

	frameFuncs map[int]FrameFunc
	frameOrder []int
	nextFrame  int
}

// NewStage creates an empty stage.
func NewStage() *Stage {
	return &Stage{
		root:       NewNode("root"),
		frameFuncs: make(map[int]FrameFunc),
	}
}

// Root returns the scene root node.
func (s *Stage) Root() *Node {
	if s == nil {
		return nil
	}
	return s.root
}

// Camera returns the current camera pose.
func (s *Stage) Camera() Camera {
	if s == nil {
		return Camera{}
	}
	return s.camera
}

// SetCamera replaces the camera pose.
func (s *Stage) SetCamera(c Camera) {
	if s == nil {
		return
	}
	s.camera = c
}

// Add attaches a node under the scene root.
func (s *Stage) Add(n *Node) {
	if s == nil || n == nil {
		return
	}
	s.root.AddChild(n)
}

// Remove detaches a node from its parent, wherever it hangs in the graph.
func (s *Stage) Remove(n *Node) {
	if s == nil || n == nil {
		return
	}
	if p := n.Parent(); p != nil {
		p.RemoveChild(n)
	}
}

// OnFrame registers a per-frame callback and returns its unregister handle.
// Unregistering during a frame takes effect on the next frame.
func (s *Stage) OnFrame(fn FrameFunc) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	id := s.nextFrame
	s.nextFrame++
	s.frameFuncs[id] = fn
	s.frameOrder = append(s.frameOrder, id)
	return func() {
		delete(s.frameFuncs, id)
	}
}

// Step runs one frame: every registered callback in order.
func (s *Stage) Step(dt float64) {
	if s == nil {
		return
	}
	live := s.frameOrder[:0]
	for _, id := range s.frameOrder {
		if _, ok := s.frameFuncs[id]; ok {
			live = append(live, id)
		}
	}
	s.frameOrder = live
	for _, id := range s.frameOrder {
		if fn, ok := s.frameFuncs[id]; ok {
			fn(dt)
		}
	}
}
