package token

import (
	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/scene"
)

// Handle identifies a token across its whole lifetime. The generation is
// bumped on removal so a stale handle (or a late async mesh load) can never
// reach a recycled slot.
type Handle struct {
	ID  int
	Gen int
}

// Valid reports whether the handle was ever issued.
func (h Handle) Valid() bool {
	return h.ID > 0
}

// Sprite is the 2D companion transform. It is owned outside the coordinator;
// the coordinator only writes Rotation and the sign of ScaleX.
type Sprite struct {
	X        float64
	Y        float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
}

// Token is one placed creature/unit. Grid coordinates and world position are
// authoritative game state; the coordinator updates them only while it holds
// world authority for the token.
type Token struct {
	Kind        string
	GridX       int
	GridY       int
	World       grid.Vec3
	FacingAngle float64

	// Mesh is nil until its async model load completes, and stays nil when
	// loading fails; the sprite remains fully functional either way.
	Mesh   *scene.Node
	Sprite *Sprite

	// MeshBaseYaw corrects for the model's authored forward axis, plus any
	// per-kind profile offset; set when the mesh attaches.
	MeshBaseYaw float64

	// MeshHeightOff lifts the mesh above the authoritative world position,
	// for models authored with their origin away from the feet.
	MeshHeightOff float64

	worldLock int
}

// LockWorldAuthority increments the reentrant world lock and returns the new
// depth.
func (t *Token) LockWorldAuthority() int {
	if t == nil {
		return 0
	}
	t.worldLock++
	return t.worldLock
}

// UnlockWorldAuthority decrements the lock, never below zero, and returns
// the remaining depth.
func (t *Token) UnlockWorldAuthority() int {
	if t == nil {
		return 0
	}
	if t.worldLock > 0 {
		t.worldLock--
	}
	return t.worldLock
}

// WorldLocked reports whether any holder still owns the token's transform.
func (t *Token) WorldLocked() bool {
	return t != nil && t.worldLock > 0
}

// WorldLockDepth returns the current reentrancy depth.
func (t *Token) WorldLockDepth() int {
	if t == nil {
		return 0
	}
	return t.worldLock
}
