package motion

import (
	"math"

	"github.com/pcallahan/gridstage/grid"
	"github.com/pcallahan/gridstage/token"
)

// SetFacingLeft flips every token's visual facing. Left-facing adds a half
// turn to mesh yaw and mirrors each companion sprite horizontally.
func (c *Coordinator) SetFacingLeft(left bool) {
	if c == nil || c.facingLeft == left {
		return
	}
	c.facingLeft = left
	c.tokens.Each(func(h token.Handle, tok *token.Token) {
		c.updateOrientation(tok)
	})
}

// FacingLeft returns the global flip flag.
func (c *Coordinator) FacingLeft() bool {
	return c != nil && c.facingLeft
}

// UpdateTokenOrientation syncs mesh yaw and companion-sprite mirroring with
// the token's logical facing. Missing mesh or sprite pieces are tolerated.
func (c *Coordinator) UpdateTokenOrientation(h token.Handle) {
	tok, ok := c.tokens.Get(h)
	if !ok {
		return
	}
	c.updateOrientation(tok)
}

func (c *Coordinator) updateOrientation(tok *token.Token) {
	if c == nil || tok == nil {
		return
	}
	if tok.Mesh != nil {
		yaw := tok.MeshBaseYaw + tok.FacingAngle
		if c.facingLeft {
			yaw += math.Pi
		}
		tok.Mesh.Yaw = grid.NormalizeAngle(yaw)
	}
	if tok.Sprite != nil {
		tok.Sprite.Rotation = tok.FacingAngle
		mag := math.Abs(tok.Sprite.ScaleX)
		if mag == 0 {
			mag = 1
		}
		if c.facingLeft {
			tok.Sprite.ScaleX = -mag
		} else {
			tok.Sprite.ScaleX = mag
		}
	}
}

// RotateToken adds delta radians to the token's facing, normalized into
// (-pi, pi], and refreshes orientation.
func (c *Coordinator) RotateToken(h token.Handle, delta float64) {
	tok, ok := c.tokens.Get(h)
	if !ok {
		return
	}
	tok.FacingAngle = grid.NormalizeAngle(tok.FacingAngle + delta)
	c.updateOrientation(tok)
}

// faceToward turns the token's facing toward a planar direction at the
// configured turn rate, refreshing orientation when it moved.
func (c *Coordinator) faceToward(tok *token.Token, targetAngle, dt float64) {
	diff := grid.NormalizeAngle(targetAngle - tok.FacingAngle)
	if diff == 0 {
		return
	}
	maxTurn := c.cfg.TurnRate * dt
	if math.Abs(diff) <= maxTurn {
		tok.FacingAngle = grid.NormalizeAngle(targetAngle)
	} else if diff > 0 {
		tok.FacingAngle = grid.NormalizeAngle(tok.FacingAngle + maxTurn)
	} else {
		tok.FacingAngle = grid.NormalizeAngle(tok.FacingAngle - maxTurn)
	}
	c.updateOrientation(tok)
}

// angleToward computes the facing angle that looks from one world point at
// another on the XZ plane.
func angleToward(from, to grid.Vec3) float64 {
	return grid.NormalizeAngle(math.Atan2(to.X-from.X, to.Z-from.Z))
}
