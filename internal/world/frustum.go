package world

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Clip distances used by rl.BeginMode3D.
const (
	viewNear = 0.01
	viewFar  = 1000.0
)

// Frustum culls holds against the camera view. Each plane is stored as
// (normal, d) with the normal pointing inward, so a point p is inside when
// dot(normal, p) + d >= 0 for all six.
type Frustum struct {
	planes [6]rl.Vector4
}

// ExtractFrustum builds the view frustum of cam from its view-projection
// matrix. aspect is viewport width over height.
func ExtractFrustum(cam rl.Camera3D, aspect float32) Frustum {
	vp := rl.MatrixToFloatV(rl.MatrixMultiply(rl.GetCameraMatrix(cam), projection(cam, aspect)))
	column := func(c int) rl.Vector4 {
		return rl.Vector4{X: vp[c], Y: vp[c+4], Z: vp[c+8], W: vp[c+12]}
	}

	var f Frustum
	w := column(3)
	for axis := range 3 {
		c := column(axis)
		f.planes[2*axis] = normalizePlane(rl.Vector4{X: w.X + c.X, Y: w.Y + c.Y, Z: w.Z + c.Z, W: w.W + c.W})
		f.planes[2*axis+1] = normalizePlane(rl.Vector4{X: w.X - c.X, Y: w.Y - c.Y, Z: w.Z - c.Z, W: w.W - c.W})
	}
	return f
}

func projection(cam rl.Camera3D, aspect float32) rl.Matrix {
	if cam.Projection == rl.CameraOrthographic {
		top := cam.Fovy / 2
		right := top * aspect
		return rl.MatrixOrtho(-right, right, -top, top, viewNear, viewFar)
	}
	return rl.MatrixPerspective(cam.Fovy*rl.Deg2rad, aspect, viewNear, viewFar)
}

func normalizePlane(p rl.Vector4) rl.Vector4 {
	n := rl.Vector3Length(rl.Vector3{X: p.X, Y: p.Y, Z: p.Z})
	if n == 0 {
		return p
	}
	return rl.Vector4{X: p.X / n, Y: p.Y / n, Z: p.Z / n, W: p.W / n}
}

func (f *Frustum) distance(i int, p rl.Vector3) float32 {
	pl := f.planes[i]
	return pl.X*p.X + pl.Y*p.Y + pl.Z*p.Z + pl.W
}

// ContainsSphere reports whether any part of the sphere may be visible.
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := range f.planes {
		if f.distance(i, center) < -radius {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(p rl.Vector3) bool {
	return f.ContainsSphere(p, 0)
}
