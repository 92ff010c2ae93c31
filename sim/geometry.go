package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Degree is one degree expressed in radians.
const Degree = math.Pi / 180

// Frame is a positioned orthonormal basis. Forward is the line of sight,
// Right and Up complete a left-handed camera basis (x right, y up, z forward).
type Frame struct {
	Pos     r3.Vec
	Right   r3.Vec
	Up      r3.Vec
	Forward r3.Vec
}

// NewFrame returns a frame at pos looking down +Z with +Y up.
func NewFrame(pos r3.Vec) Frame {
	return Frame{
		Pos:     pos,
		Right:   r3.Vec{X: 1},
		Up:      r3.Vec{Y: 1},
		Forward: r3.Vec{Z: 1},
	}
}

// ToLocal expresses a world point in frame coordinates.
func (f Frame) ToLocal(p r3.Vec) r3.Vec {
	d := r3.Sub(p, f.Pos)
	return r3.Vec{X: r3.Dot(d, f.Right), Y: r3.Dot(d, f.Up), Z: r3.Dot(d, f.Forward)}
}

// ToWorld maps a frame-local offset back to world coordinates.
func (f Frame) ToWorld(local r3.Vec) r3.Vec {
	w := f.Pos
	w = r3.Add(w, r3.Scale(local.X, f.Right))
	w = r3.Add(w, r3.Scale(local.Y, f.Up))
	w = r3.Add(w, r3.Scale(local.Z, f.Forward))
	return w
}

// Yaw turns the frame about its Up axis. Positive angles swing Forward
// toward Right.
func (f Frame) Yaw(a float64) Frame {
	c, s := math.Cos(a), math.Sin(a)
	fwd := r3.Add(r3.Scale(c, f.Forward), r3.Scale(s, f.Right))
	right := r3.Sub(r3.Scale(c, f.Right), r3.Scale(s, f.Forward))
	f.Forward, f.Right = fwd, right
	return f
}

// Pitch turns the frame about its Right axis. Positive angles swing Forward
// toward Up.
func (f Frame) Pitch(a float64) Frame {
	c, s := math.Cos(a), math.Sin(a)
	fwd := r3.Add(r3.Scale(c, f.Forward), r3.Scale(s, f.Up))
	up := r3.Sub(r3.Scale(c, f.Up), r3.Scale(s, f.Forward))
	f.Forward, f.Up = fwd, up
	return f
}

// LookAt orients the frame so Forward points at target. The previous Up is
// used as the hint; a degenerate hint falls back to world Y, then world X.
func (f Frame) LookAt(target r3.Vec) Frame {
	dir := r3.Sub(target, f.Pos)
	if r3.Norm2(dir) == 0 {
		return f
	}
	fwd := r3.Unit(dir)
	hint := f.Up
	for _, h := range []r3.Vec{hint, {Y: 1}, {X: 1}} {
		right := r3.Cross(h, fwd)
		if r3.Norm2(right) > 1e-12 {
			right = r3.Unit(right)
			f.Forward = fwd
			f.Right = right
			f.Up = r3.Cross(fwd, right)
			return f
		}
	}
	return f
}

func unit(v r3.Vec) r3.Vec {
	if r3.Norm2(v) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(v)
}

func distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// turnToward rotates dir toward want by at most maxAngle radians, keeping
// the length of dir.
func turnToward(dir, want r3.Vec, maxAngle float64) r3.Vec {
	speed := r3.Norm(dir)
	if speed == 0 || r3.Norm2(want) == 0 {
		return dir
	}
	cos := math.Max(-1, math.Min(1, r3.Cos(dir, want)))
	angle := math.Acos(cos)
	if angle <= maxAngle {
		return r3.Scale(speed, r3.Unit(want))
	}
	axis := r3.Cross(dir, want)
	if r3.Norm2(axis) < 1e-18 {
		// antiparallel: any perpendicular axis works
		axis = r3.Cross(dir, r3.Vec{Y: 1})
		if r3.Norm2(axis) < 1e-18 {
			axis = r3.Cross(dir, r3.Vec{X: 1})
		}
	}
	return r3.Rotate(dir, maxAngle, r3.Unit(axis))
}

// segmentHitsSphere reports whether the segment a→b passes within radius of
// center, and the parametric distance along the segment of the closest point.
func segmentHitsSphere(a, b, center r3.Vec, radius float64) (bool, float64) {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	t := 0.0
	if l2 > 0 {
		t = r3.Dot(r3.Sub(center, a), ab) / l2
		t = math.Max(0, math.Min(1, t))
	}
	closest := r3.Add(a, r3.Scale(t, ab))
	return distance(closest, center) <= radius, t
}

func randomDirection(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1, Z: rng.Float64()*2 - 1}
		n := r3.Norm2(v)
		if n > 1e-6 && n <= 1 {
			return r3.Unit(v)
		}
	}
}

func randomRange(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) (float64, bool) {
	if v < lo {
		return lo, true
	}
	if v > hi {
		return hi, true
	}
	return v, false
}
