// seehuhn.de/go/scanline - scanline glyph coverage rasterisation
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package scanline

import (
	"errors"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// ErrInvalidPathState is reported by [PathBuilder.Build] when a drawing
// command (LineTo, QuadTo, CubeTo) was issued before any MoveTo started
// a contour. The builder does not auto-insert a starting point, to
// avoid masking caller bugs.
var ErrInvalidPathState = errors.New("scanline: drawing command before MoveTo")

// PathBuilder accumulates closed contours from line and Bézier
// commands. Curves are flattened into line segments as they are added.
// Create one instance and reuse it for multiple paths; internal buffers
// grow as needed but never shrink, achieving zero allocations in steady
// state.
//
// A PathBuilder is not safe for concurrent use.
type PathBuilder struct {
	// CTM transforms incoming points from user space to device space.
	// Must be non-singular.
	CTM matrix.Matrix

	// Flatness controls curve approximation accuracy in device pixels.
	// Typical values: 0.25–1.0. Must be positive.
	Flatness float64

	origin  vec.Vec2 // device-space translation applied after CTM
	current vec.Vec2 // current point in user space

	// Contour storage: all contour points contiguous, with per-contour
	// start offsets and an explicit-close flag.
	points  []vec.Vec2
	offsets []int
	closed  []bool

	inContour bool
	err       error
}

// NewPathBuilder returns a PathBuilder with the identity transform and
// the default flattening tolerance.
func NewPathBuilder() *PathBuilder {
	return &PathBuilder{
		CTM:      matrix.Identity,
		Flatness: defaultFlatness,
	}
}

// SetOrigin sets a device-space translation applied to all subsequently
// added points. Glyph callers set this to the negated glyph bounding
// box corner, so every glyph rasterises in a local frame anchored at
// (0,0) regardless of its placement on the destination image.
func (b *PathBuilder) SetOrigin(origin vec.Vec2) {
	b.origin = origin
}

// MoveTo starts a new contour at p.
func (b *PathBuilder) MoveTo(p vec.Vec2) {
	b.finishContour()
	b.offsets = append(b.offsets, len(b.points))
	b.closed = append(b.closed, false)
	b.inContour = true
	b.current = p
	b.points = append(b.points, b.transform(p))
}

// LineTo appends a straight segment from the current point to p.
func (b *PathBuilder) LineTo(p vec.Vec2) {
	if !b.inContour {
		b.setErr()
		return
	}
	b.current = p
	b.points = append(b.points, b.transform(p))
}

// QuadTo appends a quadratic Bézier from the current point through
// control point c to p, flattened into line segments.
func (b *PathBuilder) QuadTo(c, p vec.Vec2) {
	if !b.inContour {
		b.setErr()
		return
	}
	b.flattenQuadratic(b.current, c, p)
	b.current = p
}

// CubeTo appends a cubic Bézier from the current point through control
// points c1 and c2 to p, flattened into line segments.
func (b *PathBuilder) CubeTo(c1, c2, p vec.Vec2) {
	if !b.inContour {
		b.setErr()
		return
	}
	b.flattenCubic(b.current, c1, c2, p)
	b.current = p
}

// Close closes the current contour. The closing edge from the last
// point back to the first is implicit; no point is appended.
func (b *PathBuilder) Close() {
	if !b.inContour {
		return
	}
	b.closed[len(b.closed)-1] = true
	b.inContour = false
}

// AddPath feeds a geom path command stream into the builder, flattening
// curves as usual. Coordinates are interpreted in user space.
func (b *PathBuilder) AddPath(p path.Path) {
	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			b.MoveTo(pts[0])
		case path.CmdLineTo:
			b.LineTo(pts[0])
		case path.CmdQuadTo:
			b.QuadTo(pts[0], pts[1])
		case path.CmdCubeTo:
			b.CubeTo(pts[0], pts[1], pts[2])
		case path.CmdClose:
			b.Close()
		}
	}
}

// Build finalises the accumulated contours and returns an immutable
// Path with its bounding box computed. An unclosed trailing contour is
// treated as closed by the implicit closing edge.
//
// Build returns ErrInvalidPathState if any drawing command was issued
// before a contour was started. The builder state is left unchanged;
// call Reset before reuse.
func (b *PathBuilder) Build() (*Path, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.finishContour()

	p := &Path{
		points:  append([]vec.Vec2(nil), b.points...),
		offsets: append([]int(nil), b.offsets...),
		closed:  append([]bool(nil), b.closed...),
	}
	p.computeBounds()
	return p, nil
}

// Reset clears all state for reuse, preserving buffer capacity.
func (b *PathBuilder) Reset() {
	b.points = b.points[:0]
	b.offsets = b.offsets[:0]
	b.closed = b.closed[:0]
	b.origin = vec.Vec2{}
	b.current = vec.Vec2{}
	b.inContour = false
	b.err = nil
}

func (b *PathBuilder) setErr() {
	if b.err == nil {
		b.err = ErrInvalidPathState
	}
}

func (b *PathBuilder) finishContour() {
	b.inContour = false
}

// transform maps a user-space point to the builder's device space.
func (b *PathBuilder) transform(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: b.CTM[0]*p.X + b.CTM[2]*p.Y + b.CTM[4] + b.origin.X,
		Y: b.CTM[1]*p.X + b.CTM[3]*p.Y + b.CTM[5] + b.origin.Y,
	}
}

// transformLinear applies only the 2×2 linear part of CTM to a vector.
// Used for CTM-aware tolerance checking where translation is irrelevant.
func (b *PathBuilder) transformLinear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: b.CTM[0]*v.X + b.CTM[2]*v.Y,
		Y: b.CTM[1]*v.X + b.CTM[3]*v.Y,
	}
}

// flattenQuadratic flattens a quadratic Bézier into line segments
// appended to the current contour. p0 is the start point (current
// point), p1 is control, p2 is endpoint. All points are in user space;
// CTM-aware tolerance checking is used.
func (b *PathBuilder) flattenQuadratic(p0, p1, p2 vec.Vec2) {
	// Compute error vector: e = (P0 - 2*P1 + P2) / 4
	e := p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)
	eDev := b.transformLinear(e)

	n := 1
	errDev := eDev.Length()
	if errDev > b.Flatness {
		n = int(math.Ceil(math.Sqrt(errDev / b.Flatness)))
	}

	// Evaluate curve at n points (the start point is already present)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		// B(t) = (1-t)²P0 + 2(1-t)tP1 + t²P2
		omt := 1 - t
		pt := p0.Mul(omt * omt).Add(p1.Mul(2 * omt * t)).Add(p2.Mul(t * t))
		b.points = append(b.points, b.transform(pt))
	}
}

// flattenCubic flattens a cubic Bézier into line segments appended to
// the current contour. p0 is start, p1/p2 are controls, p3 is endpoint.
// All in user space.
func (b *PathBuilder) flattenCubic(p0, p1, p2, p3 vec.Vec2) {
	// Compute deviation vectors
	d1 := p0.Sub(p1.Mul(2)).Add(p2) // P0 - 2*P1 + P2
	d2 := p1.Sub(p2.Mul(2)).Add(p3) // P1 - 2*P2 + P3

	d1Dev := b.transformLinear(d1)
	d2Dev := b.transformLinear(d2)

	// Compute segment count using Wang's formula
	mDev := max(d1Dev.Length(), d2Dev.Length())
	n := 1
	if mDev > 0 {
		// n = ceil(sqrt(3 * mDev / (4 * ε)))
		nFloat := math.Sqrt(3 * mDev / (4 * b.Flatness))
		if nFloat > 1 {
			n = int(math.Ceil(nFloat))
		}
	}

	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		// B(t) = (1-t)³P0 + 3(1-t)²tP1 + 3(1-t)t²P2 + t³P3
		omt := 1 - t
		omt2 := omt * omt
		omt3 := omt2 * omt
		t2 := t * t
		t3 := t2 * t
		pt := p0.Mul(omt3).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t3))
		b.points = append(b.points, b.transform(pt))
	}
}
