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
	"math"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// strokeSegment represents a line segment of a contour being stroked.
type strokeSegment struct {
	A, B vec.Vec2 // endpoints
	T    vec.Vec2 // unit tangent (A→B direction)
	N    vec.Vec2 // unit normal (90° CCW from T)
}

// Stroker converts a path into its stroke outline: a new path whose
// fill region is the band of the given width along the original
// contours. This supplies the rasteriser input for pen (outline)
// drawing, where the original path would supply it for brush (fill)
// drawing.
//
// Create one instance and reuse it; internal buffers grow as needed but
// never shrink. A Stroker is not safe for concurrent use.
type Stroker struct {
	// Width is the stroke thickness. Must be positive.
	Width float64

	// Cap sets the style for the ends of unclosed contours
	// (butt, round, or square).
	Cap graphics.LineCapStyle

	// Join sets the style for corners (miter, round, or bevel).
	Join graphics.LineJoinStyle

	// MiterLimit caps miter join length. Must be at least 1.0.
	MiterLimit float64

	// Flatness controls arc approximation accuracy for round caps and
	// joins, in device pixels. Must be positive.
	Flatness float64

	// Internal buffers (reused across calls)
	segs    []strokeSegment // segments of the contour being stroked
	outline []vec.Vec2      // outline polygon vertices, contiguous
	offsets []int           // start index of each polygon in outline
}

// NewStroker returns a Stroker with the given width and PDF default
// values for all other parameters.
func NewStroker(width float64) *Stroker {
	return &Stroker{
		Width:      width,
		Cap:        graphics.LineCapButt,
		Join:       graphics.LineJoinMiter,
		MiterLimit: defaultMiterLimit,
		Flatness:   defaultFlatness,
	}
}

// Outline returns the stroke outline of p as a new path. Explicitly
// closed contours produce two ring polygons (outer and inner offset
// curves), which the rasteriser's crossing pairing fills as the stroke
// band; unclosed contours produce a single polygon with caps at both
// ends. Contours of a single point produce a dot for round caps and
// nothing otherwise.
func (s *Stroker) Outline(p *Path) *Path {
	s.outline = s.outline[:0]
	s.offsets = s.offsets[:0]

	d := s.Width / 2

	for ci := range p.offsets {
		c := p.contour(ci)
		closed := p.closed[ci]

		s.collectSegments(c, closed)
		if len(s.segs) == 0 {
			// Degenerate contour with no orientation: round caps
			// produce a dot, all other caps produce nothing.
			if len(c) > 0 && s.Cap == graphics.LineCapRound {
				s.beginPolygon()
				s.addArc(c[0], d, vec.Vec2{X: 1, Y: 0}, 2*math.Pi, true)
				s.endPolygon()
			}
			continue
		}

		if closed {
			s.strokeClosed(d)
		} else {
			s.strokeOpen(d)
		}
	}

	out := &Path{
		points:  append([]vec.Vec2(nil), s.outline...),
		offsets: append([]int(nil), s.offsets...),
		closed:  make([]bool, len(s.offsets)),
	}
	for i := range out.closed {
		out.closed[i] = true
	}
	out.computeBounds()
	return out
}

// collectSegments fills s.segs with the non-degenerate segments of one
// contour, including the closing edge for closed contours.
func (s *Stroker) collectSegments(c []vec.Vec2, closed bool) {
	s.segs = s.segs[:0]
	if len(c) < 2 {
		return
	}
	n := len(c) - 1
	if closed {
		n = len(c)
	}
	for i := 0; i < n; i++ {
		a := c[i]
		b := c[(i+1)%len(c)]
		dv := b.Sub(a)
		length := dv.Length()
		if length < zeroLengthThreshold {
			continue // skip degenerate segment
		}
		t := dv.Mul(1 / length)
		s.segs = append(s.segs, strokeSegment{
			A: a, B: b,
			T: t,
			N: vec.Vec2{X: -t.Y, Y: t.X},
		})
	}
}

func (s *Stroker) beginPolygon() {
	s.offsets = append(s.offsets, len(s.outline))
}

// endPolygon discards the polygon begun by the last beginPolygon call
// if it is degenerate.
func (s *Stroker) endPolygon() {
	start := s.offsets[len(s.offsets)-1]
	if len(s.outline)-start < 3 {
		s.outline = s.outline[:start]
		s.offsets = s.offsets[:len(s.offsets)-1]
	}
}

// strokeClosed builds the two offset rings of a closed contour: the +N
// side traversed forward and the -N side traversed backward. Each ring
// is a separate polygon so that crossing pairing fills the band between
// them.
func (s *Stroker) strokeClosed(d float64) {
	segs := s.segs
	first := &segs[0]
	last := &segs[len(segs)-1]

	sinThetaClose := last.T.X*first.T.Y - last.T.Y*first.T.X

	// +N ring, forward
	s.beginPolygon()
	s.outline = append(s.outline, first.A.Add(first.N.Mul(d)))
	for i := range segs {
		seg := &segs[i]
		next := first
		sinTheta := sinThetaClose
		if i < len(segs)-1 {
			next = &segs[i+1]
			sinTheta = seg.T.X*next.T.Y - seg.T.Y*next.T.X
		}
		if math.Abs(sinTheta) < collinearityThreshold {
			s.outline = append(s.outline, seg.B.Add(seg.N.Mul(d)))
			s.outline = append(s.outline, next.A.Add(next.N.Mul(d)))
		} else if sinTheta > 0 {
			// Right turn: +N is the inner side
			s.addInnerIntersectionOrOffsets(seg.B, seg.T, next.T, seg.N, next.N, d, true)
		} else {
			// Left turn: +N is the outer side
			s.outline = append(s.outline, seg.B.Add(seg.N.Mul(d)))
			s.addJoin(seg.B, seg.T, next.T, d, true)
			s.outline = append(s.outline, next.A.Add(next.N.Mul(d)))
		}
	}
	s.endPolygon()

	// -N ring, backward
	s.beginPolygon()
	if math.Abs(sinThetaClose) < collinearityThreshold {
		s.outline = append(s.outline, first.A.Sub(first.N.Mul(d)))
		s.outline = append(s.outline, last.B.Sub(last.N.Mul(d)))
	} else if sinThetaClose > 0 {
		// Right turn: -N is the outer side
		s.outline = append(s.outline, first.A.Sub(first.N.Mul(d)))
		s.addJoin(first.A, last.T, first.T, d, false)
		s.outline = append(s.outline, last.B.Sub(last.N.Mul(d)))
	} else {
		// Left turn: -N is the inner side
		s.addInnerIntersectionOrOffsets(first.A, last.T, first.T, last.N, first.N, d, false)
	}
	for i := len(segs) - 1; i > 0; i-- {
		seg := &segs[i]
		prev := &segs[i-1]
		sinTheta := prev.T.X*seg.T.Y - prev.T.Y*seg.T.X
		if math.Abs(sinTheta) < collinearityThreshold {
			s.outline = append(s.outline, seg.A.Sub(seg.N.Mul(d)))
			s.outline = append(s.outline, prev.B.Sub(prev.N.Mul(d)))
		} else if sinTheta > 0 {
			// Right turn: -N is the outer side
			s.outline = append(s.outline, seg.A.Sub(seg.N.Mul(d)))
			s.addJoin(seg.A, prev.T, seg.T, d, false)
			s.outline = append(s.outline, prev.B.Sub(prev.N.Mul(d)))
		} else {
			// Left turn: -N is the inner side
			s.addInnerIntersectionOrOffsets(seg.A, prev.T, seg.T, prev.N, seg.N, d, false)
		}
	}
	s.outline = append(s.outline, segs[0].A.Sub(segs[0].N.Mul(d)))
	s.endPolygon()
}

// strokeOpen builds the single outline polygon of an unclosed contour:
// start cap, +N side forward, end cap, -N side backward.
func (s *Stroker) strokeOpen(d float64) {
	segs := s.segs
	first := &segs[0]
	last := &segs[len(segs)-1]

	s.beginPolygon()

	// Start cap (at first.A, direction = -T)
	s.addCap(first.A, first.T.Mul(-1), d)

	// Forward pass: +N side
	skipNextA := false
	for i := range segs {
		seg := &segs[i]
		if !skipNextA {
			s.outline = append(s.outline, seg.A.Add(seg.N.Mul(d)))
		}
		skipNextA = false
		if i < len(segs)-1 {
			next := &segs[i+1]
			sinTheta := seg.T.X*next.T.Y - seg.T.Y*next.T.X
			if math.Abs(sinTheta) < collinearityThreshold {
				s.outline = append(s.outline, seg.B.Add(seg.N.Mul(d)))
			} else if sinTheta > 0 {
				skipNextA = s.addInnerIntersectionOrOffsets(seg.B, seg.T, next.T, seg.N, next.N, d, true)
			} else {
				s.outline = append(s.outline, seg.B.Add(seg.N.Mul(d)))
				s.addJoin(seg.B, seg.T, next.T, d, true)
			}
		} else {
			s.outline = append(s.outline, seg.B.Add(seg.N.Mul(d)))
		}
	}

	// End cap (at last.B, direction = T)
	s.addCap(last.B, last.T, d)

	// Backward pass: -N side
	skipNextB := false
	for i := len(segs) - 1; i >= 0; i-- {
		seg := &segs[i]
		if !skipNextB {
			s.outline = append(s.outline, seg.B.Sub(seg.N.Mul(d)))
		}
		skipNextB = false
		if i > 0 {
			prev := &segs[i-1]
			sinTheta := prev.T.X*seg.T.Y - prev.T.Y*seg.T.X
			if math.Abs(sinTheta) < collinearityThreshold {
				s.outline = append(s.outline, seg.A.Sub(seg.N.Mul(d)))
			} else if sinTheta > 0 {
				s.outline = append(s.outline, seg.A.Sub(seg.N.Mul(d)))
				s.addJoin(seg.A, prev.T, seg.T, d, false)
			} else {
				skipNextB = s.addInnerIntersectionOrOffsets(seg.A, prev.T, seg.T, prev.N, seg.N, d, false)
			}
		} else {
			s.outline = append(s.outline, seg.A.Sub(seg.N.Mul(d)))
		}
	}

	s.endPolygon()
}

// addCap adds a line cap to the outline at point P.
// T is the outward tangent direction (away from the line).
// d is half the stroke width.
func (s *Stroker) addCap(P, T vec.Vec2, d float64) {
	N := vec.Vec2{X: -T.Y, Y: T.X}

	switch s.Cap {
	case graphics.LineCapButt:
		// Butt cap: the offset points added by the caller already
		// connect the two sides.

	case graphics.LineCapSquare:
		// Square cap: extend by d along the tangent
		ext := P.Add(T.Mul(d))
		s.outline = append(s.outline, ext.Add(N.Mul(d)), ext.Sub(N.Mul(d)))

	case graphics.LineCapRound:
		// Round cap: semicircular arc curving outward through T,
		// sweeping CW from N to -N.
		s.addArc(P, d, N, -math.Pi, true)
	}
}

// computeInnerIntersection returns the intersection point of the two
// inner offset lines at a corner. For nearly collinear segments there
// is no meaningful intersection and ok is false.
func computeInnerIntersection(P, T1, T2 vec.Vec2, d float64, positiveSide bool) (vec.Vec2, bool) {
	cosTheta := T1.Dot(T2)
	if cosTheta > 1-1e-9 {
		return vec.Vec2{}, false
	}

	// cos(θ/2) = sqrt((1 + cosθ) / 2)
	halfAngle := math.Sqrt((1 + cosTheta) / 2)
	if halfAngle < 1e-9 {
		return vec.Vec2{}, false
	}

	N1 := vec.Vec2{X: -T1.Y, Y: T1.X}
	N2 := vec.Vec2{X: -T2.Y, Y: T2.X}

	innerDir := N1.Add(N2)
	if !positiveSide {
		innerDir = innerDir.Mul(-1)
	}
	innerDirLen := innerDir.Length()
	if innerDirLen < 1e-9 {
		return vec.Vec2{}, false
	}
	innerDir = innerDir.Mul(1 / innerDirLen)

	return P.Add(innerDir.Mul(d / halfAngle)), true
}

// addInnerIntersectionOrOffsets handles the inner side of a corner.
// If an intersection can be computed, only that point is added and the
// result is true (the next segment's offset point should be skipped).
// Otherwise both offset points are added.
func (s *Stroker) addInnerIntersectionOrOffsets(P, T1, T2, N1, N2 vec.Vec2, d float64, positiveSide bool) bool {
	if innerPt, ok := computeInnerIntersection(P, T1, T2, d, positiveSide); ok {
		s.outline = append(s.outline, innerPt)
		return true
	}
	if positiveSide {
		s.outline = append(s.outline, P.Add(N1.Mul(d)), P.Add(N2.Mul(d)))
	} else {
		s.outline = append(s.outline, P.Sub(N1.Mul(d)), P.Sub(N2.Mul(d)))
	}
	return false
}

// addJoin adds a line join at point P where the tangent changes from T1
// to T2. d is half the stroke width. positiveSide indicates which side
// of the stroke is being built.
func (s *Stroker) addJoin(P, T1, T2 vec.Vec2, d float64, positiveSide bool) {
	cosTheta := T1.Dot(T2)
	sinTheta := T1.X*T2.Y - T1.Y*T2.X

	if sinTheta > -collinearityThreshold && sinTheta < collinearityThreshold {
		return
	}

	// Cusp (path doubling back on itself): emit two caps instead
	if cosTheta < cuspCosineThreshold {
		s.addCap(P, T1, d)
		s.addCap(P, T2.Mul(-1), d)
		return
	}

	switch s.Join {
	case graphics.LineJoinMiter:
		// miterLength = 1 / sin(φ/2), where φ is the interior angle of
		// the stroke corner. With θ the angle between tangents,
		// sin(φ/2) = cos(θ/2) = sqrt((1 + cosθ) / 2).
		sinHalf := math.Sqrt((1 + cosTheta) / 2)
		const miterEpsilon = 1e-10
		if sinHalf > 0 && 1/sinHalf <= s.MiterLimit+miterEpsilon {
			N1 := vec.Vec2{X: -T1.Y, Y: T1.X}
			N2 := vec.Vec2{X: -T2.Y, Y: T2.X}

			bisector := N1.Add(N2)
			if !positiveSide {
				bisector = bisector.Mul(-1)
			}
			bisectorLen := bisector.Length()
			if bisectorLen > zeroLengthThreshold {
				bisector = bisector.Mul(1 / bisectorLen)
				s.outline = append(s.outline, P.Add(bisector.Mul(d/sinHalf)))
			}
			return
		}
		// Miter limit exceeded: bevel
		fallthrough

	case graphics.LineJoinBevel:
		// Bevel join: the two offset points added by the caller meet
		// directly, no additional points.
		return

	case graphics.LineJoinRound:
		// Round join: arc curving outward on the current side.
		angle := math.Acos(max(-1, min(1, cosTheta)))
		if positiveSide {
			N1 := vec.Vec2{X: -T1.Y, Y: T1.X}
			if sinTheta > 0 {
				s.addArc(P, d, N1, angle, false)
			} else {
				s.addArc(P, d, N1, -angle, false)
			}
		} else {
			// The offset point just added used T2's normal, so the arc
			// starts from -N of T2 and sweeps to -N of T1.
			N2 := vec.Vec2{X: T2.Y, Y: -T2.X}
			if sinTheta > 0 {
				s.addArc(P, d, N2, -angle, false)
			} else {
				s.addArc(P, d, N2, angle, false)
			}
		}
	}
}

// addArc adds arc vertices to the outline. startDir is the unit vector
// from center to the arc start; sweep is the sweep angle in radians
// (positive = CCW). includeStart indicates whether to add the start
// point (false if the caller already added it).
func (s *Stroker) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64, includeStart bool) {
	if radius < s.Flatness {
		// Arc too small to matter: just the end point (and start if needed)
		if includeStart {
			s.outline = append(s.outline, center.Add(startDir.Mul(radius)))
		}
		cos, sin := math.Cos(sweep), math.Sin(sweep)
		endDir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		s.outline = append(s.outline, center.Add(endDir.Mul(radius)))
		return
	}

	// For a chord subtending angle θ on a circle of radius r, the
	// maximum deviation (sagitta) is r*(1 - cos(θ/2)). Solving for the
	// tolerance ε gives θ = 2*acos(1 - ε/r).
	absSweep := math.Abs(sweep)
	angleStep := 2 * math.Acos(1-s.Flatness/radius)
	if angleStep <= 0 || math.IsNaN(angleStep) {
		angleStep = math.Pi / 4 // fallback
	}
	n := max(int(math.Ceil(absSweep/angleStep)), 1)

	dt := sweep / float64(n)
	startI := 0
	if !includeStart {
		startI = 1
	}
	for i := startI; i <= n; i++ {
		angle := float64(i) * dt
		cos, sin := math.Cos(angle), math.Sin(angle)
		dir := vec.Vec2{
			X: startDir.X*cos - startDir.Y*sin,
			Y: startDir.X*sin + startDir.Y*cos,
		}
		s.outline = append(s.outline, center.Add(dir.Mul(radius)))
	}
}

// Default values and numerical tolerances for the stroker.
const (
	// defaultMiterLimit is the default miter limit, matching
	// PDF/PostScript. This converts joins to bevels when the interior
	// angle is less than approximately 11.5 degrees.
	defaultMiterLimit = 10.0

	// zeroLengthThreshold is the minimum length for a stroke segment.
	// Segments shorter than this are skipped.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold is used to detect nearly collinear segments
	// where no join is needed.
	collinearityThreshold = 1e-6

	// cuspCosineThreshold is the cosine threshold for detecting cusps
	// (path doubling back on itself). cos(179.43°) ≈ -0.9999
	cuspCosineThreshold = -0.9999
)
