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
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Path is an immutable set of contours produced by [PathBuilder.Build],
// together with its cached bounding box. Every contour is treated as
// closed by an implicit edge from its last point back to its first.
type Path struct {
	points  []vec.Vec2 // all contour points, contiguous
	offsets []int      // start index of each contour in points
	closed  []bool     // whether each contour was closed explicitly
	bbox    rect.Rect
}

// Bounds returns the axis-aligned bounding box over all points of all
// contours. The zero rectangle is returned for an empty path.
func (p *Path) Bounds() rect.Rect {
	return p.bbox
}

// NumContours returns the number of contours in the path.
func (p *Path) NumContours() int {
	return len(p.offsets)
}

// MaxIntersections returns the total number of edges across all
// contours, including the implicit closing edges. A single horizontal
// line can cross the path boundary at most this many times, so buffers
// of this capacity are always sufficient for [Path.FindIntersections].
func (p *Path) MaxIntersections() int {
	n := 0
	for i := range p.offsets {
		c := p.contour(i)
		if len(c) >= 2 {
			n += len(c)
		}
	}
	return n
}

// contour returns the points of contour i as a slice into p.points.
func (p *Path) contour(i int) []vec.Vec2 {
	start := p.offsets[i]
	var end int
	if i+1 < len(p.offsets) {
		end = p.offsets[i+1]
	} else {
		end = len(p.points)
	}
	return p.points[start:end]
}

func (p *Path) computeBounds() {
	if len(p.points) == 0 {
		p.bbox = rect.Rect{}
		return
	}
	first := p.points[0]
	bbox := rect.Rect{LLx: first.X, LLy: first.Y, URx: first.X, URy: first.Y}
	for _, pt := range p.points[1:] {
		bbox.LLx = min(bbox.LLx, pt.X)
		bbox.URx = max(bbox.URx, pt.X)
		bbox.LLy = min(bbox.LLy, pt.Y)
		bbox.URy = max(bbox.URy, pt.Y)
	}
	p.bbox = bbox
}

// FindIntersections computes the x-coordinates where the path boundary
// crosses the horizontal line through start and end. The two points
// must share the same y-coordinate; their x-coordinates describe the
// extent of interest but do not restrict the result. Crossings are
// written to out and the count is returned; the output is unordered,
// callers sort before pairing spans.
//
// Edges exactly horizontal at the query y contribute no crossing. An
// edge whose endpoint lies exactly on the query y is counted using the
// half-open convention min(y0,y1) <= y < max(y0,y1), so a vertex on the
// scanline is not double-counted by its two adjacent edges.
//
// FindIntersections panics if out cannot hold all crossings; capacity
// MaxIntersections is always sufficient.
func (p *Path) FindIntersections(start, end vec.Vec2, out []float64) int {
	qy := start.Y

	count := 0
	for ci := range p.offsets {
		c := p.contour(ci)
		if len(c) < 2 {
			continue // degenerate contour, no edges
		}
		for i := range c {
			a := c[i]
			b := c[(i+1)%len(c)]

			if a.Y == b.Y {
				continue // horizontal edge never crosses
			}

			yMin, yMax := a.Y, b.Y
			if yMin > yMax {
				yMin, yMax = yMax, yMin
			}
			if qy < yMin || qy >= yMax {
				continue
			}

			x := a.X + (b.X-a.X)*(qy-a.Y)/(b.Y-a.Y)
			if count == len(out) {
				panic("scanline: intersection buffer overflow")
			}
			out[count] = x
			count++
		}
	}
	return count
}
