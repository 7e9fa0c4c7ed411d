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

package testcases

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

var fillCases = []TestCase{
	{Name: "square", Path: polygon(pt(2, 2), pt(18, 2), pt(18, 18), pt(2, 18)), Simple: true},
	{Name: "triangle", Path: polygon(pt(2, 18), pt(10, 2), pt(18, 18)), Simple: true},
	{Name: "diamond", Path: polygon(pt(10, 0), pt(20, 10), pt(10, 20), pt(0, 10)), Simple: true},
	{Name: "sliver", Path: polygon(pt(0, 0), pt(30, 0.4), pt(30, 0.8)), Simple: true},
	{Name: "bowtie", Path: polygon(pt(0, 0), pt(16, 16), pt(16, 0), pt(0, 16)), Simple: false},
}

var curveCases = []TestCase{
	{Name: "circle", Path: circle(16, 16, 12, false), Simple: true},
	{
		Name: "ring",
		Path: func(yield func(path.Command, []vec.Vec2) bool) {
			circle(16, 16, 14, false)(yield)
			circle(16, 16, 8, true)(yield)
		},
		Simple: true,
	},
	{
		Name: "blob",
		Path: func(yield func(path.Command, []vec.Vec2) bool) {
			if !yield(path.CmdMoveTo, []vec.Vec2{pt(4, 16)}) {
				return
			}
			quads := [][2]vec.Vec2{
				{pt(4, 4), pt(16, 4)},
				{pt(28, 4), pt(28, 16)},
				{pt(28, 28), pt(16, 28)},
				{pt(4, 28), pt(4, 16)},
			}
			for _, q := range quads {
				if !yield(path.CmdQuadTo, q[:]) {
					return
				}
			}
			yield(path.CmdClose, nil)
		},
		Simple: true,
	},
}

// glyphCases are letter-like shapes of the kind produced by glyph
// outline extraction: straight stems with counters.
var glyphCases = []TestCase{
	{
		Name: "letter_l",
		Path: polygon(pt(2, 2), pt(6, 2), pt(6, 20), pt(16, 20), pt(16, 24), pt(2, 24)),
		Simple: true,
	},
	{
		Name: "letter_o",
		Path: func(yield func(path.Command, []vec.Vec2) bool) {
			polygon(pt(2, 2), pt(18, 2), pt(18, 26), pt(2, 26))(yield)
			polygon(pt(6, 6), pt(6, 22), pt(14, 22), pt(14, 6))(yield)
		},
		Simple: true,
	},
}

var degenerateCases = []TestCase{
	{Name: "single_point", Path: polygon(pt(5, 5)), Simple: true},
	{Name: "two_points", Path: polygon(pt(2, 2), pt(10, 10)), Simple: true},
	{Name: "flat_line", Path: polygon(pt(0, 5), pt(20, 5), pt(10, 5)), Simple: true},
}

// pt is a helper to create a vec.Vec2 from x, y coordinates.
func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// polygon builds a closed polygon from the given vertices.
func polygon(pts ...vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if !yield(path.CmdMoveTo, pts[:1]) {
			return
		}
		for _, p := range pts[1:] {
			if !yield(path.CmdLineTo, []vec.Vec2{p}) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

// circle builds a circle from four cubic Bézier segments.
func circle(cx, cy, r float64, clockwise bool) path.Path {
	// Magic number for circular arc approximation with cubic Bézier
	const k = 0.5522847498
	kr := k * r

	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [3]vec.Vec2
		buf[0] = vec.Vec2{X: cx, Y: cy - r}
		if !yield(path.CmdMoveTo, buf[:1]) {
			return
		}
		type arc struct{ c1, c2, end vec.Vec2 }
		var arcs [4]arc
		if clockwise {
			arcs = [4]arc{
				{vec.Vec2{X: cx - kr, Y: cy - r}, vec.Vec2{X: cx - r, Y: cy - kr}, vec.Vec2{X: cx - r, Y: cy}},
				{vec.Vec2{X: cx - r, Y: cy + kr}, vec.Vec2{X: cx - kr, Y: cy + r}, vec.Vec2{X: cx, Y: cy + r}},
				{vec.Vec2{X: cx + kr, Y: cy + r}, vec.Vec2{X: cx + r, Y: cy + kr}, vec.Vec2{X: cx + r, Y: cy}},
				{vec.Vec2{X: cx + r, Y: cy - kr}, vec.Vec2{X: cx + kr, Y: cy - r}, vec.Vec2{X: cx, Y: cy - r}},
			}
		} else {
			arcs = [4]arc{
				{vec.Vec2{X: cx + kr, Y: cy - r}, vec.Vec2{X: cx + r, Y: cy - kr}, vec.Vec2{X: cx + r, Y: cy}},
				{vec.Vec2{X: cx + r, Y: cy + kr}, vec.Vec2{X: cx + kr, Y: cy + r}, vec.Vec2{X: cx, Y: cy + r}},
				{vec.Vec2{X: cx - kr, Y: cy + r}, vec.Vec2{X: cx - r, Y: cy + kr}, vec.Vec2{X: cx - r, Y: cy}},
				{vec.Vec2{X: cx - r, Y: cy - kr}, vec.Vec2{X: cx - kr, Y: cy - r}, vec.Vec2{X: cx, Y: cy - r}},
			}
		}
		for _, a := range arcs {
			buf[0], buf[1], buf[2] = a.c1, a.c2, a.end
			if !yield(path.CmdCubeTo, buf[:3]) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}
