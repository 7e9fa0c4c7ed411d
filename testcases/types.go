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

// Package testcases provides a table of outline scenes used by the
// rasterisation tests.
package testcases

import (
	"seehuhn.de/go/geom/path"
)

// TestCase defines a single outline scene.
type TestCase struct {
	Name   string    // lowercase a-z and _ only
	Path   path.Path // the outline to rasterise
	Simple bool      // true if no contour self-intersects
}

// All contains all test cases, grouped by category.
var All = map[string][]TestCase{
	"fill":       fillCases,
	"curve":      curveCases,
	"glyph":      glyphCases,
	"degenerate": degenerateCases,
}
