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
	"image"

	"github.com/chewxy/math32"
)

// Coverage is a dense per-pixel coverage buffer in row-major order.
// Each cell holds the fraction of the pixel inside the rasterised
// shape, 0 (outside) to 1 (inside); with antialiasing disabled every
// cell is exactly 0 or 1. Min is the device pixel covered by cell
// (0, 0): the floor of the rasterised path's bounding box corner.
//
// For self-overlapping input the raw values in Pix may exceed 1;
// consumers reading through [Coverage.At] receive clamped values.
type Coverage struct {
	Width, Height int
	Min           image.Point
	Pix           []float32 // len = Width*Height
}

// At returns the coverage at cell (x, y), clamped to [0, 1].
// Cells outside the buffer are reported as 0.
func (c *Coverage) At(x, y int) float32 {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return 0
	}
	return math32.Min(1, math32.Max(0, c.Pix[y*c.Width+x]))
}

// Row returns the cells of row y as a slice into Pix.
func (c *Coverage) Row(y int) []float32 {
	return c.Pix[y*c.Width : (y+1)*c.Width]
}
