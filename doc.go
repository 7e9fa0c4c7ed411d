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

// Package scanline converts vector outlines into per-pixel coverage
// buffers for painting text glyphs and shapes.
//
// A [PathBuilder] collects closed contours from move/line/Bézier
// commands, flattening curves into line segments. A [Rasterizer] turns
// the finished [Path] into a [Coverage] buffer by intersecting the
// outline with horizontal sub-scanlines and accumulating fractional
// span coverage. A [TextRun] caches coverage buffers per glyph within
// one text-drawing operation and queues positioned drawing operations
// for an external compositor.
package scanline
