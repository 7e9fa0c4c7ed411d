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
	"image"

	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"
)

// GlyphKey identifies a rasterised glyph shape within one text-drawing
// operation. Keys must distinguish glyphs whose outlines or rendering
// parameters differ; identical keys reuse one coverage buffer.
type GlyphKey uint64

// DrawOp is one queued drawing operation: a coverage buffer and the
// destination pixel where its top-left cell is placed. Ops are consumed
// by an external compositor in FIFO order; the compositor owns clipping
// to the destination image bounds.
type DrawOp struct {
	Coverage *Coverage
	Min      image.Point
}

// ErrTextRunClosed is returned when a TextRun is used after Close.
var ErrTextRunClosed = errors.New("scanline: text run is closed")

// TextRun caches glyph coverage buffers for the duration of one
// text-drawing operation. A glyph key seen for the second time within
// the run replays the cached buffer instead of rasterising again.
//
// The zero lifecycle is: BeginText, then for each glyph BeginGlyph /
// outline commands on Builder / EndGlyph, then EndText, then the
// compositor consumes Ops, and finally Close. Close must be called
// exactly once on every exit path; it releases all cached buffers back
// to the rasteriser. The cache never persists across independent
// text-drawing operations.
//
// A TextRun is not safe for concurrent use: the builder and the
// rasteriser scratch buffers are reused in place across glyphs, which
// is only safe because glyphs are processed strictly sequentially.
type TextRun struct {
	// Stroker, if non-nil, switches the run to pen (outline) mode: each
	// glyph's coverage is computed from the stroke outline of its path
	// instead of its fill region.
	Stroker *Stroker

	raster  *Rasterizer
	builder *PathBuilder

	cache map[GlyphKey]*Coverage
	ops   []DrawOp

	glyphKey   GlyphKey
	glyphMin   image.Point
	inGlyph    bool
	needRaster bool
	closed     bool
}

// NewTextRun returns a TextRun drawing through the given rasteriser in
// brush (fill) mode.
func NewTextRun(r *Rasterizer) *TextRun {
	return &TextRun{
		raster:  r,
		builder: NewPathBuilder(),
		cache:   make(map[GlyphKey]*Coverage),
	}
}

// BeginText starts a batch of glyphs, clearing any previously queued
// drawing operations. Coverage buffers cached earlier in the run's
// lifetime are kept.
func (t *TextRun) BeginText() {
	t.ops = t.ops[:0]
}

// BeginGlyph records the glyph's destination location (the bounding box
// corner, floored to integer pixels) and its cache key. It reports
// whether rasterisation work is needed: false means the key already has
// a cached buffer and the caller must skip issuing outline commands for
// this glyph. On a closed run BeginGlyph reports false and the
// following EndGlyph returns [ErrTextRunClosed].
//
// When work is needed, the run's builder is reset with its origin set
// to the negated bounding box corner, so the glyph rasterises in a
// local frame anchored at (0,0) and the resulting buffer is reusable by
// translation alone.
func (t *TextRun) BeginGlyph(bounds fixed.Rectangle26_6, key GlyphKey) bool {
	if t.closed {
		return false
	}
	t.glyphKey = key
	t.glyphMin = image.Point{
		X: bounds.Min.X.Floor(),
		Y: bounds.Min.Y.Floor(),
	}
	t.inGlyph = true

	_, ok := t.cache[key]
	t.needRaster = !ok
	if t.needRaster {
		t.builder.Reset()
		t.builder.SetOrigin(vec.Vec2{
			X: -float64(t.glyphMin.X),
			Y: -float64(t.glyphMin.Y),
		})
	}
	return t.needRaster
}

// Builder returns the path builder the caller drives with the glyph's
// outline commands between BeginGlyph and EndGlyph. Only valid while
// BeginGlyph has reported that rasterisation is needed.
func (t *TextRun) Builder() *PathBuilder {
	return t.builder
}

// EndGlyph finishes the current glyph. If the glyph's key was not
// cached, the accumulated path is built, stroked in pen mode, and
// rasterised, and the resulting buffer stored under the key. In either
// case one drawing operation referencing the (new or cached) buffer is
// appended to the queue.
func (t *TextRun) EndGlyph() error {
	if t.closed {
		return ErrTextRunClosed
	}
	if !t.inGlyph {
		return nil
	}
	t.inGlyph = false

	if t.needRaster {
		p, err := t.builder.Build()
		if err != nil {
			return err
		}
		if t.Stroker != nil {
			p = t.Stroker.Outline(p)
		}
		t.cache[t.glyphKey] = t.raster.Rasterize(p)
	}

	// The buffer's Min accounts for the rasterised path extending
	// beyond the glyph's local (0,0) anchor, as a stroke outline does.
	cov := t.cache[t.glyphKey]
	t.ops = append(t.ops, DrawOp{
		Coverage: cov,
		Min:      t.glyphMin.Add(cov.Min),
	})
	return nil
}

// EndText marks the end of the batch. The queued operations remain
// available through Ops for the compositor.
func (t *TextRun) EndText() {}

// Ops returns the queued drawing operations in encounter order. The
// returned slice is valid until the next BeginText or Close.
func (t *TextRun) Ops() []DrawOp {
	return t.ops
}

// Close releases every cached coverage buffer back to the rasteriser
// and invalidates the run. It must be called exactly once per
// text-drawing operation, on every exit path; calling it again is a
// no-op.
func (t *TextRun) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	for key, cov := range t.cache {
		t.raster.release(cov)
		delete(t.cache, key)
	}
	t.ops = nil
	return nil
}
