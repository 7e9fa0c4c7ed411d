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
	"testing"

	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/geom/vec"
)

// addSquareGlyph draws one square glyph into the run, in absolute
// coordinates matching bounds.
func addSquareGlyph(t *testing.T, run *TextRun, bounds fixed.Rectangle26_6, key GlyphKey) {
	t.Helper()
	if run.BeginGlyph(bounds, key) {
		b := run.Builder()
		x0 := float64(bounds.Min.X) / 64
		y0 := float64(bounds.Min.Y) / 64
		x1 := float64(bounds.Max.X) / 64
		y1 := float64(bounds.Max.Y) / 64
		b.MoveTo(vec.Vec2{X: x0, Y: y0})
		b.LineTo(vec.Vec2{X: x1, Y: y0})
		b.LineTo(vec.Vec2{X: x1, Y: y1})
		b.LineTo(vec.Vec2{X: x0, Y: y1})
		b.Close()
	}
	if err := run.EndGlyph(); err != nil {
		t.Fatal(err)
	}
}

func TestTextRunCaching(t *testing.T) {
	r := NewRasterizer()
	r.Antialias = false
	run := NewTextRun(r)
	defer run.Close()

	bounds := fixed.R(2, 3, 12, 13)
	run.BeginText()
	addSquareGlyph(t, run, bounds, 17)

	// The same key again must skip rasterisation.
	if run.BeginGlyph(bounds, 17) {
		t.Error("second BeginGlyph with cached key reported work needed")
	}
	if err := run.EndGlyph(); err != nil {
		t.Fatal(err)
	}
	run.EndText()

	ops := run.Ops()
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(ops))
	}
	if ops[0].Coverage != ops[1].Coverage {
		t.Error("cached glyph did not reuse the coverage buffer")
	}

	// The glyph rasterises in a local frame anchored at its corner.
	cov := ops[0].Coverage
	if got := cov.At(5, 5); got != 1 {
		t.Errorf("glyph interior: got coverage %g, want 1", got)
	}
	if got := cov.At(10, 10); got != 0 {
		t.Errorf("glyph exterior: got coverage %g, want 0", got)
	}
	if ops[0].Min != (image.Point{X: 2, Y: 3}) {
		t.Errorf("got destination %v, want (2,3)", ops[0].Min)
	}
}

// TestTextRunFIFO verifies that drawing operations come out in encounter
// order even when a glyph repeats.
func TestTextRunFIFO(t *testing.T) {
	r := NewRasterizer()
	run := NewTextRun(r)
	defer run.Close()

	run.BeginText()
	addSquareGlyph(t, run, fixed.R(0, 0, 4, 4), 1)
	addSquareGlyph(t, run, fixed.R(5, 0, 9, 4), 2)
	addSquareGlyph(t, run, fixed.R(10, 0, 14, 4), 1)
	run.EndText()

	ops := run.Ops()
	if len(ops) != 3 {
		t.Fatalf("got %d ops, want 3", len(ops))
	}
	if ops[0].Coverage != ops[2].Coverage {
		t.Error("repeated glyph key did not share a buffer")
	}
	if ops[0].Coverage == ops[1].Coverage {
		t.Error("distinct glyph keys share a buffer")
	}
	wantMin := []image.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
	for i, op := range ops {
		if op.Min != wantMin[i] {
			t.Errorf("op %d: got destination %v, want %v", i, op.Min, wantMin[i])
		}
	}
}

// TestTextRunBeginText verifies that a new batch clears the queued ops
// but keeps the coverage cache.
func TestTextRunBeginText(t *testing.T) {
	r := NewRasterizer()
	run := NewTextRun(r)
	defer run.Close()

	bounds := fixed.R(0, 0, 4, 4)
	run.BeginText()
	addSquareGlyph(t, run, bounds, 7)
	run.EndText()

	run.BeginText()
	if len(run.Ops()) != 0 {
		t.Fatalf("got %d ops after BeginText, want 0", len(run.Ops()))
	}
	if run.BeginGlyph(bounds, 7) {
		t.Error("cache lost across batches within one run")
	}
	if err := run.EndGlyph(); err != nil {
		t.Fatal(err)
	}
	if len(run.Ops()) != 1 {
		t.Errorf("got %d ops, want 1", len(run.Ops()))
	}
}

// TestTextRunIsolation verifies that independent runs never share cached
// buffers, even for identical keys.
func TestTextRunIsolation(t *testing.T) {
	r := NewRasterizer()
	run1 := NewTextRun(r)
	defer run1.Close()
	run2 := NewTextRun(r)
	defer run2.Close()

	bounds := fixed.R(0, 0, 4, 4)
	run1.BeginText()
	addSquareGlyph(t, run1, bounds, 42)
	run2.BeginText()
	addSquareGlyph(t, run2, bounds, 42)

	if run1.Ops()[0].Coverage == run2.Ops()[0].Coverage {
		t.Error("independent text runs share a coverage buffer")
	}
}

func TestTextRunClose(t *testing.T) {
	r := NewRasterizer()
	run := NewTextRun(r)

	run.BeginText()
	addSquareGlyph(t, run, fixed.R(0, 0, 4, 4), 1)
	addSquareGlyph(t, run, fixed.R(5, 0, 9, 4), 2)
	run.EndText()

	if err := run.Close(); err != nil {
		t.Fatal(err)
	}
	if len(r.free) != 2 {
		t.Errorf("got %d released buffers, want 2", len(r.free))
	}
	if err := run.Close(); err != nil {
		t.Errorf("second Close: got error %v, want nil", err)
	}
	if len(r.free) != 2 {
		t.Errorf("second Close released buffers again: %d", len(r.free))
	}

	if run.BeginGlyph(fixed.R(0, 0, 4, 4), 3) {
		t.Error("BeginGlyph reported work needed on a closed run")
	}
	if err := run.EndGlyph(); !errors.Is(err, ErrTextRunClosed) {
		t.Errorf("got error %v after Close, want ErrTextRunClosed", err)
	}
}

// TestTextRunFractionalBounds verifies that a glyph with fractional
// bounds lands on the floored destination pixel.
func TestTextRunFractionalBounds(t *testing.T) {
	r := NewRasterizer()
	run := NewTextRun(r)
	defer run.Close()

	bounds := fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.I(2) + 32, Y: fixed.I(3) + 16},
		Max: fixed.Point26_6{X: fixed.I(6) + 32, Y: fixed.I(7) + 16},
	}
	run.BeginText()
	addSquareGlyph(t, run, bounds, 1)

	op := run.Ops()[0]
	if op.Min != (image.Point{X: 2, Y: 3}) {
		t.Errorf("got destination %v, want (2,3)", op.Min)
	}
	// The fractional part survives in the local frame: the glyph starts
	// half a pixel into the buffer.
	if got := op.Coverage.At(0, 1); got >= 0.75 {
		t.Errorf("leading edge cell: got coverage %g, want about 0.5", got)
	}
	if got := op.Coverage.At(2, 2); got != 1 {
		t.Errorf("glyph interior: got coverage %g, want 1", got)
	}
}

func TestTextRunBuildError(t *testing.T) {
	r := NewRasterizer()
	run := NewTextRun(r)
	defer run.Close()

	run.BeginText()
	if !run.BeginGlyph(fixed.R(0, 0, 4, 4), 1) {
		t.Fatal("BeginGlyph reported no work for a fresh key")
	}
	run.Builder().LineTo(vec.Vec2{X: 1, Y: 1}) // missing MoveTo
	if err := run.EndGlyph(); !errors.Is(err, ErrInvalidPathState) {
		t.Errorf("got error %v, want ErrInvalidPathState", err)
	}
}

// TestTextRunPenMode checks that a run with a stroker rasterises glyph
// outlines instead of fills.
func TestTextRunPenMode(t *testing.T) {
	r := NewRasterizer()
	r.Antialias = false
	run := NewTextRun(r)
	defer run.Close()
	run.Stroker = NewStroker(2)

	bounds := fixed.R(0, 0, 12, 12)
	run.BeginText()
	addSquareGlyph(t, run, bounds, 1)
	run.EndText()

	op := run.Ops()[0]
	// The stroke band extends half the width beyond the glyph bounds,
	// so the buffer anchors one pixel up and left of the glyph corner
	// and the queued destination must follow it.
	if op.Coverage.Min != (image.Point{X: -1, Y: -1}) {
		t.Errorf("got buffer anchor %v, want (-1,-1)", op.Coverage.Min)
	}
	if op.Min != (image.Point{X: -1, Y: -1}) {
		t.Errorf("got destination %v, want (-1,-1)", op.Min)
	}

	cov := op.Coverage
	// The stroked square is a ring: edges covered, centre hollow. With
	// the buffer anchored at (-1,-1), cell (1,7) is the left stem at
	// device x in [0,1) and cell (7,7) lies in the hollow centre.
	if got := cov.At(1, 7); got != 1 {
		t.Errorf("ring stem: got coverage %g, want 1", got)
	}
	if got := cov.At(7, 7); got != 0 {
		t.Errorf("ring centre: got coverage %g, want 0", got)
	}
}

// TestTextRunPenModePlacement checks that pen and brush mode paint the
// shared edge of a glyph at the same device pixels: the stroke band is
// centred on the fill boundary, shifted half the width outward.
func TestTextRunPenModePlacement(t *testing.T) {
	r := NewRasterizer()
	r.Antialias = false

	bounds := fixed.R(20, 30, 32, 42)

	fill := NewTextRun(r)
	defer fill.Close()
	fill.BeginText()
	addSquareGlyph(t, fill, bounds, 1)

	pen := NewTextRun(r)
	defer pen.Close()
	pen.Stroker = NewStroker(2)
	pen.BeginText()
	addSquareGlyph(t, pen, bounds, 1)

	fop := fill.Ops()[0]
	pop := pen.Ops()[0]
	if fop.Min != (image.Point{X: 20, Y: 30}) {
		t.Errorf("fill: got destination %v, want (20,30)", fop.Min)
	}
	if pop.Min != (image.Point{X: 19, Y: 29}) {
		t.Errorf("pen: got destination %v, want (19,29)", pop.Min)
	}

	// Device pixel (20, 35): interior edge of the fill, left stem of
	// the stroke ring. Both modes must cover it.
	if got := fop.Coverage.At(20-fop.Min.X, 35-fop.Min.Y); got != 1 {
		t.Errorf("fill at device (20,35): got coverage %g, want 1", got)
	}
	if got := pop.Coverage.At(20-pop.Min.X, 35-pop.Min.Y); got != 1 {
		t.Errorf("pen at device (20,35): got coverage %g, want 1", got)
	}
	// Device pixel (26, 36): glyph centre, filled but not stroked.
	if got := fop.Coverage.At(26-fop.Min.X, 36-fop.Min.Y); got != 1 {
		t.Errorf("fill at device (26,36): got coverage %g, want 1", got)
	}
	if got := pop.Coverage.At(26-pop.Min.X, 36-pop.Min.Y); got != 0 {
		t.Errorf("pen at device (26,36): got coverage %g, want 0", got)
	}
}
