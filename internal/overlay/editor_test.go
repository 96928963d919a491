/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package overlay

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"wheelstudio/internal/domain"
	"wheelstudio/internal/kvstore"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newEditor(t *testing.T) *Editor {
	t.Helper()
	e := New(kvstore.NewMemory())
	e.Load()
	return e
}

// addImage runs one full add round-trip and returns the new overlay's id.
func addImage(t *testing.T, e *Editor, w, h int) string {
	t.Helper()
	before := e.Count()
	e.RequestAdd()
	e.HandleImageData(pngBytes(t, w, h))
	ovs := e.Overlays()
	if len(ovs) != before+1 {
		t.Fatalf("add did not grow collection: %d -> %d", before, len(ovs))
	}
	return ovs[len(ovs)-1].ID
}

func TestAddStopsAtCapacity(t *testing.T) {
	e := newEditor(t)
	for i := 0; i < domain.MaxOverlays; i++ {
		addImage(t, e, 100, 100)
	}
	// A fifth request must not even open the picker.
	picked := false
	e.OnPickImage = func() { picked = true }
	e.RequestAdd()
	e.HandleImageData(pngBytes(t, 100, 100))
	if picked {
		t.Fatalf("picker opened at capacity")
	}
	if e.Count() != domain.MaxOverlays {
		t.Fatalf("collection grew past cap: %d", e.Count())
	}
}

func TestAddWithLockedOverlayUnlocksAllAndAborts(t *testing.T) {
	e := newEditor(t)
	a := addImage(t, e, 100, 100)
	b := addImage(t, e, 100, 100)
	e.Lock(a)

	picked := false
	e.OnPickImage = func() { picked = true }
	e.RequestAdd()
	if picked {
		t.Fatalf("picker opened while unlocking")
	}
	if e.Count() != 2 {
		t.Fatalf("add while locked changed collection size: %d", e.Count())
	}
	for _, id := range []string{a, b} {
		o, _ := e.Get(id)
		if o.Locked {
			t.Fatalf("overlay %s still locked after add request", id)
		}
	}
}

func TestNewOverlayDimensionsFollowNaturalSize(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 640, 320) // wider than the initial cap
	o, _ := e.Get(id)
	if o.Width != domain.MaxInitialWidth {
		t.Fatalf("width = %d, want cap %d", o.Width, domain.MaxInitialWidth)
	}
	if o.AspectRatio != 2 {
		t.Fatalf("ratio = %v, want 2", o.AspectRatio)
	}
	if o.Height != domain.MaxInitialWidth/2 {
		t.Fatalf("height = %d, want %d", o.Height, domain.MaxInitialWidth/2)
	}
	if !o.Visible || o.Locked {
		t.Fatalf("fresh overlay has wrong flags: %+v", o)
	}

	small := addImage(t, e, 120, 60) // narrower than the cap keeps natural width
	so, _ := e.Get(small)
	if so.Width != 120 || so.Height != 60 {
		t.Fatalf("small image resized: %dx%d", so.Width, so.Height)
	}
}

func TestInitialPositionUsesContainerFraction(t *testing.T) {
	e := newEditor(t)
	e.SetContainerSize(1000, 600)
	id := addImage(t, e, 100, 100)
	o, _ := e.Get(id)
	if o.X != 50 || o.Y != 30 {
		t.Fatalf("initial position = %d,%d, want 50,30", o.X, o.Y)
	}
}

func TestInitialPositionFallsBackWhenUnmeasured(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	o, _ := e.Get(id)
	if o.X != domain.DefaultPosition || o.Y != domain.DefaultPosition {
		t.Fatalf("initial position = %d,%d, want defaults", o.X, o.Y)
	}
}

func TestDecodeFailureDropsAttempt(t *testing.T) {
	e := newEditor(t)
	e.RequestAdd()
	e.HandleImageData([]byte("not an image"))
	if e.Count() != 0 {
		t.Fatalf("decode failure added an overlay")
	}
}

func TestReplaceKeepsPositionAndFlags(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.BeginDrag(id, 0, 0)
	e.ContinueDrag(60, 25)
	e.EndDrag()
	e.ToggleVisible(id)

	e.RequestReplace(id)
	e.HandleImageData(pngBytes(t, 200, 100))

	o, ok := e.Get(id)
	if !ok {
		t.Fatalf("overlay disappeared on replace")
	}
	if o.X != 100 || o.Y != 65 {
		t.Fatalf("replace moved the overlay: %d,%d", o.X, o.Y)
	}
	if o.Visible {
		t.Fatalf("replace reset visibility")
	}
	if o.AspectRatio != 2 || o.Width != 200 || o.Height != 100 {
		t.Fatalf("replace did not adopt new image geometry: %+v", o)
	}
	if e.Count() != 1 {
		t.Fatalf("replace changed collection size: %d", e.Count())
	}
}

func TestReplaceTargetDeletedMidDecodeIsNoOp(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.RequestReplace(id)
	// The target vanishes while the picker/decode is outstanding.
	e.Delete(id)
	e.HandleImageData(pngBytes(t, 200, 100))
	if e.Count() != 0 {
		t.Fatalf("completion resurrected a deleted overlay")
	}
}

func TestReplaceOfLockedOverlayIsRefused(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.Lock(id)
	picked := false
	e.OnPickImage = func() { picked = true }
	e.RequestReplace(id)
	if picked {
		t.Fatalf("picker opened for a locked overlay")
	}
}

func TestCapacityReachedMidDecodeIsNoOp(t *testing.T) {
	e := newEditor(t)
	for i := 0; i < domain.MaxOverlays-1; i++ {
		addImage(t, e, 100, 100)
	}
	// Open an add picker, then fill the last slot before it completes.
	e.RequestAdd()
	pending := pngBytes(t, 50, 50)
	e.RequestAdd()
	e.HandleImageData(pngBytes(t, 100, 100))
	if e.Count() != domain.MaxOverlays {
		t.Fatalf("setup failed: %d overlays", e.Count())
	}
	// The stale completion must re-check capacity and drop.
	e.HandleImageData(pending)
	if e.Count() != domain.MaxOverlays {
		t.Fatalf("stale completion grew collection past cap: %d", e.Count())
	}
}

func TestDragMovesAndClampsToBoard(t *testing.T) {
	e := newEditor(t)
	e.SetContainerSize(800, 600)
	id := addImage(t, e, 100, 100)

	e.BeginDrag(id, 500, 500)
	e.ContinueDrag(510, 480)
	o, _ := e.Get(id)
	if o.X != 50 || o.Y != 10 {
		t.Fatalf("drag delta not applied: %d,%d", o.X, o.Y)
	}

	// Far off the right/bottom edge: clamp to extent minus margin.
	e.ContinueDrag(9999, 9999)
	o, _ = e.Get(id)
	if o.X != 800-domain.VisibleMargin || o.Y != 600-domain.VisibleMargin {
		t.Fatalf("drag not clamped to board: %d,%d", o.X, o.Y)
	}

	// Far off the top/left edge: clamp to zero.
	e.ContinueDrag(-9999, -9999)
	o, _ = e.Get(id)
	if o.X != 0 || o.Y != 0 {
		t.Fatalf("drag not clamped at origin: %d,%d", o.X, o.Y)
	}

	e.EndDrag()
	if _, active := e.Dragging(); active {
		t.Fatalf("drag session survived EndDrag")
	}
}

func TestDragOnLockedOverlayIsIgnored(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.Lock(id)
	e.BeginDrag(id, 0, 0)
	if _, active := e.Dragging(); active {
		t.Fatalf("locked overlay accepted a drag")
	}
	e.ContinueDrag(100, 100)
	o, _ := e.Get(id)
	if o.X != domain.DefaultPosition || o.Y != domain.DefaultPosition {
		t.Fatalf("locked overlay moved: %d,%d", o.X, o.Y)
	}
}

func TestNewDragSupersedesActiveOne(t *testing.T) {
	e := newEditor(t)
	a := addImage(t, e, 100, 100)
	b := addImage(t, e, 100, 100)
	e.BeginDrag(a, 0, 0)
	e.BeginDrag(b, 0, 0)
	if id, _ := e.Dragging(); id != b {
		t.Fatalf("drag slot not superseded: %s", id)
	}
	e.ContinueDrag(10, 10)
	ao, _ := e.Get(a)
	if ao.X != domain.DefaultPosition {
		t.Fatalf("superseded drag still moved overlay %s", a)
	}
}

func TestContinueDragWithoutSessionIsNoOp(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.ContinueDrag(500, 500)
	o, _ := e.Get(id)
	if o.X != domain.DefaultPosition || o.Y != domain.DefaultPosition {
		t.Fatalf("pointer move without a session moved an overlay")
	}
}

func TestSetWidthDerivesHeightFromRatio(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 50) // ratio 2

	e.SetWidth(id, 80)
	o, _ := e.Get(id)
	if o.Width != 80 || o.Height != 40 {
		t.Fatalf("SetWidth(80): %dx%d, want 80x40", o.Width, o.Height)
	}

	// Below the minimum: both sides floor at 40.
	e.SetWidth(id, 10)
	o, _ = e.Get(id)
	if o.Width != domain.MinDimension || o.Height != domain.MinDimension {
		t.Fatalf("SetWidth(10): %dx%d", o.Width, o.Height)
	}

	// Above the maximum: the edited side clamps, the derived side follows.
	e.SetWidth(id, 5000)
	o, _ = e.Get(id)
	if o.Width != domain.MaxDimension || o.Height != domain.MaxDimension/2 {
		t.Fatalf("SetWidth(5000): %dx%d", o.Width, o.Height)
	}
}

func TestSetHeightDerivedWidthMayExceedMaximum(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 50) // ratio 2

	// The edited side clamps to 1200; the derived side is intentionally not
	// re-clamped, so a ratio-2 overlay ends up 2400 wide.
	e.SetHeight(id, 2000)
	o, _ := e.Get(id)
	if o.Height != domain.MaxDimension {
		t.Fatalf("height = %d, want %d", o.Height, domain.MaxDimension)
	}
	if o.Width != 2400 {
		t.Fatalf("derived width = %d, want 2400", o.Width)
	}
}

func TestResizeUnknownOrLockedIsNoOp(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.SetWidth("nope", 500)
	e.Lock(id)
	e.SetWidth(id, 500)
	o, _ := e.Get(id)
	if o.Width != 100 {
		t.Fatalf("locked overlay resized to %d", o.Width)
	}
}

func TestToggleVisibleLockAndDelete(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)

	e.ToggleVisible(id)
	if o, _ := e.Get(id); o.Visible {
		t.Fatalf("visibility did not toggle off")
	}
	e.ToggleVisible(id)
	if o, _ := e.Get(id); !o.Visible {
		t.Fatalf("visibility did not toggle back on")
	}

	e.Lock(id)
	if o, _ := e.Get(id); !o.Locked {
		t.Fatalf("lock not applied")
	}
	e.UnlockAll()
	if o, _ := e.Get(id); o.Locked {
		t.Fatalf("unlock-all left overlay locked")
	}

	e.Delete(id)
	if _, ok := e.Get(id); ok {
		t.Fatalf("delete left the overlay behind")
	}
	if e.Count() != 0 {
		t.Fatalf("count after delete = %d", e.Count())
	}
}

func TestDeletingDraggedOverlayClosesSession(t *testing.T) {
	e := newEditor(t)
	id := addImage(t, e, 100, 100)
	e.BeginDrag(id, 0, 0)
	e.Delete(id)
	if _, active := e.Dragging(); active {
		t.Fatalf("drag session outlived its overlay")
	}
	e.ContinueDrag(10, 10) // must not panic
}

func TestEveryMutationPersists(t *testing.T) {
	store := kvstore.NewMemory()
	e := New(store)
	e.Load()
	id := addImage(t, e, 100, 50)
	e.SetWidth(id, 200)
	e.BeginDrag(id, 0, 0)
	e.ContinueDrag(7, 9)
	e.EndDrag()

	// A second editor over the same store sees the final state, with a
	// fresh id.
	e2 := New(store)
	e2.Load()
	ovs := e2.Overlays()
	if len(ovs) != 1 {
		t.Fatalf("rehydrated %d overlays, want 1", len(ovs))
	}
	got := ovs[0]
	want, _ := e.Get(id)
	if got.ID == want.ID {
		t.Fatalf("persisted id was reused across load")
	}
	if got.X != want.X || got.Y != want.Y || got.Width != want.Width ||
		got.Height != want.Height || got.AspectRatio != want.AspectRatio ||
		got.Visible != want.Visible || got.Locked != want.Locked ||
		got.ImageData != want.ImageData {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadSurvivesBrokenStore(t *testing.T) {
	store := kvstore.NewMemory()
	_ = store.Set(SnapshotKey, "{{{ not json")
	e := New(store)
	e.Load()
	if e.Count() != 0 {
		t.Fatalf("malformed snapshot produced overlays")
	}
}

func TestLoadDiscardsEntriesBeyondCap(t *testing.T) {
	store := kvstore.NewMemory()
	_ = store.Set(SnapshotKey, `[{"dataUrl":"a"},{"dataUrl":"b"},{"dataUrl":"c"},{"dataUrl":"d"},{"dataUrl":"e"},{"dataUrl":"f"}]`)
	e := New(store)
	e.Load()
	if e.Count() != domain.MaxOverlays {
		t.Fatalf("loaded %d overlays, want cap %d", e.Count(), domain.MaxOverlays)
	}
}
