/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package overlay implements the wheel board's image overlay editor: a small
// collection of user-placed images that can be added, replaced, dragged,
// resized, hidden, locked and deleted, persisted to a key-value store after
// every change and rehydrated from it on startup.
//
// The editor is single-threaded by design: all calls are expected to arrive
// on the UI event loop. Store and image-decode failures never propagate;
// they degrade to unchanged state.
package overlay

import (
	"log/slog"

	"github.com/google/uuid"

	"wheelstudio/internal/domain"
	"wheelstudio/internal/imaging"
	"wheelstudio/internal/kvstore"
	applog "wheelstudio/internal/log"
)

// dragSession is the single global drag slot. There is at most one active
// drag; starting a new one supersedes the previous (last writer wins).
type dragSession struct {
	id      string // overlay being dragged
	startX  int    // pointer position at BeginDrag
	startY  int
	originX int // overlay position at BeginDrag
	originY int
}

// Editor manages the overlay collection and its persistence.
type Editor struct {
	overlays []*domain.Overlay
	drag     *dragSession // nil while idle
	replace  string       // replace-target overlay id, empty when adding
	picking  bool         // an image selection round-trip is outstanding
	box      domain.Size  // last-measured container size, zero until measured

	store kvstore.Store
	key   string

	// OnPickImage opens the image selection side channel (file picker).
	// May be nil in headless use; completion arrives via HandleImageData.
	OnPickImage func()

	log *slog.Logger
}

// New returns an editor persisting through store. Call Load to rehydrate.
func New(store kvstore.Store) *Editor {
	return &Editor{
		store: store,
		key:   SnapshotKey,
		log:   applog.WithComponent("overlay"),
	}
}

// Load reads the persisted snapshot and rebuilds the collection. A missing,
// unreadable or malformed snapshot yields an empty collection. Entries beyond
// the overlay cap are discarded.
func (e *Editor) Load() {
	e.overlays = nil
	v, ok, err := e.store.Get(e.key)
	if err != nil {
		e.log.Warn("overlay store unavailable, starting empty", slog.Any("err", err))
		return
	}
	if !ok {
		return
	}
	loaded := UnmarshalSnapshot([]byte(v))
	if len(loaded) > domain.MaxOverlays {
		loaded = loaded[:domain.MaxOverlays]
	}
	e.overlays = loaded
	e.log.Info("overlays restored", slog.Int("count", len(e.overlays)))
}

// Overlays returns a copy of the collection in placement order.
func (e *Editor) Overlays() []domain.Overlay {
	out := make([]domain.Overlay, 0, len(e.overlays))
	for _, o := range e.overlays {
		out = append(out, *o)
	}
	return out
}

// Count returns the number of placed overlays.
func (e *Editor) Count() int { return len(e.overlays) }

// Get returns the overlay with the given id, if present.
func (e *Editor) Get(id string) (domain.Overlay, bool) {
	if o := e.find(id); o != nil {
		return *o, true
	}
	return domain.Overlay{}, false
}

// SetContainerSize refreshes the cached board measurement used for drag
// clamping and initial placement. The cache is allowed to go stale between
// resize events.
func (e *Editor) SetContainerSize(width, height int) {
	e.box = domain.Size{Width: width, Height: height}
}

// ContainerSize returns the last-measured board size (zero until measured).
func (e *Editor) ContainerSize() domain.Size { return e.box }

// RequestAdd starts the add-image flow. If any overlay is locked, it unlocks
// all of them and aborts instead of adding, so a locked set never silently
// blocks new uploads. At capacity it is a no-op.
func (e *Editor) RequestAdd() {
	if e.anyLocked() {
		e.UnlockAll()
		return
	}
	if len(e.overlays) >= domain.MaxOverlays {
		e.log.Debug("add ignored, board is full")
		return
	}
	e.replace = ""
	e.openPicker()
}

// RequestReplace starts the replace-image flow for the given overlay.
// Locked or unknown overlays are left alone.
func (e *Editor) RequestReplace(id string) {
	o := e.find(id)
	if o == nil || o.Locked {
		return
	}
	e.replace = id
	e.openPicker()
}

func (e *Editor) openPicker() {
	e.picking = true
	if e.OnPickImage != nil {
		e.OnPickImage()
	}
}

// HandleImageData completes an image selection round-trip with the raw file
// bytes. Decode failures drop the attempt. Because decode is asynchronous,
// the collection may have changed since the request: capacity and the
// replace-target are re-checked here, not at request time.
func (e *Editor) HandleImageData(data []byte) {
	if !e.picking {
		return
	}
	e.picking = false
	target := e.replace
	e.replace = ""

	w, h, err := imaging.Decode(data)
	if err != nil {
		e.log.Debug("image decode failed, dropping upload", slog.Any("err", err))
		return
	}
	ratio := 1.0
	if w > 0 && h > 0 {
		ratio = float64(w) / float64(h)
	}
	width := w
	if width > domain.MaxInitialWidth {
		width = domain.MaxInitialWidth
	}
	height := int(float64(width)/ratio + 0.5)
	uri := imaging.DataURI(data)

	if target != "" {
		// Replace in place; the target may have been deleted or locked
		// while the picker was open.
		o := e.find(target)
		if o == nil || o.Locked {
			return
		}
		o.ImageData = uri
		o.Width = width
		o.Height = height
		o.AspectRatio = ratio
		e.persist()
		return
	}

	if len(e.overlays) >= domain.MaxOverlays {
		return
	}
	x, y := domain.DefaultPosition, domain.DefaultPosition
	if e.box.Width > 0 && e.box.Height > 0 {
		x = e.box.Width / 20 // 5% of the last-known container size
		y = e.box.Height / 20
	}
	e.overlays = append(e.overlays, &domain.Overlay{
		ID:          uuid.NewString(),
		ImageData:   uri,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		AspectRatio: ratio,
		Visible:     true,
	})
	e.persist()
}

// BeginDrag opens a drag session for the overlay under the pointer. Locked
// or unknown overlays are ignored. An already-active session is superseded.
func (e *Editor) BeginDrag(id string, pointerX, pointerY int) {
	o := e.find(id)
	if o == nil || o.Locked {
		return
	}
	e.drag = &dragSession{
		id:      id,
		startX:  pointerX,
		startY:  pointerY,
		originX: o.X,
		originY: o.Y,
	}
}

// ContinueDrag moves the dragged overlay to origin plus the pointer delta,
// clamped so at least the visible margin stays inside the board.
func (e *Editor) ContinueDrag(pointerX, pointerY int) {
	if e.drag == nil {
		return
	}
	o := e.find(e.drag.id)
	if o == nil {
		e.drag = nil
		return
	}
	x := e.drag.originX + (pointerX - e.drag.startX)
	y := e.drag.originY + (pointerY - e.drag.startY)
	o.X = e.clampToBoard(x, e.box.Width)
	o.Y = e.clampToBoard(y, e.box.Height)
	e.persist()
}

// EndDrag closes the drag session. The overlay stays where the last
// ContinueDrag left it.
func (e *Editor) EndDrag() { e.drag = nil }

// Dragging returns the id of the overlay being dragged, if any.
func (e *Editor) Dragging() (string, bool) {
	if e.drag == nil {
		return "", false
	}
	return e.drag.id, true
}

// clampToBoard keeps v within [0, extent-margin]. An unmeasured extent only
// clamps the lower bound.
func (e *Editor) clampToBoard(v, extent int) int {
	if v < 0 {
		return 0
	}
	if upper := extent - domain.VisibleMargin; extent > domain.VisibleMargin && v > upper {
		return upper
	}
	return v
}

// SetWidth sets an overlay's width, clamped to the editable range, and
// derives the height from the stored aspect ratio. The derived side is
// floored at the minimum but deliberately not re-clamped to the maximum.
func (e *Editor) SetWidth(id string, value int) {
	o := e.find(id)
	if o == nil || o.Locked {
		return
	}
	o.Width = clampDimension(value)
	o.Height = derived(float64(o.Width) / o.AspectRatio)
	e.persist()
}

// SetHeight mirrors SetWidth for the height side.
func (e *Editor) SetHeight(id string, value int) {
	o := e.find(id)
	if o == nil || o.Locked {
		return
	}
	o.Height = clampDimension(value)
	o.Width = derived(float64(o.Height) * o.AspectRatio)
	e.persist()
}

func clampDimension(v int) int {
	if v < domain.MinDimension {
		return domain.MinDimension
	}
	if v > domain.MaxDimension {
		return domain.MaxDimension
	}
	return v
}

func derived(v float64) int {
	n := int(v + 0.5)
	if n < domain.MinDimension {
		return domain.MinDimension
	}
	return n
}

// ToggleVisible flips an overlay's visibility.
func (e *Editor) ToggleVisible(id string) {
	o := e.find(id)
	if o == nil {
		return
	}
	o.Visible = !o.Visible
	e.persist()
}

// Lock freezes an overlay's position, size and image until unlocked.
func (e *Editor) Lock(id string) {
	o := e.find(id)
	if o == nil || o.Locked {
		return
	}
	o.Locked = true
	e.persist()
}

// UnlockAll clears the locked flag on every overlay.
func (e *Editor) UnlockAll() {
	changed := false
	for _, o := range e.overlays {
		if o.Locked {
			o.Locked = false
			changed = true
		}
	}
	if changed {
		e.persist()
	}
}

// Delete removes an overlay entirely.
func (e *Editor) Delete(id string) {
	for i, o := range e.overlays {
		if o.ID == id {
			e.overlays = append(e.overlays[:i], e.overlays[i+1:]...)
			if e.drag != nil && e.drag.id == id {
				e.drag = nil
			}
			e.persist()
			return
		}
	}
}

// Persist writes the current snapshot to the store. It is best-effort: a
// failing store leaves the in-memory state authoritative.
func (e *Editor) Persist() error {
	b, err := MarshalSnapshot(e.overlays)
	if err != nil {
		return err
	}
	return e.store.Set(e.key, string(b))
}

func (e *Editor) persist() {
	if err := e.Persist(); err != nil {
		e.log.Warn("snapshot write failed", slog.Any("err", err))
	}
}

func (e *Editor) find(id string) *domain.Overlay {
	for _, o := range e.overlays {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (e *Editor) anyLocked() bool {
	for _, o := range e.overlays {
		if o.Locked {
			return true
		}
	}
	return false
}
