//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"wheelstudio/internal/crash"
	"wheelstudio/internal/domain"
	"wheelstudio/internal/format"
	"wheelstudio/internal/imaging"
	"wheelstudio/internal/kvstore"
	applog "wheelstudio/internal/log"
	"wheelstudio/internal/overlay"
)

// wheelFormatKey is the store key the chosen wheel format lives under.
const wheelFormatKey = "wheel.format"

// labels resolves option label keys until a real localization layer exists.
var labels = map[string]string{
	"format.default": "Default",
	"format.dropout": "Dropout",
}

func translate(key string) string {
	if s, ok := labels[key]; ok {
		return s
	}
	return key
}

// Run starts the desktop UI over the store in dataDir.
func Run(dataDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("dataDir", dataDir))

	var store kvstore.Store
	if s, err := kvstore.OpenSQLite(dataDir); err != nil {
		l.Warn("store unavailable, falling back to in-memory state", slog.Any("err", err))
		store = kvstore.NewMemory()
	} else {
		store = s
	}

	board := overlay.New(store)
	board.Load()
	defer func() { crash.Recover(dataDir, board) }()

	fyneApp := app.NewWithID("wheelstudio")
	w := fyneApp.NewWindow("Wheel Studio")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 700)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")

	// Wheel format selection. The stored value may predate the current
	// option set; Observe rewrites it to the default if so.
	storedFormat, _, _ := store.Get(wheelFormatKey)
	field := format.NewField(domain.WheelFormat(storedFormat))
	selector := format.NewSelector(field, translate)
	if selector.Observe() {
		if err := store.Set(wheelFormatKey, string(field.Value())); err != nil {
			l.Warn("persisting repaired format failed", slog.Any("err", err))
		}
	}
	formatRadio := newFormatRadio(selector, func(v domain.WheelFormat) {
		if err := store.Set(wheelFormatKey, string(v)); err != nil {
			l.Warn("persisting format failed", slog.Any("err", err))
		}
		status.SetText(fmt.Sprintf("Format: %s", v))
	})

	boardWidget := NewBoardCanvas(board)

	// Overlay control rows (right pane), rebuilt after every board change.
	controlsBox := container.NewVBox()
	var refreshControls func()

	pickImage := func() {
		open := dialog.NewFileOpen(func(ur fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if ur == nil {
				return
			}
			data, rerr := io.ReadAll(ur)
			_ = ur.Close()
			if rerr != nil {
				dialog.ShowError(rerr, w)
				return
			}
			board.HandleImageData(data)
			boardWidget.Refresh()
			refreshControls()
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"}))
		open.Show()
	}
	board.OnPickImage = pickImage

	addBtn := widget.NewButton("Add Image", func() {
		board.RequestAdd()
		boardWidget.Refresh()
		refreshControls()
	})

	refreshControls = func() {
		rows := []fyne.CanvasObject{}
		for i, o := range board.Overlays() {
			rows = append(rows, overlayControlRow(i, o, board, boardWidget, refreshControls, status))
		}
		controlsBox.Objects = rows
		controlsBox.Refresh()
		addBtn.Enable()
		if board.Count() >= domain.MaxOverlays {
			addBtn.Disable()
		}
	}
	boardWidget.OnChange = refreshControls
	refreshControls()

	right := container.NewVBox(
		widget.NewLabelWithStyle("Wheel Format", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		formatRadio,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Overlays", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		addBtn,
		controlsBox,
	)

	root := container.NewBorder(nil, status, nil, container.NewVScroll(right), boardWidget)
	w.SetContent(root)

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if err := store.Close(); err != nil {
			l.Warn("closing store failed", slog.Any("err", err))
		}
		w.Close()
	})

	w.ShowAndRun()
	return nil
}

// newFormatRadio builds the radio group for the wheel format field. The
// group reflects the bound value and pushes selections back through the
// selector, which silently drops anything not offered.
func newFormatRadio(sel *format.Selector, onChange func(domain.WheelFormat)) *widget.RadioGroup {
	opts := sel.Options()
	display := make([]string, 0, len(opts))
	byLabel := make(map[string]format.Option, len(opts))
	var current string
	for _, o := range opts {
		label := sel.Label(o)
		display = append(display, label)
		byLabel[label] = o
	}
	radio := widget.NewRadioGroup(display, nil)
	for _, o := range opts {
		if o.Value == sel.Value() {
			current = sel.Label(o)
		}
	}
	radio.SetSelected(current)
	radio.OnChanged = func(label string) {
		o, ok := byLabel[label]
		if !ok {
			return
		}
		sel.Select(o.Value)
		if onChange != nil {
			onChange(o.Value)
		}
	}
	if !sel.Enabled() {
		radio.Disable()
	}
	return radio
}

// overlayControlRow builds the control strip for one overlay: visibility,
// lock, replace, delete, and width/height entries that resize along the
// stored aspect ratio.
func overlayControlRow(idx int, o domain.Overlay, board *overlay.Editor, bw *BoardCanvas, refresh func(), status *widget.Label) fyne.CanvasObject {
	id := o.ID
	title := widget.NewLabel(fmt.Sprintf("Overlay %d", idx+1))

	visible := widget.NewCheck("Visible", nil)
	visible.SetChecked(o.Visible)
	visible.OnChanged = func(bool) {
		board.ToggleVisible(id)
		bw.Refresh()
	}

	lockLabel := "Lock"
	if o.Locked {
		lockLabel = "Unlock"
	}
	lock := widget.NewButton(lockLabel, func() {
		if cur, ok := board.Get(id); ok && cur.Locked {
			board.UnlockAll()
		} else {
			board.Lock(id)
		}
		bw.Refresh()
		refresh()
	})

	replace := widget.NewButton("Replace", func() {
		board.RequestReplace(id)
	})
	del := widget.NewButton("Delete", func() {
		board.Delete(id)
		bw.Refresh()
		refresh()
		status.SetText("Overlay removed")
	})

	width := widget.NewEntry()
	width.SetText(strconv.Itoa(o.Width))
	width.OnSubmitted = func(s string) {
		if v, err := strconv.Atoi(s); err == nil {
			board.SetWidth(id, v)
			bw.Refresh()
			refresh()
		}
	}
	height := widget.NewEntry()
	height.SetText(strconv.Itoa(o.Height))
	height.OnSubmitted = func(s string) {
		if v, err := strconv.Atoi(s); err == nil {
			board.SetHeight(id, v)
			bw.Refresh()
			refresh()
		}
	}
	if o.Locked {
		replace.Disable()
		width.Disable()
		height.Disable()
	}

	size := container.NewGridWithColumns(4,
		widget.NewLabel("W"), width,
		widget.NewLabel("H"), height,
	)
	buttons := container.NewHBox(visible, lock, replace, del)
	return container.NewVBox(title, buttons, size, widget.NewSeparator())
}

// BoardCanvas renders the overlay images over the wheel board area and
// forwards pointer gestures to the overlay editor.
type BoardCanvas struct {
	widget.BaseWidget
	board    *overlay.Editor
	selected string
	dragMode dragMode

	// OnChange fires after a gesture mutated the board.
	OnChange func()
}

// dragMode represents current interaction kind
type dragMode int

const (
	dragNone dragMode = iota
	dragMove
)

func NewBoardCanvas(board *overlay.Editor) *BoardCanvas {
	bc := &BoardCanvas{board: board}
	bc.ExtendBaseWidget(bc)
	return bc
}

// CreateRenderer builds the image objects we position manually.
func (b *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})
	sel := canvas.NewRectangle(color.RGBA{})
	sel.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	sel.StrokeWidth = 2
	sel.Hide()
	r := &boardRenderer{bc: b, bg: bg, sel: sel}
	r.rebuild()
	return r
}

// PreferredSize sets a decent default size for the widget.
func (b *BoardCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

// Selected returns the id of the overlay under the last tap, if any.
func (b *BoardCanvas) Selected() string { return b.selected }

// hitTest returns the topmost visible overlay under pos (placement order,
// later overlays draw on top).
func (b *BoardCanvas) hitTest(pos fyne.Position) string {
	ovs := b.board.Overlays()
	for i := len(ovs) - 1; i >= 0; i-- {
		o := ovs[i]
		if !o.Visible {
			continue
		}
		x, y := float32(o.X), float32(o.Y)
		if pos.X >= x && pos.X <= x+float32(o.Width) && pos.Y >= y && pos.Y <= y+float32(o.Height) {
			return o.ID
		}
	}
	return ""
}

func (b *BoardCanvas) Tapped(e *fyne.PointEvent) {
	b.selected = b.hitTest(e.Position)
	b.dragMode = dragNone
	b.Refresh()
}

func (b *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if b.dragMode == dragNone {
		id := b.hitTest(e.Position)
		if id == "" {
			return
		}
		b.board.BeginDrag(id, int(e.Position.X), int(e.Position.Y))
		if _, active := b.board.Dragging(); !active {
			return // locked overlay
		}
		b.selected = id
		b.dragMode = dragMove
	}
	b.board.ContinueDrag(int(e.Position.X), int(e.Position.Y))
	b.Refresh()
}

func (b *BoardCanvas) DragEnd() {
	b.board.EndDrag()
	b.dragMode = dragNone
	if b.OnChange != nil {
		b.OnChange()
	}
}

type boardRenderer struct {
	bc      *BoardCanvas
	bg      *canvas.Rectangle
	sel     *canvas.Rectangle
	images  []*canvas.Image
	ids     []string
	objects []fyne.CanvasObject
}

// rebuild regenerates the image objects from the current overlay set.
func (r *boardRenderer) rebuild() {
	ovs := r.bc.board.Overlays()
	r.images = r.images[:0]
	r.ids = r.ids[:0]
	for _, o := range ovs {
		data, err := imaging.DecodeDataURI(o.ImageData)
		if err != nil {
			continue
		}
		img := canvas.NewImageFromReader(bytes.NewReader(data), o.ID)
		img.FillMode = canvas.ImageFillStretch
		r.images = append(r.images, img)
		r.ids = append(r.ids, o.ID)
	}
	r.objects = []fyne.CanvasObject{r.bg}
	for _, img := range r.images {
		r.objects = append(r.objects, img)
	}
	r.objects = append(r.objects, r.sel)
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bc.board.SetContainerSize(int(size.Width), int(size.Height))
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.sel.Hide()
	for i, img := range r.images {
		o, ok := r.bc.board.Get(r.ids[i])
		if !ok {
			img.Hide()
			continue
		}
		img.Move(fyne.NewPos(float32(o.X), float32(o.Y)))
		img.Resize(fyne.NewSize(float32(o.Width), float32(o.Height)))
		if o.Visible {
			img.Show()
		} else {
			img.Hide()
		}
		if o.ID == r.bc.selected && o.Visible {
			r.sel.Move(fyne.NewPos(float32(o.X)-2, float32(o.Y)-2))
			r.sel.Resize(fyne.NewSize(float32(o.Width)+4, float32(o.Height)+4))
			r.sel.Show()
		}
	}
}

func (r *boardRenderer) Destroy()                     {}
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 240) }
func (r *boardRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.bc.Size())
	canvas.Refresh(r.bc)
}
