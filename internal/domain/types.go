/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for Wheel Studio: the wheel display
// format and the image overlays placed on the wheel board.

// WheelFormat is the display format of the wheel.
type WheelFormat string

const (
	// FormatDefault is the standard wheel rendering.
	FormatDefault WheelFormat = "default"
	// FormatDropout removes entries from the wheel as they are drawn.
	FormatDropout WheelFormat = "dropout"
	// FormatBattleRoyal is a retired format. It is never offered anymore and
	// only kept so stored values can be recognized and migrated to default.
	FormatBattleRoyal WheelFormat = "battle-royal"
)

// Board limits and defaults for overlays.
const (
	// MaxOverlays is the hard cap on simultaneously placed overlays.
	MaxOverlays = 4

	// MinDimension and MaxDimension bound user-editable overlay sizes in px.
	MinDimension = 40
	MaxDimension = 1200

	// VisibleMargin is the number of pixels of an overlay that must remain
	// inside the board after a drag, so it can always be grabbed again.
	VisibleMargin = 20

	// MaxInitialWidth caps the display width assigned to a freshly loaded
	// image; the height follows from the natural aspect ratio.
	MaxInitialWidth = 320

	// Defaults applied to stored overlays with absent fields.
	DefaultPosition  = 40
	DefaultDimension = 240
)

// Overlay is one user-placed image on the wheel board.
//
// ID is ephemeral: it is generated when the overlay is created or loaded and
// is never persisted. X/Y are pixel offsets relative to the board's top-left
// corner. Width/Height are the displayed size; AspectRatio is width/height at
// image load time and keeps the two synchronized during resize.
type Overlay struct {
	ID          string
	ImageData   string // embedded image payload (data URI)
	X           int
	Y           int
	Width       int
	Height      int
	AspectRatio float64
	Visible     bool
	Locked      bool
}

// Size is a measured width/height pair, used for the board container.
type Size struct {
	Width  int
	Height int
}
