/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package overlay

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"
	gojsonschema "github.com/xeipuuv/gojsonschema"

	"wheelstudio/internal/domain"
)

// SnapshotKey is the well-known store key the overlay set is persisted under.
const SnapshotKey = "board.overlays"

// snapshotEntry is the wire form of one overlay, id stripped. Pointer fields
// distinguish absent values so they can be defaulted on read. The scale field
// is a historical leftover: it is accepted on read, ignored, and written back
// as 1 so older builds keep parsing our output.
// Numeric fields are float64 on the wire: historical snapshots written by the
// browser build carry fractional pixel values, which are rounded on read.
type snapshotEntry struct {
	DataURL     string   `json:"dataUrl"`
	X           *float64 `json:"x,omitempty"`
	Y           *float64 `json:"y,omitempty"`
	Scale       *float64 `json:"scale,omitempty"`
	IsVisible   *bool    `json:"isVisible,omitempty"`
	IsLocked    *bool    `json:"isLocked,omitempty"`
	WidthPx     *float64 `json:"widthPx,omitempty"`
	HeightPx    *float64 `json:"heightPx,omitempty"`
	AspectRatio *float64 `json:"aspectRatio,omitempty"`
}

// entrySchema type-checks a single persisted entry. Entries that fail it are
// dropped on read instead of poisoning the whole snapshot.
const entrySchema = `{
  "type": "object",
  "required": ["dataUrl"],
  "properties": {
    "dataUrl":     {"type": "string", "minLength": 1},
    "x":           {"type": "number"},
    "y":           {"type": "number"},
    "scale":       {"type": "number"},
    "isVisible":   {"type": "boolean"},
    "isLocked":    {"type": "boolean"},
    "widthPx":     {"type": "number"},
    "heightPx":    {"type": "number"},
    "aspectRatio": {"type": "number"}
  }
}`

// MarshalSnapshot serializes the overlays, in order, with ids stripped.
func MarshalSnapshot(overlays []*domain.Overlay) ([]byte, error) {
	entries := make([]snapshotEntry, 0, len(overlays))
	one := 1.0
	for _, o := range overlays {
		x, y := float64(o.X), float64(o.Y)
		w, h := float64(o.Width), float64(o.Height)
		vis, locked, ratio := o.Visible, o.Locked, o.AspectRatio
		entries = append(entries, snapshotEntry{
			DataURL:     o.ImageData,
			X:           &x,
			Y:           &y,
			Scale:       &one,
			IsVisible:   &vis,
			IsLocked:    &locked,
			WidthPx:     &w,
			HeightPx:    &h,
			AspectRatio: &ratio,
		})
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

// UnmarshalSnapshot rebuilds overlays from persisted data. It accepts both
// the current ordered-sequence form and the historical single-object form.
// Malformed data yields an empty collection; individually invalid entries
// (including ones without image data) are dropped. Every returned overlay
// gets a fresh id.
func UnmarshalSnapshot(data []byte) []*domain.Overlay {
	raws := splitEntries(data)
	if len(raws) == 0 {
		return nil
	}
	schema := gojsonschema.NewStringLoader(entrySchema)
	var out []*domain.Overlay
	for _, raw := range raws {
		res, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(raw))
		if err != nil || !res.Valid() {
			continue
		}
		var e snapshotEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.DataURL == "" {
			continue
		}
		out = append(out, overlayFromEntry(e))
	}
	return out
}

// splitEntries tolerates both a JSON array and a bare object.
func splitEntries(data []byte) []json.RawMessage {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err == nil {
		return raws
	}
	var single map[string]any
	if err := json.Unmarshal(data, &single); err == nil {
		return []json.RawMessage{json.RawMessage(data)}
	}
	return nil
}

func overlayFromEntry(e snapshotEntry) *domain.Overlay {
	o := &domain.Overlay{
		ID:          uuid.NewString(),
		ImageData:   e.DataURL,
		X:           domain.DefaultPosition,
		Y:           domain.DefaultPosition,
		Width:       domain.DefaultDimension,
		Height:      domain.DefaultDimension,
		AspectRatio: 1,
		Visible:     true,
		Locked:      false,
	}
	if e.X != nil {
		o.X = int(math.Round(*e.X))
	}
	if e.Y != nil {
		o.Y = int(math.Round(*e.Y))
	}
	if e.WidthPx != nil {
		o.Width = int(math.Round(*e.WidthPx))
	}
	if e.HeightPx != nil {
		o.Height = int(math.Round(*e.HeightPx))
	}
	if e.AspectRatio != nil && *e.AspectRatio > 0 && !math.IsInf(*e.AspectRatio, 0) {
		o.AspectRatio = *e.AspectRatio
	}
	if e.IsVisible != nil {
		o.Visible = *e.IsVisible
	}
	if e.IsLocked != nil {
		o.Locked = *e.IsLocked
	}
	return o
}
