//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
//
// Ensure you have the Fyne dependencies installed and a working OS driver.
package ui

import (
	"testing"

	"fyne.io/fyne/v2"

	"wheelstudio/internal/kvstore"
	"wheelstudio/internal/overlay"
)

func TestBoardCanvas_Defaults(t *testing.T) {
	board := overlay.New(kvstore.NewMemory())
	board.Load()
	bc := NewBoardCanvas(board)
	sz := bc.PreferredSize()
	if sz.Width != 800 || sz.Height != 600 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
	if bc.Selected() != "" {
		t.Fatalf("fresh canvas has a selection: %q", bc.Selected())
	}
}

func TestBoardCanvas_HitTestSkipsHiddenOverlays(t *testing.T) {
	store := kvstore.NewMemory()
	_ = store.Set(overlay.SnapshotKey, `[{"dataUrl":"x","x":0,"y":0,"widthPx":100,"heightPx":100,"isVisible":false}]`)
	board := overlay.New(store)
	board.Load()
	bc := NewBoardCanvas(board)
	if id := bc.hitTest(fyne.NewPos(50, 50)); id != "" {
		t.Fatalf("hidden overlay was hit: %q", id)
	}
}

func TestBoardCanvas_HitTestPrefersTopmost(t *testing.T) {
	store := kvstore.NewMemory()
	_ = store.Set(overlay.SnapshotKey, `[
		{"dataUrl":"a","x":0,"y":0,"widthPx":100,"heightPx":100},
		{"dataUrl":"b","x":50,"y":50,"widthPx":100,"heightPx":100}
	]`)
	board := overlay.New(store)
	board.Load()
	bc := NewBoardCanvas(board)
	ovs := board.Overlays()
	if id := bc.hitTest(fyne.NewPos(75, 75)); id != ovs[1].ID {
		t.Fatalf("expected topmost overlay %q, got %q", ovs[1].ID, id)
	}
	if id := bc.hitTest(fyne.NewPos(10, 10)); id != ovs[0].ID {
		t.Fatalf("expected bottom overlay %q, got %q", ovs[0].ID, id)
	}
}
