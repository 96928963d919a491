/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "testing"

func TestBoardLimitsAreConsistent(t *testing.T) {
	if MinDimension <= 0 || MaxDimension <= MinDimension {
		t.Fatalf("dimension bounds are inverted: [%d,%d]", MinDimension, MaxDimension)
	}
	if DefaultDimension < MinDimension || DefaultDimension > MaxDimension {
		t.Fatalf("default dimension %d outside [%d,%d]", DefaultDimension, MinDimension, MaxDimension)
	}
	if MaxInitialWidth < MinDimension || MaxInitialWidth > MaxDimension {
		t.Fatalf("initial width cap %d outside [%d,%d]", MaxInitialWidth, MinDimension, MaxDimension)
	}
	if VisibleMargin <= 0 || VisibleMargin >= MinDimension {
		t.Fatalf("visible margin %d must be positive and below the minimum size", VisibleMargin)
	}
}
