/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package format

import "wheelstudio/internal/domain"

// Field is an in-process Binding implementation: a single form field with
// the usual dirty/touched/validation bookkeeping. The desktop UI uses it as
// its form-state store; tests use it to observe selector behavior.
type Field struct {
	value           domain.WheelFormat
	dirty           bool
	touched         bool
	needsValidation bool
	submitting      bool
	writes          int
}

// NewField returns a Field holding the given initial value.
func NewField(v domain.WheelFormat) *Field { return &Field{value: v} }

func (f *Field) Value() domain.WheelFormat { return f.value }

func (f *Field) Write(v domain.WheelFormat, marks WriteMarks) {
	f.value = v
	if marks.Dirty {
		f.dirty = true
	}
	if marks.Touched {
		f.touched = true
	}
	if marks.Validate {
		f.needsValidation = true
	}
	f.writes++
}

func (f *Field) Submitting() bool { return f.submitting }

// SetSubmitting toggles the owning form's submitting state.
func (f *Field) SetSubmitting(v bool) { f.submitting = v }

// Dirty reports whether the field has been modified since creation.
func (f *Field) Dirty() bool { return f.dirty }

// Touched reports whether the field has been interacted with.
func (f *Field) Touched() bool { return f.touched }

// NeedsValidation reports whether a validation pass has been requested.
func (f *Field) NeedsValidation() bool { return f.needsValidation }

// Writes returns how many writes the field has received.
func (f *Field) Writes() int { return f.writes }
