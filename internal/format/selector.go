/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package format implements the wheel format selection field: a mutually
// exclusive choice among the currently offered formats, with automatic
// migration of legacy or otherwise disallowed stored values back to the
// default.
package format

import (
	"log/slog"

	"wheelstudio/internal/domain"
	applog "wheelstudio/internal/log"
)

// WriteMarks describes the form-state flags set alongside a value write.
type WriteMarks struct {
	Dirty    bool
	Touched  bool
	Validate bool
}

// Binding is the port to the externally owned form-state store holding the
// "format" field.
type Binding interface {
	// Value returns the currently bound format value.
	Value() domain.WheelFormat
	// Write replaces the bound value and applies the given marks.
	Write(v domain.WheelFormat, marks WriteMarks)
	// Submitting reports whether the owning form is currently submitting;
	// the control must be non-interactive while it is.
	Submitting() bool
}

// Translator resolves a label key to display text. It is the port to the
// external localization service.
type Translator func(key string) string

// Option is one selectable wheel format with its label key.
type Option struct {
	Value    domain.WheelFormat
	LabelKey string
}

// Options returns the formats currently offered, in presentation order.
// The retired battle-royal format is deliberately absent: the allow-set is
// derived from this list, so removing an option here is all it takes to
// migrate stored values away from it.
func Options() []Option {
	return []Option{
		{Value: domain.FormatDefault, LabelKey: "format.default"},
		{Value: domain.FormatDropout, LabelKey: "format.dropout"},
	}
}

// Selector owns the repair logic for the format field.
type Selector struct {
	binding   Binding
	options   []Option
	translate Translator
	log       *slog.Logger
}

// NewSelector builds a Selector over the given binding. A nil translator
// falls back to the raw label keys.
func NewSelector(b Binding, tr Translator) *Selector {
	if tr == nil {
		tr = func(key string) string { return key }
	}
	return &Selector{
		binding:   b,
		options:   Options(),
		translate: tr,
		log:       applog.WithComponent("format"),
	}
}

// Options returns the offered options.
func (s *Selector) Options() []Option { return s.options }

// Label returns the translated display text for an option.
func (s *Selector) Label(o Option) string { return s.translate(o.LabelKey) }

// Enabled reports whether the control should accept input.
func (s *Selector) Enabled() bool { return !s.binding.Submitting() }

// Value returns the currently bound value.
func (s *Selector) Value() domain.WheelFormat { return s.binding.Value() }

// Observe checks the currently bound value against the offered options and,
// if it is not one of them, overwrites it with the default, marking the field
// dirty, touched and due for validation. It reports whether a corrective
// write happened. Observing an already-valid value writes nothing.
func (s *Selector) Observe() bool {
	cur := s.binding.Value()
	if s.allowed(cur) {
		return false
	}
	s.log.Info("migrating disallowed format value",
		slog.String("from", string(cur)),
		slog.String("to", string(domain.FormatDefault)))
	s.binding.Write(domain.FormatDefault, WriteMarks{Dirty: true, Touched: true, Validate: true})
	return true
}

// Select writes a user-chosen value. Disallowed values are ignored.
func (s *Selector) Select(v domain.WheelFormat) {
	if !s.allowed(v) {
		return
	}
	s.binding.Write(v, WriteMarks{Dirty: true, Touched: true, Validate: true})
}

func (s *Selector) allowed(v domain.WheelFormat) bool {
	for _, o := range s.options {
		if o.Value == v {
			return true
		}
	}
	return false
}
