// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Error describes why a configuration value was rejected.
//
// Source names the tier that supplied the value ("env", "file", "dotenv",
// "option") or the stage that failed ("resolve"). Field is the environment
// variable or dotted key; Value is the offending text. Both may be empty.
type Error struct {
	Source    string
	Field     string
	Operation string // parse, load, decode or validate
	Value     string
	Err       error
}

// Error renders e as
//
//	config error in <source>[.<field>] during <operation>: <err>[ (got "<value>")]
//
// The value is left out when the wrapped error already quotes it.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config error in ")
	b.WriteString(e.Source)
	if e.Field != "" {
		b.WriteByte('.')
		b.WriteString(e.Field)
	}
	fmt.Fprintf(&b, " during %s: %v", e.Operation, e.Err)
	if e.Value != "" && !strings.Contains(fmt.Sprint(e.Err), strconv.Quote(e.Value)) {
		fmt.Fprintf(&b, " (got %q)", e.Value)
	}
	return b.String()
}

// Unwrap exposes the sentinel for errors.Is.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns an Error that is not tied to a field.
func NewError(source, operation string, err error) *Error {
	return &Error{Source: source, Operation: operation, Err: err}
}

// NewFieldError returns an Error for field.
func NewFieldError(source, field, operation string, err error) *Error {
	return &Error{Source: source, Field: field, Operation: operation, Err: err}
}

// NewValueError returns an Error for field carrying the rejected value.
func NewValueError(source, field, operation, value string, err error) *Error {
	return &Error{Source: source, Field: field, Operation: operation, Value: value, Err: err}
}
