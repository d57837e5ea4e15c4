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

package errreport

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/colorprofile"

	"github.com/worldcoin/telemetry-batteries/config"
)

var installed atomic.Pointer[Formatter]

// New returns the formatter for mode. An unknown mode selects Color.
func New(mode config.ErrorMode) Formatter {
	if mode == config.ErrorModeJSON {
		return NewJSON()
	}
	return NewColor()
}

// Install selects the process-wide formatter used by Report and Fprint.
// Later calls replace it.
func Install(mode config.ErrorMode) {
	SetFormatter(New(mode))
}

// SetFormatter installs f as the process-wide formatter. A nil f restores
// the default.
func SetFormatter(f Formatter) {
	if f == nil {
		installed.Store(nil)
		return
	}
	installed.Store(&f)
}

// Current returns the installed formatter, or a Color formatter when none
// was installed.
func Current() Formatter {
	if f := installed.Load(); f != nil {
		return *f
	}
	return NewColor()
}

// Report renders err with the installed formatter.
func Report(err error) string {
	return Current().Format(err)
}

// Fprint writes the report for err to w followed by a newline. Nothing is
// written for a nil error.
//
// Colors are reduced to what w supports: a w that is not a terminal gets
// the report without escapes.
func Fprint(w io.Writer, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	cw := colorprofile.NewWriter(w, os.Environ())
	return fmt.Fprintln(cw, Report(err))
}
