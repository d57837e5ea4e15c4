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
	"strings"

	"github.com/fatih/color"
)

// Color renders an error chain as a numbered, multi-line report:
//
//	Error:
//	   0: loading config
//	   1: open telemetry.yaml
//	   2: no such file or directory
//
// Colors are written unless NoColor is set, whatever the output is.
type Color struct {
	// NoColor disables ANSI escapes.
	NoColor bool
}

// NewColor returns a Color formatter. Escapes are enabled unless the
// process disables them (NO_COLOR or a non-terminal stdout).
func NewColor() *Color {
	return &Color{NoColor: color.NoColor}
}

// Format renders err as a numbered chain.
func (f *Color) Format(err error) string {
	links := Chain(err)
	if len(links) == 0 {
		return ""
	}

	header := f.paint(color.FgRed, color.Bold)
	index := f.paint(color.FgHiBlack)
	root := f.paint(color.FgRed)

	width := len(fmt.Sprint(len(links) - 1))

	var b strings.Builder
	b.WriteString(header.Sprint("Error:"))
	for i, l := range links {
		b.WriteString("\n   ")
		b.WriteString(index.Sprintf("%*d:", width, l.Index))
		b.WriteByte(' ')
		msg := indentContinuation(l.Message, width+5)
		if i == len(links)-1 {
			b.WriteString(root.Sprint(msg))
			continue
		}
		b.WriteString(msg)
	}
	return b.String()
}

func (f *Color) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}

// indentContinuation aligns the lines after the first under the message column.
func indentContinuation(msg string, n int) string {
	if !strings.Contains(msg, "\n") {
		return msg
	}
	return strings.ReplaceAll(msg, "\n", "\n"+strings.Repeat(" ", n))
}
