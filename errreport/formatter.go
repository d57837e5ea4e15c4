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
	"errors"
	"strings"
)

// Formatter renders an error and its causes as a report.
//
// Implementations must be safe for concurrent use.
type Formatter interface {
	// Format renders err. A nil error renders as an empty string.
	Format(err error) string
}

// Link is one entry of an error chain. Index 0 is the outermost error and the
// last link is the root cause.
type Link struct {
	Index   int
	Message string
}

// ErrorCause can be implemented by errors that name their cause without
// exposing it through Unwrap.
type ErrorCause interface {
	Cause() error
}

// Chain walks err from the outermost error to the root cause.
//
// Messages built with fmt.Errorf("...: %w", inner) repeat the inner message;
// the repeated suffix is trimmed so each link carries only its own context.
// Errors joined with errors.Join contribute each member's chain in order.
func Chain(err error) []Link {
	var links []Link
	walk(err, func(msg string) {
		links = append(links, Link{Index: len(links), Message: msg})
	})
	return links
}

func walk(err error, emit func(string)) {
	for err != nil {
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			members := multi.Unwrap()
			if !isPlainJoin(err, members) {
				emit(err.Error())
			}
			for _, m := range members {
				walk(m, emit)
			}
			return
		}

		next := errors.Unwrap(err)
		if next == nil {
			if c, ok := err.(ErrorCause); ok {
				next = c.Cause()
			}
		}
		emit(ownMessage(err, next))
		err = next
	}
}

// ownMessage strips the wrapped error's message from err's message.
func ownMessage(err, next error) string {
	msg := err.Error()
	if next == nil {
		return msg
	}
	inner := next.Error()
	if trimmed, ok := strings.CutSuffix(msg, ": "+inner); ok && trimmed != "" {
		return trimmed
	}
	return msg
}

// isPlainJoin reports whether err's message is nothing but its members'
// messages joined by newlines, as produced by errors.Join.
func isPlainJoin(err error, members []error) bool {
	parts := make([]string, 0, len(members))
	for _, m := range members {
		if m != nil {
			parts = append(parts, m.Error())
		}
	}
	return err.Error() == strings.Join(parts, "\n")
}
