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

package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/worldcoin/telemetry-batteries/config"
)

// textStyle selects the line layout of a textHandler.
type textStyle int

const (
	// stylePretty is the development layout: short clock time, padded level,
	// colors and the source file when enabled.
	stylePretty textStyle = iota
	// styleCompact is a single key=value line with a full timestamp.
	styleCompact
)

// lineBufferPool provides reusable buffers for formatting log lines.
var lineBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// palette holds the colors of one handler. Each color is forced on or off
// so output does not depend on whether stdout is a terminal.
type palette struct {
	time    *color.Color
	trace   *color.Color
	debug   *color.Color
	info    *color.Color
	warn    *color.Color
	err     *color.Color
	message *color.Color
	key     *color.Color
	source  *color.Color
}

func newPalette(enabled bool) *palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &palette{
		time:    mk(color.Faint),
		trace:   mk(color.FgMagenta, color.Bold),
		debug:   mk(color.FgBlue, color.Bold),
		info:    mk(color.FgGreen, color.Bold),
		warn:    mk(color.FgYellow, color.Bold),
		err:     mk(color.FgRed, color.Bold),
		message: mk(color.FgHiWhite),
		key:     mk(color.Faint),
		source:  mk(color.FgWhite),
	}
}

func (p *palette) level(l slog.Level) *color.Color {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l > config.LevelTrace:
		return p.debug
	default:
		return p.trace
	}
}

// textHandler implements [slog.Handler] for the human-readable formats.
//
// Thread-safe: Safe for concurrent use by multiple goroutines. Each record
// is written with a single Write call.
type textHandler struct {
	style     textStyle
	output    io.Writer
	mu        *sync.Mutex
	addSource bool
	colors    *palette
	prefix    string
	attrs     []slog.Attr
}

var _ slog.Handler = (*textHandler)(nil)

func newTextHandler(w io.Writer, style textStyle, addSource, colorize bool) *textHandler {
	return &textHandler{
		style:     style,
		output:    w,
		mu:        &sync.Mutex{},
		addSource: addSource,
		colors:    newPalette(colorize),
	}
}

// Enabled reports true for every level; the level filter runs in front.
func (h *textHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle formats and writes a log record.
func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	b := lineBufferPool.Get().(*bytes.Buffer)
	b.Reset()
	defer lineBufferPool.Put(b)

	switch h.style {
	case styleCompact:
		b.WriteString(h.colors.time.Sprint(r.Time.Format(time.RFC3339Nano)))
		b.WriteByte(' ')
		b.WriteString(h.colors.level(r.Level).Sprint(levelLabel(r.Level)))
	default:
		b.WriteString(h.colors.time.Sprint(r.Time.Format("15:04:05.000")))
		b.WriteByte(' ')
		b.WriteString(h.colors.level(r.Level).Sprintf("%-5s", levelLabel(r.Level)))
	}

	b.WriteByte(' ')
	b.WriteString(h.colors.message.Sprint(r.Message))

	for _, a := range h.attrs {
		h.appendAttr(b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(b, h.prefix, a)
		return true
	})

	if h.addSource && r.PC != 0 {
		if src := recordSource(r.PC); src != "" {
			b.WriteByte(' ')
			b.WriteString(h.colors.source.Sprint("(" + src + ")"))
		}
	}

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(b.Bytes())
	return err
}

// WithAttrs returns a new handler with additional attributes.
// Implements [slog.Handler.WithAttrs].
func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(h2.attrs, h.attrs)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup returns a new handler whose later attribute keys are
// prefixed with name.
// Implements [slog.Handler.WithGroup].
func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

// appendAttr writes " key=value", flattening groups into dotted keys.
func (h *textHandler) appendAttr(b *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			h.appendAttr(b, prefix, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(h.colors.key.Sprint(prefix + a.Key + "="))
	b.WriteString(formatValue(a.Value))
}

// formatValue renders a resolved value. Strings containing spaces, quotes or
// '=' are quoted so the line stays splittable.
func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// levelLabel is the upper-case level name, with TRACE for levels below debug.
func levelLabel(l slog.Level) string {
	return strings.ToUpper(config.LevelName(l))
}

// recordSource returns "file:line" for a pc if available.
func recordSource(pc uintptr) string {
	fs := runtime.CallersFrames([]uintptr{pc})
	f, _ := fs.Next()
	if f.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}
