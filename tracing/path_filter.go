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

package tracing

import (
	"regexp"
	"slices"
	"strings"
)

// skipRules lists request paths the middleware serves without a span.
type skipRules struct {
	exact    map[string]struct{}
	prefixes []string
	patterns []*regexp.Regexp
}

func (s *skipRules) matches(path string) bool {
	if _, ok := s.exact[path]; ok {
		return true
	}
	if slices.ContainsFunc(s.prefixes, func(p string) bool { return strings.HasPrefix(path, p) }) {
		return true
	}
	return slices.ContainsFunc(s.patterns, func(re *regexp.Regexp) bool { return re.MatchString(path) })
}

func (s *skipRules) empty() bool {
	return len(s.exact) == 0 && len(s.prefixes) == 0 && len(s.patterns) == 0
}
