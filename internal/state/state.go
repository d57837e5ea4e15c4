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

// Package state holds the process-wide install slots shared by the
// telemetry and metrics packages.
package state

import (
	"errors"
	"sync/atomic"
)

// ErrAlreadyInstalled is returned when a process-wide slot is already taken.
var ErrAlreadyInstalled = errors.New("telemetry already installed")

// Slot is a write-once flag. The first Acquire wins; later ones fail until
// the slot is released.
type Slot struct {
	name  string
	taken atomic.Bool
}

// Process-wide slots.
var (
	Subscriber = &Slot{name: "subscriber"}
	Recorder   = &Slot{name: "metrics recorder"}
)

// Acquire takes the slot or returns ErrAlreadyInstalled.
func (s *Slot) Acquire() error {
	if !s.taken.CompareAndSwap(false, true) {
		return errors.Join(ErrAlreadyInstalled, errors.New(s.name+" slot is taken"))
	}
	return nil
}

// Release frees the slot. It is used to roll back a failed install.
func (s *Slot) Release() {
	s.taken.Store(false)
}

// Taken reports whether the slot is held.
func (s *Slot) Taken() bool {
	return s.taken.Load()
}

// Reset frees every slot. Only tests call it.
func Reset() {
	Subscriber.Release()
	Recorder.Release()
}
