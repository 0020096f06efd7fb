//
//Copyright [2016] [SnapRoute Inc]
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//	 Unless required by applicable law or agreed to in writing, software
//	 distributed under the License is distributed on an "AS IS" BASIS,
//	 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//	 See the License for the specific language governing permissions and
//	 limitations under the License.
//

// Package fsm is a small rule based finite state machine.  A Ruleset maps a
// (state, event) pair to a callback which performs the state entry actions
// and returns the state the machine lands in.
package fsm

import (
	"github.com/pkg/errors"
)

var (
	ErrNotInitialized = errors.New("fsm: machine not initialized")
	ErrNoTransition   = errors.New("fsm: no transition")
)

type State int
type Event int

// Callback is invoked on a valid transition; the returned State becomes the
// current state of the machine.
type Callback func(m Machine, data interface{}) State

type Transition struct {
	s State
	e Event
}

type Ruleset map[Transition]Callback

// AddRule registers cb for event e received while in state s.
func (r Ruleset) AddRule(s State, e Event, cb Callback) {
	r[Transition{s: s, e: e}] = cb
}

// StateEvent tracks the current and previous state/event of a machine.
type StateEvent interface {
	CurrentState() State
	PreviousState() State
	CurrentEvent() Event
	PreviousEvent() Event
	SetState(s State)
	SetEvent(src string, e Event)
	LoggerSet(log func(string))
	EnableLogging(ena bool)
	IsLoggerEna() bool
}

type Machine struct {
	Curr  StateEvent
	Rules *Ruleset
}

// ProcessEvent runs the callback registered for the current state and e.
func (m *Machine) ProcessEvent(src string, e Event, data interface{}) error {
	if m.Rules == nil || m.Curr == nil {
		return ErrNotInitialized
	}
	s := m.Curr.CurrentState()
	cb, ok := (*m.Rules)[Transition{s: s, e: e}]
	if !ok {
		return errors.Wrapf(ErrNoTransition, "state %d event %d", s, e)
	}
	m.Curr.SetEvent(src, e)
	m.Curr.SetState(cb(*m, data))
	return nil
}
