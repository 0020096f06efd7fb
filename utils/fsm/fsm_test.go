package fsm

import (
	"testing"

	"github.com/pkg/errors"
)

type testStateEvent struct {
	s, ps State
	e, pe Event
}

func (se *testStateEvent) CurrentState() State          { return se.s }
func (se *testStateEvent) PreviousState() State         { return se.ps }
func (se *testStateEvent) CurrentEvent() Event          { return se.e }
func (se *testStateEvent) PreviousEvent() Event         { return se.pe }
func (se *testStateEvent) SetState(s State)             { se.ps, se.s = se.s, s }
func (se *testStateEvent) SetEvent(src string, e Event) { se.pe, se.e = se.e, e }
func (se *testStateEvent) LoggerSet(log func(string))   {}
func (se *testStateEvent) EnableLogging(ena bool)       {}
func (se *testStateEvent) IsLoggerEna() bool            { return false }

func TestProcessEvent(t *testing.T) {
	const (
		s1 State = iota + 1
		s2
	)
	const e1 Event = 1

	calls := 0
	rules := Ruleset{}
	rules.AddRule(s1, e1, func(m Machine, data interface{}) State {
		calls++
		return s2
	})

	m := &Machine{Curr: &testStateEvent{s: s1}, Rules: &rules}

	if err := m.ProcessEvent("TEST", e1, nil); err != nil {
		t.Error("Unexpected error", err)
		t.FailNow()
	}
	if m.Curr.CurrentState() != s2 || m.Curr.PreviousState() != s1 || calls != 1 {
		t.Error("Transition not applied", m.Curr.CurrentState(), m.Curr.PreviousState(), calls)
	}

	// no rule from s2
	if err := m.ProcessEvent("TEST", e1, nil); errors.Cause(err) != ErrNoTransition {
		t.Error("Expected error for missing rule", err)
	}
	if m.Curr.CurrentState() != s2 {
		t.Error("State changed on invalid event")
	}
}

func TestProcessEventUninitialized(t *testing.T) {
	m := &Machine{}
	if err := m.ProcessEvent("TEST", 1, nil); err != ErrNotInitialized {
		t.Error("Expected uninitialized machine error", err)
	}
	rules := Ruleset{}
	m = &Machine{Rules: &rules}
	if err := m.ProcessEvent("TEST", 1, nil); err != ErrNotInitialized {
		t.Error("Expected error without state tracking", err)
	}
}
