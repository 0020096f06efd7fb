// 802.1D-2004 17.22 Port Timers state machine
// The Port Timers state machine for a given port is responsible for
// decrementing the timer variables for the CIST and all MSTIs for that port
// each time tick is signaled.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PtmMachineModuleStr = "Port Timer State Machine"

const (
	PtmStateNone = iota + 1
	PtmStateOneSecond
	PtmStateTick
)

var PtmStateStrMap map[fsm.State]string

func PtmMachineStrStateMapInit() {
	PtmStateStrMap = make(map[fsm.State]string)
	PtmStateStrMap[PtmStateNone] = "None"
	PtmStateStrMap[PtmStateOneSecond] = "OneSecond"
	PtmStateStrMap[PtmStateTick] = "Tick"
}

const (
	PtmEventBegin = iota + 1
	PtmEventTickEqualsTrue
	PtmEventUnconditionalFallThrough
)

// PtmMachine holds FSM and current State
type PtmMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpPtmMachine(p *StpPort) *PtmMachine {
	ptm := &PtmMachine{
		p: p,
	}

	p.PtmMachineFsm = ptm

	return ptm
}

func (ptm *PtmMachine) PtmLogger(s string) {
	StpPortLogger("INFO", "PTM", ptm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (ptm *PtmMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if ptm.Machine == nil {
		ptm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	ptm.Machine.Rules = r
	ptm.Machine.Curr = newStpStateEvent(PtmMachineModuleStr, PtmStateStrMap, PtmStateNone, ptm.p.logEna, ptm.PtmLogger)

	return ptm.Machine
}

// PtmMachineOneSecond
func (ptm *PtmMachine) PtmMachineOneSecond(m fsm.Machine, data interface{}) fsm.State {
	p := ptm.p
	p.Tick = false
	return PtmStateOneSecond
}

// PtmMachineTick decrements every timer once
func (ptm *PtmMachine) PtmMachineTick(m fsm.Machine, data interface{}) fsm.State {
	p := ptm.p
	p.DecrementTimers()
	if p.TxCount > 0 {
		p.TxCount--
	}
	if p.AgeingShortWhile > 0 {
		p.AgeingShortWhile--
		if p.AgeingShortWhile == 0 {
			p.AgeingTime = BridgeAgeingTimeDefault
		}
	}
	return PtmStateTick
}

func PtmMachineFSMBuild(p *StpPort) *PtmMachine {

	rules := fsm.Ruleset{}

	ptm := NewStpPtmMachine(p)

	// BEGIN -> ONE SECOND
	rules.AddRule(PtmStateNone, PtmEventBegin, ptm.PtmMachineOneSecond)
	rules.AddRule(PtmStateOneSecond, PtmEventBegin, ptm.PtmMachineOneSecond)
	rules.AddRule(PtmStateTick, PtmEventBegin, ptm.PtmMachineOneSecond)

	// TICK EQUALS TRUE -> TICK
	rules.AddRule(PtmStateOneSecond, PtmEventTickEqualsTrue, ptm.PtmMachineTick)

	// UNCONDITIONAL FALL THROUGH -> ONE SECOND
	rules.AddRule(PtmStateTick, PtmEventUnconditionalFallThrough, ptm.PtmMachineOneSecond)

	// Create a new FSM and apply the rules
	ptm.Apply(&rules)

	return ptm
}

func (ptm *PtmMachine) nextEvent() fsm.Event {
	p := ptm.p
	switch ptm.Machine.Curr.CurrentState() {
	case PtmStateOneSecond:
		if p.Tick {
			return PtmEventTickEqualsTrue
		}
	case PtmStateTick:
		return PtmEventUnconditionalFallThrough
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (ptm *PtmMachine) Execute() bool {
	return executeMachine(PtmMachineModuleStr, ptm.p, ptm.Machine, PtmStateStrMap, ptm.nextEvent)
}
