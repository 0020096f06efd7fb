// 802.1D-2004 17.24 Port Protocol Migration state machine
// The Port Protocol Migration state machine updates sendRSTP to tell the
// Port Transmit state machine which BPDU types to transmit, so that the port
// interoperates with bridges running the original Spanning Tree Protocol.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PpmmMachineModuleStr = "Port Protocol Migration State Machine"

const (
	PpmmStateNone = iota + 1
	PpmmStateCheckingRSTP
	PpmmStateSelectingSTP
	PpmmStateSensing
)

var PpmmStateStrMap map[fsm.State]string

func PpmmMachineStrStateMapInit() {
	PpmmStateStrMap = make(map[fsm.State]string)
	PpmmStateStrMap[PpmmStateNone] = "None"
	PpmmStateStrMap[PpmmStateCheckingRSTP] = "Checking RSTP"
	PpmmStateStrMap[PpmmStateSelectingSTP] = "Selecting STP"
	PpmmStateStrMap[PpmmStateSensing] = "Sensing"
}

const (
	PpmmEventBegin = iota + 1
	PpmmEventMdelayNotEqualMigrateTimeAndNotPortEnabled
	PpmmEventNotPortEnabled
	PpmmEventMcheck
	PpmmEventRstpVersionAndNotSendRSTPAndRcvdRSTP
	PpmmEventMdelayWhileEqualZero
	PpmmEventSendRSTPAndRcvdSTP
)

// PpmmMachine holds FSM and current State
type PpmmMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpPpmmMachine(p *StpPort) *PpmmMachine {
	ppmm := &PpmmMachine{
		p: p,
	}

	p.PpmmMachineFsm = ppmm

	return ppmm
}

func (ppmm *PpmmMachine) PpmLogger(s string) {
	StpPortLogger("INFO", "PPMM", ppmm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (ppmm *PpmmMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if ppmm.Machine == nil {
		ppmm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	ppmm.Machine.Rules = r
	ppmm.Machine.Curr = newStpStateEvent(PpmmMachineModuleStr, PpmmStateStrMap, PpmmStateNone, ppmm.p.logEna, ppmm.PpmLogger)

	return ppmm.Machine
}

// PpmmMachineCheckingRSTP
func (ppmm *PpmmMachine) PpmmMachineCheckingRSTP(m fsm.Machine, data interface{}) fsm.State {
	p := ppmm.p
	p.Mcheck = false
	p.SendRSTP = p.RstpVersion()
	p.MdelayWhiletimer.Set(p.MigrateTime())
	return PpmmStateCheckingRSTP
}

// PpmmMachineSelectingSTP
func (ppmm *PpmmMachine) PpmmMachineSelectingSTP(m fsm.Machine, data interface{}) fsm.State {
	p := ppmm.p
	p.SendRSTP = false
	p.MdelayWhiletimer.Set(p.MigrateTime())
	return PpmmStateSelectingSTP
}

// PpmmMachineSensing
func (ppmm *PpmmMachine) PpmmMachineSensing(m fsm.Machine, data interface{}) fsm.State {
	p := ppmm.p
	p.RcvdRSTP = false
	p.RcvdSTP = false
	return PpmmStateSensing
}

func PpmmMachineFSMBuild(p *StpPort) *PpmmMachine {

	rules := fsm.Ruleset{}

	ppmm := NewStpPpmmMachine(p)

	// BEGIN -> CHECKING_RSTP
	rules.AddRule(PpmmStateNone, PpmmEventBegin, ppmm.PpmmMachineCheckingRSTP)
	rules.AddRule(PpmmStateCheckingRSTP, PpmmEventBegin, ppmm.PpmmMachineCheckingRSTP)
	rules.AddRule(PpmmStateSelectingSTP, PpmmEventBegin, ppmm.PpmmMachineCheckingRSTP)
	rules.AddRule(PpmmStateSensing, PpmmEventBegin, ppmm.PpmmMachineCheckingRSTP)

	// mdelayWhile != MigrateTime and NOT portEnable -> CHECKING_RSTP
	rules.AddRule(PpmmStateCheckingRSTP, PpmmEventMdelayNotEqualMigrateTimeAndNotPortEnabled, ppmm.PpmmMachineCheckingRSTP)

	// NOT portEnabled -> CHECKING_RSTP
	rules.AddRule(PpmmStateSensing, PpmmEventNotPortEnabled, ppmm.PpmmMachineCheckingRSTP)

	// mcheck -> CHECKING_RSTP
	rules.AddRule(PpmmStateSensing, PpmmEventMcheck, ppmm.PpmmMachineCheckingRSTP)

	// rstpVersion and NOT sendRSTP and rcvdRSTP -> CHECKING_RSTP
	rules.AddRule(PpmmStateSensing, PpmmEventRstpVersionAndNotSendRSTPAndRcvdRSTP, ppmm.PpmmMachineCheckingRSTP)

	// mdelayWhile == 0 -> SENSING
	rules.AddRule(PpmmStateCheckingRSTP, PpmmEventMdelayWhileEqualZero, ppmm.PpmmMachineSensing)

	// mdelayWhile == 0 or NOT portEnabled or mcheck -> SENSING
	rules.AddRule(PpmmStateSelectingSTP, PpmmEventMdelayWhileEqualZero, ppmm.PpmmMachineSensing)
	rules.AddRule(PpmmStateSelectingSTP, PpmmEventNotPortEnabled, ppmm.PpmmMachineSensing)
	rules.AddRule(PpmmStateSelectingSTP, PpmmEventMcheck, ppmm.PpmmMachineSensing)

	// sendRSTP and rcvdSTP -> SELECTING_STP
	rules.AddRule(PpmmStateSensing, PpmmEventSendRSTPAndRcvdSTP, ppmm.PpmmMachineSelectingSTP)

	// Create a new FSM and apply the rules
	ppmm.Apply(&rules)

	return ppmm
}

func (ppmm *PpmmMachine) nextEvent() fsm.Event {
	p := ppmm.p
	switch ppmm.Machine.Curr.CurrentState() {
	case PpmmStateCheckingRSTP:
		if p.MdelayWhiletimer.Count() != p.MigrateTime() &&
			!p.PortEnabled {
			return PpmmEventMdelayNotEqualMigrateTimeAndNotPortEnabled
		}
		if p.MdelayWhiletimer.TimedOut() {
			return PpmmEventMdelayWhileEqualZero
		}
	case PpmmStateSelectingSTP:
		if p.MdelayWhiletimer.TimedOut() {
			return PpmmEventMdelayWhileEqualZero
		}
		if !p.PortEnabled {
			return PpmmEventNotPortEnabled
		}
		if p.Mcheck {
			return PpmmEventMcheck
		}
	case PpmmStateSensing:
		if !p.PortEnabled {
			return PpmmEventNotPortEnabled
		}
		if p.Mcheck {
			return PpmmEventMcheck
		}
		if p.RstpVersion() &&
			!p.SendRSTP &&
			p.RcvdRSTP {
			return PpmmEventRstpVersionAndNotSendRSTPAndRcvdRSTP
		}
		if p.SendRSTP &&
			p.RcvdSTP {
			return PpmmEventSendRSTPAndRcvdSTP
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (ppmm *PpmmMachine) Execute() bool {
	return executeMachine(PpmmMachineModuleStr, ppmm.p, ppmm.Machine, PpmmStateStrMap, ppmm.nextEvent)
}
