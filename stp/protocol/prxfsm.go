// 17.23 Port Receive state machine
// The Port Receive state machine receives a BPDU from a port, records the
// version of the protocol it carries and hands it off to the Port
// Information machine by setting rcvdMsg.  A BPDU received while the port is
// disabled is discarded.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PrxmMachineModuleStr = "Port Receive State Machine"

const (
	PrxmStateNone = iota + 1
	PrxmStateDiscard
	PrxmStateReceive
)

var PrxmStateStrMap map[fsm.State]string

func PrxmMachineStrStateMapInit() {
	PrxmStateStrMap = make(map[fsm.State]string)
	PrxmStateStrMap[PrxmStateNone] = "None"
	PrxmStateStrMap[PrxmStateDiscard] = "Discard"
	PrxmStateStrMap[PrxmStateReceive] = "Receive"
}

const (
	PrxmEventBegin = iota + 1
	PrxmEventRcvdBpduAndNotPortEnabled
	PrxmEventEdgeDelayWhileNotEqualMigrateTimeAndNotPortEnabled
	PrxmEventRcvdBpduAndPortEnabled
	PrxmEventRcvdBpduAndPortEnabledAndNotRcvdMsg
)

// PrxmMachine holds FSM and current State
type PrxmMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpPrxmMachine(p *StpPort) *PrxmMachine {
	prxm := &PrxmMachine{
		p: p,
	}

	p.PrxmMachineFsm = prxm

	return prxm
}

func (prxm *PrxmMachine) PrxmLogger(s string) {
	StpPortLogger("INFO", "PRXM", prxm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (prxm *PrxmMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if prxm.Machine == nil {
		prxm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	prxm.Machine.Rules = r
	prxm.Machine.Curr = newStpStateEvent(PrxmMachineModuleStr, PrxmStateStrMap, PrxmStateNone, prxm.p.logEna, prxm.PrxmLogger)

	return prxm.Machine
}

// PrxmMachineDiscard
func (prxm *PrxmMachine) PrxmMachineDiscard(m fsm.Machine, data interface{}) fsm.State {
	p := prxm.p
	p.RcvdBPDU = false
	p.RcvdRSTP = false
	p.RcvdSTP = false
	p.RcvdMsg = false
	p.EdgeDelayWhileTimer.Set(p.MigrateTime())
	return PrxmStateDiscard
}

// PrxmMachineReceive
func (prxm *PrxmMachine) PrxmMachineReceive(m fsm.Machine, data interface{}) fsm.State {
	p := prxm.p
	p.UpdtBPDUVersion()
	p.OperEdge = false
	p.RcvdBPDU = false
	p.RcvdMsg = true
	p.EdgeDelayWhileTimer.Set(p.MigrateTime())
	return PrxmStateReceive
}

func PrxmMachineFSMBuild(p *StpPort) *PrxmMachine {

	rules := fsm.Ruleset{}

	// Instantiate a new PrxmMachine
	// Initial State will be a psuedo State known as "begin" so that
	// we can transition to the DISCARD State
	prxm := NewStpPrxmMachine(p)

	// BEGIN -> DISCARD
	rules.AddRule(PrxmStateNone, PrxmEventBegin, prxm.PrxmMachineDiscard)
	rules.AddRule(PrxmStateDiscard, PrxmEventBegin, prxm.PrxmMachineDiscard)
	rules.AddRule(PrxmStateReceive, PrxmEventBegin, prxm.PrxmMachineDiscard)

	// RX BPDU && PORT NOT ENABLED	 -> DISCARD
	rules.AddRule(PrxmStateDiscard, PrxmEventRcvdBpduAndNotPortEnabled, prxm.PrxmMachineDiscard)
	rules.AddRule(PrxmStateReceive, PrxmEventRcvdBpduAndNotPortEnabled, prxm.PrxmMachineDiscard)

	// EDGEDELAYWHILE != MIGRATETIME && PORT NOT ENABLED -> DISCARD
	rules.AddRule(PrxmStateDiscard, PrxmEventEdgeDelayWhileNotEqualMigrateTimeAndNotPortEnabled, prxm.PrxmMachineDiscard)
	rules.AddRule(PrxmStateReceive, PrxmEventEdgeDelayWhileNotEqualMigrateTimeAndNotPortEnabled, prxm.PrxmMachineDiscard)

	// RX BPDU && PORT ENABLED -> RECEIVE
	rules.AddRule(PrxmStateDiscard, PrxmEventRcvdBpduAndPortEnabled, prxm.PrxmMachineReceive)

	// RX BPDU && PORT ENABLED && NOT RCVDMSG -> RECEIVE
	rules.AddRule(PrxmStateReceive, PrxmEventRcvdBpduAndPortEnabledAndNotRcvdMsg, prxm.PrxmMachineReceive)

	// Create a new FSM and apply the rules
	prxm.Apply(&rules)

	return prxm
}

func (prxm *PrxmMachine) nextEvent() fsm.Event {
	p := prxm.p
	s := prxm.Machine.Curr.CurrentState()
	if s == PrxmStateNone {
		return EventNone
	}

	// global transitions
	if !p.PortEnabled {
		if p.RcvdBPDU {
			return PrxmEventRcvdBpduAndNotPortEnabled
		}
		if p.EdgeDelayWhileTimer.Count() != p.MigrateTime() {
			return PrxmEventEdgeDelayWhileNotEqualMigrateTimeAndNotPortEnabled
		}
		return EventNone
	}

	switch s {
	case PrxmStateDiscard:
		if p.RcvdBPDU {
			return PrxmEventRcvdBpduAndPortEnabled
		}
	case PrxmStateReceive:
		if p.RcvdBPDU &&
			!p.RcvdMsg {
			return PrxmEventRcvdBpduAndPortEnabledAndNotRcvdMsg
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (prxm *PrxmMachine) Execute() bool {
	return executeMachine(PrxmMachineModuleStr, prxm.p, prxm.Machine, PrxmStateStrMap, prxm.nextEvent)
}
