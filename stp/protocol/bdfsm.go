// 802.1D-2004 17.25 Bridge Detection State Machine
// The Bridge Detection state machine maintains operEdge.  A port starts as
// an edge port when AdminEdge is configured, and with AutoEdge it becomes an
// edge port once the edge delay has expired on a designated port that is
// proposing but has not heard from another bridge.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const BdmMachineModuleStr = "Bridge Detection State Machine"

const (
	BdmStateNone = iota + 1
	BdmStateEdge
	BdmStateNotEdge
)

var BdmStateStrMap map[fsm.State]string

func BdmMachineStrStateMapInit() {
	BdmStateStrMap = make(map[fsm.State]string)
	BdmStateStrMap[BdmStateNone] = "None"
	BdmStateStrMap[BdmStateEdge] = "Edge"
	BdmStateStrMap[BdmStateNotEdge] = "NotEdge"
}

const (
	BdmEventBegin = iota + 1
	BdmEventNotPortEnabledAndAdminEdge
	BdmEventEdgeDelayWhileEqualZeroAndAutoEdgeAndSendRSTPAndProposing
	BdmEventNotPortEnabledAndNotAdminEdge
	BdmEventNotOperEdge
)

// BdmMachine holds FSM and current State
type BdmMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpBdmMachine(p *StpPort) *BdmMachine {
	bdm := &BdmMachine{
		p: p,
	}

	p.BdmMachineFsm = bdm

	return bdm
}

func (bdm *BdmMachine) BdmLogger(s string) {
	StpPortLogger("INFO", "BDM", bdm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (bdm *BdmMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if bdm.Machine == nil {
		bdm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	bdm.Machine.Rules = r
	bdm.Machine.Curr = newStpStateEvent(BdmMachineModuleStr, BdmStateStrMap, BdmStateNone, bdm.p.logEna, bdm.BdmLogger)

	return bdm.Machine
}

// BdmMachineBegin picks the initial state from AdminEdge
func (bdm *BdmMachine) BdmMachineBegin(m fsm.Machine, data interface{}) fsm.State {
	if bdm.p.AdminEdge {
		return bdm.BdmMachineEdge(m, data)
	}
	return bdm.BdmMachineNotEdge(m, data)
}

// BdmMachineEdge
func (bdm *BdmMachine) BdmMachineEdge(m fsm.Machine, data interface{}) fsm.State {
	p := bdm.p
	p.OperEdge = true
	return BdmStateEdge
}

// BdmMachineNotEdge
func (bdm *BdmMachine) BdmMachineNotEdge(m fsm.Machine, data interface{}) fsm.State {
	p := bdm.p
	p.OperEdge = false
	return BdmStateNotEdge
}

func BdmMachineFSMBuild(p *StpPort) *BdmMachine {

	rules := fsm.Ruleset{}

	bdm := NewStpBdmMachine(p)

	// BEGIN and AdminEdge -> EDGE
	// BEGIN and NOT AdminEdge -> NOT EDGE
	rules.AddRule(BdmStateNone, BdmEventBegin, bdm.BdmMachineBegin)
	rules.AddRule(BdmStateEdge, BdmEventBegin, bdm.BdmMachineBegin)
	rules.AddRule(BdmStateNotEdge, BdmEventBegin, bdm.BdmMachineBegin)

	// NOT portEnabled and AdminEdge -> EDGE
	rules.AddRule(BdmStateNotEdge, BdmEventNotPortEnabledAndAdminEdge, bdm.BdmMachineEdge)

	// edgeDelayWhile == 0 and AutoEdge and sendRSTP and proposing -> EDGE
	rules.AddRule(BdmStateNotEdge, BdmEventEdgeDelayWhileEqualZeroAndAutoEdgeAndSendRSTPAndProposing, bdm.BdmMachineEdge)

	// NOT portEnabled and NOT AdminEdge -> NOT EDGE
	rules.AddRule(BdmStateEdge, BdmEventNotPortEnabledAndNotAdminEdge, bdm.BdmMachineNotEdge)

	// NOT operEdge -> NOT EDGE
	rules.AddRule(BdmStateEdge, BdmEventNotOperEdge, bdm.BdmMachineNotEdge)

	// Create a new FSM and apply the rules
	bdm.Apply(&rules)

	return bdm
}

func (bdm *BdmMachine) nextEvent() fsm.Event {
	p := bdm.p
	switch bdm.Machine.Curr.CurrentState() {
	case BdmStateEdge:
		if !p.PortEnabled &&
			!p.AdminEdge {
			return BdmEventNotPortEnabledAndNotAdminEdge
		}
		if !p.OperEdge {
			return BdmEventNotOperEdge
		}
	case BdmStateNotEdge:
		if !p.PortEnabled &&
			p.AdminEdge {
			return BdmEventNotPortEnabledAndAdminEdge
		}
		if p.EdgeDelayWhileTimer.TimedOut() &&
			p.AutoEdgePort &&
			p.SendRSTP &&
			p.Proposing {
			return BdmEventEdgeDelayWhileEqualZeroAndAutoEdgeAndSendRSTPAndProposing
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (bdm *BdmMachine) Execute() bool {
	return executeMachine(BdmMachineModuleStr, bdm.p, bdm.Machine, BdmStateStrMap, bdm.nextEvent)
}
