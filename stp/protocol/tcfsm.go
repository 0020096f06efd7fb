// 802.1D-2004 17.31 Topology Change State Machine
// This state machine is responsible for topology change detection,
// notification, and propagation, and for instructing the Filtering Database
// to remove Dynamic Filtering Entries for certain ports (17.11).
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const TcMachineModuleStr = "Topology Change State Machine"

const (
	TcStateNone = iota + 1
	TcStateInactive
	TcStateLearning
	TcStateDetected
	TcStateActive
	TcStateNotifiedTcn
	TcStateNotifiedTc
	TcStatePropagating
	TcStateAcknowledged
)

var TcStateStrMap map[fsm.State]string

func TcMachineStrStateMapInit() {
	TcStateStrMap = make(map[fsm.State]string)
	TcStateStrMap[TcStateNone] = "None"
	TcStateStrMap[TcStateInactive] = "Inactive"
	TcStateStrMap[TcStateLearning] = "Learning"
	TcStateStrMap[TcStateDetected] = "Detected"
	TcStateStrMap[TcStateActive] = "Active"
	TcStateStrMap[TcStateNotifiedTcn] = "NotifiedTcn"
	TcStateStrMap[TcStateNotifiedTc] = "NotifiedTc"
	TcStateStrMap[TcStatePropagating] = "Propagating"
	TcStateStrMap[TcStateAcknowledged] = "Acknowledged"
}

const (
	TcEventBegin = iota + 1
	TcEventUnconditionalFallThrough
	TcEventRoleNotEqualRootPortAndRoleNotEqualDesignatedPortAndNotLearnAndNotLearningAndNotRcvdTcAndNotRcvdTcnAndNotRcvdTcAckAndNotTcProp
	TcEventLearnAndNotFdbFlush
	TcEventRcvdTcOrRcvdTcnOrRcvdTcAckOrTcProp
	TcEventRcvdTc
	TcEventRcvdTcn
	TcEventRcvdTcAck
	TcEventRoleEqualRootPortOrDesignatedPortAndForwardAndNotOperEdge
	TcEventTcPropAndNotOperEdge
	TcEventRoleNotEqualRootPortAndRoleNotEqualDesignatedPortOrOperEdge
)

// TcMachine holds FSM and current State
type TcMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

// NewStpTcMachine will create a new instance of the TcMachine
func NewStpTcMachine(p *StpPort) *TcMachine {
	tcm := &TcMachine{
		p: p,
	}

	p.TcMachineFsm = tcm

	return tcm
}

func (tcm *TcMachine) TcLogger(s string) {
	StpPortLogger("INFO", "TCM", tcm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (tcm *TcMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if tcm.Machine == nil {
		tcm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	tcm.Machine.Rules = r
	tcm.Machine.Curr = newStpStateEvent(TcMachineModuleStr, TcStateStrMap, TcStateNone, tcm.p.logEna, tcm.TcLogger)

	return tcm.Machine
}

// TcMachineInactive
func (tcm *TcMachine) TcMachineInactive(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.FdbFlush = true
	p.FlushFdb()
	p.TcWhileTimer.Set(0)
	p.TcAck = false
	return TcStateInactive
}

// TcMachineLearning
func (tcm *TcMachine) TcMachineLearning(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.RcvdTc = false
	p.RcvdTcn = false
	p.RcvdTcAck = false
	p.TcProp = false
	return TcStateLearning
}

// TcMachineDetected
func (tcm *TcMachine) TcMachineDetected(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.NewTcWhile()
	p.SetTcPropTree()
	p.NewInfo = true
	return TcStateDetected
}

// TcMachineActive
func (tcm *TcMachine) TcMachineActive(m fsm.Machine, data interface{}) fsm.State {
	return TcStateActive
}

// TcMachineNotifiedTcn
func (tcm *TcMachine) TcMachineNotifiedTcn(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.NewTcWhile()
	return TcStateNotifiedTcn
}

// TcMachineNotifiedTc
func (tcm *TcMachine) TcMachineNotifiedTc(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.RcvdTcn = false
	p.RcvdTc = false
	if p.Role == PortRoleDesignatedPort {
		p.TcAck = true
	}
	p.SetTcPropTree()
	return TcStateNotifiedTc
}

// TcMachinePropagating
func (tcm *TcMachine) TcMachinePropagating(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.NewTcWhile()
	p.FdbFlush = true
	p.FlushFdb()
	p.TcProp = false
	return TcStatePropagating
}

// TcMachineAcknowledged
func (tcm *TcMachine) TcMachineAcknowledged(m fsm.Machine, data interface{}) fsm.State {
	p := tcm.p
	p.TcWhileTimer.Set(0)
	p.RcvdTcAck = false
	return TcStateAcknowledged
}

func TcMachineFSMBuild(p *StpPort) *TcMachine {

	rules := fsm.Ruleset{}

	tcm := NewStpTcMachine(p)

	// BEGIN -> INACTIVE
	for _, s := range []fsm.State{TcStateNone,
		TcStateInactive,
		TcStateLearning,
		TcStateDetected,
		TcStateActive,
		TcStateNotifiedTcn,
		TcStateNotifiedTc,
		TcStatePropagating,
		TcStateAcknowledged} {
		rules.AddRule(s, TcEventBegin, tcm.TcMachineInactive)
	}

	// LEARN && NOT FDBFLUSH -> LEARNING
	rules.AddRule(TcStateInactive, TcEventLearnAndNotFdbFlush, tcm.TcMachineLearning)

	// ROLE != ROOT && ROLE != DESIGNATED && NOT (LEARN || LEARNING) && NOT (RCVDTC || RCVDTCN || RCVDTCACK || TCPROP) -> INACTIVE
	rules.AddRule(TcStateLearning, TcEventRoleNotEqualRootPortAndRoleNotEqualDesignatedPortAndNotLearnAndNotLearningAndNotRcvdTcAndNotRcvdTcnAndNotRcvdTcAckAndNotTcProp, tcm.TcMachineInactive)

	// RCVDTC || RCVDTCN || RCVDTCACK || TCPROP -> LEARNING
	rules.AddRule(TcStateLearning, TcEventRcvdTcOrRcvdTcnOrRcvdTcAckOrTcProp, tcm.TcMachineLearning)

	// (ROLE == ROOT || ROLE == DESIGNATED) && FORWARD && NOT OPEREDGE -> DETECTED
	rules.AddRule(TcStateLearning, TcEventRoleEqualRootPortOrDesignatedPortAndForwardAndNotOperEdge, tcm.TcMachineDetected)

	// UNCONDITIONAL FALL THROUGH -> ACTIVE
	rules.AddRule(TcStateDetected, TcEventUnconditionalFallThrough, tcm.TcMachineActive)
	rules.AddRule(TcStateNotifiedTc, TcEventUnconditionalFallThrough, tcm.TcMachineActive)
	rules.AddRule(TcStatePropagating, TcEventUnconditionalFallThrough, tcm.TcMachineActive)
	rules.AddRule(TcStateAcknowledged, TcEventUnconditionalFallThrough, tcm.TcMachineActive)

	// UNCONDITIONAL FALL THROUGH -> NOTIFIED TC
	rules.AddRule(TcStateNotifiedTcn, TcEventUnconditionalFallThrough, tcm.TcMachineNotifiedTc)

	// (ROLE != ROOT && ROLE != DESIGNATED) || OPEREDGE -> LEARNING
	rules.AddRule(TcStateActive, TcEventRoleNotEqualRootPortAndRoleNotEqualDesignatedPortOrOperEdge, tcm.TcMachineLearning)

	// RCVDTCN -> NOTIFIED TCN
	rules.AddRule(TcStateActive, TcEventRcvdTcn, tcm.TcMachineNotifiedTcn)

	// RCVDTC -> NOTIFIED TC
	rules.AddRule(TcStateActive, TcEventRcvdTc, tcm.TcMachineNotifiedTc)

	// TCPROP && NOT OPEREDGE -> PROPAGATING
	rules.AddRule(TcStateActive, TcEventTcPropAndNotOperEdge, tcm.TcMachinePropagating)

	// RCVDTCACK -> ACKNOWLEDGED
	rules.AddRule(TcStateActive, TcEventRcvdTcAck, tcm.TcMachineAcknowledged)

	// Create a new FSM and apply the rules
	tcm.Apply(&rules)

	return tcm
}

func (tcm *TcMachine) nextEvent() fsm.Event {
	p := tcm.p
	rootOrDesignated := p.Role == PortRoleRootPort ||
		p.Role == PortRoleDesignatedPort
	anyTcFlag := p.RcvdTc ||
		p.RcvdTcn ||
		p.RcvdTcAck ||
		p.TcProp

	switch tcm.Machine.Curr.CurrentState() {
	case TcStateInactive:
		if p.Learn &&
			!p.FdbFlush {
			return TcEventLearnAndNotFdbFlush
		}
	case TcStateLearning:
		if !rootOrDesignated &&
			!(p.Learn || p.Learning) &&
			!anyTcFlag {
			return TcEventRoleNotEqualRootPortAndRoleNotEqualDesignatedPortAndNotLearnAndNotLearningAndNotRcvdTcAndNotRcvdTcnAndNotRcvdTcAckAndNotTcProp
		}
		if anyTcFlag {
			return TcEventRcvdTcOrRcvdTcnOrRcvdTcAckOrTcProp
		}
		if rootOrDesignated &&
			p.Forward &&
			!p.OperEdge {
			return TcEventRoleEqualRootPortOrDesignatedPortAndForwardAndNotOperEdge
		}
	case TcStateDetected,
		TcStateNotifiedTcn,
		TcStateNotifiedTc,
		TcStatePropagating,
		TcStateAcknowledged:
		return TcEventUnconditionalFallThrough
	case TcStateActive:
		if !rootOrDesignated ||
			p.OperEdge {
			return TcEventRoleNotEqualRootPortAndRoleNotEqualDesignatedPortOrOperEdge
		}
		if p.RcvdTcn {
			return TcEventRcvdTcn
		}
		if p.RcvdTc {
			return TcEventRcvdTc
		}
		if p.TcProp &&
			!p.OperEdge {
			return TcEventTcPropAndNotOperEdge
		}
		if p.RcvdTcAck {
			return TcEventRcvdTcAck
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (tcm *TcMachine) Execute() bool {
	return executeMachine(TcMachineModuleStr, tcm.p, tcm.Machine, TcStateStrMap, tcm.nextEvent)
}
