// 802.1D-2004 17.30 Port State Transition State Machine
// The Port State Transition state machine enables and disables learning and
// forwarding on the port through the bridge interface, following learn and
// forward as set by the Port Role Transitions machine.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PstMachineModuleStr = "Port State Transition State Machine"

const (
	PstStateNone = iota + 1
	PstStateDiscarding
	PstStateLearning
	PstStateForwarding
)

var PstStateStrMap map[fsm.State]string

func PstMachineStrStateMapInit() {
	PstStateStrMap = make(map[fsm.State]string)
	PstStateStrMap[PstStateNone] = "None"
	PstStateStrMap[PstStateDiscarding] = "Discarding"
	PstStateStrMap[PstStateLearning] = "Learning"
	PstStateStrMap[PstStateForwarding] = "Forwarding"
}

const (
	PstEventBegin = iota + 1
	PstEventLearn
	PstEventNotLearn
	PstEventForward
	PstEventNotForward
)

// PstMachine holds FSM and current State
type PstMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpPstMachine(p *StpPort) *PstMachine {
	pstm := &PstMachine{
		p: p,
	}

	p.PstMachineFsm = pstm

	return pstm
}

func (pstm *PstMachine) PstLogger(s string) {
	StpPortLogger("INFO", "PSTM", pstm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (pstm *PstMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if pstm.Machine == nil {
		pstm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	pstm.Machine.Rules = r
	pstm.Machine.Curr = newStpStateEvent(PstMachineModuleStr, PstStateStrMap, PstStateNone, pstm.p.logEna, pstm.PstLogger)

	return pstm.Machine
}

// PstMachineDiscarding
func (pstm *PstMachine) PstMachineDiscarding(m fsm.Machine, data interface{}) fsm.State {
	p := pstm.p
	p.DisableLearning()
	p.Learning = false
	p.DisableForwarding()
	p.Forwarding = false
	return PstStateDiscarding
}

// PstMachineLearning
func (pstm *PstMachine) PstMachineLearning(m fsm.Machine, data interface{}) fsm.State {
	p := pstm.p
	p.EnableLearning()
	p.Learning = true
	return PstStateLearning
}

// PstMachineForwarding
func (pstm *PstMachine) PstMachineForwarding(m fsm.Machine, data interface{}) fsm.State {
	p := pstm.p
	p.EnableForwarding()
	p.Forwarding = true
	return PstStateForwarding
}

func PstMachineFSMBuild(p *StpPort) *PstMachine {

	rules := fsm.Ruleset{}

	pstm := NewStpPstMachine(p)

	// BEGIN -> DISCARDING
	rules.AddRule(PstStateNone, PstEventBegin, pstm.PstMachineDiscarding)
	rules.AddRule(PstStateDiscarding, PstEventBegin, pstm.PstMachineDiscarding)
	rules.AddRule(PstStateLearning, PstEventBegin, pstm.PstMachineDiscarding)
	rules.AddRule(PstStateForwarding, PstEventBegin, pstm.PstMachineDiscarding)

	// LEARN -> LEARNING
	rules.AddRule(PstStateDiscarding, PstEventLearn, pstm.PstMachineLearning)

	// NOT LEARN -> DISCARDING
	rules.AddRule(PstStateLearning, PstEventNotLearn, pstm.PstMachineDiscarding)

	// FORWARD -> FORWARDING
	rules.AddRule(PstStateLearning, PstEventForward, pstm.PstMachineForwarding)

	// NOT FORWARD -> DISCARDING
	rules.AddRule(PstStateForwarding, PstEventNotForward, pstm.PstMachineDiscarding)

	// Create a new FSM and apply the rules
	pstm.Apply(&rules)

	return pstm
}

func (pstm *PstMachine) nextEvent() fsm.Event {
	p := pstm.p
	switch pstm.Machine.Curr.CurrentState() {
	case PstStateDiscarding:
		if p.Learn {
			return PstEventLearn
		}
	case PstStateLearning:
		if !p.Learn {
			return PstEventNotLearn
		}
		if p.Forward {
			return PstEventForward
		}
	case PstStateForwarding:
		if !p.Forward {
			return PstEventNotForward
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (pstm *PstMachine) Execute() bool {
	return executeMachine(PstMachineModuleStr, pstm.p, pstm.Machine, PstStateStrMap, pstm.nextEvent)
}
