// 802.1D-2004 17.27 Port Information State Machine
// This state machine is responsible for updating and recording the source
// (infoIs) of the Spanning Tree information (portPriority, portTimes) used to
// test the information conveyed (msgPriority, msgTimes) by received
// Configuration Messages.  If new, superior, information arrives on the port,
// or the existing information is aged out, it sets the reselect variable to
// request the Port Role Selection state machine to update the spanning tree
// priority vectors held by the Bridge and the Bridge's Port Roles.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PimMachineModuleStr = "Port Information State Machine"

const (
	PimStateNone = iota + 1
	PimStateDisabled
	PimStateAged
	PimStateUpdate
	PimStateSuperiorDesignated
	PimStateRepeatedDesignated
	PimStateInferiorDesignated
	PimStateNotDesignated
	PimStateOther
	PimStateCurrent
	PimStateReceive
)

var PimStateStrMap map[fsm.State]string

func PimMachineStrStateMapInit() {
	PimStateStrMap = make(map[fsm.State]string)
	PimStateStrMap[PimStateNone] = "None"
	PimStateStrMap[PimStateDisabled] = "Disabled"
	PimStateStrMap[PimStateAged] = "Aged"
	PimStateStrMap[PimStateUpdate] = "Updated"
	PimStateStrMap[PimStateSuperiorDesignated] = "Superior Designated"
	PimStateStrMap[PimStateRepeatedDesignated] = "Repeated Designated"
	PimStateStrMap[PimStateInferiorDesignated] = "Inferior Designated"
	PimStateStrMap[PimStateNotDesignated] = "Not Designated"
	PimStateStrMap[PimStateOther] = "Other"
	PimStateStrMap[PimStateCurrent] = "Current"
	PimStateStrMap[PimStateReceive] = "Receive"
}

const (
	PimEventBegin = iota + 1
	PimEventNotPortEnabledInfoIsNotEqualDisabled
	PimEventRcvdMsg
	PimEventRcvdMsgAndNotUpdtInfo
	PimEventPortEnabled
	PimEventSelectedAndUpdtInfo
	PimEventUnconditionalFallThrough
	PimEventInflsEqualReceivedAndRcvdInfoWhileEqualZeroAndNotUpdtInfoAndNotRcvdMsg
	PimEventRcvdInfoEqualSuperiorDesignatedInfo
	PimEventRcvdInfoEqualRepeatedDesignatedInfo
	PimEventRcvdInfoEqualInferiorDesignatedInfo
	PimEventRcvdInfoEqualInferiorRootAlternateInfo
	PimEventRcvdInfoEqualOtherInfo
)

// PimMachine holds FSM and current State
type PimMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

// NewStpPimMachine will create a new instance of the PimMachine
func NewStpPimMachine(p *StpPort) *PimMachine {
	pim := &PimMachine{
		p: p,
	}

	p.PimMachineFsm = pim

	return pim
}

func (pim *PimMachine) PimLogger(s string) {
	StpPortLogger("INFO", "PIM", pim.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (pim *PimMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if pim.Machine == nil {
		pim.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	pim.Machine.Rules = r
	pim.Machine.Curr = newStpStateEvent(PimMachineModuleStr, PimStateStrMap, PimStateNone, pim.p.logEna, pim.PimLogger)

	return pim.Machine
}

// PimMachineDisabled
func (pim *PimMachine) PimMachineDisabled(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.RcvdMsg = false
	p.Proposing = false
	p.Proposed = false
	p.Agree = false
	p.Agreed = false
	p.RcvdInfoWhiletimer.Set(0)
	p.InfoIs = PortInfoStateDisabled
	p.Reselect = true
	p.Selected = false
	return PimStateDisabled
}

// PimMachineAged
func (pim *PimMachine) PimMachineAged(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.InfoIs = PortInfoStateAged
	p.Reselect = true
	p.Selected = false
	return PimStateAged
}

// PimMachineUpdate
func (pim *PimMachine) PimMachineUpdate(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.Proposing = false
	p.Proposed = false
	p.Agreed = p.Agreed && p.BetterOrSameInfo(PortInfoStateMine)
	p.Synced = p.Synced && p.Agreed
	p.PortPriority = p.DesignatedPriority
	p.PortTimes = p.DesignatedTimes
	p.UpdtInfo = false
	p.InfoIs = PortInfoStateMine
	p.NewInfo = true
	return PimStateUpdate
}

// PimMachineCurrent
func (pim *PimMachine) PimMachineCurrent(m fsm.Machine, data interface{}) fsm.State {
	return PimStateCurrent
}

// PimMachineReceive
func (pim *PimMachine) PimMachineReceive(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.RcvdInfo = p.RcvInfo()
	return PimStateReceive
}

// PimMachineSuperiorDesignated
func (pim *PimMachine) PimMachineSuperiorDesignated(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.Agreed = false
	p.Proposing = false
	p.RecordProposal()
	p.SetTcFlags()
	// must be evaluated against the port priority that is about to be replaced
	p.Agree = p.Agree && p.BetterOrSameInfo(PortInfoStateReceived)
	p.RecordPriority()
	p.RecordTimes()
	p.UpdtRcvdInfoWhile()
	p.InfoIs = PortInfoStateReceived
	p.Reselect = true
	p.Selected = false
	p.RcvdMsg = false
	return PimStateSuperiorDesignated
}

// PimMachineRepeatedDesignated
func (pim *PimMachine) PimMachineRepeatedDesignated(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.RecordProposal()
	p.SetTcFlags()
	p.UpdtRcvdInfoWhile()
	p.RcvdMsg = false
	return PimStateRepeatedDesignated
}

// PimMachineInferiorDesignated
func (pim *PimMachine) PimMachineInferiorDesignated(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.RecordDispute()
	p.RcvdMsg = false
	return PimStateInferiorDesignated
}

// PimMachineNotDesignated
func (pim *PimMachine) PimMachineNotDesignated(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	p.RecordAgreement()
	p.SetTcFlags()
	p.RcvdMsg = false
	return PimStateNotDesignated
}

// PimMachineOther
func (pim *PimMachine) PimMachineOther(m fsm.Machine, data interface{}) fsm.State {
	p := pim.p
	// a TCN carries no priority information, only the notification
	if p.RxBpdu.Type == BPDUTypeTCN {
		p.SetTcFlags()
	}
	p.RcvdMsg = false
	return PimStateOther
}

func PimMachineFSMBuild(p *StpPort) *PimMachine {

	rules := fsm.Ruleset{}

	pim := NewStpPimMachine(p)

	allStates := []fsm.State{
		PimStateNone,
		PimStateDisabled,
		PimStateAged,
		PimStateUpdate,
		PimStateSuperiorDesignated,
		PimStateRepeatedDesignated,
		PimStateInferiorDesignated,
		PimStateNotDesignated,
		PimStateOther,
		PimStateCurrent,
		PimStateReceive,
	}

	// BEGIN -> DISABLED
	for _, s := range allStates {
		rules.AddRule(s, PimEventBegin, pim.PimMachineDisabled)
	}

	// NOT PORT ENABLED && INFOIS != DISABLED -> DISABLED
	for _, s := range allStates[1:] {
		rules.AddRule(s, PimEventNotPortEnabledInfoIsNotEqualDisabled, pim.PimMachineDisabled)
	}

	// RCVDMSG -> DISABLED
	rules.AddRule(PimStateDisabled, PimEventRcvdMsg, pim.PimMachineDisabled)

	// PORT ENABLED -> AGED
	rules.AddRule(PimStateDisabled, PimEventPortEnabled, pim.PimMachineAged)

	// INFOIS == RECEIVED && RCVDINFOWHILE == 0 && NOT UPDTINFO && NOT RCVDMSG -> AGED
	rules.AddRule(PimStateCurrent, PimEventInflsEqualReceivedAndRcvdInfoWhileEqualZeroAndNotUpdtInfoAndNotRcvdMsg, pim.PimMachineAged)

	// SELECTED && UPDTINFO -> UPDATE
	rules.AddRule(PimStateAged, PimEventSelectedAndUpdtInfo, pim.PimMachineUpdate)
	rules.AddRule(PimStateCurrent, PimEventSelectedAndUpdtInfo, pim.PimMachineUpdate)

	// UNCONDITIONAL FALL THROUGH -> CURRENT
	rules.AddRule(PimStateUpdate, PimEventUnconditionalFallThrough, pim.PimMachineCurrent)
	rules.AddRule(PimStateSuperiorDesignated, PimEventUnconditionalFallThrough, pim.PimMachineCurrent)
	rules.AddRule(PimStateRepeatedDesignated, PimEventUnconditionalFallThrough, pim.PimMachineCurrent)
	rules.AddRule(PimStateInferiorDesignated, PimEventUnconditionalFallThrough, pim.PimMachineCurrent)
	rules.AddRule(PimStateNotDesignated, PimEventUnconditionalFallThrough, pim.PimMachineCurrent)
	rules.AddRule(PimStateOther, PimEventUnconditionalFallThrough, pim.PimMachineCurrent)

	// RCVDMSG && NOT UPDTINFO -> RECEIVE
	rules.AddRule(PimStateCurrent, PimEventRcvdMsgAndNotUpdtInfo, pim.PimMachineReceive)

	// RECEIVE -> per received info
	rules.AddRule(PimStateReceive, PimEventRcvdInfoEqualSuperiorDesignatedInfo, pim.PimMachineSuperiorDesignated)
	rules.AddRule(PimStateReceive, PimEventRcvdInfoEqualRepeatedDesignatedInfo, pim.PimMachineRepeatedDesignated)
	rules.AddRule(PimStateReceive, PimEventRcvdInfoEqualInferiorDesignatedInfo, pim.PimMachineInferiorDesignated)
	rules.AddRule(PimStateReceive, PimEventRcvdInfoEqualInferiorRootAlternateInfo, pim.PimMachineNotDesignated)
	rules.AddRule(PimStateReceive, PimEventRcvdInfoEqualOtherInfo, pim.PimMachineOther)

	// Create a new FSM and apply the rules
	pim.Apply(&rules)

	return pim
}

func (pim *PimMachine) nextEvent() fsm.Event {
	p := pim.p
	s := pim.Machine.Curr.CurrentState()
	if s == PimStateNone {
		return EventNone
	}

	// global transition
	if !p.PortEnabled &&
		p.InfoIs != PortInfoStateDisabled {
		return PimEventNotPortEnabledInfoIsNotEqualDisabled
	}

	switch s {
	case PimStateDisabled:
		if p.RcvdMsg {
			return PimEventRcvdMsg
		}
		if p.PortEnabled {
			return PimEventPortEnabled
		}
	case PimStateAged:
		if p.Selected &&
			p.UpdtInfo {
			return PimEventSelectedAndUpdtInfo
		}
	case PimStateUpdate,
		PimStateSuperiorDesignated,
		PimStateRepeatedDesignated,
		PimStateInferiorDesignated,
		PimStateNotDesignated,
		PimStateOther:
		return PimEventUnconditionalFallThrough
	case PimStateCurrent:
		if p.Selected &&
			p.UpdtInfo {
			return PimEventSelectedAndUpdtInfo
		}
		if p.InfoIs == PortInfoStateReceived &&
			p.RcvdInfoWhiletimer.TimedOut() &&
			!p.UpdtInfo &&
			!p.RcvdMsg {
			return PimEventInflsEqualReceivedAndRcvdInfoWhileEqualZeroAndNotUpdtInfoAndNotRcvdMsg
		}
		if p.RcvdMsg &&
			!p.UpdtInfo {
			return PimEventRcvdMsgAndNotUpdtInfo
		}
	case PimStateReceive:
		switch p.RcvdInfo {
		case SuperiorDesignatedInfo:
			return PimEventRcvdInfoEqualSuperiorDesignatedInfo
		case RepeatedDesignatedInfo:
			return PimEventRcvdInfoEqualRepeatedDesignatedInfo
		case InferiorDesignatedInfo:
			return PimEventRcvdInfoEqualInferiorDesignatedInfo
		case InferiorRootAlternateInfo:
			return PimEventRcvdInfoEqualInferiorRootAlternateInfo
		default:
			return PimEventRcvdInfoEqualOtherInfo
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (pim *PimMachine) Execute() bool {
	return executeMachine(PimMachineModuleStr, pim.p, pim.Machine, PimStateStrMap, pim.nextEvent)
}
