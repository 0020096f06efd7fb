// 802.1D-2004 17.29 Port Role Transitions State Machine
// The Port Role Transitions state machine moves a port through the states of
// its selected role.  Disabled, Root, Designated and Alternate/Backup each
// own a sub-automaton; a port changes sub-automaton whenever role differs
// from selectedRole once selection has settled.  Learn and forward are only
// raised when the rapid agreement or the forward delay allows it.
package stp

import (
	"fmt"

	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PrtMachineModuleStr = "Port Role Transitions State Machine"

const (
	PrtStateNone = iota + 1
	// Role: Disabled
	PrtStateInitPort
	PrtStateDisablePort
	PrtStateDisabledPort
	// Role Root
	PrtStateRootPort
	PrtStateReRoot
	PrtStateRootAgreed
	PrtStateRootProposed
	PrtStateRootForward
	PrtStateRootLearn
	PrtStateReRooted
	// Role Designated
	PrtStateDesignatedPort
	PrtStateDesignatedRetired
	PrtStateDesignatedSynced
	PrtStateDesignatedPropose
	PrtStateDesignatedForward
	PrtStateDesignatedLearn
	PrtStateDesignatedDiscard
	// Role Alternate Backup
	PrtStateAlternatePort
	PrtStateAlternateAgreed
	PrtStateAlternateProposed
	PrtStateBlockPort
	PrtStateBackupPort
)

var PrtStateStrMap map[fsm.State]string

func PrtMachineStrStateMapInit() {
	PrtStateStrMap = make(map[fsm.State]string)
	PrtStateStrMap[PrtStateNone] = "None"
	PrtStateStrMap[PrtStateInitPort] = "Init Port"
	PrtStateStrMap[PrtStateDisablePort] = "Disable Port"
	PrtStateStrMap[PrtStateDisabledPort] = "Disabled Port"
	PrtStateStrMap[PrtStateRootPort] = "Root Port"
	PrtStateStrMap[PrtStateReRoot] = "Re-Root"
	PrtStateStrMap[PrtStateRootAgreed] = "Root Agreed"
	PrtStateStrMap[PrtStateRootProposed] = "Root Proposed"
	PrtStateStrMap[PrtStateRootForward] = "Root Forward"
	PrtStateStrMap[PrtStateRootLearn] = "Root Learn"
	PrtStateStrMap[PrtStateReRooted] = "Re-Rooted"
	PrtStateStrMap[PrtStateDesignatedPort] = "Designated Port"
	PrtStateStrMap[PrtStateDesignatedRetired] = "Designated Retired"
	PrtStateStrMap[PrtStateDesignatedSynced] = "Designated Synced"
	PrtStateStrMap[PrtStateDesignatedPropose] = "Designated Propose"
	PrtStateStrMap[PrtStateDesignatedForward] = "Designated Forward"
	PrtStateStrMap[PrtStateDesignatedLearn] = "Designated Learn"
	PrtStateStrMap[PrtStateDesignatedDiscard] = "Designated Discard"
	PrtStateStrMap[PrtStateAlternatePort] = "Alternate Port"
	PrtStateStrMap[PrtStateAlternateAgreed] = "Alternate Agreed"
	PrtStateStrMap[PrtStateAlternateProposed] = "Alternate Proposed"
	PrtStateStrMap[PrtStateBlockPort] = "Block Port"
	PrtStateStrMap[PrtStateBackupPort] = "Backup Port"
}

// every event other than begin and the unconditional fall through is
// qualified by selected && !updtInfo
const (
	PrtEventBegin = iota + 1
	PrtEventUnconditionallFallThrough
	// Figure 17-20 Disabled Port role transitions
	PrtEventSelectedRoleEqualsDisabledPortAndRoleNotEqualSelectedRole
	PrtEventNotLearningAndNotForwarding // also applies to Block Port
	PrtEventFdWhileNotEqualMaxAgeOrSyncOrReRootOrNotSynced
	// Figure 17-21 Root Port role transitions
	PrtEventSelectedRoleEqualRootPortAndRoleNotEqualSelectedRole
	PrtEventProposedAndNotAgree                         // also applies to Alternate and Backup Port role
	PrtEventAllSyncedAndNotAgreeOrProposedAndAgree      // also applies to Alternate and Backup Port role
	PrtEventNotForwardAndNotReRoot
	PrtEventRrWhileNotEqualFwdDelay
	PrtEventReRootAndForward
	PrtEventFdWhileEqualZeroOrReRootedAndRbWhileEqualZeroAndRstpVersionAndNotLearn
	PrtEventFdWhileEqualZeroOrReRootedAndRbWhileEqualZeroAndRstpVersionAndLearnAndNotForward
	// Figure 17-22 Designated port role transitions
	PrtEventSelectedRoleEqualDesignatedPortAndRoleNotEqualSelectedRole
	PrtEventNotForwardAndNotAgreedAndNotProposingAndNotOperEdge
	PrtEventDesignatedSyncCondition
	PrtEventRrWhileEqualZeroAndReRoot
	PrtEventDesignatedDiscardCondition
	PrtEventDesignatedLearnCondition
	PrtEventDesignatedForwardCondition
	// Figure 17-23 Alternate and Backup Port role transitions
	PrtEventSelectedRoleEqualAlternateOrBackupAndRoleNotEqualSelectedRole
	PrtEventFdWhileNotEqualForwardDelayOrSyncOrReRootOrNotSynced
	PrtEventRbWhileNotEqualTwoTimesHelloTimeAndRoleEqualsBackupPort
)

// PrtMachine holds FSM and current State
type PrtMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpPrtMachine(p *StpPort) *PrtMachine {
	prtm := &PrtMachine{
		p: p,
	}

	p.PrtMachineFsm = prtm

	return prtm
}

func (prtm *PrtMachine) PrtLogger(s string) {
	StpPortLogger("INFO", "PRTM", prtm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (prtm *PrtMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if prtm.Machine == nil {
		prtm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	prtm.Machine.Rules = r
	prtm.Machine.Curr = newStpStateEvent(PrtMachineModuleStr, PrtStateStrMap, PrtStateNone, prtm.p.logEna, prtm.PrtLogger)

	return prtm.Machine
}

// PrtMachineInitPort
func (prtm *PrtMachine) PrtMachineInitPort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Role = PortRoleDisabledPort
	p.Learn = false
	p.Forward = false
	p.Synced = false
	p.Sync = true
	p.ReRoot = true
	p.RrWhileTimer.Set(p.FwdDelay())
	p.FdWhileTimer.Set(p.MaxAge())
	p.RbWhileTimer.Set(0)
	return PrtStateInitPort
}

// PrtMachineDisablePort
func (prtm *PrtMachine) PrtMachineDisablePort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Role = p.SelectedRole
	p.Learn = false
	p.Forward = false
	return PrtStateDisablePort
}

// PrtMachineInitDisablePort leaves INIT PORT.  Role selection may already
// have run for a port added to a running bridge, role stays DisabledPort
// so the role change transition brings the port into its selected role.
func (prtm *PrtMachine) PrtMachineInitDisablePort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Role = PortRoleDisabledPort
	p.Learn = false
	p.Forward = false
	return PrtStateDisablePort
}

// PrtMachineDisabledPort
func (prtm *PrtMachine) PrtMachineDisabledPort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.FdWhileTimer.Set(p.MaxAge())
	p.Synced = true
	p.RrWhileTimer.Set(0)
	p.Sync = false
	p.ReRoot = false
	return PrtStateDisabledPort
}

// PrtMachineRootProposed
func (prtm *PrtMachine) PrtMachineRootProposed(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.b.SetSyncTree()
	p.Proposed = false
	return PrtStateRootProposed
}

// PrtMachineRootAgreed
func (prtm *PrtMachine) PrtMachineRootAgreed(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Proposed = false
	p.Sync = false
	p.Agree = true
	p.NewInfo = true
	return PrtStateRootAgreed
}

// PrtMachineReRoot
func (prtm *PrtMachine) PrtMachineReRoot(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.b.SetReRootTree()
	return PrtStateReRoot
}

// PrtMachineRootPort
func (prtm *PrtMachine) PrtMachineRootPort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Role = PortRoleRootPort
	p.RrWhileTimer.Set(p.FwdDelay())
	return PrtStateRootPort
}

// PrtMachineReRooted
func (prtm *PrtMachine) PrtMachineReRooted(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.ReRoot = false
	return PrtStateReRooted
}

// PrtMachineRootLearn
func (prtm *PrtMachine) PrtMachineRootLearn(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.FdWhileTimer.Set(p.ForwardDelay())
	p.Learn = true
	return PrtStateRootLearn
}

// PrtMachineRootForward
func (prtm *PrtMachine) PrtMachineRootForward(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.FdWhileTimer.Set(0)
	p.Forward = true
	return PrtStateRootForward
}

// PrtMachineDesignatedPropose
func (prtm *PrtMachine) PrtMachineDesignatedPropose(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Proposing = true
	p.EdgeDelayWhileTimer.Set(p.EdgeDelay())
	p.NewInfo = true
	return PrtStateDesignatedPropose
}

// PrtMachineDesignatedSynced
func (prtm *PrtMachine) PrtMachineDesignatedSynced(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.RrWhileTimer.Set(0)
	p.Synced = true
	p.Sync = false
	return PrtStateDesignatedSynced
}

// PrtMachineDesignatedRetired
func (prtm *PrtMachine) PrtMachineDesignatedRetired(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.ReRoot = false
	return PrtStateDesignatedRetired
}

// PrtMachineDesignatedPort
func (prtm *PrtMachine) PrtMachineDesignatedPort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Role = PortRoleDesignatedPort
	return PrtStateDesignatedPort
}

// PrtMachineDesignatedDiscard
func (prtm *PrtMachine) PrtMachineDesignatedDiscard(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Learn = false
	p.Forward = false
	p.Disputed = false
	p.FdWhileTimer.Set(p.ForwardDelay())
	return PrtStateDesignatedDiscard
}

// PrtMachineDesignatedLearn
func (prtm *PrtMachine) PrtMachineDesignatedLearn(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Learn = true
	p.FdWhileTimer.Set(p.ForwardDelay())
	return PrtStateDesignatedLearn
}

// PrtMachineDesignatedForward
func (prtm *PrtMachine) PrtMachineDesignatedForward(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Forward = true
	p.FdWhileTimer.Set(0)
	p.Agreed = p.SendRSTP
	return PrtStateDesignatedForward
}

// PrtMachineAlternateProposed
func (prtm *PrtMachine) PrtMachineAlternateProposed(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.b.SetSyncTree()
	p.Proposed = false
	return PrtStateAlternateProposed
}

// PrtMachineAlternateAgreed
func (prtm *PrtMachine) PrtMachineAlternateAgreed(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Proposed = false
	p.Agree = true
	p.NewInfo = true
	return PrtStateAlternateAgreed
}

// PrtMachineBlockPort
func (prtm *PrtMachine) PrtMachineBlockPort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.Role = p.SelectedRole
	p.Learn = false
	p.Forward = false
	return PrtStateBlockPort
}

// PrtMachineBackupPort
func (prtm *PrtMachine) PrtMachineBackupPort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.RbWhileTimer.Set(2 * p.HelloTime())
	return PrtStateBackupPort
}

// PrtMachineAlternatePort
func (prtm *PrtMachine) PrtMachineAlternatePort(m fsm.Machine, data interface{}) fsm.State {
	p := prtm.p
	p.FdWhileTimer.Set(p.ForwardDelay())
	p.Synced = true
	p.RrWhileTimer.Set(0)
	p.Sync = false
	p.ReRoot = false
	return PrtStateAlternatePort
}

func PrtMachineFSMBuild(p *StpPort) *PrtMachine {

	rules := fsm.Ruleset{}

	prtm := NewStpPrtMachine(p)

	allStates := []fsm.State{PrtStateNone}
	for s := fsm.State(PrtStateInitPort); s <= PrtStateBackupPort; s++ {
		allStates = append(allStates, s)
	}

	for _, s := range allStates {
		// BEGIN -> INIT PORT
		rules.AddRule(s, PrtEventBegin, prtm.PrtMachineInitPort)
		if s == PrtStateNone {
			continue
		}
		// role change, selectedRole decides the sub-automaton
		rules.AddRule(s, PrtEventSelectedRoleEqualsDisabledPortAndRoleNotEqualSelectedRole, prtm.PrtMachineDisablePort)
		rules.AddRule(s, PrtEventSelectedRoleEqualRootPortAndRoleNotEqualSelectedRole, prtm.PrtMachineRootPort)
		rules.AddRule(s, PrtEventSelectedRoleEqualDesignatedPortAndRoleNotEqualSelectedRole, prtm.PrtMachineDesignatedPort)
		rules.AddRule(s, PrtEventSelectedRoleEqualAlternateOrBackupAndRoleNotEqualSelectedRole, prtm.PrtMachineBlockPort)
	}

	// Disabled
	// INIT PORT -> DISABLE PORT
	rules.AddRule(PrtStateInitPort, PrtEventUnconditionallFallThrough, prtm.PrtMachineInitDisablePort)
	// NOT LEARNING && NOT FORWARDING -> DISABLED PORT
	rules.AddRule(PrtStateDisablePort, PrtEventNotLearningAndNotForwarding, prtm.PrtMachineDisabledPort)
	// FDWHILE != MAXAGE || SYNC || REROOT || NOT SYNCED -> DISABLED PORT
	rules.AddRule(PrtStateDisabledPort, PrtEventFdWhileNotEqualMaxAgeOrSyncOrReRootOrNotSynced, prtm.PrtMachineDisabledPort)

	// Root
	rules.AddRule(PrtStateRootPort, PrtEventProposedAndNotAgree, prtm.PrtMachineRootProposed)
	rules.AddRule(PrtStateRootPort, PrtEventAllSyncedAndNotAgreeOrProposedAndAgree, prtm.PrtMachineRootAgreed)
	rules.AddRule(PrtStateRootPort, PrtEventNotForwardAndNotReRoot, prtm.PrtMachineReRoot)
	rules.AddRule(PrtStateRootPort, PrtEventRrWhileNotEqualFwdDelay, prtm.PrtMachineRootPort)
	rules.AddRule(PrtStateRootPort, PrtEventReRootAndForward, prtm.PrtMachineReRooted)
	rules.AddRule(PrtStateRootPort, PrtEventFdWhileEqualZeroOrReRootedAndRbWhileEqualZeroAndRstpVersionAndNotLearn, prtm.PrtMachineRootLearn)
	rules.AddRule(PrtStateRootPort, PrtEventFdWhileEqualZeroOrReRootedAndRbWhileEqualZeroAndRstpVersionAndLearnAndNotForward, prtm.PrtMachineRootForward)
	// UNCONDITIONAL FALL THROUGH -> ROOT PORT
	rules.AddRule(PrtStateRootProposed, PrtEventUnconditionallFallThrough, prtm.PrtMachineRootPort)
	rules.AddRule(PrtStateRootAgreed, PrtEventUnconditionallFallThrough, prtm.PrtMachineRootPort)
	rules.AddRule(PrtStateReRoot, PrtEventUnconditionallFallThrough, prtm.PrtMachineRootPort)
	rules.AddRule(PrtStateReRooted, PrtEventUnconditionallFallThrough, prtm.PrtMachineRootPort)
	rules.AddRule(PrtStateRootLearn, PrtEventUnconditionallFallThrough, prtm.PrtMachineRootPort)
	rules.AddRule(PrtStateRootForward, PrtEventUnconditionallFallThrough, prtm.PrtMachineRootPort)

	// Designated
	rules.AddRule(PrtStateDesignatedPort, PrtEventNotForwardAndNotAgreedAndNotProposingAndNotOperEdge, prtm.PrtMachineDesignatedPropose)
	rules.AddRule(PrtStateDesignatedPort, PrtEventDesignatedSyncCondition, prtm.PrtMachineDesignatedSynced)
	rules.AddRule(PrtStateDesignatedPort, PrtEventRrWhileEqualZeroAndReRoot, prtm.PrtMachineDesignatedRetired)
	rules.AddRule(PrtStateDesignatedPort, PrtEventDesignatedDiscardCondition, prtm.PrtMachineDesignatedDiscard)
	rules.AddRule(PrtStateDesignatedPort, PrtEventDesignatedLearnCondition, prtm.PrtMachineDesignatedLearn)
	rules.AddRule(PrtStateDesignatedPort, PrtEventDesignatedForwardCondition, prtm.PrtMachineDesignatedForward)
	// UNCONDITIONAL FALL THROUGH -> DESIGNATED PORT
	rules.AddRule(PrtStateDesignatedPropose, PrtEventUnconditionallFallThrough, prtm.PrtMachineDesignatedPort)
	rules.AddRule(PrtStateDesignatedSynced, PrtEventUnconditionallFallThrough, prtm.PrtMachineDesignatedPort)
	rules.AddRule(PrtStateDesignatedRetired, PrtEventUnconditionallFallThrough, prtm.PrtMachineDesignatedPort)
	rules.AddRule(PrtStateDesignatedDiscard, PrtEventUnconditionallFallThrough, prtm.PrtMachineDesignatedPort)
	rules.AddRule(PrtStateDesignatedLearn, PrtEventUnconditionallFallThrough, prtm.PrtMachineDesignatedPort)
	rules.AddRule(PrtStateDesignatedForward, PrtEventUnconditionallFallThrough, prtm.PrtMachineDesignatedPort)

	// Alternate and Backup
	// NOT LEARNING && NOT FORWARDING -> ALTERNATE PORT
	rules.AddRule(PrtStateBlockPort, PrtEventNotLearningAndNotForwarding, prtm.PrtMachineAlternatePort)
	rules.AddRule(PrtStateAlternatePort, PrtEventProposedAndNotAgree, prtm.PrtMachineAlternateProposed)
	rules.AddRule(PrtStateAlternatePort, PrtEventAllSyncedAndNotAgreeOrProposedAndAgree, prtm.PrtMachineAlternateAgreed)
	rules.AddRule(PrtStateAlternatePort, PrtEventFdWhileNotEqualForwardDelayOrSyncOrReRootOrNotSynced, prtm.PrtMachineAlternatePort)
	rules.AddRule(PrtStateAlternatePort, PrtEventRbWhileNotEqualTwoTimesHelloTimeAndRoleEqualsBackupPort, prtm.PrtMachineBackupPort)
	// UNCONDITIONAL FALL THROUGH -> ALTERNATE PORT
	rules.AddRule(PrtStateAlternateProposed, PrtEventUnconditionallFallThrough, prtm.PrtMachineAlternatePort)
	rules.AddRule(PrtStateAlternateAgreed, PrtEventUnconditionallFallThrough, prtm.PrtMachineAlternatePort)
	rules.AddRule(PrtStateBackupPort, PrtEventUnconditionallFallThrough, prtm.PrtMachineAlternatePort)

	// Create a new FSM and apply the rules
	prtm.Apply(&rules)

	return prtm
}

// roleChangeEvent selects the sub-automaton of the newly selected role.
// Any other selected role means the selection procedure is broken.
func (prtm *PrtMachine) roleChangeEvent() fsm.Event {
	p := prtm.p
	switch p.SelectedRole {
	case PortRoleDisabledPort:
		return PrtEventSelectedRoleEqualsDisabledPortAndRoleNotEqualSelectedRole
	case PortRoleRootPort:
		return PrtEventSelectedRoleEqualRootPortAndRoleNotEqualSelectedRole
	case PortRoleDesignatedPort:
		return PrtEventSelectedRoleEqualDesignatedPortAndRoleNotEqualSelectedRole
	case PortRoleAlternatePort, PortRoleBackupPort:
		return PrtEventSelectedRoleEqualAlternateOrBackupAndRoleNotEqualSelectedRole
	}
	panic(fmt.Sprintf("%s: port %d invalid selected role %d", PrtMachineModuleStr, p.PortNum(), p.SelectedRole))
}

func (prtm *PrtMachine) nextEvent() fsm.Event {
	p := prtm.p
	s := prtm.Machine.Curr.CurrentState()
	switch s {
	case PrtStateNone:
		return EventNone
	case PrtStateInitPort:
		return PrtEventUnconditionallFallThrough
	case PrtStateRootProposed,
		PrtStateRootAgreed,
		PrtStateReRoot,
		PrtStateReRooted,
		PrtStateRootLearn,
		PrtStateRootForward,
		PrtStateDesignatedPropose,
		PrtStateDesignatedSynced,
		PrtStateDesignatedRetired,
		PrtStateDesignatedDiscard,
		PrtStateDesignatedLearn,
		PrtStateDesignatedForward,
		PrtStateAlternateProposed,
		PrtStateAlternateAgreed,
		PrtStateBackupPort:
		return PrtEventUnconditionallFallThrough
	}

	if !p.selectedAndNotUpdtInfo() {
		return EventNone
	}

	// global transition
	if p.Role != p.SelectedRole {
		return prtm.roleChangeEvent()
	}

	switch s {
	case PrtStateDisablePort:
		if !p.Learning &&
			!p.Forwarding {
			return PrtEventNotLearningAndNotForwarding
		}

	case PrtStateDisabledPort:
		if p.FdWhileTimer.Count() != p.MaxAge() ||
			p.Sync ||
			p.ReRoot ||
			!p.Synced {
			return PrtEventFdWhileNotEqualMaxAgeOrSyncOrReRootOrNotSynced
		}

	case PrtStateRootPort:
		if p.Proposed &&
			!p.Agree {
			return PrtEventProposedAndNotAgree
		}
		if (p.AllSynced() && !p.Agree) ||
			(p.Proposed && p.Agree) {
			return PrtEventAllSyncedAndNotAgreeOrProposedAndAgree
		}
		if !p.Forward &&
			!p.ReRoot {
			return PrtEventNotForwardAndNotReRoot
		}
		if p.RrWhileTimer.Count() != p.FwdDelay() {
			return PrtEventRrWhileNotEqualFwdDelay
		}
		if p.ReRoot &&
			p.Forward {
			return PrtEventReRootAndForward
		}
		if p.FdWhileTimer.TimedOut() ||
			(p.ReRooted() && p.RbWhileTimer.TimedOut() && p.RstpVersion()) {
			if !p.Learn {
				return PrtEventFdWhileEqualZeroOrReRootedAndRbWhileEqualZeroAndRstpVersionAndNotLearn
			}
			if !p.Forward {
				return PrtEventFdWhileEqualZeroOrReRootedAndRbWhileEqualZeroAndRstpVersionAndLearnAndNotForward
			}
		}

	case PrtStateDesignatedPort:
		if !p.Forward &&
			!p.Agreed &&
			!p.Proposing &&
			!p.OperEdge {
			return PrtEventNotForwardAndNotAgreedAndNotProposingAndNotOperEdge
		}
		if (!p.Learning && !p.Forwarding && !p.Synced) ||
			(p.Agreed && !p.Synced) ||
			(p.OperEdge && !p.Synced) ||
			(p.Sync && p.Synced) {
			return PrtEventDesignatedSyncCondition
		}
		if p.RrWhileTimer.TimedOut() &&
			p.ReRoot {
			return PrtEventRrWhileEqualZeroAndReRoot
		}
		if ((p.Sync && !p.Synced) ||
			(p.ReRoot && !p.RrWhileTimer.TimedOut()) ||
			p.Disputed) &&
			!p.OperEdge &&
			(p.Learn || p.Forward) {
			return PrtEventDesignatedDiscardCondition
		}
		if (p.FdWhileTimer.TimedOut() || p.Agreed || p.OperEdge) &&
			(p.RrWhileTimer.TimedOut() || !p.ReRoot) &&
			!p.Sync {
			if !p.Learn {
				return PrtEventDesignatedLearnCondition
			}
			if !p.Forward {
				return PrtEventDesignatedForwardCondition
			}
		}

	case PrtStateBlockPort:
		if !p.Learning &&
			!p.Forwarding {
			return PrtEventNotLearningAndNotForwarding
		}

	case PrtStateAlternatePort:
		if p.Proposed &&
			!p.Agree {
			return PrtEventProposedAndNotAgree
		}
		if (p.AllSynced() && !p.Agree) ||
			(p.Proposed && p.Agree) {
			return PrtEventAllSyncedAndNotAgreeOrProposedAndAgree
		}
		if p.FdWhileTimer.Count() != p.ForwardDelay() ||
			p.Sync ||
			p.ReRoot ||
			!p.Synced {
			return PrtEventFdWhileNotEqualForwardDelayOrSyncOrReRootOrNotSynced
		}
		if p.RbWhileTimer.Count() != 2*p.HelloTime() &&
			p.Role == PortRoleBackupPort {
			return PrtEventRbWhileNotEqualTwoTimesHelloTimeAndRoleEqualsBackupPort
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (prtm *PrtMachine) Execute() bool {
	return executeMachine(PrtMachineModuleStr, prtm.p, prtm.Machine, PrtStateStrMap, prtm.nextEvent)
}
