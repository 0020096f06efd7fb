// 802.1D-2004 17.28 Port Role Selection state machine
// The Port Role Selection state machine computes the bridge root priority
// vector and root times, and the role of every port, whenever a port asks for
// reselection.  It is the only machine that runs once per bridge rather than
// once per port.
package stp

import (
	"fmt"

	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PrsMachineModuleStr = "Port Role Selection State Machine"

const (
	PrsStateNone = iota + 1
	PrsStateInitBridge
	PrsStateRoleSelection
)

var PrsStateStrMap map[fsm.State]string

func PrsMachineStrStateMapInit() {
	PrsStateStrMap = make(map[fsm.State]string)
	PrsStateStrMap[PrsStateNone] = "None"
	PrsStateStrMap[PrsStateInitBridge] = "Init Bridge"
	PrsStateStrMap[PrsStateRoleSelection] = "Role Selection"
}

const (
	PrsEventBegin = iota + 1
	PrsEventUnconditionallFallThrough
	PrsEventReselect
)

// PrsMachine holds FSM and current State
type PrsMachine struct {
	Machine *fsm.Machine

	// Reference to Bridge
	b *Bridge
}

func NewStpPrsMachine(b *Bridge) *PrsMachine {
	prsm := &PrsMachine{
		b: b,
	}

	b.PrsMachineFsm = prsm

	return prsm
}

func (prsm *PrsMachine) PrsLogger(s string) {
	StpMachineLogger("INFO", "PRSM", 0, int32(prsm.b.BridgeIdentifier.Ext), s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (prsm *PrsMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if prsm.Machine == nil {
		prsm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	prsm.Machine.Rules = r
	prsm.Machine.Curr = newStpStateEvent(PrsMachineModuleStr, PrsStateStrMap, PrsStateNone, prsm.b.logEna, prsm.PrsLogger)

	return prsm.Machine
}

// PrsMachineInitBridge
func (prsm *PrsMachine) PrsMachineInitBridge(m fsm.Machine, data interface{}) fsm.State {
	prsm.b.UpdtRoleDisabledTree()
	return PrsStateInitBridge
}

// PrsMachineRoleSelection
func (prsm *PrsMachine) PrsMachineRoleSelection(m fsm.Machine, data interface{}) fsm.State {
	b := prsm.b
	b.ClearReselectTree()
	b.UpdtRolesTree()
	b.SetSelectedTree()
	return PrsStateRoleSelection
}

func PrsMachineFSMBuild(b *Bridge) *PrsMachine {

	rules := fsm.Ruleset{}

	prsm := NewStpPrsMachine(b)

	// BEGIN -> INIT BRIDGE
	rules.AddRule(PrsStateNone, PrsEventBegin, prsm.PrsMachineInitBridge)
	rules.AddRule(PrsStateInitBridge, PrsEventBegin, prsm.PrsMachineInitBridge)
	rules.AddRule(PrsStateRoleSelection, PrsEventBegin, prsm.PrsMachineInitBridge)

	// UNCONDITIONAL FALL THROUGH -> ROLE SELECTION
	rules.AddRule(PrsStateInitBridge, PrsEventUnconditionallFallThrough, prsm.PrsMachineRoleSelection)

	// RESELECT -> ROLE SELECTION
	rules.AddRule(PrsStateRoleSelection, PrsEventReselect, prsm.PrsMachineRoleSelection)

	// Create a new FSM and apply the rules
	prsm.Apply(&rules)

	return prsm
}

func (prsm *PrsMachine) nextEvent() fsm.Event {
	switch prsm.Machine.Curr.CurrentState() {
	case PrsStateInitBridge:
		return PrsEventUnconditionallFallThrough
	case PrsStateRoleSelection:
		for _, p := range prsm.b.portList {
			if p.Reselect {
				return PrsEventReselect
			}
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (prsm *PrsMachine) Execute() bool {
	return runMachine(PrsMachineModuleStr, prsm.Machine, PrsStateStrMap, prsm.nextEvent, func(t string, msg string) {
		StpMachineLogger(t, PrsMachineModuleStr, 0, int32(prsm.b.BridgeIdentifier.Ext), msg)
	})
}

// rootPathPriority 17.6 is the port priority vector as seen through the
// receiving port
func (p *StpPort) rootPathPriority() PriorityVector {
	return p.PortPriority.AddCost(p.PortPathCost)
}

// betterRootPath compares two candidate root paths, the receiving port
// identifier breaking a tie between equal vectors
func betterRootPath(p *StpPort, q *StpPort) bool {
	if c := p.rootPathPriority().Compare(q.rootPathPriority()); c != 0 {
		return c < 0
	}
	return p.PortId.Compare(q.PortId) < 0
}

// UpdtRolesTree 17.21.25
func (b *Bridge) UpdtRolesTree() {
	myAddr := b.BridgeIdentifier.Address

	// (a), (b) pick the best root path, our own bridge priority wins unless
	// some port received something better
	var rootPort *StpPort
	for _, p := range b.portList {
		if p.InfoIs != PortInfoStateReceived ||
			p.PortPriority.DesignatedBridgeId.Address == myAddr {
			continue
		}
		if !p.rootPathPriority().Less(b.BridgePriority) {
			continue
		}
		if rootPort == nil ||
			betterRootPath(p, rootPort) {
			rootPort = p
		}
	}

	prevRoot := b.RootPriority.RootBridgeId
	if rootPort != nil {
		b.RootPriority = rootPort.rootPathPriority()
		b.RootPortId = rootPort.PortId
		// (c)
		b.RootTimes = rootPort.PortTimes
		b.RootTimes.MessageAge++
	} else {
		b.RootPriority = b.BridgePriority
		b.RootPortId = PortId{}
		b.RootTimes = b.BridgeTimes
	}
	if prevRoot != b.RootPriority.RootBridgeId {
		StpLogger("INFO", fmt.Sprintf("%s: root bridge %s cost %d root port %s",
			PrsMachineModuleStr, b.RootPriority.RootBridgeId, b.RootPriority.RootPathCost, b.RootPortId))
	}

	for _, p := range b.portList {
		// (d), (e)
		p.DesignatedPriority = PriorityVector{
			RootBridgeId:       b.RootPriority.RootBridgeId,
			RootPathCost:       b.RootPriority.RootPathCost,
			DesignatedBridgeId: b.BridgeIdentifier,
			DesignatedPortId:   p.PortId,
		}
		p.DesignatedTimes = b.RootTimes
		p.DesignatedTimes.HelloTime = b.BridgeTimes.HelloTime

		switch p.InfoIs {
		case PortInfoStateDisabled:
			// (f)
			p.SelectedRole = PortRoleDisabledPort

		case PortInfoStateAged:
			// (g)
			p.SelectedRole = PortRoleDesignatedPort
			p.UpdtInfo = true

		case PortInfoStateMine:
			// (h)
			p.SelectedRole = PortRoleDesignatedPort
			if p.PortPriority != p.DesignatedPriority ||
				p.PortTimes != p.DesignatedTimes {
				p.UpdtInfo = true
			}

		case PortInfoStateReceived:
			switch {
			case p == rootPort:
				// (i)
				p.SelectedRole = PortRoleRootPort
				p.UpdtInfo = false
			case !p.DesignatedPriority.Less(p.PortPriority):
				// (j), (k)
				if p.PortPriority.DesignatedBridgeId.Address != myAddr {
					p.SelectedRole = PortRoleAlternatePort
				} else {
					p.SelectedRole = PortRoleBackupPort
				}
				p.UpdtInfo = false
			default:
				// (l)
				p.SelectedRole = PortRoleDesignatedPort
				p.UpdtInfo = true
			}
		}
	}
}
