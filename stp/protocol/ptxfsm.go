// 802.1D-2004 17.26 Port Transmit state machine
// The Port Transmit state machine transmits BPDUs, periodically and when new
// information is available, limited to TxHoldCount BPDUs per second.  The
// BPDU kind follows sendRSTP and the port role.
package stp

import (
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PtxmMachineModuleStr = "Port Transmit State Machine"

const (
	PtxmStateNone = iota + 1
	PtxmStateTransmitInit
	PtxmStateTransmitConfig
	PtxmStateTransmitTCN
	PtxmStateTransmitPeriodic
	PtxmStateTransmitRSTP
	PtxmStateIdle
)

var PtxmStateStrMap map[fsm.State]string

func PtxmMachineStrStateMapInit() {
	PtxmStateStrMap = make(map[fsm.State]string)
	PtxmStateStrMap[PtxmStateNone] = "None"
	PtxmStateStrMap[PtxmStateTransmitInit] = "Transmit Init"
	PtxmStateStrMap[PtxmStateTransmitConfig] = "Transmit Config"
	PtxmStateStrMap[PtxmStateTransmitTCN] = "Transmit TCN"
	PtxmStateStrMap[PtxmStateTransmitPeriodic] = "Transmit Periodic"
	PtxmStateStrMap[PtxmStateTransmitRSTP] = "Transmit RSTP"
	PtxmStateStrMap[PtxmStateIdle] = "Idle"
}

const (
	PtxmEventBegin = iota + 1
	PtxmEventUnconditionalFallThrough
	PtxmEventSendRSTPAndNewInfoAndTxCountLessThanTxHoldCoundAndHelloWhenNotEqualZeroAndSelectedAndNotUpdtInfo
	PtxmEventNotSendRSTPAndNewInfoAndRootPortAndTxCountLessThanTxHoldCountAndHellWhenNotEqualZeroAndSelectedAndNotUpdtInfo
	PtxmEventNotSendRSTPAndNewInfoAndDesignatedPortAndTxCountLessThanTxHoldCountAndHellWhenNotEqualZeroAndSelectedAndNotUpdtInfo
	PtxmEventHelloWhenEqualsZeroAndSelectedAndNotUpdtInfo
)

// PtxmMachine holds FSM and current State
type PtxmMachine struct {
	Machine *fsm.Machine

	// Reference to StpPort
	p *StpPort
}

func NewStpPtxmMachine(p *StpPort) *PtxmMachine {
	ptxm := &PtxmMachine{
		p: p,
	}

	p.PtxmMachineFsm = ptxm

	return ptxm
}

func (ptxm *PtxmMachine) PtxmLogger(s string) {
	StpPortLogger("INFO", "PTXM", ptxm.p, s)
}

// A helpful function that lets us apply arbitrary rulesets to this
// instances State machine without reallocating the machine.
func (ptxm *PtxmMachine) Apply(r *fsm.Ruleset) *fsm.Machine {
	if ptxm.Machine == nil {
		ptxm.Machine = &fsm.Machine{}
	}

	// Assign the ruleset to be used for this machine
	ptxm.Machine.Rules = r
	ptxm.Machine.Curr = newStpStateEvent(PtxmMachineModuleStr, PtxmStateStrMap, PtxmStateNone, ptxm.p.logEna, ptxm.PtxmLogger)

	return ptxm.Machine
}

// PtxmMachineTransmitInit
func (ptxm *PtxmMachine) PtxmMachineTransmitInit(m fsm.Machine, data interface{}) fsm.State {
	p := ptxm.p
	p.NewInfo = true
	p.TxCount = 0
	return PtxmStateTransmitInit
}

// PtxmMachineTransmitPeriodic
func (ptxm *PtxmMachine) PtxmMachineTransmitPeriodic(m fsm.Machine, data interface{}) fsm.State {
	p := ptxm.p
	p.NewInfo = p.NewInfo ||
		(p.Role == PortRoleDesignatedPort ||
			(p.Role == PortRoleRootPort && !p.TcWhileTimer.TimedOut()))
	return PtxmStateTransmitPeriodic
}

// PtxmMachineTransmitConfig
func (ptxm *PtxmMachine) PtxmMachineTransmitConfig(m fsm.Machine, data interface{}) fsm.State {
	p := ptxm.p
	p.NewInfo = false
	p.TxConfig()
	p.TxCount++
	p.TcAck = false
	return PtxmStateTransmitConfig
}

// PtxmMachineTransmitTCN
func (ptxm *PtxmMachine) PtxmMachineTransmitTCN(m fsm.Machine, data interface{}) fsm.State {
	p := ptxm.p
	p.NewInfo = false
	p.TxTcn()
	p.TxCount++
	return PtxmStateTransmitTCN
}

// PtxmMachineTransmitRSTP
func (ptxm *PtxmMachine) PtxmMachineTransmitRSTP(m fsm.Machine, data interface{}) fsm.State {
	p := ptxm.p
	p.NewInfo = false
	p.TxRstp()
	p.TxCount++
	p.TcAck = false
	return PtxmStateTransmitRSTP
}

// PtxmMachineIdle
func (ptxm *PtxmMachine) PtxmMachineIdle(m fsm.Machine, data interface{}) fsm.State {
	p := ptxm.p
	p.HelloWhenTimer.Set(p.HelloTime())
	return PtxmStateIdle
}

func PtxmMachineFSMBuild(p *StpPort) *PtxmMachine {

	rules := fsm.Ruleset{}

	ptxm := NewStpPtxmMachine(p)

	// BEGIN -> TRANSMIT INIT
	for _, s := range []fsm.State{PtxmStateNone,
		PtxmStateTransmitInit,
		PtxmStateTransmitConfig,
		PtxmStateTransmitTCN,
		PtxmStateTransmitPeriodic,
		PtxmStateTransmitRSTP,
		PtxmStateIdle} {
		rules.AddRule(s, PtxmEventBegin, ptxm.PtxmMachineTransmitInit)
	}

	// UNCONDITIONAL FALL THROUGH -> IDLE
	rules.AddRule(PtxmStateTransmitInit, PtxmEventUnconditionalFallThrough, ptxm.PtxmMachineIdle)
	rules.AddRule(PtxmStateTransmitConfig, PtxmEventUnconditionalFallThrough, ptxm.PtxmMachineIdle)
	rules.AddRule(PtxmStateTransmitTCN, PtxmEventUnconditionalFallThrough, ptxm.PtxmMachineIdle)
	rules.AddRule(PtxmStateTransmitPeriodic, PtxmEventUnconditionalFallThrough, ptxm.PtxmMachineIdle)
	rules.AddRule(PtxmStateTransmitRSTP, PtxmEventUnconditionalFallThrough, ptxm.PtxmMachineIdle)

	// SENDRSTP && NEWINFO && TXCOUNT < TXHOLDCOUNT && HELLOWHEN != 0 && SELECTED && NOT UPDTINFO -> TRANSMIT RSTP
	rules.AddRule(PtxmStateIdle, PtxmEventSendRSTPAndNewInfoAndTxCountLessThanTxHoldCoundAndHelloWhenNotEqualZeroAndSelectedAndNotUpdtInfo, ptxm.PtxmMachineTransmitRSTP)

	// NOT SENDRSTP && NEWINFO && ROOT PORT && TXCOUNT < TXHOLDCOUNT && HELLOWHEN != 0 && SELECTED && NOT UPDTINFO -> TRANSMIT TCN
	rules.AddRule(PtxmStateIdle, PtxmEventNotSendRSTPAndNewInfoAndRootPortAndTxCountLessThanTxHoldCountAndHellWhenNotEqualZeroAndSelectedAndNotUpdtInfo, ptxm.PtxmMachineTransmitTCN)

	// NOT SENDRSTP && NEWINFO && DESIGNATED PORT && TXCOUNT < TXHOLDCOUNT && HELLOWHEN != 0 && SELECTED && NOT UPDTINFO -> TRANSMIT CONFIG
	rules.AddRule(PtxmStateIdle, PtxmEventNotSendRSTPAndNewInfoAndDesignatedPortAndTxCountLessThanTxHoldCountAndHellWhenNotEqualZeroAndSelectedAndNotUpdtInfo, ptxm.PtxmMachineTransmitConfig)

	// HELLOWHEN == 0 && SELECTED && NOT UPDTINFO -> TRANSMIT PERIODIC
	rules.AddRule(PtxmStateIdle, PtxmEventHelloWhenEqualsZeroAndSelectedAndNotUpdtInfo, ptxm.PtxmMachineTransmitPeriodic)

	// Create a new FSM and apply the rules
	ptxm.Apply(&rules)

	return ptxm
}

func (ptxm *PtxmMachine) nextEvent() fsm.Event {
	p := ptxm.p
	switch ptxm.Machine.Curr.CurrentState() {
	case PtxmStateTransmitInit,
		PtxmStateTransmitConfig,
		PtxmStateTransmitTCN,
		PtxmStateTransmitPeriodic,
		PtxmStateTransmitRSTP:
		return PtxmEventUnconditionalFallThrough

	case PtxmStateIdle:
		// nothing leaves a disabled port
		if !p.PortEnabled ||
			!p.selectedAndNotUpdtInfo() {
			return EventNone
		}
		if p.HelloWhenTimer.TimedOut() {
			return PtxmEventHelloWhenEqualsZeroAndSelectedAndNotUpdtInfo
		}
		if !p.NewInfo ||
			p.TxCount >= p.TxHoldCount() {
			return EventNone
		}
		if p.SendRSTP {
			return PtxmEventSendRSTPAndNewInfoAndTxCountLessThanTxHoldCoundAndHelloWhenNotEqualZeroAndSelectedAndNotUpdtInfo
		}
		if p.Role == PortRoleRootPort {
			return PtxmEventNotSendRSTPAndNewInfoAndRootPortAndTxCountLessThanTxHoldCountAndHellWhenNotEqualZeroAndSelectedAndNotUpdtInfo
		}
		if p.Role == PortRoleDesignatedPort {
			return PtxmEventNotSendRSTPAndNewInfoAndDesignatedPortAndTxCountLessThanTxHoldCountAndHellWhenNotEqualZeroAndSelectedAndNotUpdtInfo
		}
	}
	return EventNone
}

// Execute runs the machine until no transition is enabled
func (ptxm *PtxmMachine) Execute() bool {
	return executeMachine(PtxmMachineModuleStr, ptxm.p, ptxm.Machine, PtxmStateStrMap, ptxm.nextEvent)
}
