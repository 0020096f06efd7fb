// procedures.go 802.1D-2004 17.21 State machine procedures
package stp

import (
	"fmt"
)

const ProceduresModuleStr = "Procedures"

// 17.21.1
func (p *StpPort) BetterOrSameInfo(newInfoIs PortInfoState) bool {
	return (newInfoIs == PortInfoStateReceived &&
		p.InfoIs == PortInfoStateReceived &&
		p.MsgPriority.BetterOrSame(p.PortPriority)) ||
		(newInfoIs == PortInfoStateMine &&
			p.InfoIs == PortInfoStateMine &&
			p.DesignatedPriority.BetterOrSame(p.PortPriority))
}

// 17.21.2
func (b *Bridge) ClearReselectTree() {
	for _, p := range b.portList {
		p.Reselect = false
	}
}

// 17.21.3
func (p *StpPort) DisableForwarding() {
	p.hwSetForwarding(false)
}

// 17.21.4
func (p *StpPort) DisableLearning() {
	p.hwSetLearning(false)
}

// 17.21.5
func (p *StpPort) EnableForwarding() {
	p.hwSetForwarding(true)
}

// 17.21.6
func (p *StpPort) EnableLearning() {
	p.hwSetLearning(true)
}

// 17.21.7
func (p *StpPort) NewTcWhile() {
	if !p.TcWhileTimer.TimedOut() {
		return
	}
	if p.SendRSTP {
		p.TcWhileTimer.Set(p.HelloTime() + 1)
		p.NewInfo = true
	} else if p.b != nil {
		p.TcWhileTimer.Set(p.b.RootTimes.MaxAge + p.b.RootTimes.ForwardingDelay)
	}
	if p.b != nil {
		p.b.topologyChanged()
	}
}

// rxRole is the role conveyed by the received bpdu, Config BPDUs always
// convey a designated port
func (p *StpPort) rxRole() BPDURole {
	if p.RxBpdu.Type == BPDUTypeConfig {
		return BPDURoleDesignated
	}
	return p.RxBpdu.Flags.Role
}

// RcvInfo 17.21.8
// classifies the received bpdu against the port priority vector and records
// the message priority vector and timers
func (p *StpPort) RcvInfo() PortDesignatedRcvInfo {
	bpdu := &p.RxBpdu
	if bpdu.Type != BPDUTypeConfig &&
		bpdu.Type != BPDUTypeRST {
		return OtherInfo
	}

	p.MsgPriority = bpdu.Priority()
	p.MsgTimes = bpdu.Times()

	switch p.rxRole() {
	case BPDURoleDesignated:
		if p.MsgPriority.IsSuperiorTo(p.PortPriority) ||
			(p.MsgPriority.Equal(p.PortPriority) &&
				p.MsgTimes != p.PortTimes) {
			return SuperiorDesignatedInfo
		}
		if p.MsgPriority.Equal(p.PortPriority) {
			return RepeatedDesignatedInfo
		}
		return InferiorDesignatedInfo

	case BPDURoleRoot, BPDURoleAlternateBackup:
		if p.PortPriority.BetterOrSame(p.MsgPriority) {
			return InferiorRootAlternateInfo
		}
	}
	return OtherInfo
}

// 17.21.9
func (p *StpPort) RecordAgreement() {
	if p.RstpVersion() &&
		p.OperPointToPointMAC &&
		p.RxBpdu.Type == BPDUTypeRST &&
		p.RxBpdu.Flags.Agreement {
		p.Agreed = true
		p.Proposing = false
	} else {
		p.Agreed = false
	}
}

// 17.21.10
func (p *StpPort) RecordDispute() {
	if p.RxBpdu.Type == BPDUTypeRST &&
		p.RxBpdu.Flags.Learning {
		p.Disputed = true
		p.Agreed = false
	}
}

// 17.21.11
func (p *StpPort) RecordPriority() {
	p.PortPriority = p.MsgPriority
}

// 17.21.12
func (p *StpPort) RecordProposal() {
	if p.RxBpdu.Type == BPDUTypeRST &&
		p.rxRole() == BPDURoleDesignated &&
		p.RxBpdu.Flags.Proposal {
		p.Proposed = true
	}
}

// 17.21.13
func (p *StpPort) RecordTimes() {
	p.PortTimes = p.MsgTimes
	if p.PortTimes.HelloTime < BridgeHelloTimeMin {
		p.PortTimes.HelloTime = BridgeHelloTimeMin
	}
}

// 17.21.14
func (b *Bridge) SetSyncTree() {
	for _, p := range b.portList {
		p.Sync = true
	}
}

// 17.21.15
func (b *Bridge) SetReRootTree() {
	for _, p := range b.portList {
		p.ReRoot = true
	}
}

// 17.21.16
// selected is only raised once no port asks for reselection
func (b *Bridge) SetSelectedTree() {
	for _, p := range b.portList {
		if p.Reselect {
			return
		}
	}
	for _, p := range b.portList {
		p.Selected = true
	}
}

// 17.21.17
func (p *StpPort) SetTcFlags() {
	switch p.RxBpdu.Type {
	case BPDUTypeConfig:
		if p.RxBpdu.Flags.TopoChange {
			p.RcvdTc = true
		}
		if p.RxBpdu.Flags.TopoChangeAck {
			p.RcvdTcAck = true
		}
	case BPDUTypeRST:
		if p.RxBpdu.Flags.TopoChange {
			p.RcvdTc = true
		}
	case BPDUTypeTCN:
		p.RcvdTcn = true
	}
}

// 17.21.18
func (p *StpPort) SetTcPropTree() {
	if p.b == nil {
		return
	}
	for _, q := range p.b.portList {
		if q != p {
			q.TcProp = true
		}
	}
}

// 17.21.22
func (p *StpPort) UpdtBPDUVersion() {
	switch p.RxBpdu.Type {
	case BPDUTypeRST:
		p.RcvdRSTP = true
	case BPDUTypeConfig, BPDUTypeTCN:
		if p.RxBpdu.ProtocolVersion < RSTPProtocolVersion {
			p.RcvdSTP = true
		}
	}
}

// 17.21.23
func (p *StpPort) UpdtRcvdInfoWhile() {
	if p.PortTimes.MessageAge+1 <= p.PortTimes.MaxAge {
		p.RcvdInfoWhiletimer.Set(3 * p.PortTimes.HelloTime)
	} else {
		p.RcvdInfoWhiletimer.Set(0)
	}
}

// 17.21.24
func (b *Bridge) UpdtRoleDisabledTree() {
	for _, p := range b.portList {
		p.SelectedRole = PortRoleDisabledPort
	}
}

// FlushFdb services a raised fdbFlush.  The bridge interface is asked to
// remove the learned entries right away and the flag is cleared.  In STP
// compatibility mode the port ageing time is also shortened to FwdDelay
// for a period of FwdDelay (17.19.1).
func (p *StpPort) FlushFdb() {
	if !p.FdbFlush {
		return
	}
	if p.StpVersion() {
		p.AgeingTime = p.FwdDelay()
		p.AgeingShortWhile = p.FwdDelay()
	}
	p.hwFlushFdb()
	p.FdbFlush = false
	StpPortLogger("DEBUG", ProceduresModuleStr, p, fmt.Sprintf("fdb flush ageing %d", p.AgeingTime))
}
