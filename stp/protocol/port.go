//
//Copyright [2016] [SnapRoute Inc]
//
//Licensed under the Apache License, Version 2.0 (the "License");
//you may not use this file except in compliance with the License.
//You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//	 Unless required by applicable law or agreed to in writing, software
//	 distributed under the License is distributed on an "AS IS" BASIS,
//	 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//	 See the License for the specific language governing permissions and
//	 limitations under the License.
//

// port.go
package stp

import (
	"fmt"

	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

const PortConfigModuleStr = "Port Config"

type StpPort struct {
	IfIndex int32
	Name    string
	// link speed in Mb/s
	Speed uint64

	// administrative parameters 17.13
	AdminPathCost        PathCost
	AdminEdge            bool
	AutoEdgePort         bool
	AdminPointToPointMAC PointToPointMac
	OperPointToPointMAC  bool

	// 17.19
	AgeingTime         uint16
	// seconds left on a shortened AgeingTime
	AgeingShortWhile   uint16
	Agree              bool
	Agreed             bool
	DesignatedPriority PriorityVector
	DesignatedTimes    Times
	Disputed           bool
	FdbFlush           bool
	Forward            bool
	Forwarding         bool
	InfoIs             PortInfoState
	Learn              bool
	Learning           bool
	Mcheck             bool
	MsgPriority        PriorityVector
	MsgTimes           Times
	NewInfo            bool
	OperEdge           bool
	PortEnabled        bool
	PortId             PortId
	PortPathCost       PathCost
	PortPriority       PriorityVector
	PortTimes          Times
	Proposed           bool
	Proposing          bool
	RcvdBPDU           bool
	RcvdInfo           PortDesignatedRcvInfo
	RcvdMsg            bool
	RcvdRSTP           bool
	RcvdSTP            bool
	RcvdTc             bool
	RcvdTcAck          bool
	RcvdTcn            bool
	ReRoot             bool
	Reselect           bool
	Role               PortRole
	Selected           bool
	SelectedRole       PortRole
	SendRSTP           bool
	Sync               bool
	Synced             bool
	TcAck              bool
	TcProp             bool
	Tick               bool
	TxCount            uint16
	UpdtInfo           bool

	// last valid bpdu handed to the receive machine
	RxBpdu BPDU

	// 17.17
	SmTimers

	Counters StpPortCounters

	PtmMachineFsm  *PtmMachine
	PrxmMachineFsm *PrxmMachine
	PpmmMachineFsm *PpmmMachine
	BdmMachineFsm  *BdmMachine
	PtxmMachineFsm *PtxmMachine
	PimMachineFsm  *PimMachine
	PrtMachineFsm  *PrtMachine
	PstMachineFsm  *PstMachine
	TcMachineFsm   *TcMachine

	logEna bool

	b *Bridge
}

// StpPortCounters per bpdu type statistics
type StpPortCounters struct {
	BpduRxConfig  uint64
	BpduRxRst     uint64
	BpduRxTcn     uint64
	BpduRxInvalid uint64
	BpduTxConfig  uint64
	BpduTxRst     uint64
	BpduTxTcn     uint64
}

// NewStpPort creates the port with its ten machines built but not started;
// BEGIN must be called once the port is attached to the bridge
func NewStpPort(c *StpPortConfig, b *Bridge) *StpPort {
	p := &StpPort{
		IfIndex:              c.IfIndex,
		Name:                 c.Name,
		Speed:                c.Speed,
		AdminPathCost:        PathCost(c.AdminPathCost),
		AdminEdge:            c.AdminEdgePort,
		AutoEdgePort:         c.AutoEdgePort,
		AdminPointToPointMAC: PointToPointMac(c.AdminPointToPoint),
		PortEnabled:          c.Enable,
		PortId:               CreatePortId(c.PortNum, uint8(c.Priority)),
		InfoIs:               PortInfoStateDisabled,
		Role:                 PortRoleDisabledPort,
		SelectedRole:         PortRoleDisabledPort,
		logEna:               c.LogEnable,
		b:                    b,
	}
	p.PortPathCost = p.operPathCost()
	p.OperPointToPointMAC = p.operPointToPoint()

	if b != nil {
		p.DesignatedTimes = b.BridgeTimes
		p.PortTimes = b.BridgeTimes
		p.DesignatedPriority = b.BridgePriority
		p.DesignatedPriority.DesignatedPortId = p.PortId
		p.PortPriority = p.DesignatedPriority
		p.AgeingTime = BridgeAgeingTimeDefault
	}

	PtmMachineFSMBuild(p)
	PrxmMachineFSMBuild(p)
	PpmmMachineFSMBuild(p)
	BdmMachineFSMBuild(p)
	PtxmMachineFSMBuild(p)
	PimMachineFSMBuild(p)
	PrtMachineFSMBuild(p)
	PstMachineFSMBuild(p)
	TcMachineFSMBuild(p)

	StpPortLogger("INFO", PortConfigModuleStr, p, fmt.Sprintf("new port %s ifindex %d cost %d", p.PortId, p.IfIndex, p.PortPathCost))
	return p
}

// 17.13.11 an admin cost of zero selects the speed derived value
func (p *StpPort) operPathCost() PathCost {
	if p.AdminPathCost != 0 {
		return p.AdminPathCost
	}
	return SpeedMbToPathCostValue(p.Speed)
}

// 6.4.3 auto assumes a full duplex point to point link
func (p *StpPort) operPointToPoint() bool {
	switch p.AdminPointToPointMAC {
	case StpPointToPointForceFalse:
		return false
	}
	return true
}

func (p *StpPort) PortNum() uint16 {
	return p.PortId.Num
}

func (p *StpPort) BridgeNum() int32 {
	if p.b == nil {
		return 0
	}
	return int32(p.b.BridgeIdentifier.Ext)
}

func (p *StpPort) Bridge() *Bridge { return p.b }

// BEGIN asserts begin on every port machine
func (p *StpPort) BEGIN() {
	begin := []struct {
		name string
		m    *fsm.Machine
		e    fsm.Event
	}{
		{PtmMachineModuleStr, p.PtmMachineFsm.Machine, PtmEventBegin},
		{PrxmMachineModuleStr, p.PrxmMachineFsm.Machine, PrxmEventBegin},
		{PpmmMachineModuleStr, p.PpmmMachineFsm.Machine, PpmmEventBegin},
		{BdmMachineModuleStr, p.BdmMachineFsm.Machine, BdmEventBegin},
		{PtxmMachineModuleStr, p.PtxmMachineFsm.Machine, PtxmEventBegin},
		{PimMachineModuleStr, p.PimMachineFsm.Machine, PimEventBegin},
		{PrtMachineModuleStr, p.PrtMachineFsm.Machine, PrtEventBegin},
		{PstMachineModuleStr, p.PstMachineFsm.Machine, PstEventBegin},
		{TcMachineModuleStr, p.TcMachineFsm.Machine, TcEventBegin},
	}
	for _, bm := range begin {
		if rv := bm.m.ProcessEvent("BEGIN", bm.e, nil); rv != nil {
			StpPortLogger("ERROR", bm.name, p, fmt.Sprintf("begin failed: %s", rv))
		}
	}
}

// ExecuteReceiveSide runs the machines ahead of role selection
func (p *StpPort) ExecuteReceiveSide() (changed bool) {
	changed = p.PtmMachineFsm.Execute() || changed
	changed = p.PrxmMachineFsm.Execute() || changed
	changed = p.PpmmMachineFsm.Execute() || changed
	changed = p.BdmMachineFsm.Execute() || changed
	changed = p.PtxmMachineFsm.Execute() || changed
	changed = p.PimMachineFsm.Execute() || changed
	return changed
}

// ExecuteTransitionSide runs the machines that follow role selection
func (p *StpPort) ExecuteTransitionSide() (changed bool) {
	changed = p.PrtMachineFsm.Execute() || changed
	changed = p.PstMachineFsm.Execute() || changed
	changed = p.TcMachineFsm.Execute() || changed
	return changed
}

// EnableLogging toggles state transition logging on every port machine
func (p *StpPort) EnableLogging(ena bool) {
	p.logEna = ena
	for _, m := range []*fsm.Machine{
		p.PtmMachineFsm.Machine,
		p.PrxmMachineFsm.Machine,
		p.PpmmMachineFsm.Machine,
		p.BdmMachineFsm.Machine,
		p.PtxmMachineFsm.Machine,
		p.PimMachineFsm.Machine,
		p.PrtMachineFsm.Machine,
		p.PstMachineFsm.Machine,
		p.TcMachineFsm.Machine,
	} {
		m.Curr.EnableLogging(ena)
	}
}

func (p *StpPort) SetPortEnabled(ena bool) {
	if p.PortEnabled != ena {
		StpPortLogger("INFO", PortConfigModuleStr, p, fmt.Sprintf("port enabled %t", ena))
	}
	p.PortEnabled = ena
}

// SetSpeed updates the link speed and the derived path cost
func (p *StpPort) SetSpeed(speedMb uint64) {
	p.Speed = speedMb
	cost := p.operPathCost()
	if cost != p.PortPathCost {
		p.PortPathCost = cost
		// 17.13.11 a cost change forces role reselection
		p.Selected = false
		p.Reselect = true
	}
}

// SetTxPortCounters counts a transmitted bpdu
func (p *StpPort) SetTxPortCounters(ptype BPDURxType) {
	switch ptype {
	case BPDURxTypeSTP:
		p.Counters.BpduTxConfig++
	case BPDURxTypeRSTP:
		p.Counters.BpduTxRst++
	case BPDURxTypeTopo:
		p.Counters.BpduTxTcn++
	}
	bpduTx.WithLabelValues(BPDURxTypeStrMap[ptype]).Inc()
}

// SetRxPortCounters counts a received bpdu
func (p *StpPort) SetRxPortCounters(ptype BPDURxType) {
	switch ptype {
	case BPDURxTypeSTP:
		p.Counters.BpduRxConfig++
	case BPDURxTypeRSTP:
		p.Counters.BpduRxRst++
	case BPDURxTypeTopo:
		p.Counters.BpduRxTcn++
	case BPDURxTypeUnknownBPDU:
		p.Counters.BpduRxInvalid++
	}
	bpduRx.WithLabelValues(BPDURxTypeStrMap[ptype]).Inc()
}
