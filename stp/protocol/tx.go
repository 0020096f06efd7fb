// tx.go
package stp

import (
	"fmt"
)

const TxModuleStr = "Tx"

// 17.21.19 txConfig
func (p *StpPort) TxConfig() {
	if !p.txTimesValid() {
		return
	}
	bpdu := p.buildBpdu(BPDUTypeConfig, STPProtocolVersion)
	bpdu.Flags = BPDUFlags{
		TopoChange:    !p.TcWhileTimer.TimedOut(),
		TopoChangeAck: p.TcAck,
	}
	p.txBpdu(&bpdu, BPDURxTypeSTP)
}

// 17.21.20 txRstp
func (p *StpPort) TxRstp() {
	if !p.txTimesValid() {
		return
	}
	bpdu := p.buildBpdu(BPDUTypeRST, RSTPProtocolVersion)
	bpdu.Flags = BPDUFlags{
		TopoChange: !p.TcWhileTimer.TimedOut(),
		Proposal:   p.Proposing,
		Role:       p.Role.BPDURole(),
		Learning:   p.Learning,
		Forwarding: p.Forwarding,
		Agreement:  p.Agree,
	}
	bpdu.Version1Length = 0
	p.txBpdu(&bpdu, BPDURxTypeRSTP)
}

// 17.21.21 txTcn
func (p *StpPort) TxTcn() {
	if !p.txTimesValid() {
		return
	}
	bpdu := BPDU{
		ProtocolId:      BPDUProtocolIdentifier,
		ProtocolVersion: STPProtocolVersion,
		Type:            BPDUTypeTCN,
	}
	p.txBpdu(&bpdu, BPDURxTypeTopo)
}

// information that has reached max age must not be propagated
func (p *StpPort) txTimesValid() bool {
	if p.DesignatedTimes.MessageAge >= p.DesignatedTimes.MaxAge {
		StpPortLogger("WARNING", TxModuleStr, p, fmt.Sprintf("tx suppressed message age %d max age %d",
			p.DesignatedTimes.MessageAge, p.DesignatedTimes.MaxAge))
		return false
	}
	return true
}

func (p *StpPort) buildBpdu(t BPDUType, version uint8) BPDU {
	return BPDU{
		ProtocolId:      BPDUProtocolIdentifier,
		ProtocolVersion: version,
		Type:            t,
		RootId:          p.DesignatedPriority.RootBridgeId,
		RootPathCost:    p.DesignatedPriority.RootPathCost,
		BridgeId:        p.DesignatedPriority.DesignatedBridgeId,
		PortId:          p.DesignatedPriority.DesignatedPortId,
		MessageAge:      p.DesignatedTimes.MessageAge,
		MaxAge:          p.DesignatedTimes.MaxAge,
		HelloTime:       p.DesignatedTimes.HelloTime,
		ForwardDelay:    p.DesignatedTimes.ForwardingDelay,
	}
}

func (p *StpPort) txBpdu(bpdu *BPDU, ptype BPDURxType) {
	buf, err := bpdu.Encode()
	if err != nil {
		StpPortLogger("ERROR", TxModuleStr, p, fmt.Sprintf("encode failed: %s", err))
		return
	}
	if p.hwSendOutBpdu(buf) {
		p.SetTxPortCounters(ptype)
	}
}
