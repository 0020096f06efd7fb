// hw.go
package stp

import (
	"fmt"
)

// HwIntf is the bridge environment the protocol drives.  Calls are made
// synchronously from the tick and are expected not to block.
type HwIntf interface {
	FlushFdb(portNum uint16) error
	SetForwarding(portNum uint16, ena bool) error
	SetLearning(portNum uint16, ena bool) error
	SendOutBpdu(portNum uint16, bpdu []uint8) error
}

const HwModuleStr = "Hw"

// failures are logged and counted, the protocol carries on as if the
// request had been applied

func (p *StpPort) hwFlushFdb() {
	if p.b == nil || p.b.hw == nil {
		return
	}
	if err := p.b.hw.FlushFdb(p.PortNum()); err != nil {
		p.hwError("flush", err)
		return
	}
	StpPortLogger("DEBUG", HwModuleStr, p, "fdb flushed")
}

func (p *StpPort) hwSetForwarding(ena bool) {
	if p.b == nil || p.b.hw == nil {
		return
	}
	if err := p.b.hw.SetForwarding(p.PortNum(), ena); err != nil {
		p.hwError("forwarding", err)
	}
}

func (p *StpPort) hwSetLearning(ena bool) {
	if p.b == nil || p.b.hw == nil {
		return
	}
	if err := p.b.hw.SetLearning(p.PortNum(), ena); err != nil {
		p.hwError("learning", err)
	}
}

func (p *StpPort) hwSendOutBpdu(buf []uint8) bool {
	if p.b == nil || p.b.hw == nil {
		return false
	}
	if err := p.b.hw.SendOutBpdu(p.PortNum(), buf); err != nil {
		p.hwError("send", err)
		return false
	}
	return true
}

func (p *StpPort) hwError(op string, err error) {
	hwErrors.WithLabelValues(op).Inc()
	StpPortLogger("ERROR", HwModuleStr, p, fmt.Sprintf("%s failed: %s", op, err))
}
