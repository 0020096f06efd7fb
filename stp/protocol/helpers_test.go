// helpers_test.go
package stp

import (
	"testing"
)

type hwCall struct {
	op      string
	portNum uint16
	ena     bool
}

// UsedForTestOnlyHw records every request made of the bridge interface.
// When peer is set transmitted BPDUs are delivered to it.
type UsedForTestOnlyHw struct {
	calls []hwCall
	tx    map[uint16][][]uint8
	peer  map[uint16]wireEnd
}

type wireEnd struct {
	m       *Manager
	portNum uint16
}

func newTestHw() *UsedForTestOnlyHw {
	return &UsedForTestOnlyHw{
		tx:   make(map[uint16][][]uint8),
		peer: make(map[uint16]wireEnd),
	}
}

func (hw *UsedForTestOnlyHw) FlushFdb(portNum uint16) error {
	hw.calls = append(hw.calls, hwCall{op: "flush", portNum: portNum})
	return nil
}

func (hw *UsedForTestOnlyHw) SetForwarding(portNum uint16, ena bool) error {
	hw.calls = append(hw.calls, hwCall{op: "forwarding", portNum: portNum, ena: ena})
	return nil
}

func (hw *UsedForTestOnlyHw) SetLearning(portNum uint16, ena bool) error {
	hw.calls = append(hw.calls, hwCall{op: "learning", portNum: portNum, ena: ena})
	return nil
}

func (hw *UsedForTestOnlyHw) SendOutBpdu(portNum uint16, bpdu []uint8) error {
	data := make([]uint8, len(bpdu))
	copy(data, bpdu)
	hw.tx[portNum] = append(hw.tx[portNum], data)
	if end, ok := hw.peer[portNum]; ok {
		return end.m.ReceiveBpdu(end.portNum, data)
	}
	return nil
}

func (hw *UsedForTestOnlyHw) count(op string, portNum uint16) (n int) {
	for _, c := range hw.calls {
		if c.op == op && c.portNum == portNum {
			n++
		}
	}
	return n
}

// last returns the last value requested for op on the port
func (hw *UsedForTestOnlyHw) last(op string, portNum uint16) (ena bool, ok bool) {
	for _, c := range hw.calls {
		if c.op == op && c.portNum == portNum {
			ena, ok = c.ena, true
		}
	}
	return ena, ok
}

func (hw *UsedForTestOnlyHw) lastTx(t *testing.T, portNum uint16) *BPDU {
	frames := hw.tx[portNum]
	if len(frames) == 0 {
		t.Error("No bpdu transmitted on port", portNum)
		t.FailNow()
	}
	bpdu, err := DecodeBPDU(frames[len(frames)-1])
	if err != nil {
		t.Error("Transmitted bpdu does not decode", err)
		t.FailNow()
	}
	return bpdu
}

func UsedForTestOnlyBridgeConfig(addr string, priority uint16) StpBridgeConfig {
	c := DefaultStpBridgeConfig()
	c.Address = addr
	c.Priority = priority
	return c
}

func UsedForTestOnlyPortConfig(num uint16) StpPortConfig {
	c := DefaultStpPortConfig()
	c.PortNum = num
	c.IfIndex = int32(num)
	c.Speed = 1000
	return c
}

// UsedForTestOnlyManagerSetup builds a manager with the listed ports added
// and begun
func UsedForTestOnlyManagerSetup(t *testing.T, bc StpBridgeConfig, ports ...StpPortConfig) (*Manager, *UsedForTestOnlyHw) {
	hw := newTestHw()
	m, err := NewManager(&bc, hw)
	if err != nil {
		t.Error("Failed to create manager", err)
		t.FailNow()
	}
	for _, pc := range ports {
		if err := m.AddPort(pc); err != nil {
			t.Error("Failed to add port", pc.PortNum, err)
			t.FailNow()
		}
	}
	m.Process()
	return m, hw
}

func UsedForTestOnlyPort(t *testing.T, m *Manager, num uint16) *StpPort {
	p, ok := m.Bridge().Port(num)
	if !ok {
		t.Error("Port does not exist", num)
		t.FailNow()
	}
	return p
}

// UsedForTestOnlyWire connects port an of a to port bn of b
func UsedForTestOnlyWire(a *Manager, ahw *UsedForTestOnlyHw, an uint16, b *Manager, bhw *UsedForTestOnlyHw, bn uint16) {
	ahw.peer[an] = wireEnd{m: b, portNum: bn}
	bhw.peer[bn] = wireEnd{m: a, portNum: an}
}

// UsedForTestOnlyRun ticks every manager n times, exchanging BPDUs between
// ticks until the queues are empty
func UsedForTestOnlyRun(n int, managers ...*Manager) {
	settle := func() {
		for i := 0; i < 8; i++ {
			for _, m := range managers {
				m.Process()
			}
		}
	}
	settle()
	for i := 0; i < n; i++ {
		for _, m := range managers {
			m.Tick()
		}
		settle()
	}
}

// UsedForTestOnlyRxBpdu delivers a bpdu straight into the port receive slot
// and runs the machines
func UsedForTestOnlyRxBpdu(t *testing.T, m *Manager, num uint16, bpdu *BPDU) {
	buf, err := bpdu.Encode()
	if err != nil {
		t.Error("Failed to encode bpdu", err)
		t.FailNow()
	}
	if err := m.ReceiveBpdu(num, buf); err != nil {
		t.Error("Failed to receive bpdu", err)
		t.FailNow()
	}
	m.Process()
}

// UsedForTestOnlySuperiorConfig is a Config BPDU from a bridge better than
// any used in the tests
func UsedForTestOnlySuperiorConfig() *BPDU {
	root := CreateBridgeId(Mac{0x00, 0x11, 0x11, 0x11, 0x11, 0x11}, 0, 0)
	return &BPDU{
		ProtocolId:      BPDUProtocolIdentifier,
		ProtocolVersion: STPProtocolVersion,
		Type:            BPDUTypeConfig,
		RootId:          root,
		RootPathCost:    0,
		BridgeId:        root,
		PortId:          CreatePortId(7, PortPriorityDefault),
		MessageAge:      1,
		MaxAge:          BridgeMaxAgeDefault,
		HelloTime:       BridgeHelloTimeDefault,
		ForwardDelay:    BridgeForwardDelayDefault,
	}
}
