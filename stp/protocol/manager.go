// manager.go
package stp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const ManagerModuleStr = "Manager"

// ManagerMaxPasses bounds the number of machine passes made for one event
const ManagerMaxPasses = 32

// TickIntervalDefault is the nominal one second tick of 17.22
const TickIntervalDefault = time.Second

var ErrUnknownPort = errors.New("unknown port")

type mgmtReq struct {
	name string
	fn   func(b *Bridge)
}

// Manager owns the bridge and drives every state machine.  Protocol state is
// only touched from Tick and Process, which must not be called concurrently.
// Management requests and received BPDUs may come from any goroutine; they
// are queued and applied between machine passes.
type Manager struct {
	b *Bridge

	queueMu sync.Mutex
	queue   []mgmtReq
	// ports that exist or are pending creation
	known map[uint16]bool
	wake  chan struct{}

	stateMu sync.RWMutex
	bridge  BridgeStatus
	ports   []PortStatus
}

// NewManager builds the bridge from c and asserts BEGIN
func NewManager(c *StpBridgeConfig, hw HwIntf) (*Manager, error) {
	b, err := NewStpBridge(c, hw)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		b:     b,
		known: make(map[uint16]bool),
		wake:  make(chan struct{}, 1),
	}
	b.BEGIN()
	m.runPasses("begin")
	m.refreshStatus()
	return m, nil
}

// Bridge gives access to the protocol state.  Only safe from the goroutine
// driving Tick and Process.
func (m *Manager) Bridge() *Bridge {
	return m.b
}

func (m *Manager) enqueue(name string, fn func(b *Bridge)) {
	m.queueMu.Lock()
	m.queue = append(m.queue, mgmtReq{name: name, fn: fn})
	m.queueMu.Unlock()
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) checkKnown(num uint16) error {
	m.queueMu.Lock()
	defer m.queueMu.Unlock()
	if !m.known[num] {
		return errors.Wrapf(ErrUnknownPort, "port %d", num)
	}
	return nil
}

// AddPort validates the port configuration and queues its creation.  The
// port begins in its initial states on the next Process or Tick.
func (m *Manager) AddPort(c StpPortConfig) error {
	if err := StpPortConfigParamCheck(&c); err != nil {
		return err
	}
	m.queueMu.Lock()
	if m.known[c.PortNum] {
		m.queueMu.Unlock()
		return errors.Errorf("port %d already exists", c.PortNum)
	}
	m.known[c.PortNum] = true
	m.queueMu.Unlock()

	m.enqueue("add port", func(b *Bridge) {
		p := NewStpPort(&c, b)
		if err := b.AddPort(p); err != nil {
			StpLogger("ERROR", fmt.Sprintf("%s: %s", ManagerModuleStr, err))
			return
		}
		p.BEGIN()
	})
	return nil
}

// RemovePort queues the removal of a port.  The remaining ports reselect
// their roles.
func (m *Manager) RemovePort(num uint16) error {
	m.queueMu.Lock()
	if !m.known[num] {
		m.queueMu.Unlock()
		return errors.Wrapf(ErrUnknownPort, "port %d", num)
	}
	delete(m.known, num)
	m.queueMu.Unlock()

	m.enqueue("remove port", func(b *Bridge) {
		p, err := b.DelPort(num)
		if err != nil {
			StpLogger("ERROR", fmt.Sprintf("%s: %s", ManagerModuleStr, err))
			return
		}
		deletePortMetrics(p)
		for _, q := range b.portList {
			q.Reselect = true
			q.Selected = false
		}
	})
	return nil
}

// SetPortEnabled queues a MAC_Operational change
func (m *Manager) SetPortEnabled(num uint16, ena bool) error {
	if err := m.checkKnown(num); err != nil {
		return err
	}
	m.enqueue("port enable", func(b *Bridge) {
		if p, ok := b.Port(num); ok {
			p.SetPortEnabled(ena)
		}
	})
	return nil
}

// SetPortSpeed queues a link speed change
func (m *Manager) SetPortSpeed(num uint16, speedMb uint64) error {
	if err := m.checkKnown(num); err != nil {
		return err
	}
	m.enqueue("port speed", func(b *Bridge) {
		if p, ok := b.Port(num); ok {
			p.SetSpeed(speedMb)
		}
	})
	return nil
}

// Mcheck 17.19.13 forces the port to transmit RST BPDUs and restart
// protocol migration
func (m *Manager) Mcheck(num uint16) error {
	if err := m.checkKnown(num); err != nil {
		return err
	}
	m.enqueue("mcheck", func(b *Bridge) {
		if p, ok := b.Port(num); ok && b.RstpVersion() {
			p.Mcheck = true
		}
	})
	return nil
}

// EnableLogging toggles state transition logging on every machine
func (m *Manager) EnableLogging(ena bool) {
	m.enqueue("logging", func(b *Bridge) {
		b.EnableLogging(ena)
	})
}

// ReceiveBpdu queues a BPDU, LLC header already stripped, received on a port
func (m *Manager) ReceiveBpdu(num uint16, payload []uint8) error {
	if err := m.checkKnown(num); err != nil {
		return err
	}
	data := make([]uint8, len(payload))
	copy(data, payload)
	m.enqueue("rx", func(b *Bridge) {
		p, ok := b.Port(num)
		if !ok {
			return
		}
		bpdu, err := DecodeBPDU(data)
		if err != nil {
			p.SetRxPortCounters(BPDURxTypeUnknownBPDU)
			StpPortLogger("DEBUG", RxModuleStr, p, fmt.Sprintf("drop: %s", err))
			return
		}
		p.rxBpdu(bpdu)
	})
	return nil
}

// ReceiveFrame accepts a complete ethernet frame received on a port.
// Frames that are not BPDUs are ignored.
func (m *Manager) ReceiveFrame(num uint16, frame []uint8) error {
	_, l, err := ParseBpduFrame(frame)
	if l == nil {
		return err
	}
	return m.ReceiveBpdu(num, l.LayerContents())
}

// Process applies queued requests, running the machines after each so
// that a received BPDU is consumed before the next one is delivered
func (m *Manager) Process() {
	m.drain()
	m.refreshStatus()
}

// Tick signals the one second tick to every port and runs the machines
func (m *Manager) Tick() {
	m.drain()
	for _, p := range m.b.portList {
		p.Tick = true
	}
	m.runPasses("tick")
	m.refreshStatus()
}

// Run ticks every interval and processes queued requests as they arrive,
// until ctx is done
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = TickIntervalDefault
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	StpLogger("INFO", fmt.Sprintf("%s: running, tick %s", ManagerModuleStr, interval))
	for {
		select {
		case <-ctx.Done():
			StpLogger("INFO", fmt.Sprintf("%s: stopped", ManagerModuleStr))
			return ctx.Err()
		case <-m.wake:
			m.Process()
		case <-ticker.C:
			m.Tick()
		}
	}
}

func (m *Manager) drain() {
	for {
		m.queueMu.Lock()
		reqs := m.queue
		m.queue = nil
		m.queueMu.Unlock()
		if len(reqs) == 0 {
			return
		}
		for _, r := range reqs {
			r.fn(m.b)
			m.runPasses(r.name)
		}
	}
}

// runPasses executes the machines in dependency order until none of them
// changes state
func (m *Manager) runPasses(reason string) {
	for i := 0; i < ManagerMaxPasses; i++ {
		if !m.b.pass() {
			return
		}
	}
	StpLogger("WARNING", fmt.Sprintf("%s: %s did not settle after %d passes", ManagerModuleStr, reason, ManagerMaxPasses))
}

// pass runs each machine once: the receive side of every port, role
// selection for the bridge, then the transition side of every port
func (b *Bridge) pass() (changed bool) {
	for _, p := range b.portList {
		changed = p.ExecuteReceiveSide() || changed
	}
	changed = b.PrsMachineFsm.Execute() || changed
	for _, p := range b.portList {
		changed = p.ExecuteTransitionSide() || changed
	}
	return changed
}

// EnableLogging toggles state transition logging on the bridge and its ports
func (b *Bridge) EnableLogging(ena bool) {
	b.logEna = ena
	b.PrsMachineFsm.Machine.Curr.EnableLogging(ena)
	for _, p := range b.portList {
		p.EnableLogging(ena)
	}
}

// HardwareAddr returns the bridge address as seen on the wire
func (b *Bridge) HardwareAddr() net.HardwareAddr {
	return b.BridgeIdentifier.Address.HardwareAddr()
}
