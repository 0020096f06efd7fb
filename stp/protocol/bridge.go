// bridge.go
package stp

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
)

const BridgeConfigModuleStr = "Bridge Config"

type Bridge struct {

	// 17.18.1
	Begin bool
	// 17.18.2
	BridgeIdentifier BridgeId
	// 17.18.3
	// Root/Designated equal to Bridge Identifier
	BridgePriority PriorityVector
	// 17.18.4
	BridgeTimes Times
	// 17.18.5
	RootPortId PortId
	// 17.18.6
	RootPriority PriorityVector
	// 17.18.7
	RootTimes Times

	// 17.13.12
	ForceVersion int32
	// 17.13.12
	TxHoldCount uint16
	// 17.13.9
	MigrateTime uint16

	PrsMachineFsm *PrsMachine

	// ports keyed by port number, portList kept sorted by number
	ports    map[uint16]*StpPort
	portList []*StpPort

	// topology change statistics
	TopologyChangeCount uint64
	LastTopologyChange  time.Time

	hw HwIntf

	logEna bool
}

// NewStpBridge validates the configuration and builds the bridge along with
// its Port Role Selection machine
func NewStpBridge(c *StpBridgeConfig, hw HwIntf) (*Bridge, error) {
	StpBrgConfigApplyDefaults(c)
	if err := StpBrgConfigParamCheck(c); err != nil {
		return nil, err
	}

	addr, err := ParseMac(c.Address)
	if err != nil {
		return nil, errors.Wrap(err, "bridge address")
	}

	bridgeId := CreateBridgeId(addr, c.Priority, c.Vlan)
	times := Times{
		ForwardingDelay: c.ForwardDelay,
		HelloTime:       c.HelloTime,
		MaxAge:          c.MaxAge,
		MessageAge:      0,
	}

	b := &Bridge{
		Begin:            true,
		BridgeIdentifier: bridgeId,
		BridgePriority: PriorityVector{
			RootBridgeId:       bridgeId,
			RootPathCost:       0,
			DesignatedBridgeId: bridgeId,
		},
		BridgeTimes:  times,
		RootTimes:    times,
		ForceVersion: c.ForceVersion,
		TxHoldCount:  uint16(c.TxHoldCount),
		MigrateTime:  MigrateTimeDefault,
		ports:        make(map[uint16]*StpPort),
		hw:           hw,
		logEna:       c.LogEnable,
	}
	b.RootPriority = b.BridgePriority

	PrsMachineFSMBuild(b)

	StpLogger("INFO", fmt.Sprintf("NEW BRIDGE: %s times %s version %d", b.BridgeIdentifier, b.BridgeTimes, b.ForceVersion))
	return b, nil
}

// BEGIN 17.18.1 asserts begin across the bridge.  All machines enter their
// initial state before begin is released.
func (b *Bridge) BEGIN() {
	b.Begin = true
	if rv := b.PrsMachineFsm.Machine.ProcessEvent("BEGIN", PrsEventBegin, nil); rv != nil {
		StpLogger("ERROR", fmt.Sprintf("%s begin failed: %s", PrsMachineModuleStr, rv))
	}
	for _, p := range b.portList {
		p.BEGIN()
	}
	b.Begin = false
}

func (b *Bridge) AddPort(p *StpPort) error {
	num := p.PortNum()
	if _, ok := b.ports[num]; ok {
		return errors.Errorf("port %d already exists on bridge %s", num, b.BridgeIdentifier)
	}
	p.b = b
	b.ports[num] = p
	b.portList = append(b.portList, p)
	sort.Slice(b.portList, func(i, j int) bool {
		return b.portList[i].PortNum() < b.portList[j].PortNum()
	})
	return nil
}

func (b *Bridge) DelPort(num uint16) (*StpPort, error) {
	p, ok := b.ports[num]
	if !ok {
		return nil, errors.Errorf("port %d does not exist on bridge %s", num, b.BridgeIdentifier)
	}
	delete(b.ports, num)
	for i, ptmp := range b.portList {
		if ptmp == p {
			b.portList = append(b.portList[:i], b.portList[i+1:]...)
			break
		}
	}
	if b.RootPortId == p.PortId {
		b.RootPortId = PortId{}
	}
	return p, nil
}

func (b *Bridge) Port(num uint16) (*StpPort, bool) {
	p, ok := b.ports[num]
	return p, ok
}

// Ports returns the ports in ascending port number order
func (b *Bridge) Ports() []*StpPort {
	return b.portList
}

// IsRootBridge is true when no port provides a better root than ourselves
func (b *Bridge) IsRootBridge() bool {
	return b.RootPriority.RootBridgeId == b.BridgeIdentifier
}

// 17.20.11
func (b *Bridge) RstpVersion() bool {
	return b.ForceVersion >= ForceVersionRSTP
}

// 17.20.12
func (b *Bridge) StpVersion() bool {
	return b.ForceVersion < ForceVersionRSTP
}

func (b *Bridge) topologyChanged() {
	b.TopologyChangeCount++
	b.LastTopologyChange = time.Now()
	topologyChanges.Inc()
}
