// status.go
package stp

import (
	"time"
)

// BridgeStatus is a point in time copy of the bridge variables
type BridgeStatus struct {
	BridgeId            string    `json:"bridgeId"`
	RootId              string    `json:"rootId"`
	RootPathCost        uint32    `json:"rootPathCost"`
	RootPort            uint16    `json:"rootPort"`
	IsRoot              bool      `json:"isRoot"`
	ForceVersion        int32     `json:"forceVersion"`
	MaxAge              uint16    `json:"maxAge"`
	HelloTime           uint16    `json:"helloTime"`
	ForwardDelay        uint16    `json:"forwardDelay"`
	TxHoldCount         uint16    `json:"txHoldCount"`
	TopologyChangeCount uint64    `json:"topologyChangeCount"`
	LastTopologyChange  time.Time `json:"lastTopologyChange,omitempty"`
	Ports               int       `json:"ports"`
}

// PortStatus is a point in time copy of the port variables
type PortStatus struct {
	PortNum          uint16            `json:"portNum"`
	Name             string            `json:"name"`
	IfIndex          int32             `json:"ifIndex"`
	Enabled          bool              `json:"enabled"`
	Role             string            `json:"role"`
	State            string            `json:"state"`
	InfoIs           string            `json:"infoIs"`
	PathCost         uint32            `json:"pathCost"`
	OperEdge         bool              `json:"operEdge"`
	OperPointToPoint bool              `json:"operPointToPoint"`
	SendRSTP         bool              `json:"sendRstp"`
	DesignatedRoot   string            `json:"designatedRoot"`
	DesignatedCost   uint32            `json:"designatedCost"`
	DesignatedBridge string            `json:"designatedBridge"`
	DesignatedPort   string            `json:"designatedPort"`
	Timers           map[string]uint16 `json:"timers"`
	Counters         StpPortCounters   `json:"counters"`
}

// PortState is the 802.1D port state implied by learning and forwarding
func (p *StpPort) PortState() string {
	switch {
	case p.Forwarding:
		return "Forwarding"
	case p.Learning:
		return "Learning"
	}
	return "Discarding"
}

func (b *Bridge) Status() BridgeStatus {
	return BridgeStatus{
		BridgeId:            b.BridgeIdentifier.String(),
		RootId:              b.RootPriority.RootBridgeId.String(),
		RootPathCost:        uint32(b.RootPriority.RootPathCost),
		RootPort:            b.RootPortId.Num,
		IsRoot:              b.IsRootBridge(),
		ForceVersion:        b.ForceVersion,
		MaxAge:              b.RootTimes.MaxAge,
		HelloTime:           b.RootTimes.HelloTime,
		ForwardDelay:        b.RootTimes.ForwardingDelay,
		TxHoldCount:         b.TxHoldCount,
		TopologyChangeCount: b.TopologyChangeCount,
		LastTopologyChange:  b.LastTopologyChange,
		Ports:               len(b.portList),
	}
}

func (p *StpPort) Status() PortStatus {
	// the port priority vector is the designated information for the LAN
	// whether it was received or is our own
	return PortStatus{
		PortNum:          p.PortNum(),
		Name:             p.Name,
		IfIndex:          p.IfIndex,
		Enabled:          p.PortEnabled,
		Role:             p.Role.String(),
		State:            p.PortState(),
		InfoIs:           p.InfoIs.String(),
		PathCost:         uint32(p.PortPathCost),
		OperEdge:         p.OperEdge,
		OperPointToPoint: p.OperPointToPointMAC,
		SendRSTP:         p.SendRSTP,
		DesignatedRoot:   p.PortPriority.RootBridgeId.String(),
		DesignatedCost:   uint32(p.PortPriority.RootPathCost),
		DesignatedBridge: p.PortPriority.DesignatedBridgeId.String(),
		DesignatedPort:   p.PortPriority.DesignatedPortId.String(),
		Timers:           p.TimerCounts(),
		Counters:         p.Counters,
	}
}

func (m *Manager) refreshStatus() {
	bs := m.b.Status()
	ps := make([]PortStatus, 0, len(m.b.portList))
	for _, p := range m.b.portList {
		ps = append(ps, p.Status())
		updatePortMetrics(p)
	}
	m.stateMu.Lock()
	m.bridge = bs
	m.ports = ps
	m.stateMu.Unlock()
}

// BridgeStatus returns the bridge snapshot taken after the last pass
func (m *Manager) BridgeStatus() BridgeStatus {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.bridge
}

// PortStatus returns the snapshot of every port in port number order
func (m *Manager) PortStatus() []PortStatus {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	ps := make([]PortStatus, len(m.ports))
	copy(ps, m.ports)
	return ps
}

// Port returns the snapshot of one port
func (m *Manager) Port(num uint16) (PortStatus, bool) {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	for _, ps := range m.ports {
		if ps.PortNum == num {
			return ps, true
		}
	}
	return PortStatus{}, false
}
