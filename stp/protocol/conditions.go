// conditions.go 802.1D-2004 17.20 State machine conditions and parameters
package stp

// 17.20.3
// every port has settled on its selected role and every port other than
// this one is synced or is the root port
func (p *StpPort) AllSynced() bool {
	if p.b == nil {
		return false
	}
	for _, q := range p.b.portList {
		if !q.Selected ||
			q.Role != q.SelectedRole ||
			q.UpdtInfo {
			return false
		}
		if q != p &&
			!q.Synced &&
			q.Role != PortRoleRootPort {
			return false
		}
	}
	return true
}

// 17.20.4
func (p *StpPort) EdgeDelay() uint16 {
	if p.OperPointToPointMAC {
		return p.MigrateTime()
	}
	return p.MaxAge()
}

// 17.20.5
func (p *StpPort) ForwardDelay() uint16 {
	if p.SendRSTP {
		return p.HelloTime()
	}
	return p.FwdDelay()
}

// 17.20.6
func (p *StpPort) FwdDelay() uint16 {
	return p.DesignatedTimes.ForwardingDelay
}

// 17.20.7
func (p *StpPort) HelloTime() uint16 {
	return p.DesignatedTimes.HelloTime
}

// 17.20.8
func (p *StpPort) MaxAge() uint16 {
	return p.DesignatedTimes.MaxAge
}

// 17.20.9
func (p *StpPort) MigrateTime() uint16 {
	if p.b == nil {
		return MigrateTimeDefault
	}
	return p.b.MigrateTime
}

// 17.20.10
// the recent root timer of every other port has expired
func (p *StpPort) ReRooted() bool {
	if p.b == nil {
		return false
	}
	for _, q := range p.b.portList {
		if q != p &&
			!q.RrWhileTimer.TimedOut() {
			return false
		}
	}
	return true
}

// 17.20.11
func (p *StpPort) RstpVersion() bool {
	return p.b != nil && p.b.RstpVersion()
}

// 17.20.12
func (p *StpPort) StpVersion() bool {
	return p.b == nil || p.b.StpVersion()
}

// 17.20.13
func (p *StpPort) TxHoldCount() uint16 {
	if p.b == nil {
		return TransmitHoldCountDefault
	}
	return p.b.TxHoldCount
}

// selectedAndNotUpdtInfo qualifies most role transition guards
func (p *StpPort) selectedAndNotUpdtInfo() bool {
	return p.Selected && !p.UpdtInfo
}
