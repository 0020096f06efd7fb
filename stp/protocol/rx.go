// rx will take care of validating a received BPDU before it is handed to
// the Port Receive machine
package stp

import (
	"fmt"
)

const RxModuleStr = "Rx Module STP"

// rxBpdu places a decoded BPDU in the port receive slot.  9.3.4 (a) a
// Config BPDU carrying our own bridge and port identifier is our own
// transmission looped back and is discarded.
func (p *StpPort) rxBpdu(bpdu *BPDU) {
	ptype := BPDURxTypeFromBPDU(bpdu.Type)
	if bpdu.Type == BPDUTypeConfig &&
		p.b != nil &&
		bpdu.BridgeId == p.b.BridgeIdentifier &&
		bpdu.PortId == p.PortId {
		StpPortLogger("DEBUG", RxModuleStr, p, "drop: own config bpdu")
		return
	}
	if p.RcvdBPDU {
		// the previous bpdu was never consumed, the port is disabled
		StpPortLogger("DEBUG", RxModuleStr, p, fmt.Sprintf("replacing unconsumed %s", p.RxBpdu.Type))
	}
	p.SetRxPortCounters(ptype)
	p.RxBpdu = *bpdu
	p.RcvdBPDU = true
}
