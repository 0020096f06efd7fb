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

// bridge.go drives a linux kernel bridge on behalf of the protocol engine
package stplinux

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netlink/nl"
	"golang.org/x/sys/unix"

	stp "github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/protocol"
)

const (
	// kernel bridge port states, include/uapi/linux/if_bridge.h
	BrStateDisabled   = 0
	BrStateListening  = 1
	BrStateLearning   = 2
	BrStateForwarding = 3
	BrStateBlocking   = 4
)

const (
	pcapSnapLen = 256
	pcapTimeout = time.Second
	bpduFilter  = "ether dst 01:80:c2:00:00:00"
)

var ErrPortNotBound = errors.New("port not bound to an interface")

// Receiver accepts frames and link events for the protocol engine
type Receiver interface {
	ReceiveFrame(num uint16, frame []uint8) error
	SetPortEnabled(num uint16, ena bool) error
}

// portHandle is the part of *pcap.Handle a port uses
type portHandle interface {
	gopacket.PacketDataSource
	WritePacketData(data []byte) error
	Close()
}

type linuxPort struct {
	num        uint16
	ifname     string
	ifindex    int
	mac        net.HardwareAddr
	handle     portHandle
	cancel     context.CancelFunc
	learning   bool
	forwarding bool
}

// stop ends the receive loop and releases the capture handle
func (lp *linuxPort) stop() {
	if lp.cancel != nil {
		lp.cancel()
	}
	lp.handle.Close()
}

// Bridge implements stp.HwIntf on top of a kernel bridge.  Port state and
// learning go through rtnetlink, BPDUs through a pcap handle per port.
type Bridge struct {
	mu    sync.Mutex
	ports map[uint16]*linuxPort
	wg    sync.WaitGroup

	// set by Start, ports bound afterwards are started right away
	ctx context.Context
	r   Receiver

	operUp func(ifindex int) (bool, error)
}

func NewBridge() *Bridge {
	return &Bridge{
		ports:  make(map[uint16]*linuxPort),
		operUp: linkOperUp,
	}
}

func linkOperUp(ifindex int) (bool, error) {
	link, err := netlink.LinkByIndex(ifindex)
	if err != nil {
		return false, errors.Wrapf(err, "lookup ifindex %d", ifindex)
	}
	return link.Attrs().OperState == netlink.OperUp, nil
}

// BrPortState maps the learning and forwarding flags onto a kernel bridge
// port state
func BrPortState(learning, forwarding bool) uint8 {
	switch {
	case forwarding:
		return BrStateForwarding
	case learning:
		return BrStateLearning
	}
	return BrStateBlocking
}

// AddPort binds port num to interface ifname and opens its capture handle.
// Once the bridge is started the port gets its receive loop and its link
// state is reported immediately.
func (b *Bridge) AddPort(num uint16, ifname string) error {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return errors.Wrapf(err, "lookup %s", ifname)
	}
	h, err := pcap.OpenLive(ifname, pcapSnapLen, true, pcapTimeout)
	if err != nil {
		return errors.Wrapf(err, "open %s", ifname)
	}
	if err := h.SetBPFFilter(bpduFilter); err != nil {
		h.Close()
		return errors.Wrapf(err, "filter %s", ifname)
	}

	b.bind(&linuxPort{
		num:     num,
		ifname:  ifname,
		ifindex: link.Attrs().Index,
		mac:     link.Attrs().HardwareAddr,
		handle:  h,
	})
	log.Infof("stplinux: port %d bound to %s ifindex %d", num, ifname, link.Attrs().Index)
	return nil
}

func (b *Bridge) bind(lp *linuxPort) {
	b.mu.Lock()
	old, replaced := b.ports[lp.num]
	b.ports[lp.num] = lp
	ctx, r := b.prepare(lp)
	b.mu.Unlock()

	if replaced {
		old.stop()
	}
	if ctx != nil {
		b.startPort(ctx, lp, r)
	}
}

// prepare registers the receive loop of lp when the bridge is running.
// b.mu must be held.
func (b *Bridge) prepare(lp *linuxPort) (context.Context, Receiver) {
	if b.ctx == nil || b.ctx.Err() != nil {
		return nil, nil
	}
	ctx, cancel := context.WithCancel(b.ctx)
	lp.cancel = cancel
	b.wg.Add(1)
	return ctx, b.r
}

func (b *Bridge) startPort(ctx context.Context, lp *linuxPort, r Receiver) {
	go b.rxLoop(ctx, lp, r)
	b.syncOperState(lp, r)
}

func (b *Bridge) syncOperState(lp *linuxPort, r Receiver) {
	up, err := b.operUp(lp.ifindex)
	if err != nil {
		log.Warnf("stplinux: port %d oper state: %s", lp.num, err)
		return
	}
	if err := r.SetPortEnabled(lp.num, up); err != nil {
		log.Warnf("stplinux: port %d link update: %s", lp.num, err)
	}
}

// RemovePort stops the receive loop and releases the interface bound to
// port num
func (b *Bridge) RemovePort(num uint16) {
	b.mu.Lock()
	lp, ok := b.ports[num]
	delete(b.ports, num)
	b.mu.Unlock()
	if ok {
		lp.stop()
	}
}

func (b *Bridge) port(num uint16) (*linuxPort, error) {
	lp, ok := b.ports[num]
	if !ok {
		return nil, errors.Wrapf(ErrPortNotBound, "port %d", num)
	}
	return lp, nil
}

// FlushFdb removes the dynamic entries learnt on the port
func (b *Bridge) FlushFdb(num uint16) error {
	b.mu.Lock()
	lp, err := b.port(num)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	neighs, err := netlink.NeighList(lp.ifindex, unix.AF_BRIDGE)
	if err != nil {
		return errors.Wrapf(err, "list fdb %s", lp.ifname)
	}
	for i := range neighs {
		n := neighs[i]
		if n.State&(netlink.NUD_PERMANENT|netlink.NUD_NOARP) != 0 {
			continue
		}
		if err := netlink.NeighDel(&n); err != nil {
			return errors.Wrapf(err, "delete fdb %s %s", lp.ifname, n.HardwareAddr)
		}
	}
	return nil
}

func (b *Bridge) SetForwarding(num uint16, ena bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	lp, err := b.port(num)
	if err != nil {
		return err
	}
	lp.forwarding = ena
	return setBrPortState(lp.ifindex, BrPortState(lp.learning, lp.forwarding))
}

func (b *Bridge) SetLearning(num uint16, ena bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	lp, err := b.port(num)
	if err != nil {
		return err
	}
	lp.learning = ena
	link, err := netlink.LinkByIndex(lp.ifindex)
	if err != nil {
		return errors.Wrapf(err, "lookup %s", lp.ifname)
	}
	if err := netlink.LinkSetLearning(link, ena); err != nil {
		return errors.Wrapf(err, "learning %s", lp.ifname)
	}
	return setBrPortState(lp.ifindex, BrPortState(lp.learning, lp.forwarding))
}

// SendOutBpdu frames the BPDU with the port address as source
func (b *Bridge) SendOutBpdu(num uint16, bpdu []uint8) error {
	b.mu.Lock()
	lp, err := b.port(num)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	frame, err := stp.BuildBpduFrame(lp.mac, bpdu)
	if err != nil {
		return err
	}
	if err := lp.handle.WritePacketData(frame); err != nil {
		return errors.Wrapf(err, "send %s", lp.ifname)
	}
	return nil
}

// setBrPortState writes IFLA_BRPORT_STATE, netlink has no helper for it
func setBrPortState(ifindex int, state uint8) error {
	req := nl.NewNetlinkRequest(unix.RTM_SETLINK, unix.NLM_F_ACK)
	msg := nl.NewIfInfomsg(unix.AF_BRIDGE)
	msg.Index = int32(ifindex)
	req.AddData(msg)

	br := nl.NewRtAttr(unix.IFLA_PROTINFO|unix.NLA_F_NESTED, nil)
	br.AddRtAttr(nl.IFLA_BRPORT_STATE, []byte{state})
	req.AddData(br)
	if _, err := req.Execute(unix.NETLINK_ROUTE, 0); err != nil {
		return errors.Wrapf(err, "port state %d ifindex %d", state, ifindex)
	}
	return nil
}

// Start launches a receive loop on every bound port and a link monitor that
// reports operational state changes.  It returns once all loops are running;
// they stop when ctx is done.  Ports added later join through AddPort.
func (b *Bridge) Start(ctx context.Context, r Receiver) error {
	b.run(ctx, r)

	updates := make(chan netlink.LinkUpdate)
	done := make(chan struct{})
	if err := netlink.LinkSubscribe(updates, done); err != nil {
		return errors.Wrap(err, "link subscribe")
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				b.linkUpdate(u, r)
			}
		}
	}()
	return nil
}

// run remembers ctx and r for ports bound later and starts the ports
// bound so far
func (b *Bridge) run(ctx context.Context, r Receiver) {
	type started struct {
		lp  *linuxPort
		ctx context.Context
	}
	b.mu.Lock()
	b.ctx, b.r = ctx, r
	ports := make([]started, 0, len(b.ports))
	for _, lp := range b.ports {
		if pctx, _ := b.prepare(lp); pctx != nil {
			ports = append(ports, started{lp, pctx})
		}
	}
	b.mu.Unlock()

	for _, s := range ports {
		b.startPort(s.ctx, s.lp, r)
	}
}

// Wait blocks until every loop started by Start has returned
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) linkUpdate(u netlink.LinkUpdate, r Receiver) {
	idx := int(u.Index)
	up := u.Attrs().OperState == netlink.OperUp
	b.mu.Lock()
	var num uint16
	found := false
	for _, lp := range b.ports {
		if lp.ifindex == idx {
			num, found = lp.num, true
			break
		}
	}
	b.mu.Unlock()
	if !found {
		return
	}
	if err := r.SetPortEnabled(num, up); err != nil {
		log.Warnf("stplinux: port %d link update: %s", num, err)
	}
}

func (b *Bridge) rxLoop(ctx context.Context, lp *linuxPort, r Receiver) {
	defer b.wg.Done()
	src := gopacket.NewPacketSource(lp.handle, layers.LayerTypeEthernet)
	in := src.Packets()
	for {
		select {
		case <-ctx.Done():
			return
		case packet, ok := <-in:
			if !ok {
				log.Infof("stplinux: rx %s closed", lp.ifname)
				return
			}
			// frames we sent ourselves
			if eth := packet.LinkLayer(); eth != nil &&
				eth.LinkFlow().Src().String() == lp.mac.String() {
				continue
			}
			if err := r.ReceiveFrame(lp.num, packet.Data()); err != nil && errors.Cause(err) != stp.ErrNotBpduFrame {
				log.Debugf("stplinux: rx %s: %s", lp.ifname, fmt.Sprint(err))
			}
		}
	}
}
