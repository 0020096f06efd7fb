// frame.go 802.1D-2004 9.3 BPDU encapsulation
package stp

import (
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

// BpduDA is the Bridge Group Address BPDUs are sent to
var BpduDA = net.HardwareAddr{0x01, 0x80, 0xC2, 0x00, 0x00, 0x00}

// 802.2 LLC header carried by every BPDU
const (
	BpduLLCSap     = 0x42
	BpduLLCControl = 0x03
)

var ErrNotBpduFrame = errors.New("not a bpdu frame")

// BuildBpduFrame wraps an encoded BPDU in an 802.3 LLC frame addressed to
// the Bridge Group Address
func BuildBpduFrame(src net.HardwareAddr, bpdu []uint8) ([]uint8, error) {
	eth := &layers.Ethernet{
		SrcMAC:       src,
		DstMAC:       BpduDA,
		EthernetType: layers.EthernetTypeLLC,
	}
	llc := &layers.LLC{
		DSAP:    BpduLLCSap,
		SSAP:    BpduLLCSap,
		Control: BpduLLCControl,
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths: true,
	}
	if err := gopacket.SerializeLayers(buf, opts, eth, llc, gopacket.Payload(bpdu)); err != nil {
		return nil, errors.Wrap(err, "serialize bpdu frame")
	}
	return buf.Bytes(), nil
}

// ParseBpduFrame validates the ethernet and LLC headers and returns the
// source address along with the decoded BPDU.  A frame that is not a BPDU
// returns ErrNotBpduFrame, a BPDU that fails 9.3.4 validation returns
// ErrInvalidBpdu along with the raw payload.
func ParseBpduFrame(frame []uint8) (net.HardwareAddr, *BPDULayer, error) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)
	ethLayer := packet.Layer(layers.LayerTypeEthernet)
	llcLayer := packet.Layer(layers.LayerTypeLLC)
	if ethLayer == nil ||
		llcLayer == nil {
		return nil, nil, ErrNotBpduFrame
	}
	eth := ethLayer.(*layers.Ethernet)
	llc := llcLayer.(*layers.LLC)
	if eth.DstMAC.String() != BpduDA.String() ||
		llc.DSAP != BpduLLCSap ||
		llc.SSAP != BpduLLCSap ||
		llc.Control != BpduLLCControl {
		return nil, nil, ErrNotBpduFrame
	}

	l := &BPDULayer{}
	if err := l.DecodeFromBytes(llc.LayerPayload(), gopacket.NilDecodeFeedback); err != nil {
		return eth.SrcMAC, l, err
	}
	return eth.SrcMAC, l, nil
}
