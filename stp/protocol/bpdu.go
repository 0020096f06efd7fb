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

// bpdu.go 802.1D-2004 clause 9 BPDU encoding
package stp

import (
	"encoding/binary"
	"fmt"

	"github.com/google/gopacket"
	"github.com/pkg/errors"
)

type BPDUType uint8

const (
	BPDUTypeConfig  BPDUType = 0x00
	BPDUTypeRST     BPDUType = 0x02
	BPDUTypeTCN     BPDUType = 0x80
	BPDUTypeInvalid BPDUType = 0xff
)

var BPDUTypeStrMap = map[BPDUType]string{
	BPDUTypeConfig:  "Config",
	BPDUTypeRST:     "RST",
	BPDUTypeTCN:     "TCN",
	BPDUTypeInvalid: "Invalid",
}

func (t BPDUType) String() string {
	if s, ok := BPDUTypeStrMap[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(0x%02x)", uint8(t))
}

const (
	BPDUProtocolIdentifier = 0x0000

	STPProtocolVersion  = 0
	RSTPProtocolVersion = 2

	BPDUTopologyLength = 4
	STPProtocolLength  = 35
	RSTPProtocolLength = 36
	// trailing reserved octets appended on RST encode
	RSTPPaddingLength = 3

	BPDUMinLength = BPDUTopologyLength
	BPDUMaxLength = 64
)

// field offsets 9.3
const (
	bpduOffProtocolId   = 0
	bpduOffVersion      = 2
	bpduOffType         = 3
	bpduOffFlags        = 4
	bpduOffRootId       = 5
	bpduOffRootPathCost = 13
	bpduOffBridgeId     = 17
	bpduOffPortId       = 25
	bpduOffMessageAge   = 27
	bpduOffMaxAge       = 29
	bpduOffHelloTime    = 31
	bpduOffFwdDelay     = 33
	bpduOffVersion1Len  = 35
)

// BPDURole is the two bit port role carried in RST BPDU flags
type BPDURole uint8

const (
	BPDURoleUnknown BPDURole = iota
	BPDURoleAlternateBackup
	BPDURoleRoot
	BPDURoleDesignated
)

var BPDURoleStrMap = map[BPDURole]string{
	BPDURoleUnknown:         "Unknown",
	BPDURoleAlternateBackup: "Alternate/Backup",
	BPDURoleRoot:            "Root",
	BPDURoleDesignated:      "Designated",
}

// flag bit positions 9.3.3
const (
	bpduFlagTopoChange    = 1 << 0
	bpduFlagProposal      = 1 << 1
	bpduFlagRoleShift     = 2
	bpduFlagRoleMask      = 0x3 << bpduFlagRoleShift
	bpduFlagLearning      = 1 << 4
	bpduFlagForwarding    = 1 << 5
	bpduFlagAgreement     = 1 << 6
	bpduFlagTopoChangeAck = 1 << 7
)

type BPDUFlags struct {
	TopoChange    bool
	Proposal      bool
	Role          BPDURole
	Learning      bool
	Forwarding    bool
	Agreement     bool
	TopoChangeAck bool
}

func (f BPDUFlags) Encode() (flags uint8) {
	StpSetBpduFlags(ConvertBoolToUint8(f.TopoChangeAck),
		ConvertBoolToUint8(f.Agreement),
		ConvertBoolToUint8(f.Forwarding),
		ConvertBoolToUint8(f.Learning),
		f.Role,
		ConvertBoolToUint8(f.Proposal),
		ConvertBoolToUint8(f.TopoChange),
		&flags)
	return flags
}

func DecodeBPDUFlags(flags uint8) BPDUFlags {
	return BPDUFlags{
		TopoChange:    flags&bpduFlagTopoChange != 0,
		Proposal:      flags&bpduFlagProposal != 0,
		Role:          BPDURole((flags & bpduFlagRoleMask) >> bpduFlagRoleShift),
		Learning:      flags&bpduFlagLearning != 0,
		Forwarding:    flags&bpduFlagForwarding != 0,
		Agreement:     flags&bpduFlagAgreement != 0,
		TopoChangeAck: flags&bpduFlagTopoChangeAck != 0,
	}
}

// BPDU is the decoded form of all three supported BPDU kinds.  Timer
// values are whole seconds.
type BPDU struct {
	ProtocolId      uint16
	ProtocolVersion uint8
	Type            BPDUType
	Flags           BPDUFlags
	RootId          BridgeId
	RootPathCost    PathCost
	BridgeId        BridgeId
	PortId          PortId
	MessageAge      uint16
	MaxAge          uint16
	HelloTime       uint16
	ForwardDelay    uint16
	Version1Length  uint8
}

var ErrInvalidBpdu = errors.New("invalid bpdu")

func invalidBpdu(bpdu *BPDU, format string, args ...interface{}) error {
	bpdu.Type = BPDUTypeInvalid
	return errors.Wrapf(ErrInvalidBpdu, format, args...)
}

// timer values travel in units of 1/256 second
func putBpduTime(b []uint8, sec uint16) {
	binary.BigEndian.PutUint16(b, sec<<8)
}

func getBpduTime(b []uint8) uint16 {
	return binary.BigEndian.Uint16(b) >> 8
}

func (bpdu *BPDU) Times() Times {
	return Times{
		ForwardingDelay: bpdu.ForwardDelay,
		HelloTime:       bpdu.HelloTime,
		MaxAge:          bpdu.MaxAge,
		MessageAge:      bpdu.MessageAge,
	}
}

func (bpdu *BPDU) Priority() PriorityVector {
	return PriorityVector{
		RootBridgeId:       bpdu.RootId,
		RootPathCost:       bpdu.RootPathCost,
		DesignatedBridgeId: bpdu.BridgeId,
		DesignatedPortId:   bpdu.PortId,
	}
}

// EncodedLen returns the number of octets Encode produces
func (bpdu *BPDU) EncodedLen() int {
	switch bpdu.Type {
	case BPDUTypeTCN:
		return BPDUTopologyLength
	case BPDUTypeConfig:
		return STPProtocolLength
	case BPDUTypeRST:
		return RSTPProtocolLength + RSTPPaddingLength
	}
	return 0
}

// EncodeTo writes the BPDU into b which must hold EncodedLen octets
func (bpdu *BPDU) EncodeTo(b []uint8) error {
	n := bpdu.EncodedLen()
	if n == 0 {
		return errors.Errorf("cannot encode bpdu type %s", bpdu.Type)
	}
	if len(b) < n {
		return errors.Errorf("bpdu buffer too small %d < %d", len(b), n)
	}
	for i := range b[:n] {
		b[i] = 0
	}

	binary.BigEndian.PutUint16(b[bpduOffProtocolId:], bpdu.ProtocolId)
	b[bpduOffVersion] = bpdu.ProtocolVersion
	b[bpduOffType] = uint8(bpdu.Type)
	if bpdu.Type == BPDUTypeTCN {
		return nil
	}

	flags := bpdu.Flags
	if bpdu.Type == BPDUTypeConfig {
		// only TC and TC Ack are defined for Config BPDU
		flags = BPDUFlags{TopoChange: flags.TopoChange, TopoChangeAck: flags.TopoChangeAck}
	}
	b[bpduOffFlags] = flags.Encode()
	rootId := bpdu.RootId.Encode()
	copy(b[bpduOffRootId:], rootId[:])
	cost := bpdu.RootPathCost.Encode()
	copy(b[bpduOffRootPathCost:], cost[:])
	bridgeId := bpdu.BridgeId.Encode()
	copy(b[bpduOffBridgeId:], bridgeId[:])
	portId := bpdu.PortId.Encode()
	copy(b[bpduOffPortId:], portId[:])
	putBpduTime(b[bpduOffMessageAge:], bpdu.MessageAge)
	putBpduTime(b[bpduOffMaxAge:], bpdu.MaxAge)
	putBpduTime(b[bpduOffHelloTime:], bpdu.HelloTime)
	putBpduTime(b[bpduOffFwdDelay:], bpdu.ForwardDelay)
	if bpdu.Type == BPDUTypeRST {
		b[bpduOffVersion1Len] = bpdu.Version1Length
	}
	return nil
}

func (bpdu *BPDU) Encode() ([]uint8, error) {
	b := make([]uint8, bpdu.EncodedLen())
	if err := bpdu.EncodeTo(b); err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeBPDU is the 9.3.4 validation followed by field extraction.  On
// failure the returned BPDU has Type BPDUTypeInvalid.
func DecodeBPDU(data []uint8) (*BPDU, error) {
	bpdu := &BPDU{}
	return bpdu, bpdu.Decode(data)
}

func (bpdu *BPDU) Decode(data []uint8) error {
	*bpdu = BPDU{}
	if len(data) < BPDUMinLength || len(data) > BPDUMaxLength {
		return invalidBpdu(bpdu, "length %d outside [%d,%d]", len(data), BPDUMinLength, BPDUMaxLength)
	}

	bpdu.ProtocolId = binary.BigEndian.Uint16(data[bpduOffProtocolId:])
	bpdu.ProtocolVersion = data[bpduOffVersion]
	bpdu.Type = BPDUType(data[bpduOffType])
	if bpdu.ProtocolId != BPDUProtocolIdentifier {
		return invalidBpdu(bpdu, "protocol identifier 0x%04x", bpdu.ProtocolId)
	}

	switch bpdu.Type {
	case BPDUTypeTCN:
		return nil
	case BPDUTypeConfig:
		if len(data) < STPProtocolLength {
			return invalidBpdu(bpdu, "config bpdu length %d", len(data))
		}
	case BPDUTypeRST:
		if len(data) < RSTPProtocolLength {
			return invalidBpdu(bpdu, "rst bpdu length %d", len(data))
		}
	default:
		return invalidBpdu(bpdu, "bpdu type 0x%02x", data[bpduOffType])
	}

	// compared in wire units so fractional seconds are honored
	msgAge := binary.BigEndian.Uint16(data[bpduOffMessageAge:])
	maxAge := binary.BigEndian.Uint16(data[bpduOffMaxAge:])
	if msgAge >= maxAge {
		return invalidBpdu(bpdu, "message age %d not below max age %d", msgAge>>8, maxAge>>8)
	}

	bpdu.Flags = DecodeBPDUFlags(data[bpduOffFlags])
	bpdu.RootId = DecodeBridgeId(data[bpduOffRootId:])
	bpdu.RootPathCost = DecodePathCost(data[bpduOffRootPathCost:])
	bpdu.BridgeId = DecodeBridgeId(data[bpduOffBridgeId:])
	bpdu.PortId = DecodePortId(data[bpduOffPortId:])
	bpdu.MessageAge = getBpduTime(data[bpduOffMessageAge:])
	bpdu.MaxAge = getBpduTime(data[bpduOffMaxAge:])
	bpdu.HelloTime = getBpduTime(data[bpduOffHelloTime:])
	bpdu.ForwardDelay = getBpduTime(data[bpduOffFwdDelay:])

	if bpdu.Type == BPDUTypeRST {
		bpdu.Version1Length = data[bpduOffVersion1Len]
		// 17.21.8 an unknown role is handled as a Config BPDU
		if bpdu.Flags.Role == BPDURoleUnknown {
			bpdu.Type = BPDUTypeConfig
		}
	} else {
		bpdu.Flags = BPDUFlags{TopoChange: bpdu.Flags.TopoChange, TopoChangeAck: bpdu.Flags.TopoChangeAck}
	}
	return nil
}

func (bpdu *BPDU) String() string {
	if bpdu.Type == BPDUTypeTCN || bpdu.Type == BPDUTypeInvalid {
		return fmt.Sprintf("%s v%d", bpdu.Type, bpdu.ProtocolVersion)
	}
	return fmt.Sprintf("%s v%d flags[%#v] root %s cost %d bridge %s port %s times %d/%d/%d/%d",
		bpdu.Type, bpdu.ProtocolVersion, bpdu.Flags, bpdu.RootId, bpdu.RootPathCost,
		bpdu.BridgeId, bpdu.PortId, bpdu.MessageAge, bpdu.MaxAge, bpdu.HelloTime, bpdu.ForwardDelay)
}

// LayerTypeBPDU lets the codec take part in gopacket decoding and
// serialization of LLC framed BPDUs.
var LayerTypeBPDU = gopacket.RegisterLayerType(1802, gopacket.LayerTypeMetadata{
	Name:    "BPDU",
	Decoder: gopacket.DecodeFunc(decodeBPDULayer),
})

type BPDULayer struct {
	BPDU
	contents []uint8
}

func (l *BPDULayer) LayerType() gopacket.LayerType     { return LayerTypeBPDU }
func (l *BPDULayer) LayerContents() []uint8            { return l.contents }
func (l *BPDULayer) LayerPayload() []uint8             { return nil }
func (l *BPDULayer) CanDecode() gopacket.LayerClass    { return LayerTypeBPDU }
func (l *BPDULayer) NextLayerType() gopacket.LayerType { return gopacket.LayerTypeZero }

func (l *BPDULayer) DecodeFromBytes(data []uint8, df gopacket.DecodeFeedback) error {
	l.contents = data
	return l.BPDU.Decode(data)
}

func (l *BPDULayer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(l.BPDU.EncodedLen())
	if err != nil {
		return err
	}
	return l.BPDU.EncodeTo(bytes)
}

func decodeBPDULayer(data []uint8, p gopacket.PacketBuilder) error {
	l := &BPDULayer{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return nil
}
