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

// identity.go
package stp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Mac is a 48 bit IEEE 802 address
type Mac [6]uint8

func MacFromHardwareAddr(hw net.HardwareAddr) (m Mac, err error) {
	if len(hw) != 6 {
		return m, errors.Errorf("invalid mac length %d", len(hw))
	}
	copy(m[:], hw)
	return m, nil
}

func ParseMac(s string) (Mac, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return Mac{}, errors.Wrapf(err, "parse mac %q", s)
	}
	return MacFromHardwareAddr(hw)
}

func (m Mac) HardwareAddr() net.HardwareAddr {
	return net.HardwareAddr(m[:])
}

func (m Mac) String() string {
	return m.HardwareAddr().String()
}

func (m Mac) Compare(o Mac) int {
	return bytes.Compare(m[:], o[:])
}

const (
	BridgePriorityStep    = 4096
	BridgePriorityMax     = 61440
	BridgePriorityDefault = 32768
	BridgeIdExtMask       = 0x0fff

	PortPriorityStep    = 16
	PortPriorityMax     = 240
	PortPriorityDefault = 128
	PortNumMask         = 0x0fff
)

// BridgeId 17.18.2, 9.2.5
// priority lives in the upper nibble of the first octet, the system id
// extension in the remaining 12 bits
type BridgeId struct {
	Priority uint16
	Ext      uint16
	Address  Mac
}

func CreateBridgeId(addr Mac, priority uint16, ext uint16) BridgeId {
	return BridgeId{
		Priority: priority &^ BridgeIdExtMask,
		Ext:      ext & BridgeIdExtMask,
		Address:  addr,
	}
}

// Encode returns the 8 octet wire representation
func (id BridgeId) Encode() (b [8]uint8) {
	binary.BigEndian.PutUint16(b[0:2], (id.Priority&^BridgeIdExtMask)|(id.Ext&BridgeIdExtMask))
	copy(b[2:], id.Address[:])
	return b
}

func DecodeBridgeId(b []uint8) BridgeId {
	v := binary.BigEndian.Uint16(b[0:2])
	id := BridgeId{
		Priority: v &^ BridgeIdExtMask,
		Ext:      v & BridgeIdExtMask,
	}
	copy(id.Address[:], b[2:8])
	return id
}

// Compare returns -1 when id is better (numerically lower) than o
func (id BridgeId) Compare(o BridgeId) int {
	a, b := id.Encode(), o.Encode()
	return bytes.Compare(a[:], b[:])
}

func (id BridgeId) String() string {
	return fmt.Sprintf("%d.%d.%s", id.Priority, id.Ext, id.Address)
}

// PortId 17.19.21, 9.2.7
type PortId struct {
	Priority uint8
	Num      uint16
}

func CreatePortId(num uint16, priority uint8) PortId {
	return PortId{
		Priority: priority & 0xf0,
		Num:      num & PortNumMask,
	}
}

func (id PortId) Uint16() uint16 {
	return uint16(id.Priority&0xf0)<<8 | (id.Num & PortNumMask)
}

func (id PortId) Encode() (b [2]uint8) {
	binary.BigEndian.PutUint16(b[:], id.Uint16())
	return b
}

func DecodePortId(b []uint8) PortId {
	v := binary.BigEndian.Uint16(b[0:2])
	return PortId{
		Priority: uint8(v>>8) & 0xf0,
		Num:      v & PortNumMask,
	}
}

func (id PortId) Compare(o PortId) int {
	a, b := id.Uint16(), o.Uint16()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (id PortId) String() string {
	return fmt.Sprintf("%d.%d", id.Priority, id.Num)
}

// PathCost 17.14 is an additive root path metric, lower is better
type PathCost uint32

const (
	PathCostMin PathCost = 1
	PathCostMax PathCost = 200000000
)

// Encode returns the cost most significant octet first
func (c PathCost) Encode() (b [4]uint8) {
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return b
}

func DecodePathCost(b []uint8) PathCost {
	return PathCost(binary.BigEndian.Uint32(b[0:4]))
}

// Add sums two costs saturating at the 32 bit maximum
func (c PathCost) Add(o PathCost) PathCost {
	s := uint64(c) + uint64(o)
	if s > 0xffffffff {
		return PathCost(0xffffffff)
	}
	return PathCost(s)
}

// Table 17-3 recommended port path cost values
var pathCostSpeedTable = []struct {
	speedMb uint64
	cost    PathCost
}{
	{10000000, 2},
	{1000000, 20},
	{100000, 200},
	{10000, 2000},
	{1000, 20000},
	{100, 200000},
	{10, 2000000},
	{1, 20000000},
}

// SpeedMbToPathCostValue converts a link speed in Mb/s into the port path cost
func SpeedMbToPathCostValue(speedMb uint64) PathCost {
	for _, e := range pathCostSpeedTable {
		if speedMb >= e.speedMb {
			return e.cost
		}
	}
	return PathCostMax
}
