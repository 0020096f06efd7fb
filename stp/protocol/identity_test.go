// identity_test.go
package stp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeIdEncode(t *testing.T) {
	mac, err := ParseMac("00:55:55:55:55:55")
	require.NoError(t, err)

	id := CreateBridgeId(mac, 32768, 100)
	b := id.Encode()
	assert.Equal(t, [8]uint8{0x80, 0x64, 0x00, 0x55, 0x55, 0x55, 0x55, 0x55}, b)
	assert.Equal(t, id, DecodeBridgeId(b[:]))

	// only the top four bits are priority
	id = CreateBridgeId(mac, 0x1234, 0xf001)
	assert.Equal(t, uint16(0x1000), id.Priority)
	assert.Equal(t, uint16(0x001), id.Ext)
}

func TestBridgeIdCompare(t *testing.T) {
	lo := Mac{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	hi := Mac{0x00, 0x00, 0x00, 0x00, 0x00, 0x02}

	// priority dominates the address
	assert.Equal(t, -1, CreateBridgeId(hi, 4096, 0).Compare(CreateBridgeId(lo, 8192, 0)))
	// then the system id extension
	assert.Equal(t, -1, CreateBridgeId(hi, 4096, 1).Compare(CreateBridgeId(lo, 4096, 2)))
	// then the address
	assert.Equal(t, 1, CreateBridgeId(hi, 4096, 1).Compare(CreateBridgeId(lo, 4096, 1)))
	assert.Equal(t, 0, CreateBridgeId(lo, 4096, 1).Compare(CreateBridgeId(lo, 4096, 1)))
}

func TestPortId(t *testing.T) {
	id := CreatePortId(0x123, 0x8f)
	assert.Equal(t, uint8(0x80), id.Priority)
	assert.Equal(t, uint16(0x8123), id.Uint16())
	b := id.Encode()
	assert.Equal(t, id, DecodePortId(b[:]))

	// priority dominates the number
	assert.Equal(t, -1, CreatePortId(9, 0x10).Compare(CreatePortId(1, 0x80)))
	assert.Equal(t, 1, CreatePortId(9, 0x80).Compare(CreatePortId(1, 0x80)))
}

func TestMac(t *testing.T) {
	_, err := ParseMac("not a mac")
	require.Error(t, err)
	// eui64 is not a bridge address
	_, err = ParseMac("00:11:22:33:44:55:66:77")
	require.Error(t, err)

	m, err := ParseMac("00:aa:aa:bb:bb:dd")
	require.NoError(t, err)
	assert.Equal(t, "00:aa:aa:bb:bb:dd", m.String())
	assert.Equal(t, -1, m.Compare(Mac{0x01}))
}

func TestSpeedMbToPathCostValue(t *testing.T) {
	for _, tc := range []struct {
		speed uint64
		cost  PathCost
	}{
		{0, PathCostMax},
		{1, 20000000},
		{10, 2000000},
		{100, 200000},
		{1000, 20000},
		{10000, 2000},
		{40000, 2000},
		{100000, 200},
		{1000000, 20},
		{10000000, 2},
	} {
		assert.Equal(t, tc.cost, SpeedMbToPathCostValue(tc.speed), "speed %d", tc.speed)
	}
}

func TestPathCostAdd(t *testing.T) {
	assert.Equal(t, PathCost(30), PathCost(10).Add(20))
	assert.Equal(t, PathCost(0xffffffff), PathCost(0xfffffff0).Add(0x100))
	b := PathCost(20000).Encode()
	assert.Equal(t, PathCost(20000), DecodePathCost(b[:]))
}
