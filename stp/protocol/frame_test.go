// frame_test.go
package stp

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSrcMac = net.HardwareAddr{0x00, 0x55, 0x55, 0x55, 0x55, 0x55}

func TestBpduFrameRoundTrip(t *testing.T) {
	bpdu := testRstBpdu()
	buf, err := bpdu.Encode()
	require.NoError(t, err)

	frame, err := BuildBpduFrame(testSrcMac, buf)
	require.NoError(t, err)
	assert.Equal(t, []uint8(BpduDA), frame[0:6])
	assert.Equal(t, []uint8(testSrcMac), frame[6:12])
	// 802.3 length field followed by the LLC header
	assert.Equal(t, []uint8{BpduLLCSap, BpduLLCSap, BpduLLCControl}, frame[14:17])

	src, l, err := ParseBpduFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, testSrcMac, src)
	assert.Equal(t, *bpdu, l.BPDU)
}

func TestBpduFrameTcn(t *testing.T) {
	buf, err := (&BPDU{Type: BPDUTypeTCN}).Encode()
	require.NoError(t, err)
	frame, err := BuildBpduFrame(testSrcMac, buf)
	require.NoError(t, err)

	_, l, err := ParseBpduFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, BPDUTypeTCN, l.BPDU.Type)
}

func TestParseNotBpduFrame(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       testSrcMac,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true},
		eth, gopacket.Payload(make([]uint8, 28))))

	_, l, err := ParseBpduFrame(buf.Bytes())
	assert.Nil(t, l)
	assert.Equal(t, ErrNotBpduFrame, err)

	_, _, err = ParseBpduFrame([]uint8{0x01, 0x02})
	assert.Equal(t, ErrNotBpduFrame, err)
}

func TestParseInvalidBpduFrame(t *testing.T) {
	frame, err := BuildBpduFrame(testSrcMac, []uint8{0x00, 0x00, 0x00, 0x55})
	require.NoError(t, err)

	_, l, err := ParseBpduFrame(frame)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidBpdu, errors.Cause(err))
	// the layer is still returned so the receiver can count the bad bpdu
	assert.NotNil(t, l)
}

func TestReceiveFrame(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, UsedForTestOnlyPortConfig(1))
	p := UsedForTestOnlyPort(t, m, 1)

	buf, err := UsedForTestOnlySuperiorConfig().Encode()
	require.NoError(t, err)
	frame, err := BuildBpduFrame(testSrcMac, buf)
	require.NoError(t, err)

	require.NoError(t, m.ReceiveFrame(1, frame))
	m.Process()
	assert.Equal(t, PortRoleRootPort, p.Role)
	assert.False(t, m.Bridge().IsRootBridge())

	// frames for an unknown port are refused
	err = m.ReceiveFrame(9, frame)
	assert.Equal(t, ErrUnknownPort, errors.Cause(err))
}
