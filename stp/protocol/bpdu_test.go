// bpdu_test.go
package stp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRstBpdu() *BPDU {
	return &BPDU{
		ProtocolId:      BPDUProtocolIdentifier,
		ProtocolVersion: RSTPProtocolVersion,
		Type:            BPDUTypeRST,
		Flags: BPDUFlags{
			TopoChange: true,
			Proposal:   true,
			Role:       BPDURoleDesignated,
			Learning:   true,
			Agreement:  true,
		},
		RootId:         CreateBridgeId(Mac{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, 4096, 1),
		RootPathCost:   20000,
		BridgeId:       CreateBridgeId(Mac{0x00, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e}, 32768, 1),
		PortId:         CreatePortId(3, 0x80),
		MessageAge:     2,
		MaxAge:         20,
		HelloTime:      2,
		ForwardDelay:   15,
		Version1Length: 0,
	}
}

func TestBPDURstEncodeDecode(t *testing.T) {
	bpdu := testRstBpdu()
	buf, err := bpdu.Encode()
	require.NoError(t, err)
	require.Len(t, buf, RSTPProtocolLength+RSTPPaddingLength)

	// spot check the wire layout
	assert.Equal(t, uint8(RSTPProtocolVersion), buf[2])
	assert.Equal(t, uint8(BPDUTypeRST), buf[3])
	assert.Equal(t, uint8(0x10|0x0c|0x40|0x02|0x01), buf[4])
	assert.Equal(t, []uint8{0x10, 0x01, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, buf[5:13])
	assert.Equal(t, []uint8{0x00, 0x00, 0x4e, 0x20}, buf[13:17])
	assert.Equal(t, []uint8{0x80, 0x03}, buf[25:27])
	// times in 1/256 s
	assert.Equal(t, []uint8{0x02, 0x00}, buf[27:29])
	assert.Equal(t, []uint8{0x0f, 0x00}, buf[33:35])

	got, err := DecodeBPDU(buf)
	require.NoError(t, err)
	assert.Equal(t, *bpdu, *got)
}

func TestBPDUConfigEncodeDecode(t *testing.T) {
	bpdu := testRstBpdu()
	bpdu.Type = BPDUTypeConfig
	bpdu.ProtocolVersion = STPProtocolVersion
	bpdu.Flags.TopoChangeAck = true

	buf, err := bpdu.Encode()
	require.NoError(t, err)
	require.Len(t, buf, STPProtocolLength)
	// only TC and TC Ack survive in a Config BPDU
	assert.Equal(t, uint8(0x81), buf[4])

	got, err := DecodeBPDU(buf)
	require.NoError(t, err)
	assert.Equal(t, BPDUTypeConfig, got.Type)
	assert.Equal(t, BPDUFlags{TopoChange: true, TopoChangeAck: true}, got.Flags)
	assert.Equal(t, bpdu.Priority(), got.Priority())
	assert.Equal(t, bpdu.Times(), got.Times())
}

func TestBPDUTcnEncodeDecode(t *testing.T) {
	bpdu := &BPDU{Type: BPDUTypeTCN}
	buf, err := bpdu.Encode()
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x00, 0x00, 0x00, 0x80}, buf)

	got, err := DecodeBPDU(buf)
	require.NoError(t, err)
	assert.Equal(t, BPDUTypeTCN, got.Type)
}

func TestBPDUDecodeInvalid(t *testing.T) {
	valid, err := testRstBpdu().Encode()
	require.NoError(t, err)

	for name, data := range map[string][]uint8{
		"short":       {0x00, 0x00, 0x00},
		"long":        make([]uint8, BPDUMaxLength+1),
		"protocol id": append([]uint8{0x00, 0x01}, valid[2:]...),
		"bad type":    {0x00, 0x00, 0x00, 0x55},
		"short rst":   valid[:RSTPProtocolLength-1],
		"short config": func() []uint8 {
			b := append([]uint8{}, valid[:STPProtocolLength-1]...)
			b[3] = uint8(BPDUTypeConfig)
			return b
		}(),
		"message age": func() []uint8 {
			b := append([]uint8{}, valid...)
			// message age 20 == max age 20
			b[27], b[28] = 0x14, 0x00
			return b
		}(),
	} {
		got, err := DecodeBPDU(data)
		if err == nil {
			t.Error("Expected decode failure for", name)
			continue
		}
		assert.Equal(t, ErrInvalidBpdu, errors.Cause(err), name)
		assert.Equal(t, BPDUTypeInvalid, got.Type, name)
	}
}

func TestBPDUFractionalMessageAge(t *testing.T) {
	buf, err := testRstBpdu().Encode()
	require.NoError(t, err)
	// message age 19.5 against max age 20 is still valid
	buf[27], buf[28] = 0x13, 0x80
	got, err := DecodeBPDU(buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(19), got.MessageAge)
}

func TestBPDURstUnknownRole(t *testing.T) {
	bpdu := testRstBpdu()
	bpdu.Flags.Role = BPDURoleUnknown
	buf, err := bpdu.Encode()
	require.NoError(t, err)

	got, err := DecodeBPDU(buf)
	require.NoError(t, err)
	assert.Equal(t, BPDUTypeConfig, got.Type)
	assert.Equal(t, uint8(RSTPProtocolVersion), got.ProtocolVersion)
}

func TestBPDUFlags(t *testing.T) {
	for v := 0; v < 256; v++ {
		f := DecodeBPDUFlags(uint8(v))
		if f.Encode() != uint8(v) {
			t.Error("Flags did not survive", v, f)
		}
	}
}

func TestBPDUEncodeUnknownType(t *testing.T) {
	bpdu := &BPDU{Type: BPDUTypeInvalid}
	_, err := bpdu.Encode()
	require.Error(t, err)
}
