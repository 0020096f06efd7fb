// manager_test.go
package stp

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerInvalidBridge(t *testing.T) {
	bc := testBridgeB
	bc.Priority = 1
	_, err := NewManager(&bc, newTestHw())
	assert.Error(t, err)
}

func TestManagerAddPortErrors(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, UsedForTestOnlyPortConfig(1))

	// pending ports count as existing
	require.NoError(t, m.AddPort(UsedForTestOnlyPortConfig(2)))
	assert.Error(t, m.AddPort(UsedForTestOnlyPortConfig(2)))
	assert.Error(t, m.AddPort(UsedForTestOnlyPortConfig(1)))

	bad := UsedForTestOnlyPortConfig(3)
	bad.Priority = 17
	assert.Error(t, m.AddPort(bad))

	m.Process()
	assert.Len(t, m.PortStatus(), 2)
	_, ok := m.Port(3)
	assert.False(t, ok)
}

func TestManagerUnknownPort(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB)

	for name, err := range map[string]error{
		"remove":  m.RemovePort(5),
		"enable":  m.SetPortEnabled(5, true),
		"speed":   m.SetPortSpeed(5, 100),
		"mcheck":  m.Mcheck(5),
		"receive": m.ReceiveBpdu(5, []uint8{0x00, 0x00, 0x00, 0x80}),
	} {
		assert.Equal(t, ErrUnknownPort, errors.Cause(err), name)
	}
}

func TestManagerStatus(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, UsedForTestOnlyPortConfig(2), UsedForTestOnlyPortConfig(1))

	bs := m.BridgeStatus()
	assert.True(t, bs.IsRoot)
	assert.Equal(t, bs.BridgeId, bs.RootId)
	assert.Equal(t, 2, bs.Ports)
	assert.Equal(t, uint16(BridgeMaxAgeDefault), bs.MaxAge)

	ps := m.PortStatus()
	require.Len(t, ps, 2)
	// snapshots are kept in port number order
	assert.Equal(t, uint16(1), ps[0].PortNum)
	assert.Equal(t, uint16(2), ps[1].PortNum)
	assert.Equal(t, PortRoleDesignatedPort.String(), ps[0].Role)
	assert.Equal(t, "Discarding", ps[0].State)
	assert.Equal(t, uint32(20000), ps[0].PathCost)
	assert.Len(t, ps[0].Timers, 8)

	// the snapshot is a copy
	ps[0].Role = "changed"
	assert.Equal(t, PortRoleDesignatedPort.String(), m.PortStatus()[0].Role)
}

func TestManagerRemovePortReselects(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, nonEdgePort(1), nonEdgePort(2))
	b := m.Bridge()
	UsedForTestOnlyRxBpdu(t, m, 1, UsedForTestOnlySuperiorConfig())
	require.False(t, b.IsRootBridge())

	// losing the root port makes this bridge root again
	require.NoError(t, m.RemovePort(1))
	m.Process()
	_, ok := b.Port(1)
	assert.False(t, ok)
	assert.True(t, b.IsRootBridge())
	p2 := UsedForTestOnlyPort(t, m, 2)
	assert.Equal(t, PortRoleDesignatedPort, p2.Role)
	assert.Equal(t, 1, m.BridgeStatus().Ports)

	assert.Equal(t, ErrUnknownPort, errors.Cause(m.RemovePort(1)))
	// the number can be reused
	require.NoError(t, m.AddPort(nonEdgePort(1)))
	m.Process()
	assert.Len(t, m.PortStatus(), 2)
}

func TestManagerPortDisable(t *testing.T) {
	m, hw := UsedForTestOnlyManagerSetup(t, testBridgeB, UsedForTestOnlyPortConfig(1))
	p := UsedForTestOnlyPort(t, m, 1)
	UsedForTestOnlyRun(5, m)
	require.True(t, p.Forwarding)

	require.NoError(t, m.SetPortEnabled(1, false))
	m.Process()
	assert.Equal(t, PortRoleDisabledPort, p.Role)
	assert.Equal(t, PortInfoStateDisabled, p.InfoIs)
	assert.False(t, p.Forwarding)
	en, _ := hw.last("forwarding", 1)
	assert.False(t, en)

	n := len(hw.tx[1])
	UsedForTestOnlyRun(5, m)
	assert.Equal(t, n, len(hw.tx[1]))
}

func TestManagerDeterministic(t *testing.T) {
	run := func() []PortStatus {
		m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, nonEdgePort(1), nonEdgePort(2))
		for i := 0; i < 30; i++ {
			if i%2 == 0 {
				UsedForTestOnlyRxBpdu(t, m, 1, UsedForTestOnlySuperiorConfig())
			}
			m.Tick()
		}
		return m.PortStatus()
	}
	assert.Equal(t, run(), run())
}

func TestManagerRun(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB)
	require.NoError(t, m.AddPort(UsedForTestOnlyPortConfig(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := m.Run(ctx, 10*time.Millisecond)
	assert.Equal(t, context.DeadlineExceeded, err)

	// queued work was picked up by the loop
	_, ok := m.Port(1)
	assert.True(t, ok)
}
