package stplinux

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stp "github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/protocol"
)

const testWait = 2 * time.Second

type testHandle struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once
}

func newTestHandle() *testHandle {
	return &testHandle{
		in:     make(chan []byte, 4),
		closed: make(chan struct{}),
	}
}

func (h *testHandle) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	select {
	case d := <-h.in:
		return d, gopacket.CaptureInfo{Timestamp: time.Now(), CaptureLength: len(d), Length: len(d)}, nil
	case <-h.closed:
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
}

func (h *testHandle) WritePacketData(data []byte) error { return nil }

func (h *testHandle) Close() {
	h.once.Do(func() { close(h.closed) })
}

type testFrame struct {
	num   uint16
	frame []uint8
}

type testEnable struct {
	num uint16
	ena bool
}

// testReceiver is called from the bridge goroutines
type testReceiver struct {
	frames    chan testFrame
	enabled   chan testEnable
	enableErr error
}

func newTestReceiver() *testReceiver {
	return &testReceiver{
		frames:  make(chan testFrame, 4),
		enabled: make(chan testEnable, 4),
	}
}

func (r *testReceiver) ReceiveFrame(num uint16, frame []uint8) error {
	r.frames <- testFrame{num, frame}
	return nil
}

func (r *testReceiver) SetPortEnabled(num uint16, ena bool) error {
	r.enabled <- testEnable{num, ena}
	return r.enableErr
}

func testBridge(up bool) *Bridge {
	b := NewBridge()
	b.operUp = func(int) (bool, error) { return up, nil }
	return b
}

func testPort(num uint16, h *testHandle) *linuxPort {
	return &linuxPort{
		num:     num,
		ifname:  "test",
		ifindex: int(num) + 10,
		mac:     net.HardwareAddr{0x00, 0x11, 0x11, 0x11, 0x11, byte(num)},
		handle:  h,
	}
}

func testBpduFrame(t *testing.T, src net.HardwareAddr) []uint8 {
	buf, err := (&stp.BPDU{Type: stp.BPDUTypeTCN}).Encode()
	require.NoError(t, err)
	frame, err := stp.BuildBpduFrame(src, buf)
	require.NoError(t, err)
	return frame
}

func waitBridge(t *testing.T, b *Bridge) {
	done := make(chan struct{})
	go func() {
		b.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(testWait):
		t.Fatal("bridge loops did not stop")
	}
}

func TestBrPortState(t *testing.T) {
	for _, tc := range []struct {
		learning, forwarding bool
		want                 uint8
	}{
		{false, false, BrStateBlocking},
		{true, false, BrStateLearning},
		{true, true, BrStateForwarding},
		// forwarding alone is still forwarding to the kernel
		{false, true, BrStateForwarding},
	} {
		require.Equal(t, tc.want, BrPortState(tc.learning, tc.forwarding), "learning %v forwarding %v", tc.learning, tc.forwarding)
	}
}

func TestUnboundPort(t *testing.T) {
	b := NewBridge()
	require.Error(t, b.FlushFdb(1))
	require.Error(t, b.SetForwarding(1, true))
	require.Error(t, b.SetLearning(1, true))
	require.Error(t, b.SendOutBpdu(1, []uint8{0, 0, 0, 0x80}))
	// no-op
	b.RemovePort(1)
}

func TestPortBoundAfterStart(t *testing.T) {
	b := testBridge(true)
	rec := newTestReceiver()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.run(ctx, rec)

	h := newTestHandle()
	lp := testPort(3, h)
	b.bind(lp)

	select {
	case e := <-rec.enabled:
		assert.Equal(t, testEnable{3, true}, e)
	case <-time.After(testWait):
		t.Fatal("link state of the new port not reported")
	}

	// our own frames are skipped
	h.in <- testBpduFrame(t, lp.mac)
	peer := testBpduFrame(t, net.HardwareAddr{0x00, 0x22, 0x22, 0x22, 0x22, 0x22})
	h.in <- peer
	select {
	case f := <-rec.frames:
		assert.Equal(t, uint16(3), f.num)
		assert.Equal(t, peer, f.frame)
	case <-time.After(testWait):
		t.Fatal("frame not delivered")
	}

	b.RemovePort(3)
	select {
	case <-h.closed:
	default:
		t.Fatal("handle not closed on remove")
	}
	// removing the port ends its loop without cancelling the bridge
	waitBridge(t, b)
	require.Error(t, b.SendOutBpdu(3, []uint8{0, 0, 0, 0x80}))
}

func TestPortsBoundBeforeStart(t *testing.T) {
	b := testBridge(false)
	h := newTestHandle()
	b.bind(testPort(1, h))

	rec := newTestReceiver()
	ctx, cancel := context.WithCancel(context.Background())
	b.run(ctx, rec)
	select {
	case e := <-rec.enabled:
		assert.Equal(t, testEnable{1, false}, e)
	case <-time.After(testWait):
		t.Fatal("link state not reported on start")
	}

	cancel()
	waitBridge(t, b)
	// ports bound after the bridge stopped get no loop
	b.bind(testPort(2, newTestHandle()))
	assert.Empty(t, rec.enabled)
}

func TestRebindClosesOldHandle(t *testing.T) {
	b := testBridge(true)
	rec := newTestReceiver()
	ctx, cancel := context.WithCancel(context.Background())
	b.run(ctx, rec)

	old := newTestHandle()
	b.bind(testPort(1, old))
	b.bind(testPort(1, newTestHandle()))
	select {
	case <-old.closed:
	default:
		t.Fatal("replaced handle left open")
	}

	cancel()
	waitBridge(t, b)
}

func TestOperStateErrorsLogged(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	b := testBridge(true)
	rec := newTestReceiver()
	rec.enableErr = errors.New("unknown port")
	ctx, cancel := context.WithCancel(context.Background())
	b.run(ctx, rec)
	b.bind(testPort(4, newTestHandle()))

	b.operUp = func(int) (bool, error) { return false, errors.New("no such link") }
	b.bind(testPort(5, newTestHandle()))

	cancel()
	waitBridge(t, b)

	var warned []string
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel {
			warned = append(warned, e.Message)
		}
	}
	require.Len(t, warned, 2)
	assert.Contains(t, warned[0], "port 4 link update")
	assert.Contains(t, warned[1], "port 5 oper state")
}
