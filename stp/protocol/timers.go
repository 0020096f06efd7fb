// timers
package stp

type TimerType int

const (
	TimerTypeEdgeDelayWhile TimerType = iota
	TimerTypeFdWhile
	TimerTypeHelloWhen
	TimerTypeMdelayWhile
	TimerTypeRbWhile
	TimerTypeRcvdInfoWhile
	TimerTypeRrWhile
	TimerTypeTcWhile
)

var TimerTypeStrMap map[TimerType]string

func TimerTypeStrStateMapInit() {
	TimerTypeStrMap = make(map[TimerType]string)
	TimerTypeStrMap[TimerTypeEdgeDelayWhile] = "Edge Delay Timer"
	TimerTypeStrMap[TimerTypeFdWhile] = "Fd While Timer"
	TimerTypeStrMap[TimerTypeHelloWhen] = "Hello When Timer"
	TimerTypeStrMap[TimerTypeMdelayWhile] = "Migration Delay Timer"
	TimerTypeStrMap[TimerTypeRbWhile] = "Recent Backup Timer"
	TimerTypeStrMap[TimerTypeRcvdInfoWhile] = "Received Info Timer"
	TimerTypeStrMap[TimerTypeRrWhile] = "Recent Root Timer"
	TimerTypeStrMap[TimerTypeTcWhile] = "topology Change Timer"
}

// PortTimer is a one second resolution countdown
type PortTimer struct {
	count uint16
}

func (t *PortTimer) Count() uint16  { return t.count }
func (t *PortTimer) Set(v uint16)   { t.count = v }
func (t *PortTimer) TimedOut() bool { return t.count == 0 }
func (t *PortTimer) Decrement() {
	if t.count > 0 {
		t.count--
	}
}

// SmTimers 17.17 holds the eight per port state machine timers
type SmTimers struct {
	EdgeDelayWhileTimer PortTimer
	FdWhileTimer        PortTimer
	HelloWhenTimer      PortTimer
	MdelayWhiletimer    PortTimer
	RbWhileTimer        PortTimer
	RcvdInfoWhiletimer  PortTimer
	RrWhileTimer        PortTimer
	TcWhileTimer        PortTimer
}

func (t *SmTimers) Timer(tt TimerType) *PortTimer {
	switch tt {
	case TimerTypeEdgeDelayWhile:
		return &t.EdgeDelayWhileTimer
	case TimerTypeFdWhile:
		return &t.FdWhileTimer
	case TimerTypeHelloWhen:
		return &t.HelloWhenTimer
	case TimerTypeMdelayWhile:
		return &t.MdelayWhiletimer
	case TimerTypeRbWhile:
		return &t.RbWhileTimer
	case TimerTypeRcvdInfoWhile:
		return &t.RcvdInfoWhiletimer
	case TimerTypeRrWhile:
		return &t.RrWhileTimer
	case TimerTypeTcWhile:
		return &t.TcWhileTimer
	}
	return nil
}

// DecrementTimers 17.22 decrements every timer, none drops below zero
func (t *SmTimers) DecrementTimers() {
	for tt := TimerTypeEdgeDelayWhile; tt <= TimerTypeTcWhile; tt++ {
		t.Timer(tt).Decrement()
	}
}

// TimerCounts returns a snapshot keyed by timer name
func (t *SmTimers) TimerCounts() map[string]uint16 {
	counts := make(map[string]uint16, len(TimerTypeStrMap))
	for tt := TimerTypeEdgeDelayWhile; tt <= TimerTypeTcWhile; tt++ {
		counts[TimerTypeStrMap[tt]] = t.Timer(tt).Count()
	}
	return counts
}
