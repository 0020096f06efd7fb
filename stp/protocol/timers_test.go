// timers_test.go
package stp

import (
	"testing"
)

func TestSmTimersDecrement(t *testing.T) {
	var timers SmTimers
	timers.FdWhileTimer.Set(2)
	timers.TcWhileTimer.Set(1)

	for i := 0; i < 3; i++ {
		timers.DecrementTimers()
	}
	for tt := TimerTypeEdgeDelayWhile; tt <= TimerTypeTcWhile; tt++ {
		if !timers.Timer(tt).TimedOut() {
			t.Error("Expected timer to have expired", TimerTypeStrMap[tt], timers.Timer(tt).Count())
		}
	}
	if timers.Timer(TimerType(99)) != nil {
		t.Error("Unknown timer type should not resolve")
	}
}

func TestSmTimersCounts(t *testing.T) {
	var timers SmTimers
	timers.RbWhileTimer.Set(4)
	counts := timers.TimerCounts()
	if len(counts) != 8 {
		t.Error("Expected eight timers", counts)
	}
	if counts[TimerTypeStrMap[TimerTypeRbWhile]] != 4 {
		t.Error("Recent backup timer count not reported", counts)
	}
}

func TestPtmTickDecrementsTimers(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, UsedForTestOnlyPortConfig(1))
	p := UsedForTestOnlyPort(t, m, 1)

	p.RbWhileTimer.Set(4)
	p.TxCount = 2
	p.Tick = true
	p.PtmMachineFsm.Execute()

	if p.RbWhileTimer.Count() != 3 {
		t.Error("Expected rbWhile to be decremented", p.RbWhileTimer.Count())
	}
	if p.TxCount != 1 {
		t.Error("Expected txCount to be decremented", p.TxCount)
	}
	if p.Tick {
		t.Error("Expected tick to be consumed")
	}
	if p.PtmMachineFsm.Machine.Curr.CurrentState() != PtmStateOneSecond {
		t.Error("Expected timer machine to wait for the next tick")
	}

	// nothing happens without a tick
	p.PtmMachineFsm.Execute()
	if p.RbWhileTimer.Count() != 3 {
		t.Error("Timer decremented without a tick", p.RbWhileTimer.Count())
	}
}

func TestPtmShortenedAgeingRestored(t *testing.T) {
	bc := testBridgeB
	bc.ForceVersion = ForceVersionSTP
	m, _ := UsedForTestOnlyManagerSetup(t, bc, UsedForTestOnlyPortConfig(1))
	p := UsedForTestOnlyPort(t, m, 1)

	// the shortened period is FwdDelay regardless of tcWhile
	p.TcWhileTimer.Set(100)
	p.FdbFlush = true
	p.FlushFdb()
	fwdDelay := p.FwdDelay()
	if p.AgeingTime != fwdDelay {
		t.Error("Expected ageing time to be shortened to FwdDelay", p.AgeingTime)
	}

	tick := func() {
		p.Tick = true
		p.PtmMachineFsm.Execute()
	}
	for i := uint16(1); i < fwdDelay; i++ {
		tick()
	}
	if p.AgeingTime != fwdDelay {
		t.Error("Ageing time restored too early", p.AgeingTime, p.AgeingShortWhile)
	}
	tick()
	if p.AgeingTime != BridgeAgeingTimeDefault {
		t.Error("Expected ageing time to be restored after FwdDelay seconds", p.AgeingTime)
	}
	if p.TcWhileTimer.TimedOut() {
		t.Error("tcWhile should still be running", p.TcWhileTimer.Count())
	}

	// further ticks leave the restored value alone
	tick()
	if p.AgeingTime != BridgeAgeingTimeDefault || p.AgeingShortWhile != 0 {
		t.Error("Unexpected ageing state", p.AgeingTime, p.AgeingShortWhile)
	}
}

func TestRstpFlushKeepsAgeing(t *testing.T) {
	m, _ := UsedForTestOnlyManagerSetup(t, testBridgeB, UsedForTestOnlyPortConfig(1))
	p := UsedForTestOnlyPort(t, m, 1)

	p.FdbFlush = true
	p.FlushFdb()
	if p.AgeingTime != BridgeAgeingTimeDefault || p.AgeingShortWhile != 0 {
		t.Error("RSTP flush should not shorten ageing", p.AgeingTime, p.AgeingShortWhile)
	}
	if p.FdbFlush {
		t.Error("Expected fdbFlush to be cleared")
	}
}
