// def.go
package stp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/utils/fsm"
)

type BPDURxType int8

// this is not to be confused with bpdu type as defined in message
const (
	BPDURxTypeUnknown BPDURxType = iota
	BPDURxTypeUnknownBPDU
	BPDURxTypeSTP
	BPDURxTypeRSTP
	BPDURxTypeTopo
)

var BPDURxTypeStrMap = map[BPDURxType]string{
	BPDURxTypeUnknown:     "unknown",
	BPDURxTypeUnknownBPDU: "invalid",
	BPDURxTypeSTP:         "config",
	BPDURxTypeRSTP:        "rst",
	BPDURxTypeTopo:        "tcn",
}

func BPDURxTypeFromBPDU(t BPDUType) BPDURxType {
	switch t {
	case BPDUTypeConfig:
		return BPDURxTypeSTP
	case BPDUTypeRST:
		return BPDURxTypeRSTP
	case BPDUTypeTCN:
		return BPDURxTypeTopo
	case BPDUTypeInvalid:
		return BPDURxTypeUnknownBPDU
	}
	return BPDURxTypeUnknown
}

const (
	MigrateTimeDefault        = 3
	BridgeHelloTimeDefault    = 2
	BridgeMaxAgeDefault       = 20
	BridgeForwardDelayDefault = 15
	TransmitHoldCountDefault  = 6

	// 17.13.3 lower bound on the hello time recorded from a received bpdu
	BridgeHelloTimeMin = 1

	// 7.9.2 recommended filtering database ageing time
	BridgeAgeingTimeDefault = 300

	DEFAULT_STP_BRIDGE_VLAN = 0
)

// 17.20.13/17.20.14 force version values
const (
	ForceVersionSTP  = 0
	ForceVersionRSTP = 2
)

// the none event is returned by a machine when no guard holds
const EventNone fsm.Event = 0

// MachineMaxTransitions bounds one Execute of a machine; a guard that keeps
// holding after this many transitions is reported as a livelock
const MachineMaxTransitions = 64

type StpStateEvent struct {
	// current State
	s fsm.State
	// previous State
	ps fsm.State
	// current event
	e fsm.Event
	// previous event
	pe fsm.Event

	// event src
	esrc        string
	owner       string
	strStateMap map[fsm.State]string
	logEna      bool
	logger      func(string)
}

func (se *StpStateEvent) LoggerSet(log func(string))                 { se.logger = log }
func (se *StpStateEvent) EnableLogging(ena bool)                     { se.logEna = ena }
func (se *StpStateEvent) IsLoggerEna() bool                          { return se.logEna }
func (se *StpStateEvent) StateStrMapSet(strMap map[fsm.State]string) { se.strStateMap = strMap }
func (se *StpStateEvent) PreviousState() fsm.State                   { return se.ps }
func (se *StpStateEvent) CurrentState() fsm.State                    { return se.s }
func (se *StpStateEvent) PreviousEvent() fsm.Event                   { return se.pe }
func (se *StpStateEvent) CurrentEvent() fsm.Event                    { return se.e }
func (se *StpStateEvent) SetEvent(es string, e fsm.Event) {
	se.esrc = es
	se.pe = se.e
	se.e = e
}
func (se *StpStateEvent) SetState(s fsm.State) {
	se.ps = se.s
	se.s = s
	if se.IsLoggerEna() && se.logger != nil {
		se.logger((strings.Join([]string{"Src", se.esrc, "OldState", se.strStateMap[se.ps], "Evt", strconv.Itoa(int(se.e)), "NewState", se.strStateMap[s]}, ":")))
	}
}

func newStpStateEvent(owner string, strMap map[fsm.State]string, initial fsm.State, logEna bool, log func(string)) *StpStateEvent {
	return &StpStateEvent{
		strStateMap: strMap,
		logEna:      logEna,
		logger:      log,
		owner:       owner,
		ps:          initial,
		s:           initial,
	}
}

// executeMachine keeps feeding the machine the event selected by nextEvent
// until no guard holds.  Returns true if at least one transition was taken.
func executeMachine(name string, p *StpPort, m *fsm.Machine, strMap map[fsm.State]string, nextEvent func() fsm.Event) (changed bool) {
	return runMachine(name, m, strMap, nextEvent, func(t string, msg string) {
		StpPortLogger(t, name, p, msg)
	})
}

func runMachine(name string, m *fsm.Machine, strMap map[fsm.State]string, nextEvent func() fsm.Event, logf func(string, string)) (changed bool) {
	for i := 0; i < MachineMaxTransitions; i++ {
		e := nextEvent()
		if e == EventNone {
			return changed
		}
		if rv := m.ProcessEvent(name, e, nil); rv != nil {
			logf("ERROR", fmt.Sprintf("%s event[%d] currState[%s]", rv, e, strMap[m.Curr.CurrentState()]))
			return changed
		}
		changed = true
	}
	logf("WARNING", fmt.Sprintf("transition limit reached in state %s", strMap[m.Curr.CurrentState()]))
	return changed
}

func ConvertBoolToUint8(v bool) (rv uint8) {
	if v {
		rv = 1
	}
	return rv
}

func StpSetBpduFlags(topochangeack uint8, agreement uint8, forwarding uint8, learning uint8, role BPDURole, proposal uint8, topochange uint8, flags *uint8) {

	*flags |= topochangeack << 7
	*flags |= agreement << 6
	*flags |= forwarding << 5
	*flags |= learning << 4
	*flags |= uint8(role&0x3) << 2
	*flags |= proposal << 1
	*flags |= topochange << 0

}
