// enum
package stp

type PortInfoState int

// 17.19.10
const (
	PortInfoStateMine PortInfoState = iota
	PortInfoStateAged
	PortInfoStateReceived
	PortInfoStateDisabled
)

var PortInfoStateStrMap = map[PortInfoState]string{
	PortInfoStateMine:     "Mine",
	PortInfoStateAged:     "Aged",
	PortInfoStateReceived: "Received",
	PortInfoStateDisabled: "Disabled",
}

func (s PortInfoState) String() string { return PortInfoStateStrMap[s] }

type PortDesignatedRcvInfo int

// 17.19.27
const (
	SuperiorDesignatedInfo PortDesignatedRcvInfo = iota
	RepeatedDesignatedInfo
	InferiorDesignatedInfo
	InferiorRootInfo
	InferiorRootAlternateInfo
	OtherInfo
)

var PortDesignatedRcvInfoStrMap = map[PortDesignatedRcvInfo]string{
	SuperiorDesignatedInfo:    "SuperiorDesignatedInfo",
	RepeatedDesignatedInfo:    "RepeatedDesignatedInfo",
	InferiorDesignatedInfo:    "InferiorDesignatedInfo",
	InferiorRootInfo:          "InferiorRootInfo",
	InferiorRootAlternateInfo: "InferiorRootAlternateInfo",
	OtherInfo:                 "OtherInfo",
}

func (i PortDesignatedRcvInfo) String() string { return PortDesignatedRcvInfoStrMap[i] }

type PortRole int

// 17.7
const (
	PortRoleInvalid PortRole = iota
	PortRoleRootPort
	PortRoleDesignatedPort
	PortRoleAlternatePort
	PortRoleBackupPort
	PortRoleDisabledPort
)

var PortRoleStrMap = map[PortRole]string{
	PortRoleInvalid:        "Unknown",
	PortRoleRootPort:       "Root",
	PortRoleDesignatedPort: "Designated",
	PortRoleAlternatePort:  "Alternate",
	PortRoleBackupPort:     "Backup",
	PortRoleDisabledPort:   "Disabled",
}

func (r PortRole) String() string { return PortRoleStrMap[r] }

// BPDURole maps the port role onto the two bit field of RST BPDU flags
func (r PortRole) BPDURole() BPDURole {
	switch r {
	case PortRoleRootPort:
		return BPDURoleRoot
	case PortRoleDesignatedPort:
		return BPDURoleDesignated
	case PortRoleAlternatePort, PortRoleBackupPort:
		return BPDURoleAlternateBackup
	}
	return BPDURoleUnknown
}

type PointToPointMac int

// 6.4.3 adminPointToPointMAC
const (
	StpPointToPointForceTrue  PointToPointMac = 0
	StpPointToPointForceFalse PointToPointMac = 1
	StpPointToPointAuto       PointToPointMac = 2
)

var PointToPointMacStrMap = map[PointToPointMac]string{
	StpPointToPointForceTrue:  "ForceTrue",
	StpPointToPointForceFalse: "ForceFalse",
	StpPointToPointAuto:       "Auto",
}
