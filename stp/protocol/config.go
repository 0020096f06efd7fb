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

// config.go
package stp

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const DefaultBridgeAddress = "00:AA:AA:BB:BB:DD"

type StpBridgeConfig struct {
	Address      string `yaml:"address" json:"address"`
	Priority     uint16 `yaml:"priority" json:"priority"`
	MaxAge       uint16 `yaml:"maxAge" json:"maxAge"`
	HelloTime    uint16 `yaml:"helloTime" json:"helloTime"`
	ForwardDelay uint16 `yaml:"forwardDelay" json:"forwardDelay"`
	ForceVersion int32  `yaml:"forceVersion" json:"forceVersion"`
	TxHoldCount  int32  `yaml:"txHoldCount" json:"txHoldCount"`
	// system id extension carried in the bridge identifier
	Vlan      uint16 `yaml:"vlan" json:"vlan"`
	LogEnable bool   `yaml:"logEnable" json:"logEnable"`
}

type StpPortConfig struct {
	PortNum  uint16 `yaml:"portNum" json:"portNum"`
	IfIndex  int32  `yaml:"ifIndex" json:"ifIndex"`
	Name     string `yaml:"name" json:"name"`
	Priority uint16 `yaml:"priority" json:"priority"`
	Enable   bool   `yaml:"enable" json:"enable"`
	// zero selects the speed derived cost
	AdminPathCost uint32 `yaml:"adminPathCost" json:"adminPathCost"`
	// Mb/s
	Speed             uint64 `yaml:"speed" json:"speed"`
	AdminPointToPoint int32  `yaml:"adminPointToPoint" json:"adminPointToPoint"`
	AdminEdgePort     bool   `yaml:"adminEdgePort" json:"adminEdgePort"`
	AutoEdgePort      bool   `yaml:"autoEdgePort" json:"autoEdgePort"`
	LogEnable         bool   `yaml:"logEnable" json:"logEnable"`
}

// StpConfig is the daemon configuration file layout
type StpConfig struct {
	Bridge StpBridgeConfig `yaml:"bridge"`
	Ports  []StpPortConfig `yaml:"ports"`
}

func DefaultStpBridgeConfig() StpBridgeConfig {
	return StpBridgeConfig{
		Address:      DefaultBridgeAddress,
		Priority:     BridgePriorityDefault,
		MaxAge:       BridgeMaxAgeDefault,
		HelloTime:    BridgeHelloTimeDefault,
		ForwardDelay: BridgeForwardDelayDefault,
		ForceVersion: ForceVersionRSTP,
		TxHoldCount:  TransmitHoldCountDefault,
	}
}

func DefaultStpPortConfig() StpPortConfig {
	return StpPortConfig{
		Priority:          PortPriorityDefault,
		Enable:            true,
		AdminPointToPoint: int32(StpPointToPointAuto),
		AutoEdgePort:      true,
	}
}

func (c *StpBridgeConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain StpBridgeConfig
	*c = DefaultStpBridgeConfig()
	return value.Decode((*plain)(c))
}

func (c *StpPortConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain StpPortConfig
	*c = DefaultStpPortConfig()
	return value.Decode((*plain)(c))
}

// StpBrgConfigApplyDefaults fills the values for which zero is not a legal
// setting
func StpBrgConfigApplyDefaults(c *StpBridgeConfig) {
	if c.Address == "" {
		c.Address = DefaultBridgeAddress
	}
	if c.MaxAge == 0 {
		c.MaxAge = BridgeMaxAgeDefault
	}
	if c.HelloTime == 0 {
		c.HelloTime = BridgeHelloTimeDefault
	}
	if c.ForwardDelay == 0 {
		c.ForwardDelay = BridgeForwardDelayDefault
	}
	if c.TxHoldCount == 0 {
		c.TxHoldCount = TransmitHoldCountDefault
	}
}

func ParseConfig(data []byte) (*StpConfig, error) {
	c := &StpConfig{Bridge: DefaultStpBridgeConfig()}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if err := StpBrgConfigParamCheck(&c.Bridge); err != nil {
		return nil, err
	}
	seen := make(map[uint16]bool, len(c.Ports))
	for i := range c.Ports {
		if err := StpPortConfigParamCheck(&c.Ports[i]); err != nil {
			return nil, err
		}
		if seen[c.Ports[i].PortNum] {
			return nil, errors.Errorf("Invalid config, port %d listed twice", c.Ports[i].PortNum)
		}
		seen[c.Ports[i].PortNum] = true
	}
	return c, nil
}

func LoadConfig(path string) (*StpConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}

func StpBrgConfigParamCheck(c *StpBridgeConfig) error {

	// Table 17-2 says the values can be 0-61440 in increments of 4096
	if c.Priority%BridgePriorityStep != 0 ||
		c.Priority > BridgePriorityMax {
		return errors.New(fmt.Sprintf("Invalid Bridge Priority %d valid range 0 - %d in steps of %d", c.Priority, BridgePriorityMax, BridgePriorityStep))
	}

	if _, err := ParseMac(c.Address); err != nil {
		return errors.New(fmt.Sprintf("Invalid Bridge Address %q", c.Address))
	}

	// valid values according to Table 17-1
	if c.MaxAge < 6 ||
		c.MaxAge > 40 {
		return errors.New(fmt.Sprintf("Invalid Bridge Max Age %d valid range 6.0 - 40.0", c.MaxAge))
	}

	if c.HelloTime < 1 ||
		c.HelloTime > 2 {
		return errors.New(fmt.Sprintf("Invalid Bridge Hello Time %d valid range 1.0 - 2.0", c.HelloTime))
	}

	if c.ForwardDelay < 4 ||
		c.ForwardDelay > 30 {
		return errors.New(fmt.Sprintf("Invalid Bridge Forward Delay %d valid range 4.0 - 30.0", c.ForwardDelay))
	}

	// 17.14
	if 2*(c.ForwardDelay-1) < c.MaxAge {
		return errors.New(fmt.Sprintf("Invalid Bridge Max Age %d must not exceed 2 x (Forward Delay %d - 1)", c.MaxAge, c.ForwardDelay))
	}
	if c.MaxAge < 2*(c.HelloTime+1) {
		return errors.New(fmt.Sprintf("Invalid Bridge Max Age %d must be at least 2 x (Hello Time %d + 1)", c.MaxAge, c.HelloTime))
	}

	// 0 == STP
	// 2 == RSTP
	// 3 == MSTP currently not support
	if c.ForceVersion != ForceVersionSTP &&
		c.ForceVersion != ForceVersionRSTP {
		return errors.New(fmt.Sprintf("Invalid Bridge Force Version %d valid 0 (STP) 2 (RSTP)", c.ForceVersion))
	}

	if c.TxHoldCount < 1 ||
		c.TxHoldCount > 10 {
		return errors.New(fmt.Sprintf("Invalid Bridge Tx Hold Count %d valid range 1 - 10", c.TxHoldCount))
	}

	if c.Vlan > 4094 {
		return errors.New(fmt.Sprintf("Invalid Bridge Vlan %d valid range 0 - 4094", c.Vlan))
	}
	return nil
}

func StpPortConfigParamCheck(c *StpPortConfig) error {

	if c.PortNum == 0 || c.PortNum > PortNumMask {
		return errors.New(fmt.Sprintf("Invalid Port %d valid range 1 - %d", c.PortNum, PortNumMask))
	}

	// Table 17-2
	if c.Priority%PortPriorityStep != 0 ||
		c.Priority > PortPriorityMax {
		return errors.New(fmt.Sprintf("Invalid Port %d Priority %d valid range 0 - %d in steps of %d", c.PortNum, c.Priority, PortPriorityMax, PortPriorityStep))
	}

	if c.AdminPathCost > uint32(PathCostMax) {
		return errors.New(fmt.Sprintf("Invalid Port %d Path Cost %d valid values 0 (AUTO) or 1 - 200,000,000", c.PortNum, c.AdminPathCost))
	}

	switch PointToPointMac(c.AdminPointToPoint) {
	case StpPointToPointForceTrue, StpPointToPointForceFalse, StpPointToPointAuto:
	default:
		return errors.New(fmt.Sprintf("Invalid Port %d Admin Point To Point %d valid 0 (ForceTrue) 1 (ForceFalse) 2 (Auto)", c.PortNum, c.AdminPointToPoint))
	}

	return nil
}
