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

// config_test.go
package stp

import (
	"os"
	"path/filepath"
	"testing"
)

func StpBridgeConfigSetup() *StpBridgeConfig {
	c := DefaultStpBridgeConfig()
	c.Address = "00:55:55:55:55:55"
	c.Priority = 0x1000
	c.Vlan = 100
	return &c
}

func StpPortConfigSetup() *StpPortConfig {
	c := UsedForTestOnlyPortConfig(1)
	return &c
}

func TestStpBridgeParamDefaults(t *testing.T) {
	c := StpBridgeConfigSetup()
	if err := StpBrgConfigParamCheck(c); err != nil {
		t.Error("ERROR: default bridge config should be valid", err)
	}
}

func TestStpBridgeParamPriority(t *testing.T) {
	c := StpBridgeConfigSetup()

	// valid values according to 802.1D table 17-2
	for i := uint16(0); i <= 15; i++ {
		c.Priority = 4096 * i
		if err := StpBrgConfigParamCheck(c); err != nil {
			t.Error("ERROR: valid priority was set should not have errored", c.Priority, err)
		}
	}
	for _, v := range []uint16{1, 4095, 61441} {
		c.Priority = v
		if err := StpBrgConfigParamCheck(c); err == nil {
			t.Error("ERROR: an invalid priority was set should have errored", c.Priority)
		}
	}
}

func TestStpBridgeParamTimes(t *testing.T) {
	for _, tc := range []struct {
		maxAge, hello, fwd uint16
		valid              bool
	}{
		{20, 2, 15, true},
		{6, 1, 4, true},
		{40, 2, 30, true},
		{5, 1, 15, false},
		{41, 2, 30, false},
		{20, 0, 15, false},
		{20, 3, 15, false},
		{20, 2, 3, false},
		{20, 2, 31, false},
		// 2 x (fwd - 1) < maxAge
		{20, 2, 10, false},
	} {
		c := StpBridgeConfigSetup()
		c.MaxAge, c.HelloTime, c.ForwardDelay = tc.maxAge, tc.hello, tc.fwd
		err := StpBrgConfigParamCheck(c)
		if tc.valid && err != nil {
			t.Error("ERROR: valid times should not have errored", tc, err)
		}
		if !tc.valid && err == nil {
			t.Error("ERROR: invalid times should have errored", tc)
		}
	}
}

func TestStpBridgeParamForceVersion(t *testing.T) {
	c := StpBridgeConfigSetup()
	for _, v := range []int32{ForceVersionSTP, ForceVersionRSTP} {
		c.ForceVersion = v
		if err := StpBrgConfigParamCheck(c); err != nil {
			t.Error("ERROR: valid force version should not have errored", v, err)
		}
	}
	for _, v := range []int32{1, 3} {
		c.ForceVersion = v
		if err := StpBrgConfigParamCheck(c); err == nil {
			t.Error("ERROR: an invalid force version was set should have errored", v)
		}
	}
}

func TestStpBridgeParamTxHoldCountAndAddress(t *testing.T) {
	c := StpBridgeConfigSetup()
	c.TxHoldCount = 11
	if err := StpBrgConfigParamCheck(c); err == nil {
		t.Error("ERROR: an invalid tx hold count was set should have errored", c.TxHoldCount)
	}

	c = StpBridgeConfigSetup()
	c.Address = "zz"
	if err := StpBrgConfigParamCheck(c); err == nil {
		t.Error("ERROR: an invalid address was set should have errored", c.Address)
	}

	c = StpBridgeConfigSetup()
	c.Vlan = 4095
	if err := StpBrgConfigParamCheck(c); err == nil {
		t.Error("ERROR: an invalid vlan was set should have errored", c.Vlan)
	}
}

func TestStpPortParamPortNum(t *testing.T) {
	p := StpPortConfigSetup()
	for _, v := range []uint16{0, PortNumMask + 1} {
		p.PortNum = v
		if err := StpPortConfigParamCheck(p); err == nil {
			t.Error("ERROR: an invalid port number was set should have errored", v)
		}
	}
}

func TestStpPortParamPriority(t *testing.T) {
	p := StpPortConfigSetup()

	// valid values according to 802.1D table 17-2
	for i := uint16(0); i <= 240/16; i++ {
		p.Priority = 16 * i
		if err := StpPortConfigParamCheck(p); err != nil {
			t.Error("ERROR: valid priority was set should not have errored", p.Priority, err)
		}
	}
	for _, v := range []uint16{1, 241} {
		p.Priority = v
		if err := StpPortConfigParamCheck(p); err == nil {
			t.Error("ERROR: an invalid priority was set should have errored", p.Priority)
		}
	}
}

func TestStpPortParamAdminPathCost(t *testing.T) {
	p := StpPortConfigSetup()
	p.AdminPathCost = 200000001
	if err := StpPortConfigParamCheck(p); err == nil {
		t.Error("ERROR: an invalid path cost was set should have errored", p.AdminPathCost)
	}
	p.AdminPathCost = 200000000
	if err := StpPortConfigParamCheck(p); err != nil {
		t.Error("ERROR: valid path cost was set should not have errored", p.AdminPathCost, err)
	}
}

func TestStpPortParamAdminPointToPoint(t *testing.T) {
	p := StpPortConfigSetup()
	p.AdminPointToPoint = 3
	if err := StpPortConfigParamCheck(p); err == nil {
		t.Error("ERROR: an invalid point to point setting should have errored", p.AdminPointToPoint)
	}
}

const testConfigYaml = `
bridge:
  address: "00:11:22:33:44:55"
  priority: 4096
  forceVersion: 2
ports:
  - portNum: 1
    name: eth1
    speed: 1000
  - portNum: 2
    name: eth2
    adminEdgePort: true
    adminPathCost: 5
`

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(testConfigYaml))
	if err != nil {
		t.Error("ERROR: failed to parse config", err)
		t.FailNow()
	}
	if c.Bridge.Priority != 4096 ||
		c.Bridge.Address != "00:11:22:33:44:55" {
		t.Error("ERROR: bridge values not parsed", c.Bridge)
	}
	// omitted values take their defaults
	if c.Bridge.MaxAge != BridgeMaxAgeDefault ||
		c.Bridge.HelloTime != BridgeHelloTimeDefault ||
		c.Bridge.ForwardDelay != BridgeForwardDelayDefault ||
		c.Bridge.TxHoldCount != TransmitHoldCountDefault {
		t.Error("ERROR: bridge defaults not applied", c.Bridge)
	}
	if len(c.Ports) != 2 {
		t.Error("ERROR: expected two ports", c.Ports)
		t.FailNow()
	}
	if c.Ports[0].Priority != PortPriorityDefault ||
		!c.Ports[0].Enable ||
		!c.Ports[0].AutoEdgePort ||
		c.Ports[0].AdminPointToPoint != int32(StpPointToPointAuto) {
		t.Error("ERROR: port defaults not applied", c.Ports[0])
	}
	if !c.Ports[1].AdminEdgePort || c.Ports[1].AdminPathCost != 5 {
		t.Error("ERROR: port values not parsed", c.Ports[1])
	}
}

func TestParseConfigInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":         "bridge: [",
		"bridge":         "bridge:\n  priority: 1\n",
		"port":           "ports:\n  - portNum: 0\n",
		"duplicate port": "ports:\n  - portNum: 1\n  - portNum: 1\n",
	} {
		if _, err := ParseConfig([]byte(data)); err == nil {
			t.Error("ERROR: invalid config should have errored", name)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stpd.yaml")
	if err := os.WriteFile(path, []byte(testConfigYaml), 0644); err != nil {
		t.Error("ERROR: failed to write config", err)
		t.FailNow()
	}
	c, err := LoadConfig(path)
	if err != nil || len(c.Ports) != 2 {
		t.Error("ERROR: failed to load config", err)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("ERROR: missing config file should have errored")
	}
}
