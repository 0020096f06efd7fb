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

// priority.go
package stp

import (
	"fmt"
)

// PriorityVector 17.5, 17.6
type PriorityVector struct {
	RootBridgeId       BridgeId
	RootPathCost       PathCost
	DesignatedBridgeId BridgeId
	DesignatedPortId   PortId
}

// Compare orders vectors lexicographically, -1 meaning pv is the better vector
func (pv PriorityVector) Compare(o PriorityVector) int {
	if c := pv.RootBridgeId.Compare(o.RootBridgeId); c != 0 {
		return c
	}
	if pv.RootPathCost != o.RootPathCost {
		if pv.RootPathCost < o.RootPathCost {
			return -1
		}
		return 1
	}
	if c := pv.DesignatedBridgeId.Compare(o.DesignatedBridgeId); c != 0 {
		return c
	}
	return pv.DesignatedPortId.Compare(o.DesignatedPortId)
}

func (pv PriorityVector) Less(o PriorityVector) bool {
	return pv.Compare(o) < 0
}

func (pv PriorityVector) Equal(o PriorityVector) bool {
	return pv == o
}

func (pv PriorityVector) BetterOrSame(o PriorityVector) bool {
	return pv.Compare(o) <= 0
}

// SameSource is true when both vectors were sent by the same designated
// bridge and port
func (pv PriorityVector) SameSource(o PriorityVector) bool {
	return pv.DesignatedBridgeId.Address == o.DesignatedBridgeId.Address &&
		pv.DesignatedPortId.Num == o.DesignatedPortId.Num
}

// IsSuperiorTo 17.6, a message priority vector is superior to the port
// priority vector when it is better, or when it is a changed vector from the
// same designated port that sent the one being replaced
func (pv PriorityVector) IsSuperiorTo(o PriorityVector) bool {
	return pv.Less(o) || (pv.SameSource(o) && !pv.Equal(o))
}

// AddCost returns the vector as seen through a port with the given cost
func (pv PriorityVector) AddCost(c PathCost) PriorityVector {
	pv.RootPathCost = pv.RootPathCost.Add(c)
	return pv
}

func (pv PriorityVector) String() string {
	return fmt.Sprintf("{root %s cost %d bridge %s port %s}",
		pv.RootBridgeId, pv.RootPathCost, pv.DesignatedBridgeId, pv.DesignatedPortId)
}

// Times 17.13
type Times struct {
	ForwardingDelay uint16
	HelloTime       uint16
	MaxAge          uint16
	MessageAge      uint16
}

func (t Times) String() string {
	return fmt.Sprintf("{msgAge %d maxAge %d hello %d fwdDelay %d}",
		t.MessageAge, t.MaxAge, t.HelloTime, t.ForwardingDelay)
}
