// priority_test.go
package stp

import (
	"testing"
)

func testVector(root uint8, cost PathCost, bridge uint8, port uint16) PriorityVector {
	return PriorityVector{
		RootBridgeId:       CreateBridgeId(Mac{0, 0, 0, 0, 0, root}, 32768, 0),
		RootPathCost:       cost,
		DesignatedBridgeId: CreateBridgeId(Mac{0, 0, 0, 0, 0, bridge}, 32768, 0),
		DesignatedPortId:   CreatePortId(port, 0x80),
	}
}

func TestPriorityVectorCompare(t *testing.T) {
	base := testVector(2, 100, 5, 3)

	better := []PriorityVector{
		testVector(1, 500, 9, 9),
		testVector(2, 99, 9, 9),
		testVector(2, 100, 4, 9),
		testVector(2, 100, 5, 2),
	}
	for _, v := range better {
		if !v.Less(base) {
			t.Error("Expected vector to be better", v, base)
		}
		if base.BetterOrSame(v) {
			t.Error("Expected base to be worse", base, v)
		}
		if v.Compare(base) != -1 || base.Compare(v) != 1 {
			t.Error("Compare not antisymmetric", v, base)
		}
	}

	if !base.BetterOrSame(base) || base.Less(base) || !base.Equal(base) {
		t.Error("Vector not equal to itself", base)
	}
}

func TestPriorityVectorSuperior(t *testing.T) {
	port := testVector(2, 100, 5, 3)

	// better information is always superior
	if !testVector(1, 100, 5, 3).IsSuperiorTo(port) {
		t.Error("Better vector should be superior")
	}

	// worse information from the same designated port replaces what it said
	// before
	worseSameSource := testVector(3, 200, 5, 3)
	if !worseSameSource.IsSuperiorTo(port) {
		t.Error("Changed vector from the same port should be superior")
	}

	// worse information from someone else is not
	if testVector(3, 200, 6, 3).IsSuperiorTo(port) {
		t.Error("Worse vector from another bridge should not be superior")
	}

	// the same vector is repeated, not superior
	if port.IsSuperiorTo(port) {
		t.Error("Repeated vector should not be superior")
	}

	// the source does not depend on the port priority bits
	p := port
	p.DesignatedPortId = CreatePortId(3, 0x10)
	if !p.SameSource(port) {
		t.Error("Expected same source", p, port)
	}
}

func TestPriorityVectorAddCost(t *testing.T) {
	v := testVector(2, 100, 5, 3)
	w := v.AddCost(20000)
	if w.RootPathCost != 20100 || v.RootPathCost != 100 {
		t.Error("AddCost should return a copy with the cost added", v, w)
	}
}
