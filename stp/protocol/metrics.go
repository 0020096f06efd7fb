// metrics.go
package stp

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	bpduRx = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stp_bpdu_received_total",
			Help: "BPDUs received, by type.",
		},
		[]string{"type"},
	)
	bpduTx = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stp_bpdu_transmitted_total",
			Help: "BPDUs handed to the bridge interface for transmission, by type.",
		},
		[]string{"type"},
	)
	hwErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stp_bridge_interface_errors_total",
			Help: "Failed bridge interface requests, by operation.",
		},
		[]string{"op"},
	)
	topologyChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stp_topology_changes_total",
			Help: "Topology changes detected by this bridge.",
		},
	)
	portRole = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stp_port_role",
			Help: "Set to 1 for the current role of each port.",
		},
		[]string{"port", "role"},
	)
	portForwarding = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stp_port_forwarding",
			Help: "1 when the port is forwarding.",
		},
		[]string{"port"},
	)
)

// Collectors returns the collectors exported by the protocol engine
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{bpduRx, bpduTx, hwErrors, topologyChanges, portRole, portForwarding}
}

// RegisterMetrics registers the protocol collectors with r
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func updatePortMetrics(p *StpPort) {
	num := strconv.Itoa(int(p.PortNum()))
	for role, str := range PortRoleStrMap {
		v := 0.0
		if role == p.Role {
			v = 1
		}
		portRole.WithLabelValues(num, str).Set(v)
	}
	fwd := 0.0
	if p.Forwarding {
		fwd = 1
	}
	portForwarding.WithLabelValues(num).Set(fwd)
}

func deletePortMetrics(p *StpPort) {
	num := strconv.Itoa(int(p.PortNum()))
	for _, str := range PortRoleStrMap {
		portRole.DeleteLabelValues(num, str)
	}
	portForwarding.DeleteLabelValues(num)
}
