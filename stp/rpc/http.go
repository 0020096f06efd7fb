// http.go management interface of the daemon
package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	stp "github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/protocol"
)

// Manager is the part of stp.Manager served over http
type Manager interface {
	BridgeStatus() stp.BridgeStatus
	PortStatus() []stp.PortStatus
	Port(num uint16) (stp.PortStatus, bool)
	AddPort(c stp.StpPortConfig) error
	RemovePort(num uint16) error
	SetPortEnabled(num uint16, ena bool) error
	Mcheck(num uint16) error
	EnableLogging(ena bool)
}

// PortBinder attaches and detaches the interface behind a port
type PortBinder interface {
	AddPort(num uint16, ifname string) error
	RemovePort(num uint16)
}

type STPDServiceHandler struct {
	m  Manager
	hw PortBinder
}

// NewSTPDServiceHandler serves m. hw may be nil when ports have no
// interface behind them.
func NewSTPDServiceHandler(m Manager, hw PortBinder) *STPDServiceHandler {
	return &STPDServiceHandler{m: m, hw: hw}
}

func badRequest(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
	log.Infof("rpc: %v", err)
}

func notFound(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("rpc: encode response: %v", err)
	}
}

func portNum(r *http.Request) (uint16, error) {
	n, err := strconv.ParseUint(mux.Vars(r)["num"], 10, 16)
	if err != nil {
		return 0, errors.Wrap(err, "port number")
	}
	return uint16(n), nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.FormValue(name)
	if v == "" {
		return false, errors.Errorf("missing %s", name)
	}
	return strconv.ParseBool(v)
}

func (h *STPDServiceHandler) status(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Cause(err) == stp.ErrUnknownPort:
		notFound(w, err)
	default:
		badRequest(w, err)
	}
}

// HandleHTTP registers the management routes on router
func (h *STPDServiceHandler) HandleHTTP(router *mux.Router) {
	router.Methods("GET").Path("/bridge").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.m.BridgeStatus())
	})

	router.Methods("GET").Path("/ports").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.m.PortStatus())
	})

	router.Methods("GET").Path("/ports/{num}").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num, err := portNum(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		ps, ok := h.m.Port(num)
		if !ok {
			notFound(w, fmt.Errorf("port %d not found", num))
			return
		}
		writeJSON(w, ps)
	})

	router.Methods("POST").Path("/ports/{num}").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num, err := portNum(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		c := stp.DefaultStpPortConfig()
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
				badRequest(w, errors.Wrap(err, "port config"))
				return
			}
		}
		c.PortNum = num
		if err := h.m.AddPort(c); err != nil {
			badRequest(w, err)
			return
		}
		// until bound the port runs with its bridge interface calls failing
		if h.hw != nil && c.Name != "" {
			if err := h.hw.AddPort(num, c.Name); err != nil {
				h.m.RemovePort(num)
				badRequest(w, err)
				return
			}
		}
		w.WriteHeader(http.StatusCreated)
	})

	router.Methods("DELETE").Path("/ports/{num}").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num, err := portNum(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		err = h.m.RemovePort(num)
		if err == nil && h.hw != nil {
			h.hw.RemovePort(num)
		}
		h.status(w, err)
	})

	router.Methods("PUT").Path("/ports/{num}/enable").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num, err := portNum(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		ena, err := boolParam(r, "value")
		if err != nil {
			badRequest(w, err)
			return
		}
		h.status(w, h.m.SetPortEnabled(num, ena))
	})

	router.Methods("POST").Path("/ports/{num}/mcheck").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		num, err := portNum(r)
		if err != nil {
			badRequest(w, err)
			return
		}
		h.status(w, h.m.Mcheck(num))
	})

	router.Methods("PUT").Path("/logging").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ena, err := boolParam(r, "value")
		if err != nil {
			badRequest(w, err)
			return
		}
		h.m.EnableLogging(ena)
		w.WriteHeader(http.StatusNoContent)
	})
}

// NewRouter builds the daemon router, with /metrics served from g
func NewRouter(h *STPDServiceHandler, g prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	h.HandleHTTP(router)
	if g != nil {
		router.Methods("GET").Path("/metrics").Handler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	return router
}
