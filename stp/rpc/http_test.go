package rpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	stp "github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/protocol"
)

type nullHw struct{}

func (nullHw) FlushFdb(uint16) error               { return nil }
func (nullHw) SetForwarding(uint16, bool) error    { return nil }
func (nullHw) SetLearning(uint16, bool) error      { return nil }
func (nullHw) SendOutBpdu(uint16, []uint8) error   { return nil }

type fakeBinder struct {
	bound map[uint16]string
}

func (f *fakeBinder) AddPort(num uint16, ifname string) error {
	f.bound[num] = ifname
	return nil
}

func (f *fakeBinder) RemovePort(num uint16) {
	delete(f.bound, num)
}

func newTestServer(t *testing.T) (*stp.Manager, *fakeBinder, *httptest.Server) {
	c := stp.DefaultStpBridgeConfig()
	m, err := stp.NewManager(&c, nullHw{})
	require.NoError(t, err)
	fb := &fakeBinder{bound: make(map[uint16]string)}
	reg := prometheus.NewRegistry()
	require.NoError(t, stp.RegisterMetrics(reg))
	srv := httptest.NewServer(NewRouter(NewSTPDServiceHandler(m, fb), reg))
	t.Cleanup(srv.Close)
	return m, fb, srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestBridgeStatus(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/bridge", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bs stp.BridgeStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bs))
	require.True(t, bs.IsRoot)
	require.Equal(t, bs.BridgeId, bs.RootId)
	require.Equal(t, 0, bs.Ports)
}

func TestPortLifecycle(t *testing.T) {
	m, fb, srv := newTestServer(t)

	resp := do(t, "POST", srv.URL+"/ports/3", `{"name":"eth3","speed":1000}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "eth3", fb.bound[3])

	// duplicate
	resp = do(t, "POST", srv.URL+"/ports/3", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// snapshot is refreshed once the queue is processed
	resp = do(t, "GET", srv.URL+"/ports/3", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	m.Process()
	resp = do(t, "GET", srv.URL+"/ports/3", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ps stp.PortStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ps))
	require.Equal(t, uint16(3), ps.PortNum)
	require.Equal(t, "eth3", ps.Name)
	require.Equal(t, uint32(20000), ps.PathCost)

	resp = do(t, "GET", srv.URL+"/ports", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []stp.PortStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 1)

	resp = do(t, "PUT", srv.URL+"/ports/3/enable?value=false", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, "PUT", srv.URL+"/ports/3/enable", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, "POST", srv.URL+"/ports/3/mcheck", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, "DELETE", srv.URL+"/ports/3", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.NotContains(t, fb.bound, uint16(3))

	resp = do(t, "DELETE", srv.URL+"/ports/3", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBadPortNumber(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/ports/abc", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, "POST", srv.URL+"/ports/0", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = do(t, "POST", srv.URL+"/ports/9/mcheck", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	_, _, srv := newTestServer(t)

	resp := do(t, "GET", srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
