// logger.go
package stp

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

var gLogger = log.StandardLogger()

// SetLogger replaces the logger used by the protocol engine
func SetLogger(l *log.Logger) {
	if l != nil {
		gLogger = l
	}
}

func StpLogger(t string, msg string) {

	switch t {
	case "INFO":
		gLogger.Info(msg)
	case "DEBUG":
		gLogger.Debug(msg)
	case "ERROR":
		gLogger.Error(msg)
	case "WARNING":
		gLogger.Warning(msg)
	}
}

func StpLoggerInfo(msg string) {
	StpLogger("INFO", msg)
}

func StpMachineLogger(t string, m string, p int32, b int32, msg string) {
	StpLogger(t, strings.Join([]string{m, fmt.Sprintf("port %d", p), fmt.Sprintf("brg %d", b), msg}, ":"))
}

func StpPortLogger(t string, m string, p *StpPort, msg string) {
	StpMachineLogger(t, m, int32(p.PortNum()), p.BridgeNum(), msg)
}
