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

// main
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	stp "github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/protocol"
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/rpc"
	"github.com/pawelmaslanka/SpanningTreeProtocol-sub000/stp/stplinux"
)

var (
	configPath string
	logLevel   string
	httpAddr   string
	tick       time.Duration
	noKernel   bool
)

// nullBridge stands in for the kernel when stpd runs without one
type nullBridge struct{}

func (nullBridge) FlushFdb(num uint16) error {
	log.Debugf("port %d flush", num)
	return nil
}

func (nullBridge) SetForwarding(num uint16, ena bool) error {
	log.Debugf("port %d forwarding %v", num, ena)
	return nil
}

func (nullBridge) SetLearning(num uint16, ena bool) error {
	log.Debugf("port %d learning %v", num, ena)
	return nil
}

func (nullBridge) SendOutBpdu(num uint16, bpdu []uint8) error {
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	stp.SetLogger(log.StandardLogger())

	c := &stp.StpConfig{Bridge: stp.DefaultStpBridgeConfig()}
	if configPath != "" {
		if c, err = stp.LoadConfig(configPath); err != nil {
			return err
		}
	}

	var (
		hw     stp.HwIntf = nullBridge{}
		kernel *stplinux.Bridge
		binder rpc.PortBinder
	)
	if !noKernel {
		kernel = stplinux.NewBridge()
		hw, binder = kernel, kernel
		for _, pc := range c.Ports {
			if pc.Name == "" {
				continue
			}
			if err := kernel.AddPort(pc.PortNum, pc.Name); err != nil {
				return err
			}
		}
	}

	m, err := stp.NewManager(&c.Bridge, hw)
	if err != nil {
		return err
	}
	for _, pc := range c.Ports {
		if err := m.AddPort(pc); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	if err := stp.RegisterMetrics(reg); err != nil {
		return errors.Wrap(err, "register metrics")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    httpAddr,
		Handler: rpc.NewRouter(rpc.NewSTPDServiceHandler(m, binder), reg),
	}
	go func() {
		log.Infof("Serving management api on %s", httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("management api: %v", err)
			stop()
		}
	}()

	if kernel != nil {
		if err := kernel.Start(ctx, m); err != nil {
			return err
		}
	}

	log.Infof("Starting STP daemon, bridge %s", c.Bridge.Address)
	err = m.Run(ctx, tick)

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdown)
	if kernel != nil {
		kernel.Wait()
	}
	if errors.Cause(err) == context.Canceled {
		log.Infof("Exiting")
		return nil
	}
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "stpd",
		Short:        "Rapid Spanning Tree Protocol daemon",
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "yaml configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warning, error)")
	rootCmd.PersistentFlags().StringVar(&httpAddr, "http-addr", ":6790", "management and metrics bind address")
	rootCmd.PersistentFlags().DurationVar(&tick, "tick", stp.TickIntervalDefault, "protocol tick interval")
	rootCmd.PersistentFlags().BoolVar(&noKernel, "no-kernel", false, "run the protocol without driving a kernel bridge")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
