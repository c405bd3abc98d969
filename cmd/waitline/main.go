package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/waitline/clock"
	"github.com/teranos/waitline/config"
	"github.com/teranos/waitline/errors"
	"github.com/teranos/waitline/logger"
	"github.com/teranos/waitline/node"
	"github.com/teranos/waitline/rng"
	"github.com/teranos/waitline/transport"
	"github.com/teranos/waitline/wire"
)

// tickInterval is how often the serve loop drains the transport and runs
// a node's timers, independent of any individual *_interval_ms setting.
const tickInterval = 200 * time.Millisecond

var rootCmd = &cobra.Command{
	Use:   "waitline",
	Short: "Distributed admission-control waiting room node",
	Long: `waitline runs one member of a distributed waiting room: a QPID priority
queue spread over a spanning tree, a tree-reduction occupancy count, and a
gossiped membership protocol, all driven by this process's own tick loop.

Examples:
  waitline serve                 run this node using ./waitline.toml
  waitline init-config out.toml  write a starter config file`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json-log")
		return logger.Initialize(jsonOutput)
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-log", false, "emit structured JSON logs instead of console output")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initConfigCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run this node's event loop until interrupted",
	RunE:  runServe,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a starter waitline.toml populated with default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := "waitline.toml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	pterm.Success.Printf("wrote default configuration to %s\n", path)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	id := wire.NodeID(cfg.Node.NodeID)
	tr := transport.NewWSTransport(id)

	mux := http.NewServeMux()
	mux.HandleFunc("/node", func(w http.ResponseWriter, r *http.Request) {
		if err := tr.Accept(w, r); err != nil {
			logger.Warnw("failed to accept peer connection", "error", err)
		}
	})
	httpSrv := &http.Server{Addr: cfg.Node.ListenAddr, Handler: mux}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorw("peer listener stopped", "error", err)
		}
	}()

	for peerID, addr := range dialTargets(id, cfg.Node.Peers) {
		if err := tr.Dial(peerID, addr); err != nil {
			logger.Warnw("failed to dial peer", "peer", peerID, "addr", addr, "error", err)
		}
	}

	n := node.New(id, cfg.Room, clock.System{}, rng.NewTrue(), tr)
	if cfg.Node.JoinAddr != "" {
		if joinID, ok := peerIDForAddr(cfg.Node.Peers, cfg.Node.JoinAddr); ok {
			n.JoinAt(joinID)
		} else {
			logger.Warnw("join_addr set but not found in peers list", "join_addr", cfg.Node.JoinAddr)
		}
	}

	pterm.Info.Printf("node %d listening on %s\n", id, cfg.Node.ListenAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.ReceiveAll()
			n.Tick(clock.System{}.Now())
		case <-sigCh:
			pterm.Info.Println("shutting down")
			if err := tr.Close(); err != nil {
				logger.Warnw("error closing transport", "error", err)
			}
			return httpSrv.Close()
		}
	}
}

// dialTargets returns the (nodeID, addr) pairs this node should dial out
// to on startup: every peer with a higher id than self, mirroring
// WSTransport's higher-id-dials convention for who initiates a link.
func dialTargets(self wire.NodeID, peers []string) map[wire.NodeID]string {
	out := make(map[wire.NodeID]string)
	for i, addr := range peers {
		peerID := wire.NodeID(i)
		if peerID > self && addr != "" {
			out[peerID] = addr
		}
	}
	return out
}

func peerIDForAddr(peers []string, addr string) (wire.NodeID, bool) {
	for i, a := range peers {
		if a == addr {
			return wire.NodeID(i), true
		}
	}
	return 0, false
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
