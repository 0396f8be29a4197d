package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"adiv5probe/pkg/connection"

	"github.com/spf13/cobra"
)

// tcpBridgeCmd represents the tcp-bridge command
var tcpBridgeCmd = &cobra.Command{
	Use:   "tcp-bridge <host:port>",
	Short: "Start a TCP-to-serial relay for the DP transport wire protocol",
	Long: `Start a TCP server that relays the DP register transaction framing
(pkg/transport) between TCP clients and the configured serial probe adapter.

Useful for running the probe adapter on one machine while driving discovery
and flash commands from another.

Example:
  adiv5probe tcp-bridge localhost:2560
  adiv5probe tcp-bridge 0.0.0.0:2560  # Listen on all interfaces`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return startTCPBridge(args[0])
	},
}

func init() {
	rootCmd.AddCommand(tcpBridgeCmd)
}

func startTCPBridge(hostPort string) error {
	if err := validateConnectionFlags(); err != nil {
		return err
	}

	parts := strings.Split(hostPort, ":")
	if len(parts) != 2 {
		return fmt.Errorf("invalid host:port format (expected HOST:PORT)")
	}

	host := parts[0]
	port, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	serialPort := cfg.Port
	if portFlag != "" {
		serialPort = portFlag
	}

	printInfo("Starting TCP bridge on %s:%d -> %s\n", host, port, serialPort)
	printInfo("Serial settings: %d baud\n", cfg.DataRate)

	bridge := connection.NewBridge(host, port, serialPort, cfg.DataRate, log)
	return bridge.Listen()
}
