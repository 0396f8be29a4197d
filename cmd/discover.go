package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Attach a debug port and print its APs and discovered targets",
	Long: `Attach to the configured debug port, enumerate its Access Ports, walk
the CoreSight component tree on every usable MEM-AP, and print a summary of
the APs found and the targets each one resolved to.

Pass --debug for a full trace of the ROM-table walk (component-by-component
CIDR/PIDR/DEVARCH decoding) as it happens.

Example:
  adiv5probe discover
  adiv5probe discover --debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return discover()
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func discover() error {
	a, err := connectAndAttach()
	if err != nil {
		return err
	}
	defer a.Close()

	dp := a.sess.DP
	fmt.Printf("DP IDCODE: 0x%08X (DPv%d)\n", dp.IDCode(), dp.Version())
	fmt.Printf("APs found: %d\n", len(a.sess.APs))
	for _, ap := range a.sess.APs {
		status := "no BASE"
		if ap.BasePresent() {
			status = "BASE present"
		}
		fmt.Printf("  AP%d: %s\n", ap.APSel(), status)
	}

	fmt.Printf("Targets discovered: %d\n", len(a.sess.Targets))
	for _, t := range a.sess.Targets {
		fmt.Printf("  - %s (flash regions: %d, ram regions: %d, commands: %d)\n",
			t.DriverTag, len(t.Flash), len(t.RAM), len(t.Commands))
	}
	if len(a.sess.Targets) == 0 {
		fmt.Println("  (none matched; try --debug to see the raw ROM-table walk)")
	}

	return nil
}
