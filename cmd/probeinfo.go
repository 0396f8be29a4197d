package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var probeInfoCmd = &cobra.Command{
	Use:   "probe-info",
	Short: "Print the attached debug port's IDCODE, DPIDR, and TARGETID",
	Long: `Attach to the debug port and dump its raw identification registers:
IDCODE (DPIDR), decoded version, and (on DPv2) TARGETID.

Example:
  adiv5probe probe-info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return probeInfo()
	},
}

func init() {
	rootCmd.AddCommand(probeInfoCmd)
}

func probeInfo() error {
	a, err := connectAndAttach()
	if err != nil {
		return err
	}
	defer a.Close()

	dp := a.sess.DP
	fmt.Printf("DPIDR:    0x%08X\n", dp.IDCode())
	fmt.Printf("Version:  DPv%d\n", dp.Version())
	if dp.Version() >= 2 {
		fmt.Printf("TARGETID: 0x%08X\n", dp.TargetID())
	}
	fmt.Printf("Faulted:  %v\n", dp.Faulted())

	return nil
}
