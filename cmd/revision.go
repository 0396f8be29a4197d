package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var revisionCmd = &cobra.Command{
	Use:   "revision",
	Short: "Query the attached debug port's IDCODE and version",
	Long: `Attach to the debug port and print its DPIDR IDCODE, DP version,
and (on DPv2) TARGETID.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := connectAndAttach()
		if err != nil {
			return err
		}
		defer a.Close()

		dp := a.sess.DP
		fmt.Printf("IDCODE:   0x%08X\n", dp.IDCode())
		fmt.Printf("Version:  DPv%d\n", dp.Version())
		if dp.Version() >= 2 {
			fmt.Printf("TARGETID: 0x%08X\n", dp.TargetID())
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(revisionCmd)
}
