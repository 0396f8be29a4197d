package cmd

import (
	"fmt"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/util"

	"github.com/spf13/cobra"
)

var (
	dumpAddress string
	dumpCount   string
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Read and display memory from the attached target",
	Long: `Attach to the target and read a block of memory through its MEM-AP,
displaying it in hex dump format.

Example:
  adiv5probe dump --address 20000000 --count 100`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dumpAddress == "" {
			dumpAddress = cfg.Address
		}
		if dumpCount == "" {
			dumpCount = "10"
		}

		addr, err := util.ParseHexAddress(dumpAddress)
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
		count, err := util.ParseHexSize(dumpCount)
		if err != nil {
			return fmt.Errorf("invalid count: %w", err)
		}

		a, err := connectAndAttach()
		if err != nil {
			return err
		}
		defer a.Close()

		ap, err := firstAP(a)
		if err != nil {
			return err
		}

		data := make([]byte, count)
		if err := adiv5.MemRead(ap, data, addr, uint32(count)); err != nil {
			return fmt.Errorf("failed to read memory: %w", err)
		}

		util.HexDump(data, addr)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVar(&dumpAddress, "address", "", "Starting address (hex, e.g., 20000000)")
	dumpCmd.Flags().StringVar(&dumpCount, "count", "10", "Number of bytes to read (hex, e.g., 100)")
}
