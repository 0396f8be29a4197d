package cmd

import (
	"fmt"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/util"

	"github.com/spf13/cobra"
)

var readCount string

// readCmd reads a single 32-bit word
var readCmd = &cobra.Command{
	Use:   "read <address>",
	Short: "Read a 32-bit word from target memory",
	Long: `Attach to the target and read one 32-bit word through its MEM-AP.

Example:
  adiv5probe read 20000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return readMemory(args[0])
	},
}

// writeCmd writes a single 32-bit word
var writeCmd = &cobra.Command{
	Use:   "write <address> <value>",
	Short: "Write a 32-bit word to target memory",
	Long: `Attach to the target and write one 32-bit word through its MEM-AP.

Example:
  adiv5probe write 20000000 deadbeef`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeMemory(args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)

	readCmd.Flags().StringVar(&readCount, "count", "4", "Number of bytes to read (hex); reads one word when 4")
}

func readMemory(addressArg string) error {
	addr, err := util.ParseHexAddress(addressArg)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	count, err := util.ParseHexSize(readCount)
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

	if count == 4 {
		word := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
		fmt.Printf("0x%08X: 0x%08X\n", addr, word)
		return nil
	}
	util.HexDump(data, addr)
	return nil
}

func writeMemory(addressArg, valueArg string) error {
	addr, err := util.ParseHexAddress(addressArg)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	value, err := util.ParseHexAddress(valueArg)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
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

	data := []byte{
		byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24),
	}
	if err := adiv5.MemWrite(ap, addr, data, 4); err != nil {
		return fmt.Errorf("failed to write memory: %w", err)
	}

	printInfo("Wrote 0x%08X to 0x%08X\n", value, addr)
	return nil
}
