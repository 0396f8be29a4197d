package cmd

import (
	"fmt"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/util"

	"github.com/spf13/cobra"
)

var labelFile string

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <label>",
	Short: "Display memory at label's address",
	Long: `Look up a label in the label file and display memory at that address.

The label file holds entries like:
  LABEL = $ADDRESS

Example:
  adiv5probe lookup my_variable --label-file program.lbl --count 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return lookupLabel(args[0])
	},
}

// derefCmd represents the dereference command
var derefCmd = &cobra.Command{
	Use:   "deref <label>",
	Short: "Dereference a 32-bit pointer at label and display target memory",
	Long: `Look up a label in the label file, read the 32-bit little-endian pointer
stored there, and display memory at the dereferenced address.

Example:
  adiv5probe deref ptr_variable --label-file program.lbl --count 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return derefLabel(args[0])
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(derefCmd)

	lookupCmd.Flags().StringVar(&labelFile, "label-file", "", "Label file")
	lookupCmd.Flags().StringVar(&dumpCount, "count", "10", "Number of bytes to display (hex)")

	derefCmd.Flags().StringVar(&labelFile, "label-file", "", "Label file")
	derefCmd.Flags().StringVar(&dumpCount, "count", "10", "Number of bytes to display (hex)")
}

func resolveLabel(label string) (uint32, uint16, error) {
	lblFile := labelFile
	if lblFile == "" {
		lblFile = cfg.LabelFile
	}

	labels := util.NewLabelFile()
	if err := labels.Load(lblFile); err != nil {
		return 0, 0, fmt.Errorf("failed to load label file: %w", err)
	}

	addressHex, err := labels.Lookup(label)
	if err != nil {
		return 0, 0, err
	}
	address, err := util.ParseHexAddress(addressHex)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid address for label '%s': %w", label, err)
	}
	count, err := util.ParseHexSize(dumpCount)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid count: %w", err)
	}
	return address, count, nil
}

// lookupLabel looks up a label and displays memory at that address
func lookupLabel(label string) error {
	address, count, err := resolveLabel(label)
	if err != nil {
		return err
	}
	printInfo("Label '%s' -> Address 0x%X\n", label, address)

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
	if err := adiv5.MemRead(ap, data, address, uint32(count)); err != nil {
		return fmt.Errorf("failed to read memory: %w", err)
	}

	util.HexDump(data, address)
	return nil
}

// derefLabel dereferences a pointer at label and displays target memory
func derefLabel(label string) error {
	address, count, err := resolveLabel(label)
	if err != nil {
		return err
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

	printInfo("Label '%s' -> Pointer at 0x%X\n", label, address)

	var ptrBytes [4]byte
	if err := adiv5.MemRead(ap, ptrBytes[:], address, 4); err != nil {
		return fmt.Errorf("failed to read pointer: %w", err)
	}
	targetAddress := uint32(ptrBytes[0]) | uint32(ptrBytes[1])<<8 |
		uint32(ptrBytes[2])<<16 | uint32(ptrBytes[3])<<24

	printInfo("Pointer value: 0x%08X\n", targetAddress)

	data := make([]byte, count)
	if err := adiv5.MemRead(ap, data, targetAddress, uint32(count)); err != nil {
		return fmt.Errorf("failed to read dereferenced memory: %w", err)
	}

	util.HexDump(data, targetAddress)
	return nil
}
