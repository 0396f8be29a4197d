package cmd

import (
	"fmt"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/loader"
	"adiv5probe/pkg/util"

	"github.com/spf13/cobra"
)

var uploadAddress string

// uploadCmd represents the Intel HEX upload command
var uploadCmd = &cobra.Command{
	Use:   "upload <hexfile>",
	Short: "Upload Intel HEX format file to target memory",
	Long: `Upload a program in Intel HEX format to the attached target, writing
each record through the MEM-AP.

Example:
  adiv5probe upload firmware.hex`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadFile(args[0], "intelhex")
	},
}

// uploadSrecCmd represents the SREC upload command
var uploadSrecCmd = &cobra.Command{
	Use:   "upload-srec <srecfile>",
	Short: "Upload Motorola SREC format file to target memory",
	Long: `Upload a program in Motorola SREC format to the attached target.

Example:
  adiv5probe upload-srec firmware.srec`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadFile(args[0], "srec")
	},
}

// uploadWdcCmd represents the WDC binary upload command
var uploadWdcCmd = &cobra.Command{
	Use:   "upload-wdc <wdcfile>",
	Short: "Upload WDCTools binary format file to target memory",
	Long: `Upload a program in WDCTools binary format to the attached target.

Example:
  adiv5probe upload-wdc firmware.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadFile(args[0], "wdc")
	},
}

// binaryCmd represents the raw binary upload command
var binaryCmd = &cobra.Command{
	Use:   "binary <binfile>",
	Short: "Upload a raw binary file to target RAM",
	Long: `Upload a raw binary file to the attached target at the given address,
writing it directly through the MEM-AP (no flash erase/program path - use
'flash' for that).

Example:
  adiv5probe binary firmware.bin --address 20000000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return uploadBinary(args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(uploadSrecCmd)
	rootCmd.AddCommand(uploadWdcCmd)
	rootCmd.AddCommand(binaryCmd)

	binaryCmd.Flags().StringVar(&uploadAddress, "address", "", "Target address (hex, e.g., 20000000)")
	binaryCmd.MarkFlagRequired("address")
}

// uploadFile is the common upload handler for the structured file formats
func uploadFile(filename string, format string) error {
	a, err := connectAndAttach()
	if err != nil {
		return err
	}
	defer a.Close()

	ap, err := firstAP(a)
	if err != nil {
		return err
	}

	var ldr loader.Loader
	switch format {
	case "intelhex":
		ldr = loader.NewIntelHexLoader()
	case "srec":
		ldr = loader.NewSRecLoader()
	case "wdc":
		ldr = loader.NewWDCLoader()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	if err := ldr.Open(filename); err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer ldr.Close()

	ldr.SetHandler(func(address uint32, data []byte) error {
		return adiv5.MemWrite(ap, address, data, uint32(len(data)))
	})

	printInfo("Uploading %s...\n", filename)
	if err := ldr.Process(); err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	printInfo("Upload complete.\n")
	return nil
}

// uploadBinary uploads a raw binary file to the specified address
func uploadBinary(filename string) error {
	addr, err := util.ParseHexAddress(uploadAddress)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}

	data, err := util.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
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

	printInfo("Uploading %d bytes to 0x%X...\n", len(data), addr)
	chunkSize := cfg.ChunkSize
	for offset := 0; offset < len(data); offset += chunkSize {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[offset:end]
		if err := adiv5.MemWrite(ap, addr+uint32(offset), chunk, uint32(len(chunk))); err != nil {
			return fmt.Errorf("upload failed at offset 0x%X: %w", offset, err)
		}
	}

	printInfo("Upload complete.\n")
	return nil
}
