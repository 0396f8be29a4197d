package cmd

import (
	"fmt"

	"adiv5probe/pkg/target"
	"adiv5probe/pkg/util"

	"github.com/spf13/cobra"
)

var flashAddress string

// eraseCmd represents the flash mass-erase command
var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Mass-erase the discovered target's flash memory",
	Long: `Attach to the target, discover its flash driver, and run the family's
mass-erase command.

Warning: this is a destructive operation that cannot be undone.

Example:
  adiv5probe erase`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return eraseFlash()
	},
}

// flashCmd represents the flash programming command
var flashCmd = &cobra.Command{
	Use:   "flash <binfile>",
	Short: "Program the discovered target's main flash region from a binary file",
	Long: `Erase the flash pages the image covers, then program them with the
contents of binfile starting at the target's main flash region base address.

Warning: this will overwrite flash memory.

Example:
  adiv5probe flash firmware.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return flashProgram(args[0])
	},
}

func init() {
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(flashCmd)

	flashCmd.Flags().StringVar(&flashAddress, "address", "", "Override the destination address (hex); defaults to the main flash region base")
}

// firstFlashTarget returns the first discovered target with at least
// one flash region attached.
func firstFlashTarget(a *attachedSession) (*target.Target, error) {
	for _, t := range a.sess.Targets {
		if len(t.Flash) > 0 {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no flash-capable target found on this debug port")
}

func eraseFlash() error {
	a, err := connectAndAttach()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := firstFlashTarget(a)
	if err != nil {
		return err
	}

	if !util.ConfirmDanger("You are about to ERASE the entire flash memory") {
		printInfo("Operation cancelled.\n")
		return nil
	}

	cmdEntry, ok := t.Command("erase_mass")
	if !ok {
		return fmt.Errorf("target %q has no mass-erase command", t.DriverTag)
	}

	printInfo("Erasing flash memory on %s...\n", t.DriverTag)
	if err := cmdEntry.Run(t, nil); err != nil {
		return fmt.Errorf("flash erase failed: %w", err)
	}

	printInfo("Flash memory erased successfully.\n")
	return nil
}

func flashProgram(filename string) error {
	data, err := util.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	a, err := connectAndAttach()
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := firstFlashTarget(a)
	if err != nil {
		return err
	}
	region := t.Flash[0]

	dest := region.Start
	if flashAddress != "" {
		dest, err = util.ParseHexAddress(flashAddress)
		if err != nil {
			return fmt.Errorf("invalid address: %w", err)
		}
	}
	if uint32(len(data)) > region.Length {
		printInfo("Warning: file size (%d bytes) exceeds the region's reported length (%d bytes)\n",
			len(data), region.Length)
	}

	printInfo("About to erase and program %d bytes at 0x%08X on %s\n", len(data), dest, t.DriverTag)
	if !util.Confirm("Are you sure you want to reprogram the flash memory? (y/n): ") {
		printInfo("Operation cancelled.\n")
		return nil
	}

	if region.Erase != nil {
		printInfo("Erasing target region...\n")
		if err := region.Erase(region, dest, uint32(len(data))); err != nil {
			return fmt.Errorf("flash erase failed: %w", err)
		}
	}

	if region.Write == nil {
		return fmt.Errorf("target %q has no flash-write stub wired; a direct MEM-AP write would not program flash", t.DriverTag)
	}
	printInfo("Programming flash via stub loader...\n")
	if err := region.Write(region, dest, data); err != nil {
		return fmt.Errorf("flash programming failed: %w", err)
	}

	printInfo("Flash programming complete.\n")
	return nil
}
