package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// targetCmdCmd dispatches to a named entry in the discovered target's
// family-specific command table (§4.G step 5, §6 CLI surface): serial,
// efm_info, bootloader [enable|disable] for EFM32 targets, erase_mass
// for both EFM32 and AAP targets. The "erase" command runs erase_mass on
// the first target with a flash region only, so it does not reach the
// AAP target.
var targetCmdCmd = &cobra.Command{
	Use:   "target-cmd <name> [args...]",
	Short: "Run a named command from the discovered target's command table",
	Long: `Attach to the target and invoke one of the commands its driver
registered.

EFM32 targets register: erase_mass, serial, efm_info, bootloader [enable|disable].
AAP (locked-device recovery) targets register: erase_mass.

Example:
  adiv5probe target-cmd serial
  adiv5probe target-cmd efm_info
  adiv5probe target-cmd bootloader enable`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTargetCommand(args[0], args[1:])
	},
}

func init() {
	rootCmd.AddCommand(targetCmdCmd)
}

func runTargetCommand(name string, args []string) error {
	a, err := connectAndAttach()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(a.sess.Targets) == 0 {
		return fmt.Errorf("no target discovered on this debug port")
	}

	for _, t := range a.sess.Targets {
		entry, ok := t.Command(name)
		if !ok {
			continue
		}
		printInfo("Running %q on %s...\n", name, t.DriverTag)
		return entry.Run(t, args)
	}

	return fmt.Errorf("no discovered target registers a %q command", name)
}
