// Package cmd implements the adiv5probe CLI surface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"adiv5probe/pkg/config"
	"adiv5probe/pkg/logging"

	"github.com/spf13/cobra"
)

var (
	// Global configuration instance
	cfg *config.Config
	log *slog.Logger

	// Global flags
	portFlag    string
	targetFlag  string
	quietFlag   bool
	debugFlag   bool
	addressFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "adiv5probe",
	Short: "adiv5probe - ADIv5 debug-port bridge and EFM32 flash tool",
	Long: `adiv5probe attaches to a target's ARM Debug Access Port over a serial or
TCP connection to a probe adapter, walks its CoreSight component tree, and
drives the EFM32/EZR32/EFR32 flash controller on any device it finds.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if portFlag != "" {
			cfg.Port = portFlag
		}
		if targetFlag != "" {
			cfg.Target = config.NormalizeTarget(targetFlag)
		}
		if addressFlag != "" {
			cfg.Address = addressFlag
		}

		level := slog.LevelInfo
		if debugFlag {
			level = slog.LevelDebug
		}
		log = logging.New(os.Stderr, level, debugFlag)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&portFlag, "port", "", "Serial port or TCP address of the probe adapter (e.g., /dev/ttyUSB0, 192.168.1.10:2560)")
	rootCmd.PersistentFlags().StringVar(&targetFlag, "target", "", "Target family hint (informational only; discovery is driven by CoreSight IDs)")
	rootCmd.PersistentFlags().StringVar(&addressFlag, "address", "", "Memory address for read/write/dump commands (hex, optional 0x or $ prefix)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper function to check if connection flags are valid
func validateConnectionFlags() error {
	if cfg.Port == "" && portFlag == "" {
		return fmt.Errorf("no port specified (use --port flag or set in adiv5probe.ini)")
	}
	return nil
}

// Helper function for printing output (respects quiet mode)
func printInfo(format string, args ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, args...)
	}
}

// Helper function for printing errors (always shown)
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
