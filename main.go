// adiv5probe - ARM ADIv5 debug-port bridge, CoreSight discovery tool,
// and EFM32/EZR32/EFR32 flash programmer.
//
// This tool attaches to a target over a serial or TCP connection to a
// probe adapter, enumerates its Access Ports, walks the CoreSight
// component tree, and drives the flash controller on any supported
// device it finds.
package main

import (
	"fmt"
	"os"

	"adiv5probe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
