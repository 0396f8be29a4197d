package adiv5

import "errors"

// Transport fault and timeout errors (§7). Faults are sticky on the DP
// until explicitly cleared; timeouts are bounded waits that expired.
var (
	ErrDPFault   = errors.New("adiv5: DP fault")
	ErrDPTimeout = errors.New("adiv5: DP timeout")
)
