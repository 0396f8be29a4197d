package cmd

import (
	"fmt"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/connection"
	"adiv5probe/pkg/efm32"
	"adiv5probe/pkg/probe"
	"adiv5probe/pkg/session"
	"adiv5probe/pkg/transport"
)

// attachedSession bundles the open connection and probe transport
// alongside the session, so callers can tear both down together.
type attachedSession struct {
	sess *session.Session
	xport *transport.Probe
	conn  connection.Connection
}

func (a *attachedSession) Close() {
	a.sess.Close()
	a.xport.Close()
}

// connectAndAttach opens the configured port, wraps it in the DP wire
// transport, and runs the discovery session (§2): DP init, AP
// enumeration, the EFM32 AAP hook, and CoreSight component walk with
// the EFM32 flash driver as the only wired Cortex-M probe.
func connectAndAttach() (*attachedSession, error) {
	if err := validateConnectionFlags(); err != nil {
		return nil, err
	}
	port := cfg.Port
	if portFlag != "" {
		port = portFlag
	}
	if err := connection.ValidatePort(port); err != nil {
		return nil, err
	}

	conn := connection.NewConnection(port)
	if sc, ok := conn.(*connection.SerialConnection); ok {
		sc.SetConfig(cfg)
	}
	if err := conn.Open(port); err != nil {
		return nil, fmt.Errorf("opening %s: %w", port, err)
	}

	xport := transport.New(conn, log)

	hooks := probe.Hooks{
		// stub provider and run-stub facility: no flash-write stub image
		// or Cortex-M core-register driver is in scope for this core, so
		// flash programming falls back to erase-only (see cmd/flash.go).
		CortexM: efm32.NewProbe(log, nil, nil),
		APHooks: []probe.APHook{efm32.AAPHook, probe.KinetisMDMHook, probe.NRF51MDMHook},
	}

	sess, err := session.Attach(xport, hooks, log)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("attach: %w", err)
	}

	return &attachedSession{sess: sess, xport: xport, conn: conn}, nil
}

// firstAP returns an AP to address raw memory commands (dump, lookup,
// upload) against: the first matched target's AP if discovery found
// one, otherwise the first enumerated MEM-AP.
func firstAP(a *attachedSession) (*adiv5.AP, error) {
	if len(a.sess.Targets) > 0 {
		return a.sess.Targets[0].AP, nil
	}
	for _, ap := range a.sess.APs {
		if ap.BasePresent() {
			return ap, nil
		}
	}
	return nil, fmt.Errorf("no usable MEM-AP found on this debug port")
}
