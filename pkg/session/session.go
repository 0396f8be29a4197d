// Package session composes the DP manager, AP manager, CoreSight
// discovery engine, and probe dispatch hooks into the control flow
// described in §2: attach a DP, enumerate its APs, and for each usable
// MEM-AP walk the ROM table and dispatch to a matching core probe.
package session

import (
	"log/slog"

	"adiv5probe/pkg/adiv5"
	"adiv5probe/pkg/coresight"
	"adiv5probe/pkg/probe"
	"adiv5probe/pkg/target"
)

// Session owns one DP and the APs discovered on it.
type Session struct {
	DP      *adiv5.DP
	APs     []*adiv5.AP
	Targets []*target.Target
	Hooks   probe.Hooks
	log     *slog.Logger
}

// Attach performs dp_init (§4.B) followed by AP enumeration (§4.C),
// per-AP probe hooks, CoreSight discovery (§4.E) on every usable
// MEM-AP, and the forced Cortex-M fallback (§4.E, §7) when nothing was
// found on a DP whose IDCODE matches a Cortex-M debug unit.
func Attach(access adiv5.LowAccess, hooks probe.Hooks, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	dp := adiv5.New(access, log)
	if err := dp.Init(); err != nil {
		return nil, err
	}

	s := &Session{DP: dp, Hooks: hooks, log: log}
	s.APs = adiv5.EnumerateAPs(dp)

	for _, ap := range s.APs {
		if claimed := hooks.RunAPHooks(ap); len(claimed) > 0 {
			s.Targets = append(s.Targets, claimed...)
			continue
		}

		if !ap.BasePresent() {
			continue
		}

		coreProbes := coresight.CoreProbes{
			ProbeCortexM: hooks.CortexM,
			ProbeCortexA: hooks.CortexA,
			OnTarget:     func(t *target.Target) { s.Targets = append(s.Targets, t) },
		}
		found := coresight.ProbeComponent(ap, ap.Base, 0, coreProbes, log)
		coresight.ForcedCortexMFallback(ap, found, coreProbes)
	}

	return s, nil
}

// Close releases every AP's reference to the DP. The session holds no
// DP reference of its own (Init releases the one it takes).
func (s *Session) Close() {
	for _, ap := range s.APs {
		ap.Unref()
	}
}
