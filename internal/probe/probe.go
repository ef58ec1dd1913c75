// Package probe discovers which performance modes a unit actually accepts
// when the device descriptor does not say. Probing is trial-and-restore: try
// to set each candidate mode, then put the original back.
package probe

import (
	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/logger"
)

// Start launches the probe on its own goroutine and returns the one-shot
// result channel. The probe opens an independent device handle via open; the
// scheduler's handle is never shared across threads. An empty result means
// the probe could not run and the caller must keep its previous capability
// set.
func Start(open func() (device.Controller, error)) <-chan []device.PerfMode {
	results := make(chan []device.PerfMode, 1)

	go func() {
		results <- run(open)
	}()

	return results
}

func run(open func() (device.Controller, error)) []device.PerfMode {
	dev, err := open()
	if err != nil {
		logger.Debug().Err(err).Msg("probe could not open a device handle")
		return nil
	}
	defer dev.Close()

	current, _, err := dev.GetPerfMode()
	if err != nil {
		return nil
	}

	// Leaving and re-entering Custom mode can lose unrelated custom
	// settings, so a unit observed in Custom is never probed. The caller
	// checks this before spawning; re-checking on our own handle closes
	// the race with an external switch into Custom.
	if current == device.PerfCustom {
		return []device.PerfMode{device.PerfCustom}
	}

	modes := make([]device.PerfMode, 0, len(device.AllPerfModes()))
	for _, m := range device.AllPerfModes() {
		if m == current {
			// The observed mode is trivially supported, no write needed
			modes = append(modes, m)
			continue
		}
		if err := dev.SetPerfMode(m); err == nil {
			modes = append(modes, m)
		}
	}

	// Best-effort restore of the originally observed mode. A restore
	// failure is not escalated; probing is inherently best-effort.
	if err := dev.SetPerfMode(current); err != nil {
		logger.Debug().Err(err).Msgf("probe failed to restore mode %s", current)
	}

	return modes
}
