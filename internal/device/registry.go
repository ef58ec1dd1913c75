package device

import (
	"sync"

	"github.com/rhelper/razerctl/internal/logger"
)

// Opener attempts to open a handle to a supported unit. Each call must
// produce an independent handle; openers are invoked once per goroutine that
// needs device access.
type Opener func() (Controller, error)

var (
	driversMu sync.RWMutex
	drivers   []registeredDriver
)

type registeredDriver struct {
	name string
	open Opener
}

// Register makes a vendor driver available to Detect. It is expected to be
// called from a driver package's init function.
func Register(name string, open Opener) {
	driversMu.Lock()
	defer driversMu.Unlock()

	drivers = append(drivers, registeredDriver{name: name, open: open})
}

// Detect opens a fresh handle using the first registered driver that finds a
// supported unit
func Detect() (Controller, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()

	for _, d := range drivers {
		ctrl, err := d.open()
		if err != nil {
			logger.Debug().Str("driver", d.name).Err(err).Msg("driver found no device")
			continue
		}

		return ctrl, nil
	}

	return nil, ErrNoDevice
}
