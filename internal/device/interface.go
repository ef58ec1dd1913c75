package device

// Controller is the contract a vendor device driver must satisfy. Every call
// is synchronous and fallible; the wire protocol behind it is opaque to this
// package. A Controller handle is owned by exactly one goroutine and must
// never be shared across threads; workers that need device access open their
// own handle via Detect.
type Controller interface {
	// Info returns static descriptor data for the detected unit
	Info() Info

	// Performance management
	GetPerfMode() (PerfMode, FanMode, error)
	SetPerfMode(mode PerfMode) error

	// Fan control. GetFanRPM reads the configured target, GetFanActualRPM
	// the live measured speed.
	GetFanRPM(zone Zone) (uint16, error)
	GetFanActualRPM(zone Zone) (uint16, error)
	SetFanMode(mode FanMode) error
	SetFanRPM(rpm uint16, allZones bool) error

	// Lighting
	GetLogoMode() (LogoMode, error)
	SetLogoMode(mode LogoMode) error
	GetKeyboardBrightness() (uint8, error)
	SetKeyboardBrightness(brightness uint8) error
	GetLightsAlwaysOn() (bool, error)
	SetLightsAlwaysOn(enabled bool) error

	// Battery
	GetBatteryCare() (bool, error)
	SetBatteryCare(enabled bool) error

	Close() error
}

// Info holds descriptor data that never changes for a detected unit
type Info struct {
	// Name is the marketing name reported by the descriptor
	Name string

	// PerfModes is the authoritative supported-mode list when the
	// descriptor provides one; nil means unknown and callers may probe
	PerfModes []PerfMode
}
