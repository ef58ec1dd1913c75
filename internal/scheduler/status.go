package scheduler

const readingPlaceholder = "Reading..."

// DeviceStatus is the presentation-facing snapshot of everything the panel
// shows. It is owned by the scheduler thread: every mutation happens inside
// Tick or a request method, and background workers never touch it.
type DeviceStatus struct {
	PerformanceMode string
	FanMode         string
	// SetRPM is the configured target, present only in manual fan mode;
	// ActualRPM is the live measured speed
	SetRPM             *uint16
	ActualRPM          *uint16
	LogoMode           string
	KeyboardBrightness uint8
	LightsAlwaysOn     bool
	BatteryCare        bool
}

func newDeviceStatus() DeviceStatus {
	return DeviceStatus{
		PerformanceMode: readingPlaceholder,
		FanMode:         readingPlaceholder,
		LogoMode:        readingPlaceholder,
		BatteryCare:     true,
	}
}
