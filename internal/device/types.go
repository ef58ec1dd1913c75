package device

// PerfMode is a coarse hardware operating profile affecting power and
// thermal behavior.
type PerfMode uint8

const (
	PerfBattery PerfMode = iota
	PerfSilent
	PerfBalanced
	PerfPerformance
	PerfHyperboost
	PerfCustom
)

// Label tables are kept explicit in both directions. Mode names are part of
// the notification contract, so they must never depend on formatting output.
var perfModeLabels = map[PerfMode]string{
	PerfBattery:     "Battery",
	PerfSilent:      "Silent",
	PerfBalanced:    "Balanced",
	PerfPerformance: "Performance",
	PerfHyperboost:  "Hyperboost",
	PerfCustom:      "Custom",
}

var perfModeValues = map[string]PerfMode{
	"Battery":     PerfBattery,
	"Silent":      PerfSilent,
	"Balanced":    PerfBalanced,
	"Performance": PerfPerformance,
	"Hyperboost":  PerfHyperboost,
	"Custom":      PerfCustom,
}

func (m PerfMode) String() string {
	if label, ok := perfModeLabels[m]; ok {
		return label
	}

	return "Unknown"
}

// ParsePerfMode converts a canonical label back to its mode
func ParsePerfMode(label string) (PerfMode, bool) {
	mode, ok := perfModeValues[label]
	return mode, ok
}

// AllPerfModes returns the full mode universe in display order
func AllPerfModes() []PerfMode {
	return []PerfMode{PerfBattery, PerfSilent, PerfBalanced, PerfPerformance, PerfHyperboost, PerfCustom}
}

// FanMode selects between firmware-controlled and user-specified fan speed
type FanMode uint8

const (
	FanAuto FanMode = iota
	FanManual
)

func (m FanMode) String() string {
	if m == FanManual {
		return "Manual"
	}

	return "Auto"
}

// ParseFanMode converts a canonical label back to its mode
func ParseFanMode(label string) (FanMode, bool) {
	switch label {
	case "Auto":
		return FanAuto, true
	case "Manual":
		return FanManual, true
	default:
		return FanAuto, false
	}
}

// LogoMode controls the lid logo lighting
type LogoMode uint8

const (
	LogoOff LogoMode = iota
	LogoStatic
	LogoBreathing
)

var logoModeLabels = map[LogoMode]string{
	LogoOff:       "Off",
	LogoStatic:    "Static",
	LogoBreathing: "Breathing",
}

var logoModeValues = map[string]LogoMode{
	"Off":       LogoOff,
	"Static":    LogoStatic,
	"Breathing": LogoBreathing,
}

func (m LogoMode) String() string {
	if label, ok := logoModeLabels[m]; ok {
		return label
	}

	return "Unknown"
}

// ParseLogoMode converts a canonical label back to its mode
func ParseLogoMode(label string) (LogoMode, bool) {
	mode, ok := logoModeValues[label]
	return mode, ok
}

// Zone identifies a fan zone on units with more than one fan
type Zone uint8

const (
	Zone1 Zone = iota + 1
	Zone2
)
