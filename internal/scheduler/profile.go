package scheduler

import (
	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/notify"
	"github.com/rhelper/razerctl/internal/telemetry"
)

// Profile is the target device configuration for one power source. Profiles
// are static; they are applied verbatim when the power source flips.
type Profile struct {
	PerfMode       device.PerfMode
	LogoMode       device.LogoMode
	Brightness     uint8
	LightsAlwaysOn bool
	BatteryCare    bool
}

func DefaultACProfile() Profile {
	return Profile{
		PerfMode:    device.PerfPerformance,
		LogoMode:    device.LogoOff,
		Brightness:  50,
		BatteryCare: true,
	}
}

func DefaultBatteryProfile() Profile {
	p := DefaultACProfile()
	p.PerfMode = device.PerfBattery
	return p
}

// autoSwitchProfile reacts to a power-source transition. The performance
// mode is applied immediately for responsiveness; the remaining fields are
// preserved from the live device unless reading it fails, in which case the
// whole profile is applied so hardware state cannot diverge from the panel.
func (s *Scheduler) autoSwitchProfile() {
	target := s.batteryProfile
	profileName := "Battery"
	if s.acPower {
		target = s.acProfile
		profileName = "AC"
	}

	if s.dev != nil {
		if err := s.dev.SetPerfMode(target.PerfMode); err != nil {
			s.postError("Failed to switch to " + profileName + " profile: " + err.Error())
			s.record(telemetry.EventCommandFailure, "profile switch: "+err.Error())
			return
		}

		s.status.PerformanceMode = target.PerfMode.String()
		s.post(notify.Info("Auto-switched to " + profileName + " profile"))
		s.record(telemetry.EventProfileSwitch, profileName)
	}

	// Read current device state to preserve the user's fan and lighting
	// settings; fall back to the full profile if the read fails
	if err := s.readDeviceStatus(); err != nil {
		if s.dev != nil {
			if err := s.applyProfile(target); err != nil {
				s.postError("Failed to apply fallback profile: " + err.Error())
				s.record(telemetry.EventCommandFailure, "fallback profile: "+err.Error())
			}
		}
	}

	s.updateStoredState()
	s.syncWithDeviceState()
}

// applyProfile writes every profile field in fixed order: mode, logo,
// brightness (only if different), lights-always-on, battery care. The order
// matters because the hardware couples settings; later writes must not be
// silently overridden by earlier ones.
func (s *Scheduler) applyProfile(p Profile) error {
	if err := s.dev.SetPerfMode(p.PerfMode); err != nil {
		return err
	}

	if err := s.dev.SetLogoMode(p.LogoMode); err != nil {
		return err
	}

	if current, err := s.dev.GetKeyboardBrightness(); err != nil || current != p.Brightness {
		if err := s.dev.SetKeyboardBrightness(p.Brightness); err != nil {
			return err
		}
	}

	if err := s.dev.SetLightsAlwaysOn(p.LightsAlwaysOn); err != nil {
		return err
	}

	return s.dev.SetBatteryCare(p.BatteryCare)
}
