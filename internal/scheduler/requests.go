package scheduler

import (
	"time"

	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/errors"
	"github.com/rhelper/razerctl/internal/telemetry"
)

func (s *Scheduler) requireDevice() error {
	if s.dev == nil {
		return errors.WithMessage(device.ErrNotFound, "No device connected")
	}
	return nil
}

// RequestSetPerformanceMode applies a user-requested performance mode. The
// hardware resets the fan to automatic on every mode switch, so a manual
// fan configuration is restored afterwards in two steps, with a settle
// delay before each write because the embedded controller rejects commands
// arriving too soon after a mode change.
func (s *Scheduler) RequestSetPerformanceMode(mode device.PerfMode) error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	wasManual := s.status.FanMode == device.FanManual.String()
	restoreRPM := s.manualFanRPM
	if s.status.SetRPM != nil {
		restoreRPM = *s.status.SetRPM
	}

	if err := s.dev.SetPerfMode(mode); err != nil {
		s.postError("Failed to set performance mode: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set performance mode: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.status.PerformanceMode = mode.String()
	s.status.FanMode = device.FanAuto.String()
	s.status.SetRPM = nil

	// Custom mode carries its own fan configuration; reasserting the manual
	// RPM here would clobber it
	if wasManual && mode != device.PerfCustom {
		time.Sleep(s.settleDelay)
		if err := s.dev.SetFanMode(device.FanManual); err != nil {
			s.postError("Failed to restore manual fan mode after performance mode change")
			s.record(telemetry.EventCommandFailure, "restore fan mode: "+err.Error())
		} else {
			time.Sleep(s.settleDelay)
			if err := s.dev.SetFanRPM(restoreRPM, true); err != nil {
				s.postError("Failed to restore fan RPM after performance mode change")
				s.record(telemetry.EventCommandFailure, "restore fan rpm: "+err.Error())
			} else {
				s.status.FanMode = device.FanManual.String()
				rpm := restoreRPM
				s.status.SetRPM = &rpm
				s.manualFanRPM = restoreRPM
			}
		}
	}

	s.postOptional("Performance mode set to " + mode.String())
	s.updateStoredState()
	return nil
}

// RequestSetFanMode switches between automatic and manual fan control.
// Entering manual mode immediately writes the last-known RPM so the
// hardware never sits in manual mode with an unknown target.
func (s *Scheduler) RequestSetFanMode(fan device.FanMode) error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	if err := s.dev.SetFanMode(fan); err != nil {
		s.postError("Failed to set fan mode: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set fan mode: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.status.FanMode = fan.String()

	if fan == device.FanManual {
		rpm := s.manualFanRPM
		if rpm == 0 {
			rpm = defaultManualRPM
		}
		if err := s.dev.SetFanRPM(rpm, true); err != nil {
			s.postError("Failed to set fan RPM: " + err.Error())
			s.record(telemetry.EventCommandFailure, "set fan rpm: "+err.Error())
			return errors.Wrap(device.ErrWriteFailed, err)
		}
		s.manualFanRPM = rpm
		s.status.SetRPM = &rpm
	} else {
		s.status.SetRPM = nil
	}

	s.updateStoredState()
	return nil
}

// RequestSetFanRPM sets the manual fan target on all zones
func (s *Scheduler) RequestSetFanRPM(rpm uint16) error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	if err := s.dev.SetFanRPM(rpm, true); err != nil {
		s.postError("Failed to set fan RPM: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set fan rpm: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.manualFanRPM = rpm
	target := rpm
	s.status.SetRPM = &target
	s.updateStoredState()
	return nil
}

func (s *Scheduler) RequestSetLogoMode(mode device.LogoMode) error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	if err := s.dev.SetLogoMode(mode); err != nil {
		s.postError("Failed to set logo mode: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set logo mode: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.status.LogoMode = mode.String()
	s.updateStoredState()
	return nil
}

func (s *Scheduler) RequestSetBrightness(brightness uint8) error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	if err := s.dev.SetKeyboardBrightness(brightness); err != nil {
		s.postError("Failed to set keyboard brightness: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set brightness: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.status.KeyboardBrightness = brightness
	s.updateStoredState()
	return nil
}

// RequestToggleLightsAlwaysOn flips the lights-always-on toggle. The status
// is updated optimistically and reverted if the write fails, so the control
// never shows a state the hardware refused.
func (s *Scheduler) RequestToggleLightsAlwaysOn() error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	target := !s.status.LightsAlwaysOn
	s.status.LightsAlwaysOn = target

	if err := s.dev.SetLightsAlwaysOn(target); err != nil {
		s.status.LightsAlwaysOn = !target
		s.postError("Failed to set lights always on: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set lights always on: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.updateStoredState()
	return nil
}

// RequestToggleBatteryCare flips the battery care charge limit, with the
// same optimistic update and revert-on-failure behavior as the lights
// toggle
func (s *Scheduler) RequestToggleBatteryCare() error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	target := !s.status.BatteryCare
	s.status.BatteryCare = target

	if err := s.dev.SetBatteryCare(target); err != nil {
		s.status.BatteryCare = !target
		s.postError("Failed to set battery care: " + err.Error())
		s.record(telemetry.EventCommandFailure, "set battery care: "+err.Error())
		return errors.Wrap(device.ErrWriteFailed, err)
	}

	s.updateStoredState()
	return nil
}

// RequestForceReprobe re-runs the capability probe on demand, even when the
// device descriptor already lists its modes. The Custom-mode guard still
// applies.
func (s *Scheduler) RequestForceReprobe() error {
	if err := s.requireDevice(); err != nil {
		return err
	}

	s.startProbe(true)
	return nil
}
