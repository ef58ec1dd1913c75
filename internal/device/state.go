package device

import "github.com/rhelper/razerctl/internal/errors"

// State is a full snapshot of every externally mutable device setting. It is
// comparable so that a snapshot taken now can be diffed against a stored
// baseline to detect changes made by other tools or hardware hotkeys.
type State struct {
	PerfMode PerfMode
	FanMode  FanMode
	// FanRPM is the configured target; meaningful only in manual fan mode
	// and zero otherwise
	FanRPM         uint16
	LogoMode       LogoMode
	Brightness     uint8
	LightsAlwaysOn bool
	BatteryCare    bool
}

// ReadState takes a complete snapshot from the device. Unlike StateReader
// this is all-or-nothing: a baseline built from partial reads would produce
// phantom diffs later.
func ReadState(c Controller) (State, error) {
	var s State

	perfMode, fanMode, err := c.GetPerfMode()
	if err != nil {
		return State{}, errors.Wrap(ErrReadFailed, err)
	}
	s.PerfMode = perfMode
	s.FanMode = fanMode

	if fanMode == FanManual {
		rpm, err := c.GetFanRPM(Zone1)
		if err != nil {
			return State{}, errors.Wrap(ErrReadFailed, err)
		}
		s.FanRPM = rpm
	}

	if s.LogoMode, err = c.GetLogoMode(); err != nil {
		return State{}, errors.Wrap(ErrReadFailed, err)
	}

	if s.Brightness, err = c.GetKeyboardBrightness(); err != nil {
		return State{}, errors.Wrap(ErrReadFailed, err)
	}

	if s.LightsAlwaysOn, err = c.GetLightsAlwaysOn(); err != nil {
		return State{}, errors.Wrap(ErrReadFailed, err)
	}

	if s.BatteryCare, err = c.GetBatteryCare(); err != nil {
		return State{}, errors.Wrap(ErrReadFailed, err)
	}

	return s, nil
}
