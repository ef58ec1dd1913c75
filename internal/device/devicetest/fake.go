// Package devicetest provides an in-memory Controller for tests.
package devicetest

import (
	"fmt"
	"sync"

	"github.com/rhelper/razerctl/internal/device"
)

// Fake is a scriptable in-memory device. Zero value is a working unit in
// Balanced/Auto. Reads and writes can be failed per operation name, and
// every call is appended to Calls for assertions.
type Fake struct {
	mu sync.Mutex

	Descriptor device.Info

	PerfMode       device.PerfMode
	FanMode        device.FanMode
	FanRPM         uint16
	ActualRPM      uint16
	LogoMode       device.LogoMode
	Brightness     uint8
	LightsAlwaysOn bool
	BatteryCare    bool

	// SupportedModes, when non-nil, restricts which modes SetPerfMode
	// accepts
	SupportedModes map[device.PerfMode]bool

	// PerfModeForcesFanAuto mirrors the hardware quirk where switching
	// performance mode resets the fan to automatic
	PerfModeForcesFanAuto bool

	// Fail maps an operation name (e.g. "GetPerfMode") to an error
	Fail map[string]error

	Calls  []string
	Closed bool
}

func New() *Fake {
	return &Fake{
		PerfMode:   device.PerfBalanced,
		Brightness: 50,
	}
}

func (f *Fake) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *Fake) failure(op string) error {
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

// WriteCount returns how many recorded calls were writes (Set*)
func (f *Fake) WriteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.Calls {
		if len(c) >= 3 && c[:3] == "Set" {
			n++
		}
	}
	return n
}

func (f *Fake) Info() device.Info {
	return f.Descriptor
}

func (f *Fake) GetPerfMode() (device.PerfMode, device.FanMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetPerfMode")
	if err := f.failure("GetPerfMode"); err != nil {
		return 0, 0, err
	}
	return f.PerfMode, f.FanMode, nil
}

func (f *Fake) SetPerfMode(mode device.PerfMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetPerfMode:%s", mode))
	if err := f.failure("SetPerfMode"); err != nil {
		return err
	}
	if f.SupportedModes != nil && !f.SupportedModes[mode] {
		return fmt.Errorf("mode %s rejected", mode)
	}

	f.PerfMode = mode
	if f.PerfModeForcesFanAuto {
		f.FanMode = device.FanAuto
	}
	return nil
}

func (f *Fake) GetFanRPM(zone device.Zone) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetFanRPM")
	if err := f.failure("GetFanRPM"); err != nil {
		return 0, err
	}
	return f.FanRPM, nil
}

func (f *Fake) GetFanActualRPM(zone device.Zone) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetFanActualRPM")
	if err := f.failure("GetFanActualRPM"); err != nil {
		return 0, err
	}
	return f.ActualRPM, nil
}

func (f *Fake) SetFanMode(mode device.FanMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetFanMode:%s", mode))
	if err := f.failure("SetFanMode"); err != nil {
		return err
	}
	f.FanMode = mode
	return nil
}

func (f *Fake) SetFanRPM(rpm uint16, allZones bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetFanRPM:%d", rpm))
	if err := f.failure("SetFanRPM"); err != nil {
		return err
	}
	f.FanRPM = rpm
	return nil
}

func (f *Fake) GetLogoMode() (device.LogoMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetLogoMode")
	if err := f.failure("GetLogoMode"); err != nil {
		return 0, err
	}
	return f.LogoMode, nil
}

func (f *Fake) SetLogoMode(mode device.LogoMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetLogoMode:%s", mode))
	if err := f.failure("SetLogoMode"); err != nil {
		return err
	}
	f.LogoMode = mode
	return nil
}

func (f *Fake) GetKeyboardBrightness() (uint8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetKeyboardBrightness")
	if err := f.failure("GetKeyboardBrightness"); err != nil {
		return 0, err
	}
	return f.Brightness, nil
}

func (f *Fake) SetKeyboardBrightness(brightness uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetKeyboardBrightness:%d", brightness))
	if err := f.failure("SetKeyboardBrightness"); err != nil {
		return err
	}
	f.Brightness = brightness
	return nil
}

func (f *Fake) GetLightsAlwaysOn() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetLightsAlwaysOn")
	if err := f.failure("GetLightsAlwaysOn"); err != nil {
		return false, err
	}
	return f.LightsAlwaysOn, nil
}

func (f *Fake) SetLightsAlwaysOn(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetLightsAlwaysOn:%t", enabled))
	if err := f.failure("SetLightsAlwaysOn"); err != nil {
		return err
	}
	f.LightsAlwaysOn = enabled
	return nil
}

func (f *Fake) GetBatteryCare() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("GetBatteryCare")
	if err := f.failure("GetBatteryCare"); err != nil {
		return false, err
	}
	return f.BatteryCare, nil
}

func (f *Fake) SetBatteryCare(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record(fmt.Sprintf("SetBatteryCare:%t", enabled))
	if err := f.failure("SetBatteryCare"); err != nil {
		return err
	}
	f.BatteryCare = enabled
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Closed = true
	return nil
}
