package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/device/devicetest"
	apperrors "github.com/rhelper/razerctl/internal/errors"
	"github.com/rhelper/razerctl/internal/logger"
	"github.com/rhelper/razerctl/internal/sysinfo"
	"github.com/rhelper/razerctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	m.Run()
}

type stubPower struct {
	ac  bool
	err error
}

func (p stubPower) ACOnline() (bool, error) { return p.ac, p.err }

type stubRecorder struct {
	events []telemetry.Event
}

func (r *stubRecorder) Record(_ context.Context, e telemetry.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *stubRecorder) Close() error { return nil }

// newTestScheduler builds a scheduler wired to the fake, already past
// initialization and with the settle delay zeroed so tests run instantly
func newTestScheduler(fake *devicetest.Fake) *Scheduler {
	s := New(Options{
		OpenDevice:     func() (device.Controller, error) { return fake, nil },
		Power:          stubPower{ac: true},
		ACProfile:      DefaultACProfile(),
		BatteryProfile: DefaultBatteryProfile(),
	})
	s.dev = fake
	s.settleDelay = 0
	s.fullyInitialized = true
	return s
}

func TestExternalModeChangeNotification(t *testing.T) {
	fake := devicetest.New()
	rec := &stubRecorder{}
	s := newTestScheduler(fake)
	s.recorder = rec

	// First snapshot only establishes the baseline
	require.NoError(t, s.checkExternalChanges())
	assert.Nil(t, s.CurrentMessage())

	// Another tool switches the mode behind our back
	fake.PerfMode = device.PerfPerformance
	require.NoError(t, s.checkExternalChanges())

	msg := s.CurrentMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Performance mode changed externally: Balanced → Performance", msg.Content)

	assert.Equal(t, "Performance", s.status.PerformanceMode)
	require.NotNil(t, s.baseline)
	assert.Equal(t, device.PerfPerformance, s.baseline.PerfMode, "Baseline replaced wholesale")

	require.Len(t, rec.events, 1)
	assert.Equal(t, telemetry.EventExternalChange, rec.events[0].Kind)
	assert.Equal(t, "Balanced → Performance", rec.events[0].Detail)
}

func TestExternalNonModeChangeIsQuietByDefault(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)

	require.NoError(t, s.checkExternalChanges())

	fake.Brightness = 80
	require.NoError(t, s.checkExternalChanges())

	assert.Nil(t, s.CurrentMessage(), "Non-mode changes are gated behind status_messages")
	assert.Equal(t, uint8(80), s.status.KeyboardBrightness)
	assert.Equal(t, uint8(80), s.baseline.Brightness)
}

func TestExternalNonModeChangeVerbose(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)
	s.statusMessages = true

	require.NoError(t, s.checkExternalChanges())

	fake.LightsAlwaysOn = true
	require.NoError(t, s.checkExternalChanges())

	msg := s.CurrentMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Device state updated externally", msg.Content)
}

func TestModeSwitchRestoresManualFan(t *testing.T) {
	fake := devicetest.New()
	fake.PerfModeForcesFanAuto = true
	fake.FanMode = device.FanManual
	fake.FanRPM = 3000

	s := newTestScheduler(fake)
	s.status.FanMode = device.FanManual.String()
	rpm := uint16(3000)
	s.status.SetRPM = &rpm
	s.manualFanRPM = 3000

	require.NoError(t, s.RequestSetPerformanceMode(device.PerfPerformance))

	assert.Equal(t, device.PerfPerformance, fake.PerfMode)
	assert.Equal(t, device.FanManual, fake.FanMode, "Manual fan mode restored after the hardware reset it")
	assert.Equal(t, uint16(3000), fake.FanRPM)

	assert.Equal(t, "Manual", s.status.FanMode)
	require.NotNil(t, s.status.SetRPM)
	assert.Equal(t, uint16(3000), *s.status.SetRPM)

	// The restore sequence must follow the mode write in order
	assert.Contains(t, fake.Calls, "SetPerfMode:Performance")
	assert.Contains(t, fake.Calls, "SetFanMode:Manual")
	assert.Contains(t, fake.Calls, "SetFanRPM:3000")
}

func TestModeSwitchRestoreFailureMessage(t *testing.T) {
	fake := devicetest.New()
	fake.PerfModeForcesFanAuto = true
	fake.FanMode = device.FanManual
	fake.FanRPM = 3000
	fake.Fail = map[string]error{"SetFanMode": errors.New("nack")}

	s := newTestScheduler(fake)
	s.status.FanMode = device.FanManual.String()
	s.manualFanRPM = 3000

	require.NoError(t, s.RequestSetPerformanceMode(device.PerfSilent))

	msg := s.CurrentMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Failed to restore manual fan mode after performance mode change", msg.Content)
	assert.Equal(t, "Auto", s.status.FanMode, "Status reflects what the hardware was left in")
}

func TestAutoSwitchProfileToBattery(t *testing.T) {
	fake := devicetest.New()
	rec := &stubRecorder{}
	s := newTestScheduler(fake)
	s.recorder = rec
	s.acPower = false

	s.autoSwitchProfile()

	assert.Equal(t, device.PerfBattery, fake.PerfMode)
	assert.Equal(t, "Battery", s.status.PerformanceMode)

	msg := s.CurrentMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Auto-switched to Battery profile", msg.Content)

	require.NotEmpty(t, rec.events)
	assert.Equal(t, telemetry.EventProfileSwitch, rec.events[0].Kind)
	assert.Equal(t, "Battery", rec.events[0].Detail)
}

func TestAutoSwitchProfileFallbackAppliesEverything(t *testing.T) {
	fake := devicetest.New()
	fake.Brightness = 10
	fake.Fail = map[string]error{"GetPerfMode": errors.New("nack")}

	s := newTestScheduler(fake)
	s.acPower = true

	s.autoSwitchProfile()

	// With the status read failing, the whole AC profile lands on the device
	assert.Contains(t, fake.Calls, "SetPerfMode:Performance")
	assert.Contains(t, fake.Calls, "SetLogoMode:Off")
	assert.Contains(t, fake.Calls, "SetKeyboardBrightness:50")
	assert.Contains(t, fake.Calls, "SetLightsAlwaysOn:false")
	assert.Contains(t, fake.Calls, "SetBatteryCare:true")

	assert.Equal(t, uint8(50), fake.Brightness)
	assert.True(t, fake.BatteryCare)
}

func TestTickTriggersProfileSwitchOnPowerFlip(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)
	s.power = stubPower{ac: false}
	s.acPower = true
	s.lastRefresh = time.Now().Add(-time.Second)

	s.Tick(false)

	assert.False(t, s.acPower)
	assert.Equal(t, device.PerfBattery, fake.PerfMode)
}

func TestManualRPMDriftEnforcement(t *testing.T) {
	fake := devicetest.New()
	fake.FanMode = device.FanManual
	fake.FanRPM = 2500

	s := newTestScheduler(fake)
	s.status.FanMode = device.FanManual.String()

	before := s.lastFanEnforce
	s.enforceManualFanRPM()

	assert.Contains(t, fake.Calls, "SetFanRPM:2500", "Configured target written back")
	assert.Equal(t, uint16(2500), s.manualFanRPM)
	require.NotNil(t, s.status.SetRPM)
	assert.Equal(t, uint16(2500), *s.status.SetRPM)
	assert.True(t, s.lastFanEnforce.After(before))
	assert.Nil(t, s.CurrentMessage(), "Drift enforcement is always silent")
}

func TestDriftEnforcementSilentOnFailure(t *testing.T) {
	fake := devicetest.New()
	fake.FanMode = device.FanManual
	fake.FanRPM = 2500
	fake.Fail = map[string]error{"SetFanRPM": errors.New("nack")}

	s := newTestScheduler(fake)
	s.status.FanMode = device.FanManual.String()

	s.enforceManualFanRPM()

	assert.Nil(t, s.CurrentMessage())
}

func TestRequestsWithoutDevice(t *testing.T) {
	s := newTestScheduler(devicetest.New())
	s.dev = nil

	err := s.RequestSetFanRPM(3000)
	require.Error(t, err)
	assert.EqualError(t, err, "No device connected")

	require.Error(t, s.RequestSetPerformanceMode(device.PerfSilent))
	require.Error(t, s.RequestToggleBatteryCare())
	require.Error(t, s.RequestForceReprobe())
}

func TestToggleRevertsOnFailure(t *testing.T) {
	fake := devicetest.New()
	fake.BatteryCare = true
	fake.Fail = map[string]error{"SetBatteryCare": errors.New("nack")}

	s := newTestScheduler(fake)
	s.status.BatteryCare = true

	err := s.RequestToggleBatteryCare()
	require.Error(t, err)
	assert.Equal(t, device.ErrWriteFailed, apperrors.CodeOf(err), "Write failures carry the device write code")

	assert.True(t, s.status.BatteryCare, "Optimistic flip reverted after the write failed")
	msg := s.CurrentMessage()
	require.NotNil(t, msg)
	assert.Contains(t, msg.Content, "Failed to set battery care")
}

func TestFanModeRequestSeedsDefaultRPM(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)
	s.manualFanRPM = 0

	require.NoError(t, s.RequestSetFanMode(device.FanManual))

	assert.Equal(t, device.FanManual, fake.FanMode)
	assert.Equal(t, uint16(defaultManualRPM), fake.FanRPM)
	require.NotNil(t, s.status.SetRPM)
	assert.Equal(t, uint16(defaultManualRPM), *s.status.SetRPM)
}

func TestInitializationLifecycle(t *testing.T) {
	fake := devicetest.New()
	// Descriptor answers the capability question so no probe is spawned
	fake.Descriptor = device.Info{
		Name:      "Razer Blade 16\" (2025)",
		PerfModes: []device.PerfMode{device.PerfBattery, device.PerfBalanced},
	}

	s := newTestScheduler(fake)
	s.fullyInitialized = false

	events := make(chan initEvent, 3)
	events <- initEvent{kind: initPowerStateRead, acPower: false}
	events <- initEvent{kind: initComplete}
	events <- initEvent{kind: initSpecsComplete, specs: sysinfo.Specs{Model: "Razer Blade 16\" (2025)"}}
	s.initEvents = events

	s.drainInitEvents()

	assert.False(t, s.acPower)
	assert.True(t, s.fullyInitialized)
	assert.Equal(t, "Razer Blade 16\" (2025)", s.specs.Model)
	require.NotNil(t, s.baseline, "First full read stores the baseline")
	assert.Nil(t, s.probeResults)

	msg := s.CurrentMessage()
	require.NotNil(t, msg)
	assert.Equal(t, "Initialization complete", msg.Content)
}

func TestProbeResultsMerge(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)
	s.availableModes = device.AllPerfModes()

	results := make(chan []device.PerfMode, 1)
	results <- []device.PerfMode{device.PerfBattery, device.PerfBalanced}
	s.probeResults = results

	s.drainProbeResults()

	assert.Equal(t, []device.PerfMode{device.PerfBattery, device.PerfBalanced}, s.availableModes)
	assert.Nil(t, s.probeResults, "One-shot channel released after the result")
}

func TestEmptyProbeResultKeepsModes(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)
	s.availableModes = device.AllPerfModes()

	results := make(chan []device.PerfMode, 1)
	results <- nil
	s.probeResults = results

	s.drainProbeResults()

	assert.Equal(t, device.AllPerfModes(), s.availableModes, "Unrunnable probe leaves capabilities untouched")
}

func TestProbeSkippedInCustomMode(t *testing.T) {
	fake := devicetest.New()
	fake.PerfMode = device.PerfCustom

	s := newTestScheduler(fake)

	s.startProbe(true)

	assert.Nil(t, s.probeResults, "Custom mode forbids probing even when forced")
}

func TestMinimizedTickPollsCheaply(t *testing.T) {
	fake := devicetest.New()
	s := newTestScheduler(fake)
	s.status.PerformanceMode = "Balanced"
	s.lastPerfPoll = time.Now().Add(-3 * time.Second)

	fake.PerfMode = device.PerfSilent
	s.Tick(true)

	assert.Equal(t, "Silent", s.status.PerformanceMode)
	assert.NotContains(t, fake.Calls, "GetLogoMode", "Minimized polling stays cheap")
	assert.NotContains(t, fake.Calls, "GetKeyboardBrightness")
}
