// Package scheduler implements the device-state reconciliation core: a
// cooperative, tick-driven controller that keeps the in-memory status in
// agreement with the live device while other tools, hardware hotkeys and
// power transitions mutate it underneath.
package scheduler

import (
	"context"
	"time"

	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/logger"
	"github.com/rhelper/razerctl/internal/notify"
	"github.com/rhelper/razerctl/internal/power"
	"github.com/rhelper/razerctl/internal/probe"
	"github.com/rhelper/razerctl/internal/sysinfo"
	"github.com/rhelper/razerctl/internal/telemetry"
)

const (
	// Tiered cadences, all anchored to timestamps owned by the scheduler.
	// The host drives ticks; the scheduler never creates its own timer.
	refreshInterval       = 500 * time.Millisecond
	fanEnforceInterval    = time.Second
	stateCheckInterval    = 3 * time.Second
	minimizedPollInterval = 2500 * time.Millisecond

	// Settle delay between the steps of the fan-restore sequence after a
	// performance mode switch
	defaultSettleDelay = 50 * time.Millisecond

	defaultManualRPM = 2000
)

// Options configures a Scheduler
type Options struct {
	// OpenDevice opens an independent device handle. It is called once on
	// Start for the scheduler's own handle and again for each background
	// worker that needs device access; handles are never shared.
	OpenDevice func() (device.Controller, error)

	// Power reports the current power source
	Power power.Source

	ACProfile      Profile
	BatteryProfile Profile

	// StatusMessages gates optional informational notifications
	StatusMessages bool

	// Recorder journals reconciliation events; nil disables telemetry
	Recorder telemetry.Recorder
}

// Scheduler owns all mutable panel state. It must only be used from the
// thread that drives Tick; the single-writer invariant is what makes the
// design lock-free.
type Scheduler struct {
	openDevice func() (device.Controller, error)
	dev        device.Controller
	power      power.Source
	notify     *notify.Center
	recorder   telemetry.Recorder

	status         DeviceStatus
	baseline       *device.State
	specs          sysinfo.Specs
	availableModes []device.PerfMode
	manualFanRPM   uint16

	acPower        bool
	acProfile      Profile
	batteryProfile Profile
	statusMessages bool

	brightnessActive bool

	fullyInitialized bool
	initPowerRead    bool
	initSpecsDone    bool

	initEvents   <-chan initEvent
	probeResults <-chan []device.PerfMode

	lastRefresh    time.Time
	lastStateCheck time.Time
	lastFanEnforce time.Time
	lastPerfPoll   time.Time

	settleDelay time.Duration
}

func New(opts Options) *Scheduler {
	p := opts.Power
	if p == nil {
		p = power.DefaultSource()
	}

	now := time.Now()

	return &Scheduler{
		openDevice:     opts.OpenDevice,
		power:          p,
		notify:         notify.NewCenter(),
		recorder:       opts.Recorder,
		status:         newDeviceStatus(),
		specs:          sysinfo.Default(),
		acPower:        true,
		acProfile:      opts.ACProfile,
		batteryProfile: opts.BatteryProfile,
		statusMessages: opts.StatusMessages,
		manualFanRPM:   defaultManualRPM,
		lastRefresh:    now,
		lastStateCheck: now,
		lastFanEnforce: now,
		lastPerfPoll:   now,
		settleDelay:    defaultSettleDelay,
	}
}

// Start opens the scheduler's device handle, takes the fast initial state
// read and spawns the background initialization worker. It never blocks on
// slow inventory queries.
func (s *Scheduler) Start() {
	if dev, err := s.openDevice(); err != nil {
		s.postError("Failed to connect to device: " + err.Error())
	} else {
		s.dev = dev
	}

	s.detectAvailableModes()

	if s.dev != nil {
		s.readInitialState()
	}

	s.startBackgroundInit()
}

// Close releases the scheduler's device handle
func (s *Scheduler) Close() {
	if s.dev != nil {
		s.dev.Close()
		s.dev = nil
	}
}

// detectAvailableModes prefers the descriptor-provided list; otherwise the
// full universe stands in pessimistically until a probe narrows it
func (s *Scheduler) detectAvailableModes() {
	if s.dev != nil {
		if modes := s.dev.Info().PerfModes; modes != nil {
			s.availableModes = append([]device.PerfMode(nil), modes...)
			return
		}
	}
	s.availableModes = device.AllPerfModes()
}

type perfFan struct {
	perf device.PerfMode
	fan  device.FanMode
}

// readInitialState fills the status snapshot with whatever the device will
// answer, field by field. Partial failure leaves placeholders and defaults;
// it must not blank the whole panel.
func (s *Scheduler) readInitialState() {
	reader := device.NewStateReader(s.dev)

	if brightness, ok := device.Read(reader, "keyboard brightness", func(c device.Controller) (uint8, error) {
		return c.GetKeyboardBrightness()
	}); ok {
		s.status.KeyboardBrightness = brightness
	}

	if pf, ok := device.Read(reader, "performance mode", func(c device.Controller) (perfFan, error) {
		perf, fan, err := c.GetPerfMode()
		return perfFan{perf, fan}, err
	}); ok {
		s.status.PerformanceMode = pf.perf.String()
		s.applyFanMode(pf.fan)
	}

	// Retry once: this read defines both the mode and fan columns
	if s.status.FanMode == readingPlaceholder {
		if perf, fan, err := s.dev.GetPerfMode(); err == nil {
			s.status.PerformanceMode = perf.String()
			s.applyFanMode(fan)
		}
	}

	if lightsOn, ok := device.Read(reader, "lights always on", func(c device.Controller) (bool, error) {
		return c.GetLightsAlwaysOn()
	}); ok {
		s.status.LightsAlwaysOn = lightsOn
	}

	if batteryCare, ok := device.Read(reader, "battery care", func(c device.Controller) (bool, error) {
		return c.GetBatteryCare()
	}); ok {
		s.status.BatteryCare = batteryCare
	}

	if diags := reader.Finish(); len(diags) > 0 {
		logger.Debug().Strs("errors", diags).Msg("device state reading errors")
	}
}

// Tick is the per-cycle driver. The host interface calls it on a fixed
// cadence; all effects happen here in a fixed order.
func (s *Scheduler) Tick(minimized bool) {
	s.drainInitEvents()
	s.drainProbeResults()

	switch {
	case minimized:
		// Cheap poll only: catch external mode changes while idle
		if s.fullyInitialized && time.Since(s.lastPerfPoll) >= minimizedPollInterval {
			s.pollPerfMode()
			s.lastPerfPoll = time.Now()
		}

	case s.fullyInitialized && s.dev != nil && time.Since(s.lastRefresh) >= refreshInterval:
		if acPower, err := s.power.ACOnline(); err == nil && acPower != s.acPower {
			s.acPower = acPower
			s.autoSwitchProfile()
		}

		s.refreshFanReadings()

		if time.Since(s.lastFanEnforce) >= fanEnforceInterval {
			s.enforceManualFanRPM()
		}

		// Brightness can change via hardware keys; hands off while the
		// user is dragging the control
		if !s.brightnessActive {
			if brightness, err := s.dev.GetKeyboardBrightness(); err == nil {
				s.status.KeyboardBrightness = brightness
			}
		}

		if s.status.LightsAlwaysOn {
			s.syncToggleState()

			if time.Since(s.lastStateCheck) >= stateCheckInterval {
				if err := s.checkExternalChanges(); err != nil {
					// Fall back to the essential reads; failures here
					// stay silent to avoid auto-refresh spam
					_ = s.readEssentialState()
				}
				s.lastStateCheck = time.Now()
			}
		}

		s.lastRefresh = time.Now()
	}

	s.notify.Tick()
}

// pollPerfMode is the minimized-state poll: performance and fan mode labels
// only, no expensive reads
func (s *Scheduler) pollPerfMode() {
	if s.dev == nil {
		return
	}

	perf, fan, err := s.dev.GetPerfMode()
	if err != nil {
		return
	}

	if newMode := perf.String(); s.status.PerformanceMode != newMode {
		s.status.PerformanceMode = newMode
		s.applyFanMode(fan)
	}
}

// refreshFanReadings updates the live RPM readout and the fan mode label
func (s *Scheduler) refreshFanReadings() {
	s.status.ActualRPM = nil
	if rpm, err := s.dev.GetFanActualRPM(device.Zone1); err == nil {
		s.status.ActualRPM = &rpm
	}

	fan, _ := s.readFanState()
	s.status.FanMode = fan.String()
}

// enforceManualFanRPM re-asserts the configured RPM while the fan is in
// manual mode. The hardware setting can silently drift or be overridden by
// firmware; writing the last-known intent back counteracts that. Failures
// are swallowed: this runs too often to notify on.
func (s *Scheduler) enforceManualFanRPM() {
	if s.status.FanMode != device.FanManual.String() || s.dev == nil {
		return
	}

	rpm, err := s.dev.GetFanRPM(device.Zone1)
	if err != nil {
		return
	}

	if err := s.dev.SetFanRPM(rpm, true); err != nil {
		return
	}

	s.manualFanRPM = rpm
	s.status.SetRPM = &rpm
	s.lastFanEnforce = time.Now()
}

// readFanState reads the fan mode with one immediate retry, plus the
// configured RPM when available
func (s *Scheduler) readFanState() (device.FanMode, *uint16) {
	_, fan, err := s.dev.GetPerfMode()
	if err != nil {
		if _, fan, err = s.dev.GetPerfMode(); err != nil {
			logger.Warn().Err(err).Msg("failed to read device fan mode")
			fan = device.FanAuto
		}
	}

	var setRPM *uint16
	if rpm, err := s.dev.GetFanRPM(device.Zone1); err == nil {
		setRPM = &rpm
	}

	return fan, setRPM
}

// applyFanMode updates the fan columns of the status snapshot from a mode
func (s *Scheduler) applyFanMode(fan device.FanMode) {
	s.status.FanMode = fan.String()
	s.status.SetRPM = nil

	if fan == device.FanManual {
		if rpm, err := s.dev.GetFanRPM(device.Zone1); err == nil {
			s.status.SetRPM = &rpm
			s.manualFanRPM = rpm
		}
	}
}

// readDeviceStatus performs a full status read. The performance mode read is
// state-defining and aborts on failure; the remaining fields are best
// effort.
func (s *Scheduler) readDeviceStatus() error {
	perf, fan, err := s.dev.GetPerfMode()
	if err != nil {
		return err
	}
	s.status.PerformanceMode = perf.String()
	s.applyFanMode(fan)

	s.status.ActualRPM = nil
	if rpm, err := s.dev.GetFanActualRPM(device.Zone1); err == nil {
		s.status.ActualRPM = &rpm
	}

	if logo, err := s.dev.GetLogoMode(); err == nil {
		s.status.LogoMode = logo.String()
	}

	if brightness, err := s.dev.GetKeyboardBrightness(); err == nil {
		s.status.KeyboardBrightness = brightness
	}

	if lightsOn, err := s.dev.GetLightsAlwaysOn(); err == nil {
		s.status.LightsAlwaysOn = lightsOn
	}

	if batteryCare, err := s.dev.GetBatteryCare(); err == nil {
		s.status.BatteryCare = batteryCare
	}

	return nil
}

// readEssentialState refreshes only the dynamic fields external tools flip
func (s *Scheduler) readEssentialState() error {
	perf, fan, err := s.dev.GetPerfMode()
	if err != nil {
		return err
	}
	s.status.PerformanceMode = perf.String()
	s.applyFanMode(fan)

	if logo, err := s.dev.GetLogoMode(); err == nil {
		s.status.LogoMode = logo.String()
	}

	return nil
}

// syncWithDeviceState refreshes the fields the user can also change from
// the hardware side, without a full read
func (s *Scheduler) syncWithDeviceState() {
	if s.dev == nil {
		return
	}

	if !s.brightnessActive {
		if brightness, err := s.dev.GetKeyboardBrightness(); err == nil {
			s.status.KeyboardBrightness = brightness
		}
	}

	fan, setRPM := s.readFanState()
	s.applyFanMode(fan)
	if setRPM != nil {
		s.manualFanRPM = *setRPM
	}

	s.syncToggleState()
}

// syncToggleState refreshes the two toggles external tools can flip
func (s *Scheduler) syncToggleState() {
	if lightsOn, err := s.dev.GetLightsAlwaysOn(); err == nil {
		s.status.LightsAlwaysOn = lightsOn
	}

	if batteryCare, err := s.dev.GetBatteryCare(); err == nil {
		s.status.BatteryCare = batteryCare
	}
}

// initFanFromDevice seeds the manual RPM from the device's configured value
func (s *Scheduler) initFanFromDevice() {
	fan, setRPM := s.readFanState()
	s.applyFanMode(fan)
	if setRPM != nil {
		s.manualFanRPM = *setRPM
	}
}

// checkExternalChanges diffs a fresh full snapshot against the stored
// baseline. Any field mismatch means another tool or a hotkey changed the
// hardware; the baseline is replaced wholesale and the panel follows.
func (s *Scheduler) checkExternalChanges() error {
	if s.dev == nil {
		return nil
	}

	current, err := device.ReadState(s.dev)
	if err != nil {
		return err
	}

	if s.baseline == nil {
		// First snapshot is baseline-only: no diff, no event
		s.baseline = &current
		return nil
	}

	if current == *s.baseline {
		return nil
	}

	oldPerfMode := s.baseline.PerfMode.String()
	newPerfMode := current.PerfMode.String()

	s.baseline = &current

	s.status.PerformanceMode = newPerfMode
	s.applyFanMode(current.FanMode)
	s.status.LogoMode = current.LogoMode.String()
	s.status.KeyboardBrightness = current.Brightness
	s.status.LightsAlwaysOn = current.LightsAlwaysOn
	s.status.BatteryCare = current.BatteryCare

	if oldPerfMode != newPerfMode {
		s.post(notify.Info("Performance mode changed externally: " + oldPerfMode + " → " + newPerfMode))
		s.record(telemetry.EventExternalChange, oldPerfMode+" → "+newPerfMode)
	} else {
		s.postOptional("Device state updated externally")
		s.record(telemetry.EventExternalChange, "non-mode fields")
	}

	return nil
}

// updateStoredState refreshes the baseline from the live device after a
// deliberate change so the next diff doesn't misread it as external
func (s *Scheduler) updateStoredState() {
	if s.dev == nil {
		return
	}

	if current, err := device.ReadState(s.dev); err == nil {
		s.baseline = &current
	}
}

// startProbe spawns the capability probe unless the descriptor already
// answered the question. force bypasses that check but never the Custom
// guard: probing while in Custom mode can lose unrelated custom settings.
func (s *Scheduler) startProbe(force bool) {
	if s.dev == nil {
		return
	}
	if !force && s.dev.Info().PerfModes != nil {
		return
	}
	if perf, _, err := s.dev.GetPerfMode(); err == nil && perf == device.PerfCustom {
		return
	}

	// Replacing the receiver abandons any in-flight probe; its late
	// result lands in a buffered channel nobody reads
	s.probeResults = probe.Start(s.openDevice)
}

// drainProbeResults merges a finished probe. An empty result means the
// probe could not run; the previous capability set stays untouched.
func (s *Scheduler) drainProbeResults() {
	if s.probeResults == nil {
		return
	}

	select {
	case modes := <-s.probeResults:
		if len(modes) > 0 {
			s.availableModes = modes
			s.postOptional("Detected supported performance modes")
			s.record(telemetry.EventProbeComplete, modesDetail(modes))
		}
		s.probeResults = nil
	default:
	}
}

func modesDetail(modes []device.PerfMode) string {
	detail := ""
	for i, m := range modes {
		if i > 0 {
			detail += ", "
		}
		detail += m.String()
	}
	return detail
}

// Accessors for the presentation layer. All read-only; the returned values
// are copies.

func (s *Scheduler) Status() DeviceStatus {
	return s.status
}

func (s *Scheduler) CurrentMessage() *notify.Message {
	return s.notify.Current()
}

func (s *Scheduler) AvailableModes() []device.PerfMode {
	return append([]device.PerfMode(nil), s.availableModes...)
}

func (s *Scheduler) Specs() sysinfo.Specs {
	return s.specs
}

func (s *Scheduler) ACPower() bool {
	return s.acPower
}

func (s *Scheduler) Initialized() bool {
	return s.fullyInitialized
}

// SetBrightnessInteracting marks the brightness control as actively dragged
// so reconciliation does not fight the user's gesture
func (s *Scheduler) SetBrightnessInteracting(active bool) {
	s.brightnessActive = active
}

// Notification helpers. The verbosity gate lives in postOptional and
// nowhere else.

func (s *Scheduler) post(m notify.Message) {
	s.notify.Post(m)
}

func (s *Scheduler) postOptional(content string) {
	if s.statusMessages {
		s.notify.Post(notify.Info(content))
	}
}

func (s *Scheduler) postError(content string) {
	s.notify.Post(notify.Error(content))
}

func (s *Scheduler) record(kind telemetry.EventKind, detail string) {
	if s.recorder == nil {
		return
	}

	event := telemetry.Event{Timestamp: time.Now(), Kind: kind, Detail: detail}
	if err := s.recorder.Record(context.Background(), event); err != nil {
		logger.Debug().Err(err).Msg("failed to record telemetry event")
	}
}
