package scheduler

import (
	"github.com/rhelper/razerctl/internal/notify"
	"github.com/rhelper/razerctl/internal/sysinfo"
)

type initEventKind uint8

const (
	initPowerStateRead initEventKind = iota
	initComplete
	initSpecsComplete
)

type initEvent struct {
	kind    initEventKind
	acPower bool
	specs   sysinfo.Specs
}

// startBackgroundInit spawns the one startup worker. It reports power state
// first (fast, needed for profile correctness), then signals completion so
// the interface is not held hostage by slow inventory queries, and delivers
// the inventory last. Each milestone fires at most once per process.
func (s *Scheduler) startBackgroundInit() {
	events := make(chan initEvent, 4)
	s.initEvents = events

	var deviceName string
	if s.dev != nil {
		deviceName = s.dev.Info().Name
	}

	go func() {
		if acPower, err := s.power.ACOnline(); err == nil {
			events <- initEvent{kind: initPowerStateRead, acPower: acPower}
		}

		events <- initEvent{kind: initComplete}

		events <- initEvent{kind: initSpecsComplete, specs: sysinfo.Collect(deviceName)}
	}()

	s.post(notify.Info("Initializing..."))
}

// drainInitEvents applies any pending startup milestones without blocking
func (s *Scheduler) drainInitEvents() {
	if s.initEvents == nil {
		return
	}

	for {
		select {
		case ev := <-s.initEvents:
			s.applyInitEvent(ev)
		default:
			return
		}
	}
}

func (s *Scheduler) applyInitEvent(ev initEvent) {
	switch ev.kind {
	case initPowerStateRead:
		s.acPower = ev.acPower
		s.initPowerRead = true
		// No message for the initial power state

	case initComplete:
		s.fullyInitialized = true
		if s.dev == nil {
			return
		}
		if err := s.readDeviceStatus(); err != nil {
			s.postError("Failed to read device status: " + err.Error())
			return
		}
		s.updateStoredState()
		s.syncWithDeviceState()
		s.initFanFromDevice()
		// The only automatic probe decision happens here
		s.startProbe(false)

	case initSpecsComplete:
		s.specs = ev.specs
		s.initSpecsDone = true
		if s.fullyInitialized && s.initPowerRead && s.initSpecsDone {
			s.post(notify.Info("Initialization complete"))
		} else {
			s.postOptional("System specifications loaded")
		}
	}
}
