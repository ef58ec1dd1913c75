package probe_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rhelper/razerctl/internal/device"
	"github.com/rhelper/razerctl/internal/device/devicetest"
	"github.com/rhelper/razerctl/internal/logger"
	"github.com/rhelper/razerctl/internal/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(false, false, true)
	m.Run()
}

func receive(t *testing.T, results <-chan []device.PerfMode) []device.PerfMode {
	t.Helper()

	select {
	case modes := <-results:
		return modes
	case <-time.After(5 * time.Second):
		t.Fatal("probe did not finish")
		return nil
	}
}

func TestProbeDiscoversSupportedModes(t *testing.T) {
	fake := devicetest.New()
	fake.SupportedModes = map[device.PerfMode]bool{
		device.PerfBattery:     true,
		device.PerfBalanced:    true,
		device.PerfPerformance: true,
	}

	modes := receive(t, probe.Start(func() (device.Controller, error) {
		return fake, nil
	}))

	assert.Equal(t, []device.PerfMode{
		device.PerfBattery,
		device.PerfBalanced,
		device.PerfPerformance,
	}, modes)

	assert.Equal(t, device.PerfBalanced, fake.PerfMode, "Original mode restored")
	assert.True(t, fake.Closed, "Probe closes its own handle")
}

func TestProbeNeverWritesInCustomMode(t *testing.T) {
	fake := devicetest.New()
	fake.PerfMode = device.PerfCustom

	modes := receive(t, probe.Start(func() (device.Controller, error) {
		return fake, nil
	}))

	assert.Equal(t, []device.PerfMode{device.PerfCustom}, modes)
	assert.Zero(t, fake.WriteCount(), "Custom mode forbids probe writes")
}

func TestProbeOpenFailure(t *testing.T) {
	modes := receive(t, probe.Start(func() (device.Controller, error) {
		return nil, errors.New("no device")
	}))

	assert.Empty(t, modes, "Unrunnable probe yields an empty result")
}

func TestProbeReadFailure(t *testing.T) {
	fake := devicetest.New()
	fake.Fail = map[string]error{"GetPerfMode": errors.New("nack")}

	modes := receive(t, probe.Start(func() (device.Controller, error) {
		return fake, nil
	}))

	assert.Empty(t, modes)
	assert.Zero(t, fake.WriteCount())
	require.True(t, fake.Closed)
}
