// Package sysinfo collects best-effort hardware inventory for display. Every
// lookup degrades to a default on failure; nothing here is allowed to error
// out of the background fetch.
package sysinfo

import (
	"strings"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/rhelper/razerctl/internal/logger"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Specs holds the hardware inventory shown in the header
type Specs struct {
	Model    string
	CPU      string
	GPUs     []string
	RAMBytes uint64
	OS       string
}

func Default() Specs {
	return Specs{
		Model: "Unknown",
		CPU:   "Unknown",
		GPUs:  []string{"Unknown"},
	}
}

// Collect gathers the inventory. deviceName, when known, comes from the
// detected device descriptor and takes precedence for the model label.
// Collect may block on slow OS queries and must run off the scheduler
// thread.
func Collect(deviceName string) Specs {
	specs := Default()

	if deviceName != "" {
		specs.Model = SimplifyModelName(deviceName)
	}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		specs.CPU = strings.TrimSpace(infos[0].ModelName)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		specs.RAMBytes = vm.Total
	}

	if info, err := host.Info(); err == nil {
		specs.OS = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
	}

	if gpus := gpuNames(); len(gpus) > 0 {
		specs.GPUs = gpus
	}

	return specs
}

// SimplifyModelName shortens a descriptor name to model plus inch size and
// optional year, e.g. `Razer Blade 16" (2025)`.
func SimplifyModelName(name string) string {
	s := strings.TrimSpace(name)

	// Prefer everything up to the closing paren of the year
	if open := strings.IndexByte(s, '('); open >= 0 {
		if close := strings.IndexByte(s[open:], ')'); close >= 0 {
			return strings.TrimSpace(s[:open+close+1])
		}
	}

	// Fallback: keep up to the inch size after "Blade", including an
	// optional trailing quote mark
	if bladePos := strings.Index(s, "Blade"); bladePos >= 0 {
		rest := s[bladePos:]
		if digit := strings.IndexFunc(rest, func(r rune) bool { return r >= '0' && r <= '9' }); digit >= 0 {
			end := bladePos + digit
			for end < len(s) && s[end] >= '0' && s[end] <= '9' {
				end++
			}
			if end < len(s) && s[end] == '"' {
				end++
			}
			return strings.TrimSpace(s[:end])
		}
	}

	return s
}

// gpuNames enumerates GPU marketing names via NVML. Units without an NVIDIA
// driver fail the init call, which is the expected case and stays quiet.
func gpuNames() []string {
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		logger.Debug().Msgf("NVML unavailable: %v", nvml.ErrorString(ret))
		return nil
	}
	defer nvml.Shutdown()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return nil
	}

	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		dev, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}
		if name, ret := dev.GetName(); ret == nvml.SUCCESS {
			names = append(names, name)
		}
	}

	return names
}
