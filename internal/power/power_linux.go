//go:build linux

package power

import (
	"os"
	"path/filepath"
	"strings"
)

const powerSupplyDir = "/sys/class/power_supply"

type sysfsSource struct {
	root string
}

func platformSource() Source {
	return sysfsSource{root: powerSupplyDir}
}

// ACOnline scans the power-supply class for a mains adapter and reads its
// online flag. Machines without a mains entry (desktops, VMs) report AC.
func (s sysfsSource) ACOnline() (bool, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return true, nil
	}

	for _, entry := range entries {
		base := filepath.Join(s.root, entry.Name())

		kind, err := os.ReadFile(filepath.Join(base, "type"))
		if err != nil || strings.TrimSpace(string(kind)) != "Mains" {
			continue
		}

		online, err := os.ReadFile(filepath.Join(base, "online"))
		if err != nil {
			continue
		}

		return strings.TrimSpace(string(online)) == "1", nil
	}

	return true, nil
}
