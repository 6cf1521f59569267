package uart

import (
	"path/filepath"
	"sort"
)

// PortInfo describes a serial device found by AvailablePorts.
type PortInfo struct {
	// Device is the path to open with OpenPort
	Device string

	// Description is the stable /dev/serial/by-id name, or "n/a"
	Description string
}

var portPatterns = []string{"dev/ttyUSB*", "dev/ttyACM*"}

const byIDPattern = "dev/serial/by-id/*"

// AvailablePorts lists USB serial adapters present on the system, sorted by
// device path. It returns an empty slice when none are found.
func AvailablePorts() []PortInfo {
	return availablePorts("/")
}

func availablePorts(root string) []PortInfo {
	descriptions := make(map[string]string)

	for _, pattern := range portPatterns {
		matches, _ := filepath.Glob(filepath.Join(root, pattern))
		for _, m := range matches {
			descriptions[m] = "n/a"
		}
	}

	links, _ := filepath.Glob(filepath.Join(root, byIDPattern))
	for _, link := range links {
		target, err := filepath.EvalSymlinks(link)
		if err != nil {
			continue
		}
		descriptions[target] = filepath.Base(link)
	}

	ports := make([]PortInfo, 0, len(descriptions))
	for dev, desc := range descriptions {
		ports = append(ports, PortInfo{Device: dev, Description: desc})
	}
	sort.Slice(ports, func(i, j int) bool {
		return ports[i].Device < ports[j].Device
	})
	return ports
}
