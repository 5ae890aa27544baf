package sysinfo

import (
	"os"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
)

// Collect gathers host identity for the report header. Failures degrade to
// whatever the OS will still tell us; a scan never aborts over metadata.
func Collect() model.HostInfo {
	info, err := host.Info()
	if err != nil {
		hostname, _ := os.Hostname()
		return model.HostInfo{Hostname: hostname}
	}
	return model.HostInfo{
		Hostname:        info.Hostname,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
	}
}
