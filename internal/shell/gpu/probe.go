// Package gpu detects the accelerators available on the local host.
package gpu

import (
	"context"
	"log/slog"
	"strings"

	"github.com/artpar/gpudeploy/internal/shell/command"
)

// DefaultProbe lists one line per NVIDIA device.
var DefaultProbe = []string{"nvidia-smi", "-L"}

// Detector runs a device-listing probe and counts its output lines.
type Detector struct {
	runner command.Runner
	probe  []string
	logger *slog.Logger
}

// NewDetector creates a Detector. An empty probe uses DefaultProbe.
func NewDetector(runner command.Runner, probe []string, logger *slog.Logger) *Detector {
	if len(probe) == 0 {
		probe = DefaultProbe
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{runner: runner, probe: probe, logger: logger}
}

// DetectAcceleratorCount returns the number of devices the probe reports.
// A missing or failing probe is not an error: it is logged and counts as zero.
func (d *Detector) DetectAcceleratorCount(ctx context.Context) int {
	res, err := d.runner.Run(ctx, d.probe[0], d.probe[1:]...)
	if err != nil {
		d.logger.Warn("no accelerators detected, probe unavailable or failed",
			"probe", strings.Join(d.probe, " "),
			"error", err,
		)
		return 0
	}
	return CountDevices(string(res.Stdout))
}

// CountDevices counts the non-blank lines of probe output.
func CountDevices(output string) int {
	n := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
