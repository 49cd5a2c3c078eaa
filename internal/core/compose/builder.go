package compose

import (
	"fmt"
	"strconv"

	"github.com/artpar/gpudeploy/internal/core/tier"
)

// =============================================================================
// Worker Defaults
// =============================================================================

const (
	WorkerRuntime     = "nvidia"
	WorkerNetworkMode = "host"
)

// WorkerSecurityOpt is applied to every worker service.
var WorkerSecurityOpt = []string{"apparmor=unconfined"}

// =============================================================================
// Naming
// =============================================================================

// ServiceName generates the service name for device index i of count.
// The 1-based ordinal is appended only when more than one device exists.
//
// Example:
//
//	ServiceName("yolo_worker", 1, 2) // returns "yolo_worker2"
//	ServiceName("yolo_worker", 0, 1) // returns "yolo_worker"
func ServiceName(template string, i, count int) string {
	if count > 1 {
		return fmt.Sprintf("%s%d", template, i+1)
	}
	return template
}

// =============================================================================
// Expansion
// =============================================================================

// ExpandTemplate replicates tpl once per accelerator. Every instance gets its
// own environment copy with the device index set and routing lists filtered
// to t. A count of zero produces no instances.
func ExpandTemplate(tpl WorkerTemplate, count int, t tier.Tier) []Service {
	if count <= 0 {
		return nil
	}

	services := make([]Service, 0, count)
	for i := 0; i < count; i++ {
		name := ServiceName(tpl.Name, i, count)
		device := i

		env := tpl.Env.Clone()
		for j := range env {
			switch {
			case env[j].Name == DeviceIndexKey:
				env[j].Value = strconv.Itoa(device)
				env[j].Unset = false
			case tier.IsRoutingKey(env[j].Name) && !env[j].Unset:
				env[j].Value = tier.FilterRoutingList(env[j].Value, t)
			}
		}

		services = append(services, Service{
			Name:          name,
			ContainerName: name,
			Image:         tpl.Image,
			Privileged:    boolPtr(false),
			Runtime:       WorkerRuntime,
			NetworkMode:   WorkerNetworkMode,
			SecurityOpt:   append([]string(nil), WorkerSecurityOpt...),
			Restart:       RestartOnFailure,
			Environment:   env,
			Command:       tpl.Command,
			ShmSize:       tpl.ShmSize,
			DeviceIndex:   &device,
		})
	}
	return services
}

// =============================================================================
// Descriptor
// =============================================================================

// BuildParams contains the inputs for BuildDescriptor.
type BuildParams struct {
	AcceleratorCount int
	Tier             tier.Tier
	Templates        []WorkerTemplate
	Watcher          WatcherConfig
}

// BuildDescriptor emits the watcher service followed by every template
// expanded across the accelerators, in catalog order.
func BuildDescriptor(params BuildParams) (*Descriptor, error) {
	if params.AcceleratorCount < 0 {
		return nil, NewBuildError("", fmt.Sprintf("got %d accelerators", params.AcceleratorCount), ErrNegativeCount)
	}

	d := &Descriptor{}
	seen := make(map[string]bool)
	add := func(svc Service) error {
		if seen[svc.Name] {
			return NewBuildError("services."+svc.Name, "service name already used", ErrDuplicateService)
		}
		seen[svc.Name] = true
		d.Services = append(d.Services, svc)
		return nil
	}

	if err := add(WatcherService(params.Watcher)); err != nil {
		return nil, err
	}
	for _, tpl := range params.Templates {
		for _, svc := range ExpandTemplate(tpl, params.AcceleratorCount, params.Tier) {
			if err := add(svc); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// WorkerCount returns the number of accelerator-bound services.
func (d *Descriptor) WorkerCount() int {
	n := 0
	for _, s := range d.Services {
		if s.DeviceIndex != nil {
			n++
		}
	}
	return n
}

func boolPtr(b bool) *bool {
	return &b
}
