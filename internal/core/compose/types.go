package compose

// =============================================================================
// Descriptor - Main Output Type
// =============================================================================

// Version is the compose file format version written to the descriptor.
const Version = "3.3"

// Descriptor is an ordered set of services, serialized as a compose file.
type Descriptor struct {
	Services []Service
}

// Service returns the named service, if present.
func (d *Descriptor) Service(name string) (Service, bool) {
	for _, s := range d.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

// =============================================================================
// Service Types
// =============================================================================

// Service is one entry under "services". Field order is serialization order.
type Service struct {
	Name          string        `yaml:"-"`
	ContainerName string        `yaml:"container_name,omitempty"`
	Image         string        `yaml:"image"`
	Privileged    *bool         `yaml:"privileged,omitempty"`
	Runtime       string        `yaml:"runtime,omitempty"`
	NetworkMode   string        `yaml:"network_mode,omitempty"`
	SecurityOpt   []string      `yaml:"security_opt,omitempty"`
	Restart       RestartPolicy `yaml:"restart,omitempty"`
	Volumes       []string      `yaml:"volumes,omitempty"`
	Environment   Environment   `yaml:"environment,omitempty"`
	Command       string        `yaml:"command,omitempty"`
	ShmSize       string        `yaml:"shm_size,omitempty"`

	// DeviceIndex is the accelerator this service is pinned to; nil for
	// services that are not accelerator-bound.
	DeviceIndex *int `yaml:"-"`
}

// RestartPolicy represents the restart policy.
type RestartPolicy string

const (
	RestartNo            RestartPolicy = "no"
	RestartAlways        RestartPolicy = "always"
	RestartOnFailure     RestartPolicy = "on-failure"
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

// =============================================================================
// Environment Types
// =============================================================================

// EnvVar is a single environment entry.
type EnvVar struct {
	Name  string
	Value string
	// Unset writes the entry as null so the runtime resolves it from its own environment.
	Unset bool
}

// Environment is an ordered environment mapping.
type Environment []EnvVar

// Get returns the value of name and whether it is present.
func (e Environment) Get(name string) (string, bool) {
	for _, v := range e {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// Clone returns a copy that shares no storage with e.
func (e Environment) Clone() Environment {
	if e == nil {
		return nil
	}
	out := make(Environment, len(e))
	copy(out, e)
	return out
}

// =============================================================================
// Template Types
// =============================================================================

// WorkerTemplate is a static description of one GPU worker type.
type WorkerTemplate struct {
	Name    string
	Image   string
	Command string
	Env     Environment
	ShmSize string
}

// Secrets holds values passed through from the generator's own environment.
type Secrets struct {
	VaultAddress string
	VaultToken   string
}

// WatcherConfig configures the auxiliary image-update watcher service.
type WatcherConfig struct {
	Image           string
	NotificationURL string
}
