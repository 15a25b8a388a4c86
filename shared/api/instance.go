package api

// InstanceSource represents the creation source for a new instance.
type InstanceSource struct {
	// Image fingerprint (for image source)
	// Example: ed56997f7c5b48e8d78986d2467a26109be6fb9f2d92e8c7b08eb8b6cec7629a
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	// Source type
	// Example: image
	Type string `json:"type" yaml:"type"`
}

// InstancesPost represents the fields available for a new LXD instance.
//
// Fields are kept in lexical order so that the encoded request matches the daemon's own key ordering.
type InstancesPost struct {
	// Instance configuration map (refer to doc/instances.md)
	// Example: {"limits.cpu": "2"}
	Config map[string]string `json:"config" yaml:"config"`

	// Instance devices (refer to doc/instances.md)
	Devices Devices `json:"devices" yaml:"devices"`

	// Instance name
	// Example: pied-piper-valley
	Name string `json:"name" yaml:"name"`

	// Creation source
	Source InstanceSource `json:"source" yaml:"source"`
}

// Instance represents a LXD instance.
type Instance struct {
	// Instance configuration map (refer to doc/instances.md)
	Config map[string]string `json:"config" yaml:"config"`

	// Instance devices (refer to doc/instances.md)
	Devices Devices `json:"devices" yaml:"devices"`

	// Instance name
	// Example: pied-piper-valley
	Name string `json:"name" yaml:"name"`

	// Instance status (see instance_state)
	// Example: Running
	Status string `json:"status" yaml:"status"`

	// Instance status code (see instance_state)
	// Example: 101
	StatusCode StatusCode `json:"status_code" yaml:"status_code"`

	// The type of instance (container or virtual-machine)
	// Example: virtual-machine
	Type string `json:"type" yaml:"type"`
}
