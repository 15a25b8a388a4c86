package api

// Device represents a LXD device configuration.
type Device map[string]string

// Devices represents the devices of an instance or profile, keyed by device name.
type Devices map[string]Device

// ProfilePut represents the modifiable fields of a LXD profile.
type ProfilePut struct {
	// Description of the profile
	// Example: Default profile for Multipass project
	Description string `json:"description" yaml:"description"`

	// List of devices
	// Example: {"eth0": {"name": "eth0", "nictype": "bridged", "parent": "mpbr0", "type": "nic"}}
	Devices Devices `json:"devices" yaml:"devices"`
}

// Profile represents a LXD profile.
type Profile struct {
	// Instance configuration map (refer to doc/instances.md)
	Config map[string]string `json:"config" yaml:"config"`

	// Description of the profile
	// Example: Default profile for Multipass project
	Description string `json:"description" yaml:"description"`

	// List of devices
	Devices Devices `json:"devices" yaml:"devices"`

	// The profile name
	// Read only: true
	// Example: default
	Name string `json:"name" yaml:"name"`
}
