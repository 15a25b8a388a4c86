package vm

import (
	"time"
)

// VirtualMachine is an instance managed by a hypervisor backend.
type VirtualMachine interface {
	Name() string

	Start() error
	Shutdown() error
	Suspend() error

	// CurrentState queries the hypervisor for the state of the instance.
	CurrentState() State

	// EnsureRunning fails if the instance stopped while it was expected to boot.
	EnsureRunning(timeout time.Duration) error

	SSHPort() int
	SSHHostname(timeout time.Duration) (string, error)
	SSHUsername() string
	ManagementIPv4() string
	IPv6() string

	// Close releases the instance without persisting any state change.
	Close() error
}

// StatusMonitor records instance state changes.
type StatusMonitor interface {
	PersistStateFor(name string, state State) error
}

// VirtualMachineFactory creates instances and manages the resources of a hypervisor backend.
type VirtualMachineFactory interface {
	CreateVirtualMachine(desc Description, monitor StatusMonitor) (VirtualMachine, error)
	RemoveResourcesFor(name string) error

	FetchType() FetchType
	PrepareSourceImage(source Image) (Image, error)
	PrepareInstanceImage(instance Image, desc Description) error

	HypervisorHealthCheck() error
	BackendVersionString() (string, error)
	CreateImageVault(hosts []ImageHost) (ImageVault, error)

	// MakeCloudInitImage returns the path of the built image, or "" when the backend consumes cloud-init data directly.
	MakeCloudInitImage(name string, desc Description) (string, error)

	Networks() ([]NetworkInterfaceInfo, error)
}
