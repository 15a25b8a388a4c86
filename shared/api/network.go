package api

// NetworksPost represents the fields of a new LXD network.
type NetworksPost struct {
	// Description of the network
	// Example: Network bridge for Multipass
	Description string `json:"description" yaml:"description"`

	// The name of the new network
	// Example: mpbr0
	Name string `json:"name" yaml:"name"`
}

// Network represents a LXD network.
type Network struct {
	// Description of the network
	// Example: My new LXD bridge
	Description string `json:"description" yaml:"description"`

	// The network name
	// Read only: true
	// Example: lxdbr0
	Name string `json:"name" yaml:"name"`

	// The network type
	// Read only: true
	// Example: bridge
	Type string `json:"type" yaml:"type"`

	// Whether this is a LXD managed network
	// Read only: true
	// Example: true
	Managed bool `json:"managed" yaml:"managed"`

	// The state of the network (for managed network in clusters)
	// Read only: true
	// Example: Created
	Status string `json:"status" yaml:"status"`
}

// NetworkLease represents a DHCP lease.
type NetworkLease struct {
	// The hostname associated with the record
	// Example: c1
	Hostname string `json:"hostname" yaml:"hostname"`

	// The MAC address
	// Example: 00:16:3e:2c:89:d9
	Hwaddr string `json:"hwaddr" yaml:"hwaddr"`

	// The IP address
	// Example: 10.0.0.98
	Address string `json:"address" yaml:"address"`

	// The type of record (static or dynamic)
	// Example: dynamic
	Type string `json:"type" yaml:"type"`

	// What cluster member this record was found on
	// Example: lxd01
	Location string `json:"location" yaml:"location"`
}
