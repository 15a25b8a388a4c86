package vm

// NetworkInterfaceInfo describes a network available on the host.
type NetworkInterfaceInfo struct {
	ID          string
	Type        string
	Description string
}
