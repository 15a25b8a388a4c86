package vm

import (
	"github.com/docker/go-units"
)

// MemorySize is an amount of memory or disk space, in bytes.
type MemorySize int64

// ParseMemorySize parses sizes such as "3M", "1.5GiB" or "16000000000".
//
// Unit suffixes are binary (1K is 1024 bytes).
func ParseMemorySize(size string) (MemorySize, error) {
	if size == "" {
		return 0, nil
	}

	bytes, err := units.RAMInBytes(size)
	if err != nil {
		return 0, err
	}

	return MemorySize(bytes), nil
}

// Bytes returns the size in bytes.
func (m MemorySize) Bytes() int64 {
	return int64(m)
}

// String returns a human readable form of the size.
func (m MemorySize) String() string {
	return units.BytesSize(float64(m))
}

// NetworkInterface is a network adapter of a virtual machine.
type NetworkInterface struct {
	// Name of the host network the adapter is attached to
	ID string

	MACAddress string

	// Whether the guest should configure the interface automatically
	AutoMode bool
}

// Description holds everything needed to launch a virtual machine. It never changes afterwards.
type Description struct {
	NumCores  int
	MemSize   MemorySize
	DiskSpace MemorySize

	VMName            string
	DefaultMACAddress string
	ExtraInterfaces   []NetworkInterface
	SSHUsername       string

	Image Image

	// Cloud-init documents, nil when absent
	MetaDataConfig    any
	UserDataConfig    any
	VendorDataConfig  any
	NetworkDataConfig any
}
