package api

// ServerEnvironment represents the read-only environment fields of a LXD server.
type ServerEnvironment struct {
	// List of supported architectures
	// Example: ["x86_64", "i686"]
	Architectures []string `json:"architectures" yaml:"architectures"`

	// Name of the instance drivers
	// Example: lxc | qemu
	Driver string `json:"driver" yaml:"driver"`

	// Kernel version
	// Example: 5.4.0-36-generic
	KernelVersion string `json:"kernel_version" yaml:"kernel_version"`

	// Name of the cluster member answering the request
	// Example: castiana
	ServerName string `json:"server_name" yaml:"server_name"`

	// Version of the LXD daemon
	// Example: 4.11
	ServerVersion string `json:"server_version" yaml:"server_version"`

	// List of supported storage drivers
	// Example: zfs | btrfs
	Storage string `json:"storage" yaml:"storage"`
}

// ServerUntrusted represents a LXD server for an untrusted client.
type ServerUntrusted struct {
	// List of supported API extensions
	// Example: ["etag", "patch", "network", "storage"]
	APIExtensions []string `json:"api_extensions" yaml:"api_extensions"`

	// Support status of the current API (one of "devel", "stable" or "deprecated")
	// Example: stable
	APIStatus string `json:"api_status" yaml:"api_status"`

	// API version number
	// Example: 1.0
	APIVersion string `json:"api_version" yaml:"api_version"`

	// Whether the client is trusted (one of "trusted" or "untrusted")
	// Example: untrusted
	Auth string `json:"auth" yaml:"auth"`

	// Whether the server is public-only (only public endpoints are implemented)
	// Example: false
	Public bool `json:"public" yaml:"public"`

	// List of supported authentication methods
	// Example: ["tls"]
	AuthMethods []string `json:"auth_methods" yaml:"auth_methods"`
}

// Server represents a LXD server.
type Server struct {
	ServerUntrusted `yaml:",inline"`

	// Server configuration map (refer to doc/server.md)
	Config map[string]any `json:"config" yaml:"config"`

	// Read-only status/configuration information
	Environment ServerEnvironment `json:"environment" yaml:"environment"`
}

// Trusted reports whether the server considers the client trusted.
func (srv *Server) Trusted() bool {
	return srv.Auth == "trusted"
}
