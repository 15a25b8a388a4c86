package vm

import (
	"fmt"
)

// FetchType selects which parts of an image a backend needs.
type FetchType int

// Image fetch types.
const (
	FetchImageOnly FetchType = iota
	FetchImageKernelAndInitrd
)

// Image is an image prepared for an instance.
//
// Backends that let the hypervisor manage disk images only fill in the ID.
type Image struct {
	ImagePath  string
	KernelPath string
	InitrdPath string

	// Image identifier, the image fingerprint for LXD
	ID string

	OriginalRelease string
	CurrentRelease  string
	ReleaseDate     string
	Aliases         []string
}

// Query describes the image a user asked for.
type Query struct {
	// Instance name
	Name string

	// Release or alias, e.g. "jammy" or "22.04"
	Release string

	Persistent bool

	// Remote to look the release up on; all remotes are searched when empty
	RemoteName string
}

// ImageInfo describes an image offered by an image host.
type ImageInfo struct {
	Aliases      []string
	OS           string
	Release      string
	ReleaseTitle string
	Supported    bool

	// Image fingerprint
	ID string

	// Simplestreams server the image can be pulled from
	StreamLocation string

	Version string
	Size    int64
}

// ImageHost is a source of images, e.g. a simplestreams server.
type ImageHost interface {
	// InfoFor returns nil without error when the host has no match for the query.
	InfoFor(query Query) (*ImageInfo, error)

	SupportedRemotes() []string
}

// PrepareAction transforms a fetched image before it is recorded.
type PrepareAction func(Image) (Image, error)

// ImageVault hands out images for instances.
type ImageVault interface {
	FetchImage(fetchType FetchType, query Query, prepare PrepareAction) (Image, error)
	Remove(name string) error
	HasRecordFor(name string) (bool, error)
	ImageHostFor(remoteName string) (ImageHost, error)
}

// ImageHostMap indexes image hosts by the remotes they serve.
type ImageHostMap map[string]ImageHost

// NewImageHostMap returns the remote to host mapping for hosts.
//
// A remote served by several hosts is attributed to the first one.
func NewImageHostMap(hosts []ImageHost) ImageHostMap {
	m := ImageHostMap{}
	for _, host := range hosts {
		for _, remote := range host.SupportedRemotes() {
			_, ok := m[remote]
			if !ok {
				m[remote] = host
			}
		}
	}

	return m
}

// HostFor returns the host serving remoteName.
func (m ImageHostMap) HostFor(remoteName string) (ImageHost, error) {
	host, ok := m[remoteName]
	if !ok {
		return nil, fmt.Errorf("Remote '%s' is not found. Please use `multipass find` for supported remotes and images.", remoteName)
	}

	return host, nil
}
