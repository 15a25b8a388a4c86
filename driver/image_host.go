package driver

import (
	"sort"

	"github.com/canonical/multipass-lxd/vm"
)

// StreamsHost offers the images of simplestreams servers by alias.
//
// Aliases are resolved by the daemon when it pulls the image, so no
// fingerprint is reported.
type StreamsHost struct {
	servers map[string]string
}

var _ vm.ImageHost = (*StreamsHost)(nil)

// NewStreamsHost returns a host for servers, keyed by remote name.
func NewStreamsHost(servers map[string]string) *StreamsHost {
	return &StreamsHost{servers: servers}
}

// SupportedRemotes returns the remote names, sorted.
func (h *StreamsHost) SupportedRemotes() []string {
	remotes := make([]string, 0, len(h.servers))
	for name := range h.servers {
		remotes = append(remotes, name)
	}

	sort.Strings(remotes)

	return remotes
}

// InfoFor returns the image matching query on its remote, "release" by default.
func (h *StreamsHost) InfoFor(query vm.Query) (*vm.ImageInfo, error) {
	remote := query.RemoteName
	if remote == "" {
		remote = "release"
	}

	server, ok := h.servers[remote]
	if !ok {
		return nil, nil
	}

	release := query.Release
	if release == "" {
		release = "lts"
	}

	return &vm.ImageInfo{
		Aliases:        []string{release},
		OS:             "Ubuntu",
		Release:        release,
		ReleaseTitle:   release,
		Supported:      true,
		StreamLocation: server,
	}, nil
}
