package lxd

import (
	"github.com/canonical/multipass-lxd/shared/api"
)

// GetServer returns the server status as a Server struct.
func (r *ProtocolLXD) GetServer() (*api.Server, error) {
	server := api.Server{}

	// Fetch the raw value
	err := r.queryStruct("GET", "", nil, &server)
	if err != nil {
		return nil, err
	}

	return &server, nil
}
