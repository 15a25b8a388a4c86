package lxd

import (
	"fmt"
	"net/url"

	"github.com/canonical/multipass-lxd/shared/api"
)

// GetNetworksRaw returns the unparsed reply listing every network with its details.
//
// Callers decide how lenient they want to be with individual entries.
func (r *ProtocolLXD) GetNetworksRaw() (*api.Response, error) {
	return r.query("GET", "/networks?recursion=1", nil, 0)
}

// GetNetwork returns a Network entry for the provided name.
func (r *ProtocolLXD) GetNetwork(name string) (*api.Network, error) {
	network := api.Network{}

	// Fetch the raw value
	err := r.queryStruct("GET", fmt.Sprintf("/networks/%s", url.PathEscape(name)), nil, &network)
	if err != nil {
		return nil, err
	}

	return &network, nil
}

// GetNetworkLeases returns the DHCP leases of a network for the client's project.
func (r *ProtocolLXD) GetNetworkLeases(name string) ([]api.NetworkLease, error) {
	leases := []api.NetworkLease{}

	// Fetch the raw value
	err := r.queryStruct("GET", r.setQueryAttributes(fmt.Sprintf("/networks/%s/leases", url.PathEscape(name))), nil, &leases)
	if err != nil {
		return nil, err
	}

	return leases, nil
}

// CreateNetwork defines a new network using the provided Network struct.
func (r *ProtocolLXD) CreateNetwork(network api.NetworksPost) error {
	// Send the request
	_, err := r.query("POST", "/networks", network, 0)
	if err != nil {
		return err
	}

	return nil
}
