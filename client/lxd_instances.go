package lxd

import (
	"fmt"
	"net/url"
	"time"

	"github.com/canonical/multipass-lxd/shared/api"
)

// instancePath returns the path of a virtual machine, with the project parameter set.
func (r *ProtocolLXD) instancePath(name string, suffix string) string {
	return r.setQueryAttributes(fmt.Sprintf("/virtual-machines/%s%s", url.PathEscape(name), suffix))
}

// GetInstance returns the configuration of the provided virtual machine.
func (r *ProtocolLXD) GetInstance(name string) (*api.Instance, error) {
	instance := api.Instance{}

	err := r.queryStruct("GET", r.instancePath(name, ""), nil, &instance)
	if err != nil {
		return nil, err
	}

	return &instance, nil
}

// GetInstanceState returns a InstanceState entry for the provided virtual machine name.
func (r *ProtocolLXD) GetInstanceState(name string) (*api.InstanceState, error) {
	state := api.InstanceState{}

	// Fetch the raw value
	err := r.queryStruct("GET", r.instancePath(name, "/state"), nil, &state)
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// CreateInstance requests that LXD creates a new virtual machine and waits up to timeout for it.
func (r *ProtocolLXD) CreateInstance(instance api.InstancesPost, timeout time.Duration) error {
	_, err := r.queryOperation("POST", r.setQueryAttributes("/virtual-machines"), instance, timeout)
	if err != nil {
		return err
	}

	return nil
}

// UpdateInstanceState updates the virtual machine to match the requested state and waits up to timeout for it.
func (r *ProtocolLXD) UpdateInstanceState(name string, state api.InstanceStatePut, timeout time.Duration) error {
	_, err := r.queryOperation("PUT", r.instancePath(name, "/state"), state, timeout)
	if err != nil {
		return err
	}

	return nil
}
