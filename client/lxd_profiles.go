package lxd

import (
	"fmt"
	"net/url"

	"github.com/canonical/multipass-lxd/shared/api"
)

// GetProfile returns a Profile entry for the provided name in the client's project.
func (r *ProtocolLXD) GetProfile(name string) (*api.Profile, error) {
	profile := api.Profile{}

	// Fetch the raw value
	err := r.queryStruct("GET", r.setQueryAttributes(fmt.Sprintf("/profiles/%s", url.PathEscape(name))), nil, &profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdateProfile updates the profile to match the provided ProfilePut struct.
func (r *ProtocolLXD) UpdateProfile(name string, profile api.ProfilePut) error {
	// Send the request
	_, err := r.query("PUT", r.setQueryAttributes(fmt.Sprintf("/profiles/%s", url.PathEscape(name))), profile, 0)
	if err != nil {
		return err
	}

	return nil
}
