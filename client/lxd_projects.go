package lxd

import (
	"fmt"
	"net/url"

	"github.com/canonical/multipass-lxd/shared/api"
)

// GetProject returns a Project entry for the provided name.
func (r *ProtocolLXD) GetProject(name string) (*api.Project, error) {
	project := api.Project{}

	// Fetch the raw value
	err := r.queryStruct("GET", fmt.Sprintf("/projects/%s", url.PathEscape(name)), nil, &project)
	if err != nil {
		return nil, err
	}

	return &project, nil
}

// CreateProject defines a new project.
func (r *ProtocolLXD) CreateProject(project api.ProjectsPost) error {
	// Send the request
	_, err := r.query("POST", "/projects", project, 0)
	if err != nil {
		return err
	}

	return nil
}
