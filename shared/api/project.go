package api

// ProjectsPost represents the fields of a new LXD project.
type ProjectsPost struct {
	// Description of the project
	// Example: Project for Multipass instances
	Description string `json:"description" yaml:"description"`

	// The name of the new project
	// Example: multipass
	Name string `json:"name" yaml:"name"`
}

// Project represents a LXD project.
type Project struct {
	// Project configuration map (refer to doc/projects.md)
	// Example: {"features.profiles": "true", "features.images": "false"}
	Config map[string]string `json:"config" yaml:"config"`

	// Description of the project
	// Example: Project for Multipass instances
	Description string `json:"description" yaml:"description"`

	// The project name
	// Read only: true
	// Example: multipass
	Name string `json:"name" yaml:"name"`

	// List of URLs of objects using this project
	// Read only: true
	UsedBy []string `json:"used_by" yaml:"used_by"`
}
