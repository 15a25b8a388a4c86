package api

import (
	"time"
)

// ImagesPostSource represents the remote source of a new image.
type ImagesPostSource struct {
	// Fingerprint of the image, empty to resolve Alias instead
	// Example: ed56997f7c5b48e8d78986d2467a26109be6fb9f2d92e8c7b08eb8b6cec7629a
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	// Alias of the image on the remote
	// Example: jammy
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`

	// Variant to pull when an alias covers both containers and virtual machines
	// Example: virtual-machine
	ImageType string `json:"image_type,omitempty" yaml:"image_type,omitempty"`

	// Transfer mode
	// Example: pull
	Mode string `json:"mode" yaml:"mode"`

	// Remote protocol
	// Example: simplestreams
	Protocol string `json:"protocol" yaml:"protocol"`

	// URL of the remote server
	// Example: https://cloud-images.ubuntu.com/releases
	Server string `json:"server" yaml:"server"`

	// Source type
	// Example: image
	Type string `json:"type" yaml:"type"`
}

// ImagesPost represents the fields available for a new LXD image.
type ImagesPost struct {
	// Local aliases to create for the new image
	Aliases []ImageAlias `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Whether the daemon refreshes the image from its source, moving the aliases along
	// Example: true
	AutoUpdate bool `json:"auto_update,omitempty" yaml:"auto_update,omitempty"`

	// Whether the image can be downloaded by untrusted users
	// Example: false
	Public bool `json:"public" yaml:"public"`

	// Image properties
	// Example: {"os": "Ubuntu", "release": "jammy"}
	Properties map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`

	// Remote source, nil for uploads
	Source *ImagesPostSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// ImageAlias represents an alias of an image.
type ImageAlias struct {
	// Example: jammy
	Name string `json:"name" yaml:"name"`

	Description string `json:"description" yaml:"description"`
}

// ImageAliasesEntry represents a local image alias.
type ImageAliasesEntry struct {
	// Example: multipass-release-jammy
	Name string `json:"name" yaml:"name"`

	Description string `json:"description" yaml:"description"`

	// Fingerprint of the image the alias points to
	// Example: ed56997f7c5b48e8d78986d2467a26109be6fb9f2d92e8c7b08eb8b6cec7629a
	Target string `json:"target" yaml:"target"`

	// Example: virtual-machine
	Type string `json:"type" yaml:"type"`
}

// Image represents a LXD image.
type Image struct {
	Aliases []ImageAlias `json:"aliases" yaml:"aliases"`

	// Example: virtual-machine
	Type string `json:"type" yaml:"type"`

	// Example: ed56997f7c5b48e8d78986d2467a26109be6fb9f2d92e8c7b08eb8b6cec7629a
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`

	Properties map[string]string `json:"properties" yaml:"properties"`

	Public bool `json:"public" yaml:"public"`

	// Size of the image in bytes
	Size int64 `json:"size" yaml:"size"`

	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UploadedAt time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}
