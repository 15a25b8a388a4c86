package lxd

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/canonical/multipass-lxd/shared/api"
)

// ImageCreateArgs represents the files of a split image upload.
type ImageCreateArgs struct {
	// Reader for the image metadata tarball
	MetaFile io.Reader

	// Filename for the image metadata tarball
	MetaName string

	// Reader for the VM disk image
	RootfsFile io.Reader

	// Filename for the VM disk image
	RootfsName string
}

// CreateImage uploads a new image and returns its fingerprint once the daemon has imported it.
func (r *ProtocolLXD) CreateImage(image api.ImagesPost, args ImageCreateArgs, timeout time.Duration) (string, error) {
	if args.MetaFile == nil || args.RootfsFile == nil {
		return "", fmt.Errorf("Both the metadata and the disk image are required")
	}

	properties := url.Values{}
	for k, v := range image.Properties {
		properties.Set(k, v)
	}

	body := &Multipart{
		Headers: map[string]string{
			"X-LXD-public":     strconv.FormatBool(image.Public),
			"X-LXD-properties": properties.Encode(),
		},
		Parts: []MultipartPart{
			{Name: "metadata", Filename: args.MetaName, Content: args.MetaFile},
			{Name: "rootfs.img", Filename: args.RootfsName, Content: args.RootfsFile},
		},
	}

	resp, err := r.query("POST", r.setQueryAttributes("/images"), body, timeout)
	if err != nil {
		return "", err
	}

	resp, err = r.Wait(r.ctx, r.APIURL(), resp, timeout)
	if err != nil {
		return "", err
	}

	fingerprint := operationFingerprint(resp)
	if fingerprint == "" {
		return "", errNoFingerprint
	}

	return fingerprint, nil
}

var errNoFingerprint = errors.New("Image import didn't report a fingerprint")

// operationFingerprint returns the fingerprint an image operation reported, if any.
//
// Operations the daemon already forgot about leave the original async reply, which has none.
func operationFingerprint(resp *api.Response) string {
	op, err := resp.MetadataAsOperation()
	if err != nil || op == nil {
		return ""
	}

	fingerprint, _ := op.Metadata["fingerprint"].(string)

	return fingerprint
}

// GetImageAlias returns the local alias with the given name.
func (r *ProtocolLXD) GetImageAlias(name string) (*api.ImageAliasesEntry, error) {
	alias := api.ImageAliasesEntry{}

	err := r.queryStruct("GET", r.setQueryAttributes(fmt.Sprintf("/images/aliases/%s", url.PathEscape(name))), nil, &alias)
	if err != nil {
		return nil, err
	}

	return &alias, nil
}

// GetImage returns the image with the given fingerprint.
func (r *ProtocolLXD) GetImage(fingerprint string) (*api.Image, error) {
	image := api.Image{}

	err := r.queryStruct("GET", r.setQueryAttributes(fmt.Sprintf("/images/%s", url.PathEscape(fingerprint))), nil, &image)
	if err != nil {
		return nil, err
	}

	return &image, nil
}

// CopyImage asks the daemon to download an image from a remote server and returns its fingerprint.
//
// When the operation doesn't report it, the fingerprint is taken from the
// source, or from the first local alias the request created.
func (r *ProtocolLXD) CopyImage(image api.ImagesPost, timeout time.Duration) (string, error) {
	if image.Source == nil {
		return "", fmt.Errorf("An image source is required")
	}

	resp, err := r.queryOperation("POST", r.setQueryAttributes("/images"), image, timeout)
	if err != nil {
		return "", err
	}

	fingerprint := operationFingerprint(resp)
	if fingerprint == "" {
		fingerprint = image.Source.Fingerprint
	}

	if fingerprint == "" && len(image.Aliases) > 0 {
		alias, err := r.GetImageAlias(image.Aliases[0].Name)
		if err != nil {
			return "", fmt.Errorf("Failed to resolve the downloaded image: %w", err)
		}

		fingerprint = alias.Target
	}

	if fingerprint == "" {
		return "", errNoFingerprint
	}

	return fingerprint, nil
}
