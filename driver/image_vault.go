package driver

import (
	"fmt"
	"io"
	"net/http"
	"time"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/vm"
)

const imageDownloadTimeout = 30 * time.Minute

// ImageVault keeps instance images in the daemon's image store.
type ImageVault struct {
	client  *lxd.ProtocolLXD
	hosts   []vm.ImageHost
	remotes vm.ImageHostMap
	logger  logger.Logger
}

var _ vm.ImageVault = (*ImageVault)(nil)

// NewImageVault returns a vault resolving queries through hosts.
func NewImageVault(client *lxd.ProtocolLXD, hosts []vm.ImageHost) *ImageVault {
	return &ImageVault{
		client:  client,
		hosts:   hosts,
		remotes: vm.NewImageHostMap(hosts),
		logger:  logger.AddContext(logger.Ctx{"category": "lxd image vault"}),
	}
}

// ImageHostFor returns the host serving the remote.
func (v *ImageVault) ImageHostFor(remoteName string) (vm.ImageHost, error) {
	return v.remotes.HostFor(remoteName)
}

// infoFor looks the query up on its remote, or on every host when no remote is given.
func (v *ImageVault) infoFor(query vm.Query) (*vm.ImageInfo, error) {
	hosts := v.hosts
	if query.RemoteName != "" {
		host, err := v.ImageHostFor(query.RemoteName)
		if err != nil {
			return nil, err
		}

		hosts = []vm.ImageHost{host}
	}

	for _, host := range hosts {
		info, err := host.InfoFor(query)
		if err != nil {
			return nil, err
		}

		if info != nil {
			return info, nil
		}
	}

	return nil, fmt.Errorf("Unable to find an image matching %q", query.Release)
}

// FetchImage makes sure the daemon has the image matching query.
//
// The daemon downloads missing images itself. As it also owns the image
// files, prepare is never called.
func (v *ImageVault) FetchImage(fetchType vm.FetchType, query vm.Query, prepare vm.PrepareAction) (vm.Image, error) {
	if fetchType != vm.FetchImageOnly {
		return vm.Image{}, fmt.Errorf("Kernel and initrd images aren't supported")
	}

	info, err := v.infoFor(query)
	if err != nil {
		return vm.Image{}, err
	}

	if info.ID != "" {
		_, err := v.client.GetImage(info.ID)
		if err == nil {
			v.logger.Debug("Image already present", logger.Ctx{"fingerprint": info.ID})
			return imageFromInfo(info, info.ID), nil
		}

		if !api.StatusErrorCheck(err, http.StatusNotFound) {
			return vm.Image{}, err
		}
	}

	source := &api.ImagesPostSource{
		Fingerprint: info.ID,
		ImageType:   "virtual-machine",
		Mode:        "pull",
		Protocol:    "simplestreams",
		Server:      info.StreamLocation,
		Type:        "image",
	}

	image := api.ImagesPost{Source: source}

	// Pulls by alias are tracked through a local alias the daemon keeps up to date.
	if source.Fingerprint == "" {
		source.Alias = info.Release
		localAlias := localAliasFor(query.RemoteName, info.Release)

		alias, err := v.client.GetImageAlias(localAlias)
		if err == nil {
			v.logger.Debug("Image already present", logger.Ctx{"alias": localAlias, "fingerprint": alias.Target})
			return imageFromInfo(info, alias.Target), nil
		}

		if !api.StatusErrorCheck(err, http.StatusNotFound) {
			return vm.Image{}, err
		}

		image.Aliases = []api.ImageAlias{{Name: localAlias, Description: "Multipass image " + info.Release}}
		image.AutoUpdate = true
	}

	v.logger.Info("Downloading image", logger.Ctx{"server": source.Server, "release": query.Release})

	fingerprint, err := v.client.CopyImage(image, imageDownloadTimeout)
	if err != nil {
		return vm.Image{}, err
	}

	return imageFromInfo(info, fingerprint), nil
}

// ImportImage uploads a local image and returns it.
func (v *ImageVault) ImportImage(meta io.Reader, metaName string, disk io.Reader, diskName string, release string) (vm.Image, error) {
	fingerprint, err := v.client.CreateImage(api.ImagesPost{Properties: map[string]string{"release": release}}, lxd.ImageCreateArgs{
		MetaFile:   meta,
		MetaName:   metaName,
		RootfsFile: disk,
		RootfsName: diskName,
	}, imageDownloadTimeout)
	if err != nil {
		return vm.Image{}, err
	}

	return vm.Image{ID: fingerprint, OriginalRelease: release, CurrentRelease: release}, nil
}

// Remove is a no-op, images are shared between instances and the daemon expires unused ones.
func (v *ImageVault) Remove(name string) error {
	v.logger.Trace(fmt.Sprintf("No image to remove for %q", name))
	return nil
}

// HasRecordFor returns whether the daemon knows the instance.
func (v *ImageVault) HasRecordFor(name string) (bool, error) {
	_, err := v.client.GetInstanceState(name)
	if err == nil {
		return true, nil
	}

	if api.StatusErrorCheck(err, http.StatusNotFound) {
		return false, nil
	}

	return false, err
}

// localAliasFor returns the name of the local alias tracking release on remote.
func localAliasFor(remote string, release string) string {
	if remote == "" {
		remote = "default"
	}

	return fmt.Sprintf("multipass-%s-%s", remote, release)
}

func imageFromInfo(info *vm.ImageInfo, fingerprint string) vm.Image {
	return vm.Image{
		ID:              fingerprint,
		OriginalRelease: info.ReleaseTitle,
		CurrentRelease:  info.ReleaseTitle,
		ReleaseDate:     info.Version,
		Aliases:         info.Aliases,
	}
}
