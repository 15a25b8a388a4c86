package driver_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canonical/multipass-lxd/driver"
	"github.com/canonical/multipass-lxd/internal/lxdtest"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/vm"
)

// stubHost serves fixed images.
type stubHost struct {
	remotes []string
	images  map[string]vm.ImageInfo
}

func (h *stubHost) InfoFor(query vm.Query) (*vm.ImageInfo, error) {
	info, ok := h.images[query.Release]
	if !ok {
		return nil, nil
	}

	return &info, nil
}

func (h *stubHost) SupportedRemotes() []string {
	return h.remotes
}

const jammyFingerprint = "ed56997f7c5b48e8d78986d2467a26109be6fb9f2d92e8c7b08eb8b6cec7629a"

func jammyHost() *stubHost {
	return &stubHost{
		remotes: []string{"release"},
		images: map[string]vm.ImageInfo{
			"jammy": {
				Aliases:        []string{"jammy", "22.04"},
				Release:        "jammy",
				ReleaseTitle:   "22.04 LTS",
				ID:             jammyFingerprint,
				StreamLocation: "https://cloud-images.ubuntu.com/releases",
				Version:        "20240401",
			},
		},
	}
}

func TestImageVault_ImageHostFor(t *testing.T) {
	host := jammyHost()
	vault := driver.NewImageVault(newClient(t, lxdtest.New()), []vm.ImageHost{host})

	found, err := vault.ImageHostFor("release")
	require.NoError(t, err)
	assert.Same(t, host, found)

	_, err = vault.ImageHostFor("foo")
	assert.EqualError(t, err, "Remote 'foo' is not found. Please use `multipass find` for supported remotes and images.")
}

func TestImageVault_FetchImage_Present(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0/images/{fingerprint}", lxdtest.Sync(api.Image{Fingerprint: jammyFingerprint}))

	vault := driver.NewImageVault(newClient(t, d), []vm.ImageHost{jammyHost()})

	image, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "jammy"}, nil)
	require.NoError(t, err)

	assert.Equal(t, vm.Image{
		ID:              jammyFingerprint,
		OriginalRelease: "22.04 LTS",
		CurrentRelease:  "22.04 LTS",
		ReleaseDate:     "20240401",
		Aliases:         []string{"jammy", "22.04"},
	}, image)
	assert.Equal(t, 0, d.Count("POST", "/1.0/images"))
}

func TestImageVault_FetchImage_Download(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	d := lxdtest.New()
	d.HandleOperations()
	d.Handle("POST", "/1.0/images", func(w http.ResponseWriter, _ *http.Request) {
		d.StartOperation(w, "Downloading image", map[string]any{"fingerprint": jammyFingerprint})
	})

	vault := driver.NewImageVault(newClient(t, d), []vm.ImageHost{jammyHost()})

	image, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "jammy", RemoteName: "release"}, nil)
	require.NoError(t, err)
	assert.Equal(t, jammyFingerprint, image.ID)

	assert.Equal(t, `{"public":false,"source":{"fingerprint":"`+jammyFingerprint+`","image_type":"virtual-machine","mode":"pull","protocol":"simplestreams","server":"https://cloud-images.ubuntu.com/releases","type":"image"}}`,
		string(d.LastBody("POST", "/1.0/images")))
}

func TestImageVault_FetchImage_ByAlias(t *testing.T) {
	d := lxdtest.New()
	d.HandleOperations()
	d.Handle("POST", "/1.0/images", func(w http.ResponseWriter, _ *http.Request) {
		d.StartOperation(w, "Downloading image", map[string]any{"fingerprint": "deadbeef"})
	})

	host := driver.NewStreamsHost(map[string]string{"daily": "https://cloud-images.ubuntu.com/daily"})
	vault := driver.NewImageVault(newClient(t, d), []vm.ImageHost{host})

	image, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "noble", RemoteName: "daily"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", image.ID)
	assert.Equal(t, []string{"noble"}, image.Aliases)

	post := api.ImagesPost{}
	require.NoError(t, json.Unmarshal(d.LastBody("POST", "/1.0/images"), &post))
	require.NotNil(t, post.Source)
	assert.Equal(t, "noble", post.Source.Alias)
	assert.Empty(t, post.Source.Fingerprint)
	assert.Equal(t, "virtual-machine", post.Source.ImageType)
	assert.Equal(t, "https://cloud-images.ubuntu.com/daily", post.Source.Server)
	assert.True(t, post.AutoUpdate)
	assert.Equal(t, []api.ImageAlias{{Name: "multipass-daily-noble", Description: "Multipass image noble"}}, post.Aliases)
	assert.Equal(t, 1, d.Count("GET", "/1.0/images/aliases/multipass-daily-noble"))
}

func TestImageVault_FetchImage_AliasPresent(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0/images/aliases/{name}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "project=multipass", r.URL.RawQuery)
		lxdtest.WriteSync(w, api.ImageAliasesEntry{Name: "multipass-default-lts", Target: "deadbeef", Type: "virtual-machine"})
	})

	host := driver.NewStreamsHost(map[string]string{"release": "https://cloud-images.ubuntu.com/releases"})
	vault := driver.NewImageVault(newClient(t, d), []vm.ImageHost{host})

	image, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", image.ID)
	assert.Equal(t, 0, d.Count("POST", "/1.0/images"))
}

func TestImageVault_FetchImage_ReapedOperation(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	pulled := false

	d := lxdtest.New()
	d.Handle("POST", "/1.0/images", func(w http.ResponseWriter, _ *http.Request) {
		pulled = true
		d.StartOperation(w, "Downloading image", nil)
	})
	d.Handle("GET", "/1.0/images/aliases/{name}", func(w http.ResponseWriter, r *http.Request) {
		if !pulled {
			lxdtest.NotFound(w, r)
			return
		}

		lxdtest.WriteSync(w, api.ImageAliasesEntry{Name: "multipass-daily-noble", Target: "cafef00d"})
	})

	host := driver.NewStreamsHost(map[string]string{"daily": "https://cloud-images.ubuntu.com/daily"})
	vault := driver.NewImageVault(newClient(t, d), []vm.ImageHost{host})

	image, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "noble", RemoteName: "daily"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "cafef00d", image.ID)
	assert.Equal(t, 2, d.Count("GET", "/1.0/images/aliases/"))
}

func TestImageVault_FetchImage_NoFingerprint(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	d := lxdtest.New()
	d.Handle("POST", "/1.0/images", func(w http.ResponseWriter, _ *http.Request) {
		d.StartOperation(w, "Downloading image", nil)
	})

	host := driver.NewStreamsHost(map[string]string{"daily": "https://cloud-images.ubuntu.com/daily"})
	vault := driver.NewImageVault(newClient(t, d), []vm.ImageHost{host})

	_, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "noble", RemoteName: "daily"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to resolve the downloaded image")
}

func TestImageVault_FetchImage_NoMatch(t *testing.T) {
	vault := driver.NewImageVault(newClient(t, lxdtest.New()), []vm.ImageHost{jammyHost()})

	_, err := vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "focal"}, nil)
	assert.EqualError(t, err, `Unable to find an image matching "focal"`)

	_, err = vault.FetchImage(vm.FetchImageOnly, vm.Query{Release: "jammy", RemoteName: "daily"}, nil)
	assert.EqualError(t, err, "Remote 'daily' is not found. Please use `multipass find` for supported remotes and images.")

	_, err = vault.FetchImage(vm.FetchImageKernelAndInitrd, vm.Query{Release: "jammy"}, nil)
	assert.Error(t, err)
}

func TestImageVault_ImportImage(t *testing.T) {
	d := lxdtest.New()
	d.HandleOperations()
	d.Handle("POST", "/1.0/images", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "release=custom", r.Header.Get("X-LXD-properties"))
		d.StartOperation(w, "Importing image", map[string]any{"fingerprint": "cafef00d"})
	})

	vault := driver.NewImageVault(newClient(t, d), nil)

	image, err := vault.ImportImage(strings.NewReader("meta"), "meta.tar.xz", strings.NewReader("disk"), "disk.qcow2", "custom")
	require.NoError(t, err)
	assert.Equal(t, vm.Image{ID: "cafef00d", OriginalRelease: "custom", CurrentRelease: "custom"}, image)
}

func TestImageVault_HasRecordFor(t *testing.T) {
	inst := newFakeInstance(api.Running, 1)

	d := lxdtest.New()
	inst.serve(d)

	vault := driver.NewImageVault(newClient(t, d), nil)

	found, err := vault.HasRecordFor(instanceName)
	require.NoError(t, err)
	assert.True(t, found)

	inst.missing = true

	found, err = vault.HasRecordFor(instanceName)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, vault.Remove(instanceName))
}

func TestStreamsHost(t *testing.T) {
	host := driver.NewStreamsHost(map[string]string{"release": "https://r", "daily": "https://d"})

	assert.Equal(t, []string{"daily", "release"}, host.SupportedRemotes())

	info, err := host.InfoFor(vm.Query{})
	require.NoError(t, err)
	assert.Equal(t, "lts", info.Release)
	assert.Equal(t, "https://r", info.StreamLocation)

	info, err = host.InfoFor(vm.Query{Release: "jammy", RemoteName: "other"})
	require.NoError(t, err)
	assert.Nil(t, info)
}
