package driver_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/driver"
	"github.com/canonical/multipass-lxd/internal/lxdtest"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/vm"
)

// stubPlatform returns fixed host networks and counts the inspections.
type stubPlatform struct {
	infos map[string]vm.NetworkInterfaceInfo
	err   error
	calls int
}

func (p *stubPlatform) NetworkInterfacesInfo() (map[string]vm.NetworkInterfaceInfo, error) {
	p.calls++
	return p.infos, p.err
}

func newNetworkManager(t *testing.T, d *lxdtest.Daemon, p *stubPlatform) *driver.NetworkManager {
	t.Helper()

	if p == nil {
		return driver.NewNetworkManager(newClient(t, d), bridgeName, nil)
	}

	return driver.NewNetworkManager(newClient(t, d), bridgeName, p)
}

func TestHealthCheck_CreatesMissingResources(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("trusted", "5.21")))
	d.Handle("POST", "/1.0/projects", lxdtest.Sync(nil))
	d.Handle("PUT", "/1.0/profiles/default", lxdtest.Sync(nil))
	d.Handle("POST", "/1.0/networks", lxdtest.Sync(nil))

	require.NoError(t, newNetworkManager(t, d, nil).HealthCheck())

	assert.Equal(t, `{"description":"Project for Multipass instances","name":"multipass"}`, string(d.LastBody("POST", "/1.0/projects")))
	assert.Equal(t, `{"description":"Default profile for Multipass project","devices":{"eth0":{"name":"eth0","nictype":"bridged","parent":"mpbr0","type":"nic"}}}`, string(d.LastBody("PUT", "/1.0/profiles/default")))
	assert.Equal(t, `{"description":"Network bridge for Multipass","name":"mpbr0"}`, string(d.LastBody("POST", "/1.0/networks")))

	for _, r := range d.Requests() {
		if r.Path == "/1.0/profiles/default" {
			assert.Equal(t, "project=multipass", r.RawQuery)
		}
	}
}

func TestHealthCheck_ExistingResources(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("trusted", "5.21")))
	d.Handle("GET", "/1.0/projects/multipass", lxdtest.Sync(api.Project{Name: "multipass"}))
	d.Handle("GET", "/1.0/profiles/default", lxdtest.Sync(api.Profile{
		Name:    "default",
		Devices: api.Devices{"eth0": {"name": "eth0", "nictype": "bridged", "parent": bridgeName, "type": "nic"}},
	}))
	d.Handle("GET", "/1.0/networks/"+bridgeName, lxdtest.Sync(api.Network{Name: bridgeName, Type: "bridge"}))

	require.NoError(t, newNetworkManager(t, d, nil).HealthCheck())

	assert.Equal(t, 0, d.Count("POST", "/1.0/"))
	assert.Equal(t, 0, d.Count("PUT", "/1.0/"))
}

func TestHealthCheck_ProfileWithoutNIC(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("trusted", "5.21")))
	d.Handle("GET", "/1.0/projects/multipass", lxdtest.Sync(api.Project{Name: "multipass"}))
	d.Handle("GET", "/1.0/profiles/default", lxdtest.Sync(api.Profile{Name: "default", Devices: api.Devices{}}))
	d.Handle("PUT", "/1.0/profiles/default", lxdtest.Sync(nil))
	d.Handle("GET", "/1.0/networks/"+bridgeName, lxdtest.Sync(api.Network{Name: bridgeName, Type: "bridge"}))

	require.NoError(t, newNetworkManager(t, d, nil).HealthCheck())

	assert.Equal(t, 1, d.Count("PUT", "/1.0/profiles/default"))
}

func TestHealthCheck_ConcurrentCreation(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("trusted", "5.21")))
	d.Handle("POST", "/1.0/projects", func(w http.ResponseWriter, _ *http.Request) {
		lxdtest.WriteError(w, http.StatusConflict, "Project already exists")
	})
	d.Handle("PUT", "/1.0/profiles/default", lxdtest.Sync(nil))
	d.Handle("POST", "/1.0/networks", func(w http.ResponseWriter, _ *http.Request) {
		lxdtest.WriteError(w, http.StatusBadRequest, "The network already exists")
	})

	assert.NoError(t, newNetworkManager(t, d, nil).HealthCheck())
}

func TestHealthCheck_Untrusted(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("untrusted", "5.21")))

	err := newNetworkManager(t, d, nil).HealthCheck()

	var authErr *driver.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.EqualError(t, err, "Failed to authenticate to LXD.")
	assert.Len(t, d.Requests(), 1)
}

func TestHealthCheck_OldServer(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("trusted", "3.0.4")))

	err := newNetworkManager(t, d, nil).HealthCheck()

	assert.EqualError(t, err, "LXD 3.0.4 is too old, version 4.0 or later is required")
	assert.Len(t, d.Requests(), 1)
}

func TestHealthCheck_ConnectionError(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	d := lxdtest.New()
	d.FailWith(errors.New("Cannot connect to /var/snap/lxd/common/lxd/unix.socket"))

	err := newNetworkManager(t, d, nil).HealthCheck()

	expected := "Cannot connect to /var/snap/lxd/common/lxd/unix.socket\n\n" +
		"Please ensure the LXD snap is installed and enabled. Also make sure\n" +
		"the LXD interface is connected via `snap connect multipass:lxd lxd`."
	assert.EqualError(t, err, expected)
	assert.True(t, lxd.IsConnectionError(err))
}

func TestHealthCheck_OtherFailure(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	d := lxdtest.New()
	d.Handle("GET", "/1.0", lxdtest.Sync(lxdtest.ServerInfo("trusted", "5.21")))
	d.Handle("GET", "/1.0/projects/multipass", func(w http.ResponseWriter, _ *http.Request) {
		lxdtest.WriteError(w, http.StatusInternalServerError, "database is locked")
	})

	err := newNetworkManager(t, d, nil).HealthCheck()

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "snap connect")
	assert.Contains(t, err.Error(), "database is locked")
}

func bridgeIDs(networks []vm.NetworkInterfaceInfo) []string {
	ids := []string{}
	for _, n := range networks {
		ids = append(ids, n.ID)
	}

	return ids
}

func TestNetworks_Empty(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks", lxdtest.Raw(`{"type": "sync", "status": "Success", "status_code": 200, "metadata": []}`))

	networks, err := newNetworkManager(t, d, nil).Networks()
	require.NoError(t, err)
	assert.Empty(t, networks)

	require.Len(t, d.Requests(), 1)
	assert.Equal(t, "/1.0/networks?recursion=1", d.Requests()[0].URL())
}

func TestNetworks_OnlyBridges(t *testing.T) {
	for name, data := range map[string]string{"realistic": lxdtest.NetworksRealisticData, "faulty": lxdtest.NetworksFaultyData} {
		t.Run(name, func(t *testing.T) {
			d := lxdtest.New()
			d.Handle("GET", "/1.0/networks", lxdtest.Raw(data))

			networks, err := newNetworkManager(t, d, &stubPlatform{}).Networks()
			require.NoError(t, err)

			assert.ElementsMatch(t, []string{"lxdbr0", "mpbr0", "virbr0", "mpqemubr0"}, bridgeIDs(networks))
			for _, n := range networks {
				assert.Equal(t, "bridge", n.Type)
			}
		})
	}
}

func TestNetworks_BadJSON(t *testing.T) {
	for _, data := range []string{"gibberish", "unstarted}", "{unfinished", "strange\"", "{noval}", "]["} {
		t.Run(data, func(t *testing.T) {
			hook, restore := logger.Testing(t)
			defer restore()

			d := lxdtest.New()
			d.Handle("GET", "/1.0/networks", lxdtest.Raw(data))

			_, err := newNetworkManager(t, d, nil).Networks()
			require.Error(t, err)

			count := 0
			for _, e := range hook.AllEntries() {
				if e.Level == logrus.DebugLevel && (contains(e.Message, "Error parsing JSON") || contains(e.Message, "Empty reply")) {
					count++
				}
			}

			assert.Equal(t, 1, count)
		})
	}
}

func TestNetworks_BadFields(t *testing.T) {
	for _, data := range []string{
		`{}`,
		`{"other": "stuff"}`,
		`{"metadata": "notarray"}`,
		`{"metadata": ["notdict"]}`,
		`{"metadata": [{"type": "bridge", "but": "noname"}]}`,
		`{"metadata": [{"name": "", "type": "bridge", "but": "empty name"}]}`,
		`{"metadata": [{"name": "bla", "but": "notype"}]}`,
		`{"metadata": [{"name": 123, "type": "bridge"}]}`,
		`{"metadata": [{"name": "eth0", "type": 123}]}`,
	} {
		t.Run(data, func(t *testing.T) {
			_, restore := logger.Testing(t)
			defer restore()

			d := lxdtest.New()
			d.Handle("GET", "/1.0/networks", lxdtest.Raw(data))

			networks, err := newNetworkManager(t, d, nil).Networks()
			require.NoError(t, err)
			assert.Empty(t, networks)
		})
	}
}

func TestNetworks_UnrelatedFieldsIgnored(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks", lxdtest.Raw(bridgeReply(
		`{"name": "br-managed", "type": "bridge", "managed": "yes"}`,
		`{"name": "br-status", "type": "bridge", "status": 5, "config": {"ipv4.nat": true}}`,
		`{"name": "br-bad-description", "type": "bridge", "description": 1}`,
	)))

	networks, err := newNetworkManager(t, d, nil).Networks()
	require.NoError(t, err)

	assert.Equal(t, []string{"br-managed", "br-status"}, bridgeIDs(networks))
}

func bridgeReply(entries ...string) string {
	reply := `{"metadata": [`
	for i, e := range entries {
		if i > 0 {
			reply += ", "
		}

		reply += e
	}

	return reply + `]}`
}

func bridge(name string, description string) string {
	return fmt.Sprintf(`{"type": "bridge", "name": %q, "description": %q}`, name, description)
}

func TestNetworks_DaemonDescription(t *testing.T) {
	p := &stubPlatform{}

	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks", lxdtest.Raw(bridgeReply(bridge("br0", "Australopithecus"))))

	networks, err := newNetworkManager(t, d, p).Networks()
	require.NoError(t, err)

	assert.Equal(t, []vm.NetworkInterfaceInfo{{ID: "br0", Type: "bridge", Description: "Australopithecus"}}, networks)
	assert.Equal(t, 0, p.calls)
}

func TestNetworks_PlatformDescription(t *testing.T) {
	p := &stubPlatform{infos: map[string]vm.NetworkInterfaceInfo{"br0": {ID: "br0", Type: "bridge", Description: "fallback"}}}

	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks", lxdtest.Raw(bridgeReply(bridge("br0", ""))))

	networks, err := newNetworkManager(t, d, p).Networks()
	require.NoError(t, err)

	assert.Equal(t, []vm.NetworkInterfaceInfo{{ID: "br0", Type: "bridge", Description: "fallback"}}, networks)
	assert.Equal(t, 1, p.calls)
}

func TestNetworks_DefaultDescription(t *testing.T) {
	p := &stubPlatform{infos: map[string]vm.NetworkInterfaceInfo{"br0": {ID: "br0", Type: "bridge", Description: ""}}}

	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks", lxdtest.Raw(bridgeReply(bridge("br0", ""), bridge("br1", ""))))

	networks, err := newNetworkManager(t, d, p).Networks()
	require.NoError(t, err)

	require.Len(t, networks, 2)
	for _, n := range networks {
		assert.Equal(t, "Network bridge", n.Description)
	}

	assert.Equal(t, 1, p.calls)
}

func TestNetworks_PlatformFailure(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	p := &stubPlatform{err: errors.New("netlink unavailable")}

	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks", lxdtest.Raw(bridgeReply(bridge("br0", ""))))

	networks, err := newNetworkManager(t, d, p).Networks()
	require.NoError(t, err)

	assert.Equal(t, []vm.NetworkInterfaceInfo{{ID: "br0", Type: "bridge", Description: "Network bridge"}}, networks)
}

func TestNetworks_SkipsPlatformInspection(t *testing.T) {
	for name, data := range map[string]string{
		"no networks":      `{"metadata": []}`,
		"only non-bridges": `{"metadata": [{"type": "physical", "name": "eth0", "description": ""}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := &stubPlatform{}

			d := lxdtest.New()
			d.Handle("GET", "/1.0/networks", lxdtest.Raw(data))

			_, err := newNetworkManager(t, d, p).Networks()
			require.NoError(t, err)
			assert.Equal(t, 0, p.calls)
		})
	}
}

func TestLeaseFor(t *testing.T) {
	d := lxdtest.New()
	d.Handle("GET", "/1.0/networks/"+bridgeName+"/leases", lxdtest.Sync([]api.NetworkLease{
		lxdtest.Lease(instanceName, "00:16:3E:FE:F2:B9", "10.217.27.168"),
	}))

	n := newNetworkManager(t, d, nil)

	address, found, err := n.LeaseFor(instanceMAC)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "10.217.27.168", address)

	_, found, err = n.LeaseFor("00:16:3e:00:00:01")
	require.NoError(t, err)
	assert.False(t, found)
}
