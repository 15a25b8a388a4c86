package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/config"
	"github.com/canonical/multipass-lxd/driver"
	"github.com/canonical/multipass-lxd/internal/lxdtest"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
)

func newTestGlobal(t *testing.T, d *lxdtest.Daemon) *cmdGlobal {
	t.Helper()

	c, err := lxd.ConnectLXD(lxdtest.Host, d, nil)
	require.NoError(t, err)

	return &cmdGlobal{conf: config.NewConfig(), factory: driver.NewFactory(c, config.NewConfig(), nil)}
}

func serveInstance(d *lxdtest.Daemon, instance api.Instance) {
	d.Handle("GET", "/1.0/virtual-machines/"+instance.Name, lxdtest.Sync(instance))
	d.Handle("GET", "/1.0/virtual-machines/"+instance.Name+"/state", lxdtest.Sync(lxdtest.InstanceState(api.Running, 3)))
	d.Handle("GET", "/1.0/networks/mpbr0/leases", lxdtest.Sync([]api.NetworkLease{
		lxdtest.Lease("other", "52:54:00:11:22:33", "10.1.2.2"),
		lxdtest.Lease(instance.Name, "52:54:00:aa:bb:cc", "10.1.2.3"),
	}))
}

func TestExistingInstance(t *testing.T) {
	tests := []struct {
		name     string
		instance api.Instance
	}{
		{
			name: "volatile address",
			instance: api.Instance{
				Name:    "foo",
				Config:  map[string]string{"volatile.eth0.hwaddr": "52:54:00:aa:bb:cc"},
				Devices: api.Devices{"eth0": {"type": "nic", "parent": "mpbr0"}},
			},
		},
		{
			name: "requested address",
			instance: api.Instance{
				Name:    "foo",
				Config:  map[string]string{},
				Devices: api.Devices{"eth0": {"type": "nic", "parent": "mpbr0", "hwaddr": "52:54:00:AA:BB:CC"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, restore := logger.Testing(t)
			defer restore()

			d := lxdtest.New()
			serveInstance(d, tt.instance)
			global := newTestGlobal(t, d)

			instance, err := global.existingInstance("foo")
			require.NoError(t, err)

			assert.Equal(t, "10.1.2.3", instance.ManagementIPv4())
			assert.Equal(t, 0, d.Count("POST", "/1.0/virtual-machines"))
		})
	}
}

func TestExistingInstance_Missing(t *testing.T) {
	_, restore := logger.Testing(t)
	defer restore()

	d := lxdtest.New()
	global := newTestGlobal(t, d)

	_, err := global.existingInstance("bar")

	assert.EqualError(t, err, `Instance "bar" doesn't exist`)
	assert.Equal(t, 0, d.Count("POST", "/1.0/virtual-machines"))
}
