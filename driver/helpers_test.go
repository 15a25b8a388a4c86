package driver_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/driver"
	"github.com/canonical/multipass-lxd/internal/lxdtest"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/vm"
)

const (
	instanceName = "pied-piper-valley"
	instanceMAC  = "00:16:3e:fe:f2:b9"
	bridgeName   = "mpbr0"
)

func defaultDescription() vm.Description {
	return vm.Description{
		NumCores:          2,
		MemSize:           3145728,
		DiskSpace:         5368709120,
		VMName:            instanceName,
		DefaultMACAddress: instanceMAC,
		SSHUsername:       "ubuntu",
	}
}

// fakeInstance plays the daemon side of a virtual machine.
type fakeInstance struct {
	mu sync.Mutex

	missing bool

	// Reported states, the last one sticks.
	states []api.InstanceState

	// Whether state changes are left without effect, like a guest that stops right away.
	ignoreActions bool

	actions []string
	leases  []api.NetworkLease
}

func newFakeInstance(code api.StatusCode, processes int64) *fakeInstance {
	return &fakeInstance{states: []api.InstanceState{lxdtest.InstanceState(code, processes)}}
}

// report replaces the reported states by the given sequence.
func (f *fakeInstance) report(states ...api.InstanceState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.states = states
}

func (f *fakeInstance) next() api.InstanceState {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := f.states[0]
	if len(f.states) > 1 {
		f.states = f.states[1:]
	}

	return state
}

func (f *fakeInstance) Actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.actions...)
}

func (f *fakeInstance) apply(action string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.actions = append(f.actions, action)
	if f.ignoreActions {
		return
	}

	switch action {
	case "start":
		f.states = []api.InstanceState{lxdtest.InstanceState(api.Running, 0)}
	case "stop":
		f.states = []api.InstanceState{lxdtest.InstanceState(api.Stopped, 0)}
	case "unfreeze":
		f.states = []api.InstanceState{lxdtest.InstanceState(api.Running, 1)}
	}
}

// serve registers the instance, lease and operation endpoints on d.
func (f *fakeInstance) serve(d *lxdtest.Daemon) {
	d.HandleOperations()

	d.Handle("GET", "/1.0/virtual-machines/{name}/state", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		missing := f.missing
		f.mu.Unlock()

		if missing {
			lxdtest.NotFound(w, r)
			return
		}

		lxdtest.WriteSync(w, f.next())
	})

	d.Handle("PUT", "/1.0/virtual-machines/{name}/state", func(w http.ResponseWriter, r *http.Request) {
		put := api.InstanceStatePut{}
		err := json.NewDecoder(r.Body).Decode(&put)
		if err != nil {
			lxdtest.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		f.apply(put.Action)
		d.StartOperation(w, "Updating instance state", nil)
	})

	d.Handle("POST", "/1.0/virtual-machines", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.missing = false
		f.states = []api.InstanceState{lxdtest.InstanceState(api.Stopped, 0)}
		f.mu.Unlock()

		d.StartOperation(w, "Creating instance", nil)
	})

	d.Handle("GET", "/1.0/networks/"+bridgeName+"/leases", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		leases := append([]api.NetworkLease{}, f.leases...)
		f.mu.Unlock()

		lxdtest.WriteSync(w, leases)
	})
}

// recordingMonitor remembers every persisted state.
type recordingMonitor struct {
	mu        sync.Mutex
	persisted []vm.State
}

func (m *recordingMonitor) PersistStateFor(name string, state vm.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persisted = append(m.persisted, state)

	return nil
}

func (m *recordingMonitor) Persisted() []vm.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]vm.State(nil), m.persisted...)
}

func newClient(t *testing.T, d *lxdtest.Daemon) *lxd.ProtocolLXD {
	t.Helper()

	c, err := lxd.ConnectLXD(lxdtest.Host, d, nil)
	require.NoError(t, err)

	return c.UseProject("multipass")
}

func newVirtualMachine(t *testing.T, d *lxdtest.Daemon, monitor vm.StatusMonitor, args driver.VirtualMachineArgs) *driver.VirtualMachine {
	t.Helper()

	c := newClient(t, d)

	machine, err := driver.NewVirtualMachine(defaultDescription(), monitor, c, driver.NewNetworkManager(c, bridgeName, nil), args)
	require.NoError(t, err)

	return machine
}

// entries returns the entries logged at level containing substr.
func entries(hook *test.Hook, level logrus.Level, substr string) []*logrus.Entry {
	var found []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			found = append(found, e)
		}
	}

	return found
}

func contains(s string, substr string) bool {
	return strings.Contains(s, substr)
}
