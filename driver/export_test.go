package driver

import (
	"github.com/canonical/multipass-lxd/vm"
)

// CachedState returns the last state observed, without querying the daemon.
func (v *VirtualMachine) CachedState() vm.State {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.state
}
