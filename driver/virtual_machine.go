package driver

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/config"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/vm"
)

const (
	instanceCreateTimeout = 10 * time.Minute
	stateChangeTimeout    = 5 * time.Minute
	leasePollInterval     = time.Second
)

// VirtualMachineArgs holds the optional settings of a VirtualMachine.
type VirtualMachineArgs struct {
	// Storage pool of the root disk, "default" when empty
	StoragePool string

	// Snap environment, consulted on Close
	Snap config.Snap
}

// VirtualMachine is a LXD virtual machine.
//
// The state kept here is only the last observation: every query goes back
// to the daemon. The one exception is Starting, which is kept until the
// instance is reachable over the network.
type VirtualMachine struct {
	desc    vm.Description
	monitor vm.StatusMonitor
	client  *lxd.ProtocolLXD
	network *NetworkManager
	snap    config.Snap
	logger  logger.Logger

	// Serializes lifecycle actions.
	opMu sync.Mutex

	mu                    sync.Mutex
	state                 vm.State
	shutdownWhileStarting bool
}

var _ vm.VirtualMachine = (*VirtualMachine)(nil)

// NewVirtualMachine returns the virtual machine described by desc, creating it if the daemon doesn't know it yet.
func NewVirtualMachine(desc vm.Description, monitor vm.StatusMonitor, client *lxd.ProtocolLXD, network *NetworkManager, args VirtualMachineArgs) (*VirtualMachine, error) {
	pool := args.StoragePool
	if pool == "" {
		pool = "default"
	}

	v := &VirtualMachine{
		desc:    desc,
		monitor: monitor,
		client:  client,
		network: network,
		snap:    args.Snap,
		logger:  logger.AddContext(logger.Ctx{"instance": desc.VMName}),
		state:   vm.Off,
	}

	_, err := client.GetInstanceState(desc.VMName)
	if err != nil {
		if !api.StatusErrorCheck(err, http.StatusNotFound) {
			return nil, err
		}

		payload, err := instancePayload(desc, network.Bridge(), pool)
		if err != nil {
			return nil, err
		}

		v.logger.Debug("Creating instance")

		err = client.CreateInstance(payload, instanceCreateTimeout)
		if err != nil {
			return nil, err
		}
	}

	v.CurrentState()

	return v, nil
}

// Name returns the name of the instance.
func (v *VirtualMachine) Name() string {
	return v.desc.VMName
}

// Start boots the instance, or resumes it when suspended. It doesn't wait for the boot to complete.
func (v *VirtualMachine) Start() error {
	v.opMu.Lock()
	defer v.opMu.Unlock()

	action := "start"
	switch v.CurrentState() {
	case vm.Suspending:
		return vm.ErrStartWhileSuspending

	case vm.Running, vm.Starting:
		return nil

	case vm.Suspended:
		v.logger.Info("Resuming from a suspended state")
		action = "unfreeze"
	}

	err := v.requestState(action)
	if err != nil {
		return err
	}

	// A resumed guest is Starting too, until SSH answers again.
	v.mu.Lock()
	v.state = vm.Starting
	v.shutdownWhileStarting = false
	v.mu.Unlock()

	v.persist(vm.Starting)

	return nil
}

// Shutdown stops the instance.
//
// Stopping an instance that is still booting makes the pending EnsureRunning fail.
func (v *VirtualMachine) Shutdown() error {
	v.opMu.Lock()
	defer v.opMu.Unlock()

	switch v.CurrentState() {
	case vm.Off:
		v.logger.Debug("Ignoring stop request since instance is already stopped")
		return nil

	case vm.Suspended:
		v.logger.Info("Ignoring shutdown issued while suspended")
		return nil

	case vm.Starting:
		err := v.requestState("stop")
		if err != nil {
			return err
		}

		v.mu.Lock()
		v.state = vm.Off
		v.shutdownWhileStarting = true
		v.mu.Unlock()

		return nil
	}

	err := v.requestState("stop")
	if err != nil {
		return err
	}

	v.setState(vm.Off)
	v.persist(vm.Off)

	return nil
}

// Suspend isn't supported by this backend.
func (v *VirtualMachine) Suspend() error {
	return vm.ErrSuspendNotSupported
}

// Close stops the instance without recording the change, unless the snap is being refreshed.
func (v *VirtualMachine) Close() error {
	if v.snap.Refreshing() {
		v.logger.Debug("Leaving instance running during snap refresh")
		return nil
	}

	v.opMu.Lock()
	defer v.opMu.Unlock()

	state := v.CurrentState()
	if state == vm.Off || state == vm.Suspended {
		return nil
	}

	err := v.requestState("stop")
	if err != nil {
		v.logger.Warn("Failed to stop instance", logger.Ctx{"err": err})
		return err
	}

	v.setState(vm.Off)

	return nil
}

// CurrentState queries the daemon and returns the state of the instance.
func (v *VirtualMachine) CurrentState() vm.State {
	observed, err := v.observe()
	if err != nil {
		if lxd.IsConnectionError(err) {
			v.logger.Warn(err.Error())
		} else {
			v.logger.Error("Failed to query instance state", logger.Ctx{"err": err})
		}

		observed = vm.Unknown
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Booting instances stay Starting until they are reachable.
	if v.state == vm.Starting && (observed == vm.Running || observed == vm.Starting) {
		return v.state
	}

	v.state = observed

	return v.state
}

// EnsureRunning fails when the instance stopped while it was booting.
//
// A stopped instance gets one grace period of timeout to come back, which
// covers reboots issued early during boot.
func (v *VirtualMachine) EnsureRunning(timeout time.Duration) error {
	v.opMu.Lock()
	if v.stoppedDuringStart() {
		v.opMu.Unlock()
		return v.startFailed()
	}

	observed, err := v.observe()
	v.opMu.Unlock()
	if err != nil {
		return err
	}

	if observed != vm.Off {
		return nil
	}

	time.Sleep(timeout)

	v.opMu.Lock()
	defer v.opMu.Unlock()

	if v.stoppedDuringStart() {
		return v.startFailed()
	}

	observed, err = v.observe()
	if err != nil {
		return err
	}

	if observed == vm.Off {
		return v.startFailed()
	}

	v.setState(vm.Starting)

	return nil
}

func (v *VirtualMachine) stoppedDuringStart() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.shutdownWhileStarting
}

func (v *VirtualMachine) startFailed() error {
	v.setState(vm.Off)
	return vm.NewStartError(v.desc.VMName, vm.ErrShutdownDuringStart.Error())
}

// SSHPort returns the port SSH listens on in the instance.
func (v *VirtualMachine) SSHPort() int {
	return 22
}

// SSHUsername returns the user to log in as.
func (v *VirtualMachine) SSHUsername() string {
	return v.desc.SSHUsername
}

// SSHHostname waits up to timeout for the instance to get an address on the bridge.
func (v *VirtualMachine) SSHHostname(timeout time.Duration) (string, error) {
	var address string

	err := retry.Retry(func(uint) error {
		addr, found, err := v.network.LeaseFor(v.desc.DefaultMACAddress)
		if err != nil {
			return err
		}

		if !found {
			return errNoLease
		}

		address = addr

		return nil
	}, untilDeadline(time.Now().Add(timeout), leasePollInterval))
	if err != nil {
		v.setState(vm.Unknown)

		if errors.Is(err, errNoLease) {
			return "", &lxd.TimeoutError{URL: "lease for " + v.desc.DefaultMACAddress}
		}

		return "", err
	}

	v.mu.Lock()
	if v.state == vm.Starting {
		v.state = vm.Running
	}

	v.mu.Unlock()

	return address, nil
}

// ManagementIPv4 returns the address of the instance on the bridge, or "UNKNOWN".
func (v *VirtualMachine) ManagementIPv4() string {
	addr, found, err := v.network.LeaseFor(v.desc.DefaultMACAddress)
	if err != nil || !found {
		return "UNKNOWN"
	}

	return addr
}

// IPv6 isn't reported for LXD instances.
func (v *VirtualMachine) IPv6() string {
	return ""
}

var errNoLease = errors.New("No lease yet")

// untilDeadline allows attempts until deadline, pausing interval between them.
func untilDeadline(deadline time.Time, interval time.Duration) strategy.Strategy {
	return func(attempt uint) bool {
		if attempt == 0 {
			return true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}

		time.Sleep(min(interval, remaining))

		return true
	}
}

func (v *VirtualMachine) requestState(action string) error {
	return v.client.UpdateInstanceState(v.desc.VMName, api.InstanceStatePut{Action: action}, stateChangeTimeout)
}

func (v *VirtualMachine) setState(state vm.State) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state = state
}

func (v *VirtualMachine) persist(state vm.State) {
	err := v.monitor.PersistStateFor(v.desc.VMName, state)
	if err != nil {
		v.logger.Warn("Failed to persist instance state", logger.Ctx{"state": state.String(), "err": err})
	}
}

// observe returns the state the daemon reports for the instance.
func (v *VirtualMachine) observe() (vm.State, error) {
	state, err := v.client.GetInstanceState(v.desc.VMName)
	if err != nil {
		return vm.Unknown, err
	}

	switch state.StatusCode {
	case api.Stopped:
		return vm.Off, nil

	case api.Starting:
		return vm.Starting, nil

	case api.Started, api.Running, api.Stopping, api.Thawed:
		// The VM agent reports processes once the guest is up.
		if state.Processes > 0 {
			return vm.Running, nil
		}

		return vm.Starting, nil

	case api.Freezing:
		return vm.Suspending, nil

	case api.Frozen:
		return vm.Suspended, nil

	case api.Cancelling, api.Error:
		return vm.Unknown, nil
	}

	v.logger.Error("Got unexpected LXD state", logger.Ctx{"status": state.Status, "code": int(state.StatusCode)})

	return vm.Unknown, nil
}
