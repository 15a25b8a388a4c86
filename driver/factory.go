package driver

import (
	"fmt"
	"net/http"
	"strconv"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/config"
	"github.com/canonical/multipass-lxd/platform"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/vm"
)

// Factory creates LXD virtual machines.
type Factory struct {
	client  *lxd.ProtocolLXD
	network *NetworkManager
	args    VirtualMachineArgs
	logger  logger.Logger
}

var _ vm.VirtualMachineFactory = (*Factory)(nil)

// NewFactory returns a Factory managing instances in the configured project.
func NewFactory(client *lxd.ProtocolLXD, cfg *config.Config, p platform.Platform) *Factory {
	scoped := client.UseProject(cfg.Project)

	return &Factory{
		client:  scoped,
		network: NewNetworkManager(scoped, cfg.Bridge, p),
		args: VirtualMachineArgs{
			StoragePool: cfg.StoragePool,
			Snap:        cfg.Snap,
		},
		logger: logger.AddContext(logger.Ctx{"category": "lxd factory"}),
	}
}

// CreateVirtualMachine returns the instance described by desc, creating it if needed.
func (f *Factory) CreateVirtualMachine(desc vm.Description, monitor vm.StatusMonitor) (vm.VirtualMachine, error) {
	return NewVirtualMachine(desc, monitor, f.client, f.network, f.args)
}

// DescriptionFor rebuilds the description of an instance the daemon already knows.
//
// Only what the daemon records is filled in: name, resources and network interfaces.
// It reports false when there is no such instance.
func (f *Factory) DescriptionFor(name string) (vm.Description, bool, error) {
	instance, err := f.client.GetInstance(name)
	if err != nil {
		if api.StatusErrorCheck(err, http.StatusNotFound) {
			return vm.Description{}, false, nil
		}

		return vm.Description{}, false, err
	}

	desc := vm.Description{
		VMName:            instance.Name,
		DefaultMACAddress: instanceMAC(instance, "eth0"),
	}

	desc.NumCores, _ = strconv.Atoi(instance.Config["limits.cpu"])
	desc.MemSize, _ = vm.ParseMemorySize(instance.Config["limits.memory"])
	desc.DiskSpace, _ = vm.ParseMemorySize(instance.Devices["root"]["size"])

	for i := 1; ; i++ {
		nic := fmt.Sprintf("eth%d", i)
		device, ok := instance.Devices[nic]
		if !ok {
			break
		}

		desc.ExtraInterfaces = append(desc.ExtraInterfaces, vm.NetworkInterface{
			ID:         device["parent"],
			MACAddress: instanceMAC(instance, nic),
		})
	}

	if desc.VMName == "" {
		desc.VMName = name
	}

	return desc, true, nil
}

// instanceMAC returns the MAC address of a NIC, as assigned by the daemon or as requested at creation.
func instanceMAC(instance *api.Instance, nic string) string {
	mac := instance.Config[fmt.Sprintf("volatile.%s.hwaddr", nic)]
	if mac != "" {
		return mac
	}

	return instance.Devices[nic]["hwaddr"]
}

// RemoveResourcesFor is a no-op, the daemon owns instance resources.
func (f *Factory) RemoveResourcesFor(name string) error {
	f.logger.Trace(fmt.Sprintf("No resources to remove for %q", name))
	return nil
}

// FetchType returns vm.FetchImageOnly, the daemon boots images without a separate kernel.
func (f *Factory) FetchType() vm.FetchType {
	return vm.FetchImageOnly
}

// PrepareSourceImage returns the image unchanged.
func (f *Factory) PrepareSourceImage(source vm.Image) (vm.Image, error) {
	return source, nil
}

// PrepareInstanceImage is a no-op.
func (f *Factory) PrepareInstanceImage(instance vm.Image, desc vm.Description) error {
	f.logger.Trace("No driver preparation for instance image")
	return nil
}

// HypervisorHealthCheck ensures the daemon is usable.
func (f *Factory) HypervisorHealthCheck() error {
	return f.network.HealthCheck()
}

// BackendVersionString returns the version of the daemon, e.g. "lxd-5.21".
func (f *Factory) BackendVersionString() (string, error) {
	server, err := f.client.GetServer()
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("lxd-%s", server.Environment.ServerVersion), nil
}

// CreateImageVault returns a vault storing images in the daemon.
func (f *Factory) CreateImageVault(hosts []vm.ImageHost) (vm.ImageVault, error) {
	return NewImageVault(f.client, hosts), nil
}

// MakeCloudInitImage returns "", cloud-init data is passed to the daemon as instance configuration.
func (f *Factory) MakeCloudInitImage(name string, desc vm.Description) (string, error) {
	return "", nil
}

// Networks returns the bridges instances can be attached to.
func (f *Factory) Networks() ([]vm.NetworkInterfaceInfo, error) {
	return f.network.Networks()
}
