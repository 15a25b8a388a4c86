package driver

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/platform"
	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/shared/version"
	"github.com/canonical/multipass-lxd/vm"
)

const (
	projectDescription = "Project for Multipass instances"
	profileDescription = "Default profile for Multipass project"
	bridgeDescription  = "Network bridge for Multipass"

	defaultNetworkDescription = "Network bridge"
)

const snapConnectHint = "\n\nPlease ensure the LXD snap is installed and enabled. Also make sure\n" +
	"the LXD interface is connected via `snap connect multipass:lxd lxd`."

// NetworkManager provisions the resources instances need and reports the networks they can use.
type NetworkManager struct {
	client   *lxd.ProtocolLXD
	bridge   string
	platform platform.Platform
	logger   logger.Logger
}

// NewNetworkManager returns a NetworkManager for the project the client is scoped to.
func NewNetworkManager(client *lxd.ProtocolLXD, bridge string, p platform.Platform) *NetworkManager {
	return &NetworkManager{
		client:   client,
		bridge:   bridge,
		platform: p,
		logger:   logger.AddContext(logger.Ctx{"category": "lxd network"}),
	}
}

// Bridge returns the name of the managed bridge.
func (n *NetworkManager) Bridge() string {
	return n.bridge
}

// HealthCheck ensures the daemon trusts us and that the project, profile and bridge exist.
func (n *NetworkManager) HealthCheck() error {
	err := n.healthCheck()
	if err != nil && lxd.IsConnectionError(err) {
		return fmt.Errorf("%w"+snapConnectHint, err)
	}

	return err
}

func (n *NetworkManager) healthCheck() error {
	server, err := n.client.GetServer()
	if err != nil {
		return err
	}

	if !server.Trusted() {
		return &AuthError{}
	}

	err = n.checkServerVersion(server.Environment.ServerVersion)
	if err != nil {
		return err
	}

	err = n.ensureProject()
	if err != nil {
		return err
	}

	err = n.ensureProfile()
	if err != nil {
		return err
	}

	return n.ensureBridge()
}

func (n *NetworkManager) checkServerVersion(serverVersion string) error {
	current, err := version.Parse(serverVersion)
	if err != nil {
		n.logger.Debug("Unable to parse the LXD version", logger.Ctx{"version": serverVersion, "err": err})
		return nil
	}

	minimum, err := version.NewDottedVersion(version.MinimumLXDVersion)
	if err != nil {
		return err
	}

	if !current.AtLeast(minimum) {
		return fmt.Errorf("LXD %s is too old, version %s or later is required", serverVersion, version.MinimumLXDVersion)
	}

	return nil
}

func (n *NetworkManager) ensureProject() error {
	_, err := n.client.GetProject(n.client.Project())
	if err == nil {
		return nil
	}

	if !api.StatusErrorCheck(err, http.StatusNotFound) {
		return err
	}

	err = n.client.CreateProject(api.ProjectsPost{Name: n.client.Project(), Description: projectDescription})
	if err != nil && !n.alreadyExists(err, "project") {
		return err
	}

	return nil
}

func (n *NetworkManager) ensureProfile() error {
	profile, err := n.client.GetProfile("default")
	if err != nil && !api.StatusErrorCheck(err, http.StatusNotFound) {
		return err
	}

	if profile != nil {
		_, ok := profile.Devices["eth0"]
		if ok {
			return nil
		}
	}

	return n.client.UpdateProfile("default", api.ProfilePut{
		Description: profileDescription,
		Devices: api.Devices{
			"eth0": {
				"name":    "eth0",
				"nictype": "bridged",
				"parent":  n.bridge,
				"type":    "nic",
			},
		},
	})
}

func (n *NetworkManager) ensureBridge() error {
	_, err := n.client.GetNetwork(n.bridge)
	if err == nil {
		return nil
	}

	if !api.StatusErrorCheck(err, http.StatusNotFound) {
		return err
	}

	err = n.client.CreateNetwork(api.NetworksPost{Name: n.bridge, Description: bridgeDescription})
	if err != nil && !n.alreadyExists(err, "network") {
		return err
	}

	return nil
}

// alreadyExists reports whether a creation failed because someone else created the resource first.
func (n *NetworkManager) alreadyExists(err error, kind string) bool {
	if !api.StatusErrorCheck(err, http.StatusConflict) && !strings.Contains(err.Error(), "already exists") {
		return false
	}

	n.logger.Debug("Resource was created concurrently", logger.Ctx{"kind": kind, "err": err})

	return true
}

// Networks returns the bridges known to the daemon.
//
// Malformed entries are skipped. Bridges the daemon has no description for
// are described from the host when possible.
func (n *NetworkManager) Networks() ([]vm.NetworkInterfaceInfo, error) {
	resp, err := n.client.GetNetworksRaw()
	if err != nil {
		return nil, err
	}

	var entries []any
	if len(resp.Metadata) > 0 {
		err = json.Unmarshal(resp.Metadata, &entries)
		if err != nil {
			n.logger.Debug("Ignoring networks reply without a list", logger.Ctx{"err": err})
			return []vm.NetworkInterfaceInfo{}, nil
		}
	}

	var hostInfo map[string]vm.NetworkInterfaceInfo
	hostInfoLoaded := false

	networks := []vm.NetworkInterfaceInfo{}
	for _, entry := range entries {
		network, ok := decodeNetwork(entry)
		if !ok || network.Type != "bridge" || network.Name == "" {
			continue
		}

		description := network.Description
		if description == "" && n.platform != nil {
			if !hostInfoLoaded {
				hostInfo, err = n.platform.NetworkInterfacesInfo()
				if err != nil {
					n.logger.Warn("Failed to inspect host networks", logger.Ctx{"err": err})
				}

				hostInfoLoaded = true
			}

			description = hostInfo[network.Name].Description
		}

		if description == "" {
			description = defaultNetworkDescription
		}

		networks = append(networks, vm.NetworkInterfaceInfo{ID: network.Name, Type: network.Type, Description: description})
	}

	return networks, nil
}

// bridgeEntry holds the fields of a network entry the bridge listing relies on.
type bridgeEntry struct {
	Name        string `mapstructure:"name"`
	Type        string `mapstructure:"type"`
	Description string `mapstructure:"description"`
}

// decodeNetwork strictly decodes the name, type and description of a network entry.
// Other fields are left alone, whatever their type.
func decodeNetwork(entry any) (bridgeEntry, bool) {
	network := bridgeEntry{}

	fields, ok := entry.(map[string]any)
	if !ok {
		return network, false
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &network,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return network, false
	}

	err = decoder.Decode(fields)
	if err != nil {
		return network, false
	}

	return network, true
}

// LeaseFor returns the IPv4 address leased to the interface with the given MAC address.
func (n *NetworkManager) LeaseFor(hwaddr string) (string, bool, error) {
	leases, err := n.client.GetNetworkLeases(n.bridge)
	if err != nil {
		return "", false, err
	}

	for _, lease := range leases {
		if !strings.EqualFold(lease.Hwaddr, hwaddr) {
			continue
		}

		ip := net.ParseIP(lease.Address)
		if ip == nil || ip.To4() == nil {
			continue
		}

		return lease.Address, true, nil
	}

	return "", false, nil
}
