// Package platform inspects the host the backend runs on.
package platform

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vishvananda/netlink"

	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/vm"
)

// Platform provides information about the host.
type Platform interface {
	// NetworkInterfacesInfo returns the host networks keyed by interface name.
	NetworkInterfacesInfo() (map[string]vm.NetworkInterfaceInfo, error)
}

// Host is the Platform of the local machine.
type Host struct {
	linkList    func() ([]netlink.Link, error)
	sysClassNet string
}

// New returns the Platform of the local machine.
func New() *Host {
	return &Host{
		linkList:    netlink.LinkList,
		sysClassNet: "/sys/class/net",
	}
}

// NetworkInterfacesInfo lists the bridges, ethernet and wireless devices of the host.
func (h *Host) NetworkInterfacesInfo() (map[string]vm.NetworkInterfaceInfo, error) {
	links, err := h.linkList()
	if err != nil {
		return nil, fmt.Errorf("Failed to list network interfaces: %w", err)
	}

	members := map[int][]string{}
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.MasterIndex > 0 {
			members[attrs.MasterIndex] = append(members[attrs.MasterIndex], attrs.Name)
		}
	}

	infos := map[string]vm.NetworkInterfaceInfo{}
	for _, link := range links {
		attrs := link.Attrs()
		if attrs.Flags&net.FlagLoopback != 0 {
			continue
		}

		switch link.Type() {
		case "bridge":
			infos[attrs.Name] = vm.NetworkInterfaceInfo{
				ID:          attrs.Name,
				Type:        "bridge",
				Description: bridgeDescription(members[attrs.Index]),
			}

		case "device":
			if h.isWireless(attrs.Name) {
				infos[attrs.Name] = vm.NetworkInterfaceInfo{ID: attrs.Name, Type: "wifi", Description: "Wi-Fi device"}
			} else {
				infos[attrs.Name] = vm.NetworkInterfaceInfo{ID: attrs.Name, Type: "ethernet", Description: "Ethernet device"}
			}

		default:
			logger.Trace("Skipping network interface", logger.Ctx{"interface": attrs.Name, "type": link.Type()})
		}
	}

	return infos, nil
}

func (h *Host) isWireless(name string) bool {
	_, err := os.Stat(filepath.Join(h.sysClassNet, name, "wireless"))
	return err == nil
}

func bridgeDescription(members []string) string {
	if len(members) == 0 {
		return "Network bridge"
	}

	sort.Strings(members)

	return fmt.Sprintf("Network bridge with %s", strings.Join(members, ", "))
}
