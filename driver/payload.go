package driver

import (
	"fmt"
	"strconv"

	"github.com/canonical/multipass-lxd/shared/api"
	"github.com/canonical/multipass-lxd/vm"
)

// instancePayload returns the creation request of the virtual machine described by desc.
func instancePayload(desc vm.Description, bridge string, pool string) (api.InstancesPost, error) {
	config := map[string]string{
		"limits.cpu":          strconv.Itoa(desc.NumCores),
		"limits.memory":       strconv.FormatInt(desc.MemSize.Bytes(), 10),
		"security.secureboot": "false",
	}

	cloudInit := []struct {
		key string
		doc any
	}{
		{"user.meta-data", desc.MetaDataConfig},
		{"user.user-data", desc.UserDataConfig},
		{"user.vendor-data", desc.VendorDataConfig},
		{"user.network-config", desc.NetworkDataConfig},
	}

	for _, entry := range cloudInit {
		if entry.doc == nil {
			continue
		}

		rendered, err := vm.EmitCloudConfig(entry.doc)
		if err != nil {
			return api.InstancesPost{}, fmt.Errorf("Failed to render %q: %w", entry.key, err)
		}

		config[entry.key] = rendered
	}

	devices := api.Devices{
		"config": {
			"source": "cloud-init:config",
			"type":   "disk",
		},
		"root": {
			"path": "/",
			"pool": pool,
			"size": strconv.FormatInt(desc.DiskSpace.Bytes(), 10),
			"type": "disk",
		},
		"eth0": nicDevice("eth0", bridge, desc.DefaultMACAddress),
	}

	for i, iface := range desc.ExtraInterfaces {
		name := fmt.Sprintf("eth%d", i+1)
		devices[name] = nicDevice(name, iface.ID, iface.MACAddress)
	}

	return api.InstancesPost{
		Config:  config,
		Devices: devices,
		Name:    desc.VMName,
		Source: api.InstanceSource{
			Fingerprint: desc.Image.ID,
			Type:        "image",
		},
	}, nil
}

func nicDevice(name string, parent string, hwaddr string) api.Device {
	return api.Device{
		"hwaddr":  hwaddr,
		"name":    name,
		"nictype": "bridged",
		"parent":  parent,
		"type":    "nic",
	}
}
