package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/canonical/multipass-lxd/driver"
	"github.com/canonical/multipass-lxd/vm"
)

type cmdLaunch struct {
	global *cmdGlobal

	flagCPUs      int
	flagMemory    string
	flagDisk      string
	flagImage     string
	flagRemote    string
	flagCloudInit string
	flagNetworks  []string
	flagUsername  string
	flagTimeout   time.Duration
}

// Command returns the launch sub-command.
func (c *cmdLaunch) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "launch [<name>]"
	cmd.Short = "Create and start an instance"
	cmd.Long = `Description:
  Create and start an instance

  The image is pulled by LXD from the configured simplestreams remotes.
  A name is generated when none is given.
`
	cmd.RunE = c.Run
	cmd.Flags().IntVarP(&c.flagCPUs, "cpus", "c", 1, "Number of CPUs"+"``")
	cmd.Flags().StringVarP(&c.flagMemory, "memory", "m", "1G", "Amount of memory"+"``")
	cmd.Flags().StringVar(&c.flagDisk, "disk", "5G", "Size of the root disk"+"``")
	cmd.Flags().StringVar(&c.flagImage, "image", "", "Release or alias of the image, the latest LTS by default"+"``")
	cmd.Flags().StringVar(&c.flagRemote, "remote", "", "Remote to pull the image from"+"``")
	cmd.Flags().StringVar(&c.flagCloudInit, "cloud-init", "", "Path to a cloud-init user-data file"+"``")
	cmd.Flags().StringArrayVarP(&c.flagNetworks, "network", "n", nil, "Bridge to attach an extra interface to"+"``")
	cmd.Flags().StringVar(&c.flagUsername, "username", "ubuntu", "User to log in as over SSH"+"``")
	cmd.Flags().DurationVar(&c.flagTimeout, "timeout", 5*time.Minute, "How long to wait for the instance to get an address"+"``")

	return cmd
}

// Run creates, starts and waits for the instance.
func (c *cmdLaunch) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 0, 1)
	if exit {
		return err
	}

	name := strings.ToLower(petname.Generate(2, "-"))
	if len(args) > 0 {
		name = args[0]
	}

	desc, err := c.description(name)
	if err != nil {
		return err
	}

	factory := c.global.factory
	vault, err := factory.CreateImageVault([]vm.ImageHost{driver.NewStreamsHost(c.global.conf.Remotes)})
	if err != nil {
		return err
	}

	found, err := vault.HasRecordFor(name)
	if err != nil {
		return err
	}

	if found {
		return fmt.Errorf("Instance %q already exists", name)
	}

	query := vm.Query{Name: name, Release: c.flagImage, RemoteName: c.flagRemote}
	desc.Image, err = vault.FetchImage(factory.FetchType(), query, factory.PrepareSourceImage)
	if err != nil {
		return err
	}

	err = factory.PrepareInstanceImage(desc.Image, desc)
	if err != nil {
		return err
	}

	_, err = factory.MakeCloudInitImage(name, desc)
	if err != nil {
		return err
	}

	instance, err := factory.CreateVirtualMachine(desc, &statusPrinter{out: os.Stdout})
	if err != nil {
		return err
	}

	err = instance.Start()
	if err != nil {
		return err
	}

	address, err := instance.SSHHostname(c.flagTimeout)
	if err != nil {
		return err
	}

	fmt.Printf("Launched %s, reachable as %s@%s\n", name, instance.SSHUsername(), address)

	return nil
}

// description builds the instance description out of the flags.
func (c *cmdLaunch) description(name string) (vm.Description, error) {
	memory, err := vm.ParseMemorySize(c.flagMemory)
	if err != nil {
		return vm.Description{}, err
	}

	disk, err := vm.ParseMemorySize(c.flagDisk)
	if err != nil {
		return vm.Description{}, err
	}

	mac, err := randomMAC()
	if err != nil {
		return vm.Description{}, err
	}

	desc := vm.Description{
		NumCores:          c.flagCPUs,
		MemSize:           memory,
		DiskSpace:         disk,
		VMName:            name,
		DefaultMACAddress: mac,
		SSHUsername:       c.flagUsername,
		MetaDataConfig: yaml.MapSlice{
			{Key: "instance-id", Value: name},
			{Key: "local-hostname", Value: name},
		},
	}

	for _, network := range c.flagNetworks {
		mac, err := randomMAC()
		if err != nil {
			return vm.Description{}, err
		}

		desc.ExtraInterfaces = append(desc.ExtraInterfaces, vm.NetworkInterface{ID: network, MACAddress: mac, AutoMode: true})
	}

	desc.NetworkDataConfig = networkConfig(desc)

	if c.flagCloudInit != "" {
		content, err := os.ReadFile(c.flagCloudInit)
		if err != nil {
			return vm.Description{}, fmt.Errorf("Failed to read %q: %w", c.flagCloudInit, err)
		}

		desc.UserDataConfig, err = vm.LoadCloudConfig(content)
		if err != nil {
			return vm.Description{}, fmt.Errorf("Failed to parse %q: %w", c.flagCloudInit, err)
		}
	}

	return desc, nil
}

// networkConfig configures DHCP on the extra interfaces in auto mode. It is nil when there are none.
func networkConfig(desc vm.Description) any {
	var ethernets yaml.MapSlice
	for i, iface := range desc.ExtraInterfaces {
		if !iface.AutoMode {
			continue
		}

		ethernets = append(ethernets, yaml.MapItem{
			Key: fmt.Sprintf("extra%d", i),
			Value: yaml.MapSlice{
				{Key: "match", Value: yaml.MapSlice{{Key: "macaddress", Value: iface.MACAddress}}},
				{Key: "dhcp4", Value: true},
				{Key: "dhcp4-overrides", Value: yaml.MapSlice{{Key: "route-metric", Value: 200}}},
				{Key: "optional", Value: true},
			},
		})
	}

	if len(ethernets) == 0 {
		return nil
	}

	def := yaml.MapItem{
		Key: "default",
		Value: yaml.MapSlice{
			{Key: "match", Value: yaml.MapSlice{{Key: "macaddress", Value: desc.DefaultMACAddress}}},
			{Key: "dhcp4", Value: true},
		},
	}

	return yaml.MapSlice{
		{Key: "version", Value: 2},
		{Key: "ethernets", Value: append(yaml.MapSlice{def}, ethernets...)},
	}
}
