package main

import (
	"os"

	"github.com/spf13/cobra"
)

type cmdNetworks struct {
	global *cmdGlobal
}

// Command returns the networks sub-command.
func (c *cmdNetworks) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "networks"
	cmd.Short = "List the networks instances can be attached to"
	cmd.RunE = c.Run

	return cmd
}

// Run lists the bridges known to LXD.
func (c *cmdNetworks) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 0, 0)
	if exit {
		return err
	}

	networks, err := c.global.factory.Networks()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(networks))
	for _, network := range networks {
		rows = append(rows, []string{network.ID, network.Type, network.Description})
	}

	renderTable(os.Stdout, []string{"NAME", "TYPE", "DESCRIPTION"}, rows)

	return nil
}
