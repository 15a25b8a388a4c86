package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	lxd "github.com/canonical/multipass-lxd/client"
	"github.com/canonical/multipass-lxd/config"
	"github.com/canonical/multipass-lxd/driver"
	"github.com/canonical/multipass-lxd/platform"
	"github.com/canonical/multipass-lxd/shared/logger"
	"github.com/canonical/multipass-lxd/shared/version"
)

type cmdGlobal struct {
	cmd *cobra.Command

	flagConfig          string
	flagLogDebug        bool
	flagLogVerbose      bool
	flagLogFile         string
	flagMetricsTextfile string
	flagVersion         bool

	conf     *config.Config
	registry *prometheus.Registry
	factory  *driver.Factory
}

func main() {
	app := &cobra.Command{}
	app.Use = "multipass-lxd"
	app.Short = "Multipass LXD backend"
	app.Long = `Description:
  Multipass LXD backend

  Manages Multipass instances as LXD virtual machines, talking to the
  local LXD daemon over its unix socket.
`
	app.SilenceUsage = true
	app.SilenceErrors = true
	app.CompletionOptions = cobra.CompletionOptions{DisableDefaultCmd: true}

	// Global flags
	globalCmd := cmdGlobal{cmd: app}
	app.PersistentFlags().StringVar(&globalCmd.flagConfig, "config", "", "Path to the configuration file"+"``")
	app.PersistentFlags().BoolVarP(&globalCmd.flagLogDebug, "debug", "d", false, "Show all debug messages")
	app.PersistentFlags().BoolVarP(&globalCmd.flagLogVerbose, "verbose", "v", false, "Show all information messages")
	app.PersistentFlags().StringVar(&globalCmd.flagLogFile, "logfile", "", "Path to the log file"+"``")
	app.PersistentFlags().StringVar(&globalCmd.flagMetricsTextfile, "metrics-textfile", "", "Write request metrics to this file on exit"+"``")
	app.PersistentFlags().BoolVar(&globalCmd.flagVersion, "version", false, "Print version number")

	app.PersistentPreRunE = globalCmd.PreRun
	app.PersistentPostRunE = globalCmd.PostRun

	// Version handling
	app.SetVersionTemplate("{{.Version}}\n")
	app.Version = version.Version

	// health-check sub-command
	healthCheckCmd := cmdHealthCheck{global: &globalCmd}
	app.AddCommand(healthCheckCmd.Command())

	// networks sub-command
	networksCmd := cmdNetworks{global: &globalCmd}
	app.AddCommand(networksCmd.Command())

	// launch sub-command
	launchCmd := cmdLaunch{global: &globalCmd}
	app.AddCommand(launchCmd.Command())

	// start sub-command
	startCmd := cmdStart{global: &globalCmd}
	app.AddCommand(startCmd.Command())

	// stop sub-command
	stopCmd := cmdStop{global: &globalCmd}
	app.AddCommand(stopCmd.Command())

	// state sub-command
	stateCmd := cmdState{global: &globalCmd}
	app.AddCommand(stateCmd.Command())

	// ip sub-command
	ipCmd := cmdIP{global: &globalCmd}
	app.AddCommand(ipCmd.Command())

	// import-image sub-command
	importImageCmd := cmdImportImage{global: &globalCmd}
	app.AddCommand(importImageCmd.Command())

	// version sub-command
	versionCmd := cmdVersion{global: &globalCmd}
	app.AddCommand(versionCmd.Command())

	// Run the main command and handle errors
	err := app.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// PreRun sets up logging, loads the configuration and connects to the daemon.
func (c *cmdGlobal) PreRun(cmd *cobra.Command, args []string) error {
	err := logger.InitLogger(c.flagLogFile, c.flagLogVerbose, c.flagLogDebug)
	if err != nil {
		return err
	}

	// The version sub-command needs neither configuration nor daemon.
	if cmd.Name() == "version" {
		return nil
	}

	c.conf, err = config.LoadConfig(c.flagConfig)
	if err != nil {
		return err
	}

	c.registry = prometheus.NewRegistry()

	server, err := lxd.ConnectLXDUnix(c.conf.Socket, &lxd.ConnectionArgs{
		UserAgent:      version.UserAgent,
		Registerer:     c.registry,
		SkipGetServer:  true,
		RequestTimeout: c.conf.RequestTimeout,
	})
	if err != nil {
		return err
	}

	c.factory = driver.NewFactory(server, c.conf, platform.New())

	return nil
}

// PostRun writes the collected metrics out when asked to.
func (c *cmdGlobal) PostRun(cmd *cobra.Command, args []string) error {
	if c.flagMetricsTextfile == "" || c.registry == nil {
		return nil
	}

	return prometheus.WriteToTextfile(c.flagMetricsTextfile, c.registry)
}

// CheckArgs validates the number of arguments, showing the help when wrong.
func (c *cmdGlobal) CheckArgs(cmd *cobra.Command, args []string, minArgs int, maxArgs int) (bool, error) {
	if len(args) < minArgs || (maxArgs != -1 && len(args) > maxArgs) {
		_ = cmd.Help()

		if len(args) == 0 {
			return true, nil
		}

		return true, fmt.Errorf("Invalid number of arguments")
	}

	return false, nil
}

// errorMessage turns local socket failures into actionable messages.
func errorMessage(err error) string {
	localErr := lxd.GetLocalLXDErr(err)
	if localErr != nil {
		switch {
		case errors.Is(localErr, unix.ENOENT):
			return "Error: LXD socket not found; is LXD installed and running?"
		case errors.Is(localErr, unix.ECONNREFUSED):
			return "Error: LXD is not running"
		case errors.Is(localErr, unix.EACCES):
			return "Error: You don't have the needed permissions to talk to LXD; are you in the lxd group?"
		}
	}

	return fmt.Sprintf("Error: %v", err)
}
