package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/canonical/multipass-lxd/driver"
)

type cmdImportImage struct {
	global *cmdGlobal

	flagRelease string
}

// Command returns the import-image sub-command.
func (c *cmdImportImage) Command() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Use = "import-image <metadata tarball> <disk image>"
	cmd.Short = "Import a local virtual machine image into LXD"
	cmd.RunE = c.Run
	cmd.Flags().StringVar(&c.flagRelease, "release", "", "Release the image provides"+"``")

	return cmd
}

// Run uploads the image and prints its fingerprint.
func (c *cmdImportImage) Run(cmd *cobra.Command, args []string) error {
	exit, err := c.global.CheckArgs(cmd, args, 2, 2)
	if exit {
		return err
	}

	meta, err := os.Open(args[0])
	if err != nil {
		return err
	}

	defer func() { _ = meta.Close() }()

	disk, err := os.Open(args[1])
	if err != nil {
		return err
	}

	defer func() { _ = disk.Close() }()

	vault, err := c.global.factory.CreateImageVault(nil)
	if err != nil {
		return err
	}

	importer, ok := vault.(*driver.ImageVault)
	if !ok {
		return fmt.Errorf("The image vault doesn't support importing images")
	}

	image, err := importer.ImportImage(meta, filepath.Base(args[0]), disk, filepath.Base(args[1]), c.flagRelease)
	if err != nil {
		return err
	}

	fmt.Println(image.ID)

	return nil
}
