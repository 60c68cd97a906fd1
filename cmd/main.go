// Command bmfs is the CLI surface over the file-system facade:
// format/ls/mkdir/touch/rm/rmdir against a disk image, plus cat/cp for
// moving data in and out of one.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	bmfs "github.com/ReturnInfinity/BMFS-sub000"
	"github.com/ReturnInfinity/BMFS-sub000/disk/filedisk"
	"github.com/ReturnInfinity/BMFS-sub000/disks"
	"github.com/ReturnInfinity/BMFS-sub000/errors"
	"github.com/ReturnInfinity/BMFS-sub000/header"
	"github.com/ReturnInfinity/BMFS-sub000/host"
	"github.com/ReturnInfinity/BMFS-sub000/sizespec"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "bmfs",
		Usage: "Inspect and manipulate BMFS disk images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "disk",
				Usage:    "path to the disk image file",
				Required: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create or wipe a BMFS image",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "size", Usage: "disk size (e.g. 256MiB) or a named preset (e.g. small)", Value: "64MiB"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing image"},
				},
				Action: formatCommand,
			},
			{
				Name:      "ls",
				Usage:     "List a directory",
				ArgsUsage: "[path]",
				Action:    lsCommand,
			},
			{
				Name:      "mkdir",
				Usage:     "Create a directory",
				ArgsUsage: "path",
				Action:    mkdirCommand,
			},
			{
				Name:      "touch",
				Usage:     "Create an empty file",
				ArgsUsage: "path",
				Action:    touchCommand,
			},
			{
				Name:      "rm",
				Usage:     "Remove a file",
				ArgsUsage: "path",
				Action:    rmCommand,
			},
			{
				Name:      "rmdir",
				Usage:     "Remove an empty directory",
				ArgsUsage: "path",
				Action:    rmdirCommand,
			},
			{
				Name:      "cat",
				Usage:     "Print a file's contents to stdout",
				ArgsUsage: "path",
				Action:    catCommand,
			},
			{
				Name:      "cp",
				Usage:     "Copy a host file into the image",
				ArgsUsage: "host-path image-path",
				Action:    cpCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		if derr, ok := err.(errors.DriverError); ok {
			log.Fatalf("bmfs: %s (%s)", derr.Error(), derr.Code().String())
		}
		log.Fatalf("bmfs: %s", err.Error())
	}
}

func openExisting(c *cli.Context) (*bmfs.FileSystem, errors.DriverError) {
	d, err := filedisk.Open(c.String("disk"), 0)
	if err != nil {
		return nil, err
	}
	fs, err := bmfs.New(d, host.Nop{})
	if err != nil {
		return nil, err
	}
	if err := fs.Import(); err != nil {
		return nil, err
	}
	return fs, nil
}

// resolveSize accepts either a named preset from bmfs/disks (e.g.
// "small") or a raw size expression parsed by sizespec, trying the
// preset table first since its slugs never collide with a leading digit.
func resolveSize(raw string) (uint64, errors.DriverError) {
	if preset, perr := disks.GetPredefinedSize(raw); perr == nil {
		return preset.SizeBytes, nil
	}
	return sizespec.Parse(raw)
}

func formatCommand(c *cli.Context) error {
	diskPath := c.String("disk")

	if _, statErr := os.Stat(diskPath); statErr == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists; pass --force to overwrite", diskPath)
	}

	size, err := resolveSize(c.String("size"))
	if err != nil {
		return err
	}
	if size < header.MinimumDiskSize {
		return errors.ErrInvalid.WithMessage("size is below the minimum disk size")
	}

	d, ferr := filedisk.Open(diskPath, 0)
	if ferr != nil {
		return ferr
	}
	fs, nerr := bmfs.New(d, host.Nop{})
	if nerr != nil {
		return nerr
	}
	if err := fs.Format(size); err != nil {
		return err
	}
	return fs.Close()
}

func lsCommand(c *cli.Context) error {
	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	dh, err := fs.OpenDir(c.Args().First())
	if err != nil {
		return err
	}
	for {
		e, nerr := dh.Next()
		if nerr != nil {
			return nerr
		}
		if e == nil {
			break
		}
		fmt.Println(e.NameString())
	}
	return nil
}

func mkdirCommand(c *cli.Context) error {
	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	_, cerr := fs.CreateDir(c.Args().First())
	return cerr
}

func touchCommand(c *cli.Context) error {
	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	_, cerr := fs.CreateFile(c.Args().First())
	return cerr
}

func rmCommand(c *cli.Context) error {
	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	return fs.DeleteFile(c.Args().First())
}

func rmdirCommand(c *cli.Context) error {
	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	return fs.DeleteDir(c.Args().First())
}

func catCommand(c *cli.Context) error {
	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	f, oerr := fs.OpenFile(c.Args().First(), bmfs.ModeRead)
	if oerr != nil {
		return oerr
	}

	buf := make([]byte, 64*1024)
	for !f.EOF() {
		n, rerr := f.Read(buf)
		if rerr != nil {
			return rerr
		}
		if n == 0 {
			break
		}
		os.Stdout.Write(buf[:n])
	}
	return nil
}

func cpCommand(c *cli.Context) error {
	hostPath := c.Args().Get(0)
	imagePath := c.Args().Get(1)
	if hostPath == "" || imagePath == "" {
		return fmt.Errorf("usage: bmfs cp host-path image-path")
	}

	fs, err := openExisting(c)
	if err != nil {
		return err
	}
	defer fs.Close()

	src, oerr := os.Open(hostPath)
	if oerr != nil {
		return oerr
	}
	defer src.Close()

	if _, cerr := fs.CreateFile(imagePath); cerr != nil {
		return cerr
	}
	dst, oerr := fs.OpenFile(imagePath, bmfs.ModeWrite)
	if oerr != nil {
		return oerr
	}

	buf := make([]byte, 64*1024)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return dst.Close()
}
