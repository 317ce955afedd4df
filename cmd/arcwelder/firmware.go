package main

import (
	"github.com/urfave/cli/v2"

	"github.com/fieldOfView/ArcWelderLib/firmware"
	"github.com/fieldOfView/ArcWelderLib/render"
)

func firmwareCommand() *cli.Command {
	return &cli.Command{
		Name:  "firmware",
		Usage: "Show the firmware types, versions and defaults the straightener knows",
		Subcommands: []*cli.Command{
			{
				Name:      "versions",
				Usage:     "List the versions of every firmware type, or of one",
				ArgsUsage: "[TYPE]",
				Flags:     []cli.Flag{FormatFlag},
				Action:    firmwareVersionsAction,
			},
			{
				Name:      "defaults",
				Usage:     "Show the default arguments of a firmware version",
				ArgsUsage: "TYPE [VERSION]",
				Flags:     []cli.Flag{FormatFlag},
				Action:    firmwareDefaultsAction,
			},
		},
	}
}

// VersionList is one row of `firmware versions`.
type VersionList struct {
	Type     firmware.Type `json:"firmware_type" yaml:"firmware_type" msgpack:"firmware_type"`
	Versions []string      `json:"versions" yaml:"versions" msgpack:"versions"`
	Latest   string        `json:"latest" yaml:"latest" msgpack:"latest"`
}

func versionList(t firmware.Type) VersionList {
	return VersionList{Type: t, Versions: firmware.ListVersionNames(t), Latest: firmware.Latest(t)}
}

func firmwareVersionsAction(c *cli.Context) error {
	f, err := outputFormat(c)
	if err != nil {
		return err
	}

	var rows []VersionList
	if name := c.Args().First(); name != "" {
		t, err := firmware.ParseType(name)
		if err != nil {
			return configExit(err)
		}
		rows = append(rows, versionList(t))
	} else {
		for _, t := range firmware.Types() {
			rows = append(rows, versionList(t))
		}
	}
	return render.Render(c.App.Writer, f, rows)
}

func firmwareDefaultsAction(c *cli.Context) error {
	f, err := outputFormat(c)
	if err != nil {
		return err
	}
	t, err := firmware.ParseType(c.Args().First())
	if err != nil {
		return configExit(err)
	}
	version := c.Args().Get(1)
	if version == "" {
		version = firmware.LatestRelease
	}
	args, err := firmware.DefaultArguments(t, version)
	if err != nil {
		return configExit(err)
	}
	return render.Render(c.App.Writer, f, args)
}
