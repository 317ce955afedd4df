package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fieldOfView/ArcWelderLib/config"
	"github.com/fieldOfView/ArcWelderLib/log"
	"github.com/fieldOfView/ArcWelderLib/render"
)

var (
	ConfigFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Read default option values from a YAML file",
	}

	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Aliases: []string{"l"},
		Usage:   "NOSET, VERBOSE, DEBUG, INFO, WARNING, ERROR or CRITICAL",
		Value:   log.LevelInfo,
	}

	LogFormatFlag = &cli.StringFlag{
		Name:  "log-format",
		Usage: "Log encoding: json or console",
		Value: log.FormatConsole,
	}

	// FormatFlag selects the output format of results and tables.
	FormatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format: json, table, yaml",
	}

	ResultsFlag = &cli.StringFlag{
		Name:  "results",
		Usage: "Also write the result to a .json, .yaml, .msgpack or .txt file",
	}
)

// jobFlags are shared by weld and straighten.
func jobFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		LogLevelFlag,
		LogFormatFlag,
		FormatFlag,
		ResultsFlag,
	}
}

// loadConfig reads the --config file, if any, and sets every flag the
// command line left unset from the section values.
func loadConfig(c *cli.Context, section func(*config.File) map[string]string) (*config.File, error) {
	path := c.String(ConfigFlag.Name)
	if path == "" {
		return &config.File{}, nil
	}
	f, err := config.Load(path)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitConfig)
	}
	values := section(f)
	putString(values, LogLevelFlag.Name, f.Log.Level)
	putString(values, LogFormatFlag.Name, f.Log.Format)
	for key, v := range values {
		name, ok := primaryName(c, key)
		if !ok || c.IsSet(name) {
			continue
		}
		if err := c.Set(name, v); err != nil {
			return nil, cli.Exit(fmt.Sprintf("%s: %s=%q: %v", path, name, v, err), exitConfig)
		}
	}
	return f, nil
}

func putString(m map[string]string, name string, v *string) {
	if v != nil {
		m[name] = *v
	}
}

// primaryName returns the name of the command flag that has name as its
// name or alias.
func primaryName(c *cli.Context, name string) (string, bool) {
	for _, f := range c.Command.Flags {
		for _, n := range f.Names() {
			if n == name {
				return f.Names()[0], true
			}
		}
	}
	return "", false
}

func newLogger(c *cli.Context, rc log.RunContext) (*log.Logger, error) {
	l, err := log.New(os.Stderr, c.String(LogLevelFlag.Name), c.String(LogFormatFlag.Name), rc)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitConfig)
	}
	return l, nil
}

func outputFormat(c *cli.Context) (render.Format, error) {
	f, err := render.ParseFormat(c.String(FormatFlag.Name))
	if err != nil {
		return "", cli.Exit(err.Error(), exitConfig)
	}
	if f == "" {
		f = render.Default(os.Stdout)
	}
	return f, nil
}

// configExit maps a configuration error onto exit code 1 and other errors
// onto exit code 2.
func configExit(err error) error {
	var cerr *config.Error
	if errors.As(err, &cerr) {
		return cli.Exit(cerr.Error(), exitConfig)
	}
	return cli.Exit(err.Error(), exitIO)
}
