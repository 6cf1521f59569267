package main

import (
	"fmt"
	"strings"

	"github.com/moffa90/go-uartcl/errordb"
	"github.com/moffa90/go-uartcl/internal/config"
	"github.com/moffa90/go-uartcl/internal/logging"
	"github.com/moffa90/go-uartcl/nor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the global flags and the state shared by every command.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{
		cfg:    config.Default(),
		logger: logrus.New(),
	}

	rootCmd := &cobra.Command{
		Use:                   "uartcl [options]",
		Short:                 "UART-CL console",
		Long:                  "UART-CL console: serial, NOR and error-DB utilities",
		SilenceUsage:          true,
		SilenceErrors:         true,
		PersistentPreRunE:     a.persistentPreRunE,
		RunE:                  subCommandExists,
		Version:               Version,
		DisableFlagsInUseLine: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to the configuration file (default $XDG_CONFIG_HOME/uartcl/uartcl.toml)")
	flags.StringVar(&a.logLevel, "log-level", logging.DefaultLevel, fmt.Sprintf("Log messages above specified level (%s)", strings.Join(logging.LogLevels, ", ")))

	rootCmd.AddCommand(
		newUARTCmd(a),
		newNorCmd(a),
		newDBCmd(a),
	)
	return rootCmd
}

func (a *app) persistentPreRunE(cmd *cobra.Command, args []string) error {
	// Help and commands with subcommands need no setup.
	if cmd.Name() == "help" || cmd.HasSubCommands() {
		return nil
	}

	path := a.configPath
	mustExist := path != ""
	var pathErr error
	if path == "" {
		path, pathErr = config.DefaultPath()
	}

	if path != "" {
		cfg, err := config.Load(path, mustExist)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level := a.cfg.LogLevel
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		level = a.logLevel
	}
	if err := logging.Configure(a.logger, level, cmd.ErrOrStderr()); err != nil {
		return err
	}

	if pathErr != nil {
		a.logger.Debugf("no default configuration: %v", pathErr)
	}
	a.logger.Debugf("called %s with %v, configuration %q", cmd.CommandPath(), args, path)
	return nil
}

func (a *app) patcher() *nor.Patcher {
	return nor.NewPatcher(nor.WithLogger(logging.New(a.logger, "nor")))
}

func (a *app) errorDB() (*errordb.DB, error) {
	cache, err := a.cfg.CachePath()
	if err != nil {
		return nil, err
	}
	return errordb.New(
		errordb.WithURL(a.cfg.ErrorDB.URL),
		errordb.WithCachePath(cache),
		errordb.WithTimeout(a.cfg.ErrorDB.Timeout.Duration),
		errordb.WithLogger(logging.New(a.logger, "errordb")),
	)
}

// subCommandExists returns an error if no sub command is provided.
func subCommandExists(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		suggestions := cmd.SuggestionsFor(args[0])
		if len(suggestions) == 0 {
			return errors.Errorf("unrecognized command `%[1]s %[2]s`\nTry '%[1]s --help' for more information", cmd.CommandPath(), args[0])
		}
		return errors.Errorf("unrecognized command `%[1]s %[2]s`\n\nDid you mean this?\n\t%[3]s\n\nTry '%[1]s --help' for more information", cmd.CommandPath(), args[0], strings.Join(suggestions, "\n\t"))
	}
	cmd.Help() //nolint: errcheck
	return errors.Errorf("missing command '%[1]s COMMAND'", cmd.CommandPath())
}
