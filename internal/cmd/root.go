// Package cmd implements the retrace command line interface.
package cmd

import (
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/retracehq/retrace/errext"
	"github.com/retracehq/retrace/errext/exitcodes"
	"github.com/retracehq/retrace/internal/build"
)

// Execute runs the root command. It is called by main.main() and only needs
// to happen once.
func Execute() {
	newRootCommand().execute()
}

// This is to keep all fields needed for the main/root retrace command
type rootCommand struct {
	cmd    *cobra.Command
	logger *logrus.Logger
	flags  globalFlags
	osExit func(int)
}

func newRootCommand() *rootCommand {
	c := &rootCommand{
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
		flags:  consolidateGlobalFlags(getDefaultGlobalFlags(), buildEnvMap(os.Environ())),
		osExit: os.Exit,
	}

	// the base command when called without any subcommands.
	rootCmd := &cobra.Command{
		Use:   "retrace",
		Short: "retrace resolves client-reported stack traces to original sources",
		Long: "retrace receives error reports from frontend clients and rewrites their minified\n" +
			"stack traces through the bundle's source map before logging them.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		Version:           build.Version,
	}

	rootCmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())
	rootCmd.AddCommand(getCmdServe(c), getCmdVersion())

	c.cmd = rootCmd
	return c
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	if err := c.setupLoggers(); err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	c.logger.Debugf("retrace version: v%s", build.Version)
	return nil
}

func (c *rootCommand) execute() {
	exitCode := -1
	defer func() {
		c.osExit(exitCode)
	}()

	defer func() {
		if r := recover(); r != nil {
			exitCode = int(exitcodes.GoPanic)
			c.logger.Errorf("unexpected retrace panic: %s\n%s", r, debug.Stack())
		}
	}()

	err := c.cmd.Execute()
	if err == nil {
		exitCode = 0
		return
	}

	var ecerr errext.HasExitCode
	if errors.As(err, &ecerr) {
		exitCode = int(ecerr.ExitCode())
	}

	errText, fields := errext.Format(err)
	c.logger.WithFields(fields).Error(errText)
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)

	flags.StringVar(&c.flags.LogOutput, "log-output", c.flags.LogOutput,
		"change the output for retrace logs, possible values are 'stderr', 'stdout', 'none'")
	flags.StringVar(&c.flags.LogFormat, "log-format", c.flags.LogFormat, "log output format")
	flags.BoolVar(&c.flags.NoColor, "no-color", c.flags.NoColor, "disable colored output")
	flags.BoolVarP(&c.flags.Verbose, "verbose", "v", c.flags.Verbose, "enable verbose logging")
	flags.BoolVarP(&c.flags.Quiet, "quiet", "q", c.flags.Quiet, "disable progress updates")
	flags.StringVarP(&c.flags.Address, "address", "a", c.flags.Address, "address for the REST API server")

	return flags
}

// RawFormatter it does nothing with the message just prints it
type RawFormatter struct{}

// Format renders a single log entry
func (f RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

func (c *rootCommand) setupLoggers() error {
	if c.flags.Verbose {
		c.logger.SetLevel(logrus.DebugLevel)
	}

	loggerForceColors := false // disable color by default
	switch line := c.flags.LogOutput; line {
	case "stderr":
		loggerForceColors = !c.flags.NoColor && isatty.IsTerminal(os.Stderr.Fd())
		c.logger.SetOutput(os.Stderr)
	case "stdout":
		loggerForceColors = !c.flags.NoColor && isatty.IsTerminal(os.Stdout.Fd())
		c.logger.SetOutput(os.Stdout)
	case "none":
		c.logger.SetOutput(io.Discard)
	default:
		return fmt.Errorf("unsupported log output '%s'", line)
	}

	switch c.flags.LogFormat {
	case "raw":
		c.logger.SetFormatter(&RawFormatter{})
		c.logger.Debug("Logger format: RAW")
	case "json":
		c.logger.SetFormatter(&logrus.JSONFormatter{})
		c.logger.Debug("Logger format: JSON")
	default:
		c.logger.SetFormatter(&logrus.TextFormatter{
			ForceColors: loggerForceColors, DisableColors: c.flags.NoColor,
		})
		c.logger.Debug("Logger format: TEXT")
	}

	// Sometimes the Go runtime uses the standard log output to
	// log some messages directly.
	stdlog.SetOutput(c.logger.Writer())
	return nil
}
