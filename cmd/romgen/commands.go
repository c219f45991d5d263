package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"romgen/internal/app"
	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
	"romgen/internal/ui"
)

type globalFlags struct {
	root       string
	config     string
	verbose    bool
	noProgress bool
	logLevel   string
	logFormat  string
}

type formatterSetter interface {
	SetFormatter(logger.Formatter)
}

func configureLogger(log logger.Logger, flags globalFlags) error {
	level, ok := logger.ParseLevel(flags.logLevel)
	if !ok {
		return apperrors.ValidationError(apperrors.CodeValidationGeneric, "unknown log level", nil).
			WithField("level", flags.logLevel)
	}
	if flags.verbose {
		level = logger.LevelDebug
	}
	log.SetLevel(level)

	switch strings.ToLower(flags.logFormat) {
	case "", "text":
	case "json":
		if setter, ok := log.(formatterSetter); ok {
			setter.SetFormatter(&logger.JSONFormatter{})
		}
	default:
		return apperrors.ValidationError(apperrors.CodeValidationGeneric, "unknown log format", nil).
			WithField("format", flags.logFormat)
	}
	return nil
}

func newRootCommand(log logger.Logger) *cobra.Command {
	var flags globalFlags

	open := func(cmd *cobra.Command) (*app.App, error) {
		return app.New(app.Options{
			Root:       flags.root,
			ConfigPath: flags.config,
			Progress:   !flags.noProgress,
			Output:     cmd.OutOrStdout(),
			ErrOutput:  cmd.ErrOrStderr(),
		}, log)
	}
	build := func(target app.Target) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}
			return a.Build(cmd.Context(), target)
		}
	}

	root := &cobra.Command{
		Use:           "romgen",
		Short:         "romgen - fetch, verify and convert Apple IIe disk and ROM images into C headers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return configureLogger(log, flags)
		},
		RunE: build(app.TargetAll),
	}

	root.PersistentFlags().StringVar(&flags.root, "root", ".", "Project root that manifest paths are relative to")
	root.PersistentFlags().StringVar(&flags.config, "config", "", "Manifest merged over the built-in asset list")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Minimum log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "Log output format: text or json")
	root.PersistentFlags().BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars and step markers")

	root.AddCommand(
		&cobra.Command{
			Use:   "all",
			Short: "Build disk images, the disk index and the ROM header",
			Args:  cobra.NoArgs,
			RunE:  build(app.TargetAll),
		},
		&cobra.Command{
			Use:   "disks",
			Short: "Build missing disk image headers and the disk index",
			Args:  cobra.NoArgs,
			RunE:  build(app.TargetDisks),
		},
		&cobra.Command{
			Use:   "roms",
			Short: "Build the ROM header",
			Args:  cobra.NoArgs,
			RunE:  build(app.TargetROMs),
		},
		&cobra.Command{
			Use:   "list",
			Short: "Show which generated headers are present",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := open(cmd)
				if err != nil {
					return err
				}
				return a.List(cmd.Context())
			},
		},
		newCleanCommand(open),
	)

	return root
}

func newCleanCommand(open func(*cobra.Command) (*app.App, error)) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove generated disk headers and the index so the next run rebuilds them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := open(cmd)
			if err != nil {
				return err
			}

			var confirmer ui.Confirmer = ui.PromptConfirmer{}
			switch {
			case yes:
				confirmer = ui.StaticConfirmer(true)
			case !logger.IsTerminal(os.Stdin):
				confirmer = nonInteractive{}
			}

			_, err = a.Clean(cmd.Context(), confirmer)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// nonInteractive refuses to confirm when there is no terminal to ask on.
type nonInteractive struct{}

func (nonInteractive) Confirm(string) (bool, error) {
	return false, apperrors.ValidationError(apperrors.CodeValidationGeneric, "stdin is not a terminal, pass --yes to confirm", nil)
}
