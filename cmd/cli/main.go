package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cochaviz/bsdpack/config"
	"github.com/cochaviz/bsdpack/internal/artifacts"
	"github.com/cochaviz/bsdpack/internal/logging"
	"github.com/cochaviz/bsdpack/internal/pkgng"
	"github.com/cochaviz/bsdpack/internal/setup"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// app carries the logger across commands; it is rebuilt once the persistent
// flags are known.
type app struct {
	logger   *slog.Logger
	levelVar *slog.LevelVar
}

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)

	logger := logging.NewCLI(os.Stderr, &levelVar)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{logger: logger, levelVar: &levelVar}
	root := newRootCommand(a)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			a.logger.Warn("command interrupted", "error", err)
			os.Exit(130)
		}
		a.logger.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	var (
		logLevel  = defaultLogLevel
		logFormat = defaultLogFormat
	)

	root := &cobra.Command{
		Use:           "bsdpack",
		Short:         "Assemble FreeBSD pkgng packages from a staged install tree",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Set log verbosity (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "Log output format (text, json)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		mode, err := logging.ParseMode(logFormat)
		if err != nil {
			return err
		}
		a.levelVar.Set(level)
		a.logger = logging.New(mode, cmd.ErrOrStderr(), a.levelVar)
		slog.SetDefault(a.logger)
		setup.SetLogger(a.logger.With("component", "setup"))
		return nil
	}

	root.AddCommand(
		newBuildCommand(a),
		newManifestCommand(a),
		newNameCommand(a),
		newScriptsCommand(),
	)
	return root
}

// addSettingsFlags registers the flags LoadSettings binds by name.
func addSettingsFlags(cmd *cobra.Command, settingsFile *string, withPublish bool) {
	flags := cmd.Flags()
	flags.StringVar(settingsFile, "settings", "", "YAML file with default values for the flags below")
	flags.String("work-dir", "", "Directory in which staging directories are created (default: system temp dir)")
	flags.String("machine", "", "Target machine, e.g. amd64 or arm64 (default: host)")
	flags.String("os-version", "", "Target FreeBSD release, e.g. 14.1-RELEASE (default: host)")
	if withPublish {
		flags.String("package-dir", config.DefaultPackageDir, "Directory where finished packages are published")
		flags.String("pkg-tool", config.DefaultPkgTool, "Path to the pkg(8) binary")
		flags.Bool("keep-staging", false, "Keep the staging directory after the build")
	}
}

func newBuildCommand(a *app) *cobra.Command {
	var settingsFile string

	cmd := &cobra.Command{
		Use:   "build <descriptor>",
		Args:  cobra.ExactArgs(1),
		Short: "Stage the project, generate manifests and create the package",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := a.logger.With("command", "build", "descriptor", args[0])

			settings, err := config.LoadSettings(cmd.Flags(), settingsFile)
			if err != nil {
				return err
			}
			cmdLogger.Debug("resolved settings",
				"package_dir", settings.PackageDir,
				"pkg_tool", settings.PkgTool,
				"work_dir", settings.WorkDir,
			)

			output, err := config.BuildPackage(cmd.Context(), args[0], settings, cmdLogger)
			if err != nil {
				return err
			}

			packagePath, err := artifacts.PathFromURI(output.Package.URI)
			if err != nil {
				return err
			}
			cmdLogger.Info("build completed", "package", packagePath)
			if settings.KeepStaging {
				cmdLogger.Info("staging directory kept", "staging_dir", output.StagingDir)
			}
			fmt.Fprintln(cmd.OutOrStdout(), packagePath)
			return nil
		},
	}

	addSettingsFlags(cmd, &settingsFile, true)
	return cmd
}

func newManifestCommand(a *app) *cobra.Command {
	var settingsFile string

	cmd := &cobra.Command{
		Use:   "manifest <descriptor>",
		Args:  cobra.ExactArgs(1),
		Short: "Stage the project and write +COMPACT_MANIFEST and +MANIFEST without packaging",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := a.logger.With("command", "manifest", "descriptor", args[0])

			settings, err := config.LoadSettings(cmd.Flags(), settingsFile)
			if err != nil {
				return err
			}
			output, err := config.GenerateManifests(cmd.Context(), args[0], settings, cmdLogger)
			if err != nil {
				return err
			}
			cmdLogger.Info("manifests written", "staging_dir", output.StagingDir)
			fmt.Fprintln(cmd.OutOrStdout(), output.StagingDir)
			return nil
		},
	}

	addSettingsFlags(cmd, &settingsFile, false)
	return cmd
}

func newNameCommand(a *app) *cobra.Command {
	var settingsFile string

	cmd := &cobra.Command{
		Use:   "name <descriptor>",
		Args:  cobra.ExactArgs(1),
		Short: "Print the file name the package would be published under",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(cmd.Flags(), settingsFile)
			if err != nil {
				return err
			}
			name, err := config.PackageName(args[0], settings, a.logger.With("command", "name"))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	addSettingsFlags(cmd, &settingsFile, false)
	return cmd
}

func newScriptsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the lifecycle script names and the pkgng script they become",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, mapping := range pkgng.DefaultScriptMap {
				fmt.Fprintf(out, "%s\t%s\n", mapping.Source, mapping.Target)
			}
			return nil
		},
	}
}
