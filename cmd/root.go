package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/aaptel/rpm-changes-merger/internal/charm"
	"github.com/aaptel/rpm-changes-merger/internal/config"
	"github.com/aaptel/rpm-changes-merger/internal/log"
	"github.com/aaptel/rpm-changes-merger/internal/merging"
	"github.com/aaptel/rpm-changes-merger/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitConflict = 1
	exitFailure  = 2
)

type outputContextKey struct{}

func init() {
	// We want our commands to be sorted in defined order, not alphabetically
	cobra.EnableCommandSorting = false
}

func newRootCmd(version string) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "rpm-changes-merger",
		Short: "Merge RPM .changes files without conflicts",
		Long: `A git merge driver for RPM .changes changelogs.

Entries added on every branch are merged into the common ancestor and ordered by date.
A branch that removed or edited an entry of the common ancestor is reported as a
conflict and nothing is written.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("logLevel", string(log.LevelInfo), fmt.Sprintf("the log level (available options: [%s])", strings.Join(log.Levels, ", ")))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(cmd); err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), outputContextKey{}, cmd.OutOrStdout()))
		return nil
	}

	commands := []model.Command{
		mergeCmd,
		checkCmd,
		diffCmd,
		driverCmd,
	}
	for _, command := range commands {
		c, err := command.Init()
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(c)
	}

	return rootCmd, nil
}

func CmdForTest(version string) *cobra.Command {
	rootCmd, err := newRootCmd(version)
	if err != nil {
		panic(err)
	}
	return rootCmd
}

// Execute runs the CLI and exits with 1 on a merge conflict and 2 on any other error.
func Execute(version string) {
	l := log.New().WithLevel(log.LevelInfo)

	if err := config.Load(); err != nil {
		l.Error("", zap.Error(err))
		os.Exit(exitFailure)
	}

	rootCmd, err := newRootCmd(version)
	if err != nil {
		l.Error("", zap.Error(err))
		os.Exit(exitFailure)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(l, rootCmd, err))
	}
}

func reportError(l log.Logger, rootCmd *cobra.Command, err error) int {
	if cErr := merging.GetConflictError(err); cErr != nil {
		l.WithAssociatedFile(cErr.Incoming).Error("", zap.Error(err))
		return exitConflict
	}

	l.Error("", zap.Error(err))
	l.WithInteractiveOnly().PrintfStyled(charm.DimmedItalic, "Run '%s --help' for usage.\n", rootCmd.CommandPath())
	return exitFailure
}

func setLogLevel(cmd *cobra.Command) error {
	logLevel, err := cmd.Flags().GetString("logLevel")
	if err != nil {
		return err
	}
	if !slices.Contains(log.Levels, logLevel) {
		return fmt.Errorf("log level must be one of: %s", strings.Join(log.Levels, ", "))
	}

	l := log.New().WithLevel(log.Level(logLevel)).WithWriter(cmd.ErrOrStderr())
	cmd.SetContext(log.With(cmd.Context(), l))

	return nil
}

// outputFrom returns where command results go, stdout unless the command was given
// another writer.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputContextKey{}).(io.Writer); ok {
		return w
	}
	return os.Stdout
}
