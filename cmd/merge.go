package cmd

import (
	"context"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/aaptel/rpm-changes-merger/internal/config"
	"github.com/aaptel/rpm-changes-merger/internal/fs"
	"github.com/aaptel/rpm-changes-merger/internal/log"
	"github.com/aaptel/rpm-changes-merger/internal/merging"
	"github.com/aaptel/rpm-changes-merger/internal/model"
	"github.com/aaptel/rpm-changes-merger/internal/model/flag"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type mergeFlags struct {
	Base     string   `json:"base"`
	Incoming []string `json:"incoming"`
	Out      string   `json:"out"`
	Sort     bool     `json:"sort"`
}

var changesExtensions = []string{"changes"}

var mergeCmd = &model.ExecutableCommand[mergeFlags]{
	Usage: "merge",
	Short: "Merge the changelogs of diverged branches into their common ancestor",
	Long: `Merge the changelogs of diverged branches into their common ancestor.

Entries present in an incoming changelog but not in the base are added; by default they
are placed on top of the base entries, newest first. Every input is read before anything
is written, so --out may name one of the inputs. If an incoming changelog lacks an entry
of the base the merge fails, nothing is written and the exit status is 1.

As a git merge driver:
  rpm-changes-merger merge --base %O --incoming %A --incoming %B --out %A`,
	PreRun: applyMergeConfig,
	Run:    runMerge,
	Flags: []flag.Flag{
		flag.StringFlag{
			Name:                       "base",
			Shorthand:                  "b",
			Description:                "path to the common ancestor changelog",
			Required:                   true,
			AutocompleteFileExtensions: changesExtensions,
		},
		flag.StringArrayFlag{
			Name:                       "incoming",
			Shorthand:                  "i",
			Description:                "path to a branch changelog to merge into the base",
			Required:                   true,
			AutocompleteFileExtensions: changesExtensions,
		},
		flag.StringFlag{
			Name:        "out",
			Shorthand:   "o",
			Description: "path to write the merged changelog to, stdout if omitted",
		},
		flag.BooleanFlag{
			Name:        "sort",
			Description: "sort the whole merged changelog by date instead of adding new entries on top",
		},
	},
}

func applyMergeConfig(cmd *cobra.Command, flags *mergeFlags) error {
	if !cmd.Flags().Changed("sort") && config.GetSortWholeFile() {
		return cmd.Flags().Set("sort", "true")
	}
	return nil
}

func runMerge(ctx context.Context, flags mergeFlags) error {
	l := log.From(ctx)
	fsys := fs.NewFileSystem()

	base, err := changes.LoadFile(fsys, flags.Base)
	if err != nil {
		return err
	}

	incoming := make([]*changes.Changelog, 0, len(flags.Incoming))
	for _, path := range flags.Incoming {
		c, err := changes.LoadFile(fsys, path)
		if err != nil {
			return err
		}
		incoming = append(incoming, c)
	}

	res, err := merging.NewEngine(merging.WithSortWholeFile(flags.Sort)).Merge(base, incoming...)
	if err != nil {
		if cErr := merging.GetConflictError(err); cErr != nil {
			logConflict(l, cErr)
		}
		return err
	}

	if flags.Out == "" {
		_, err := outputFrom(ctx).Write(res.Content)
		return err
	}

	if err := fsys.WriteFileAtomic(flags.Out, res.Content, 0o644); err != nil {
		return err
	}

	if res.Status == merging.MergeStatusFastForward {
		l.Info("No new entries to merge", zap.String("out", flags.Out))
		return nil
	}

	l.Successf("Merged %s into %s", english.Plural(len(res.Added), "new entry", "new entries"), flags.Out)

	return nil
}

func logConflict(l log.Logger, cErr *merging.ConflictError) {
	l = l.WithAssociatedFile(cErr.Incoming)

	for _, ex := range cErr.Explain() {
		switch ex.Kind {
		case merging.ChangeEdited:
			l.Warnf("%s edited the entry %q", cErr.Incoming, ex.Missing.Header())
			l.PrintlnUnstyled(styleDiff(ex.Diff))
		default:
			l.Warnf("%s deleted the entry %q", cErr.Incoming, ex.Missing.Header())
		}
	}
}
