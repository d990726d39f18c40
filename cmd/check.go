package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/aaptel/rpm-changes-merger/internal/charm"
	"github.com/aaptel/rpm-changes-merger/internal/fs"
	"github.com/aaptel/rpm-changes-merger/internal/git"
	"github.com/aaptel/rpm-changes-merger/internal/log"
	"github.com/aaptel/rpm-changes-merger/internal/model"
	"github.com/aaptel/rpm-changes-merger/internal/model/flag"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type checkFlags struct {
	Files  []string `json:"file"`
	Rev    string   `json:"rev"`
	Format string   `json:"format"`
}

var checkCmd = &model.ExecutableCommand[checkFlags]{
	Usage: "check",
	Short: "Validate changelogs",
	Long: `Validate that each changelog parses: every entry is preceded by a separator line and
starts with a "<date> - <author>@<domain>" header carrying a valid date.

With --rev the changelogs are read from that git revision instead of the worktree.`,
	Run: runCheck,
	Flags: []flag.Flag{
		flag.StringArrayFlag{
			Name:                       "file",
			Shorthand:                  "f",
			Description:                "path to a changelog to validate",
			Required:                   true,
			AutocompleteFileExtensions: changesExtensions,
		},
		flag.StringFlag{
			Name:        "rev",
			Shorthand:   "r",
			Description: "git revision to read the changelogs from, e.g. HEAD or a branch name",
		},
		flag.EnumFlag{
			Name:          "format",
			Description:   "output format",
			DefaultValue:  formatText,
			AllowedValues: formats,
		},
	},
}

type changelogSummary struct {
	Path    string     `json:"path" yaml:"path"`
	Entries int        `json:"entries" yaml:"entries"`
	Newest  *time.Time `json:"newest,omitempty" yaml:"newest,omitempty"`
	Size    int        `json:"size" yaml:"size"`
}

type checkReport struct {
	Changelogs []changelogSummary `json:"changelogs" yaml:"changelogs"`
}

type changelogReader func(path string) ([]byte, error)

func runCheck(ctx context.Context, flags checkFlags) error {
	read, err := newChangelogReader(flags.Rev)
	if err != nil {
		return err
	}

	report := checkReport{Changelogs: []changelogSummary{}}
	var result *multierror.Error

	for _, path := range flags.Files {
		summary, err := checkChangelog(read, path)
		if err != nil {
			log.From(ctx).WithAssociatedFile(path).Warn("", zap.Error(err))
			result = multierror.Append(result, err)
			continue
		}
		report.Changelogs = append(report.Changelogs, summary)
	}

	if err := writeReport(outputFrom(ctx), flags.Format, report, report.printText); err != nil {
		return err
	}

	if result != nil {
		result.ErrorFormat = func(errs []error) string {
			return fmt.Sprintf("%s of %d failed validation", english.Plural(len(errs), "changelog", "changelogs"), len(flags.Files))
		}
	}

	return result.ErrorOrNil()
}

func newChangelogReader(rev string) (changelogReader, error) {
	if rev == "" {
		return fs.NewFileSystem().ReadFile, nil
	}

	repo, err := git.NewLocalRepository(".")
	if err != nil {
		return nil, err
	}
	if repo.IsNil() {
		return nil, errors.Wrap(git.ErrNoRepository, "--rev requires a git repository")
	}

	return func(path string) ([]byte, error) {
		rel, err := repo.RelPath(path)
		if err != nil {
			return nil, err
		}
		return repo.ReadFileAtRevision(rev, rel)
	}, nil
}

func checkChangelog(read changelogReader, path string) (changelogSummary, error) {
	data, err := read(path)
	if err != nil {
		return changelogSummary{}, errors.Wrapf(err, "failed to read changelog %s", path)
	}

	c, err := changes.Load(path, string(data))
	if err != nil {
		return changelogSummary{}, err
	}

	summary := changelogSummary{Path: path, Entries: c.Len(), Size: len(data)}
	if newest, ok := c.Newest(); ok {
		ts := newest.Timestamp()
		summary.Newest = &ts
	}

	return summary, nil
}

func (r checkReport) printText(w io.Writer) error {
	for _, s := range r.Changelogs {
		line := fmt.Sprintf("%s: %s, %s",
			charm.Emphasized.Render(s.Path),
			english.Plural(s.Entries, "entry", "entries"),
			humanize.Bytes(uint64(s.Size)),
		)
		if s.Newest != nil {
			line += charm.Dimmed.Render(fmt.Sprintf(", newest %s (%s)", humanize.Time(*s.Newest), s.Newest.Format(time.DateOnly)))
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
