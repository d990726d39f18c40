package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aaptel/rpm-changes-merger/internal/changes"
	"github.com/aaptel/rpm-changes-merger/internal/charm"
	"github.com/aaptel/rpm-changes-merger/internal/fs"
	"github.com/aaptel/rpm-changes-merger/internal/merging"
	"github.com/aaptel/rpm-changes-merger/internal/model"
	"github.com/aaptel/rpm-changes-merger/internal/model/flag"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var formats = []string{formatText, formatJSON, formatYAML}

type diffFlags struct {
	Base     string `json:"base"`
	Incoming string `json:"incoming"`
	Format   string `json:"format"`
}

var diffCmd = &model.ExecutableCommand[diffFlags]{
	Usage: "diff",
	Short: "Show what a branch changelog adds to, or removes from, its base",
	Long: `Show the entries an incoming changelog adds to the base.

If the incoming changelog lacks entries of the base, they are listed with a line diff
against the incoming entry sharing their header, if any, and the exit status is 1.`,
	Run: runDiff,
	Flags: []flag.Flag{
		flag.StringFlag{
			Name:                       "base",
			Shorthand:                  "b",
			Description:                "path to the common ancestor changelog",
			Required:                   true,
			AutocompleteFileExtensions: changesExtensions,
		},
		flag.StringFlag{
			Name:                       "incoming",
			Shorthand:                  "i",
			Description:                "path to the branch changelog",
			Required:                   true,
			AutocompleteFileExtensions: changesExtensions,
		},
		flag.EnumFlag{
			Name:          "format",
			Shorthand:     "f",
			Description:   "output format",
			DefaultValue:  formatText,
			AllowedValues: formats,
		},
	},
}

type entrySummary struct {
	Header string    `json:"header" yaml:"header"`
	Date   time.Time `json:"date" yaml:"date"`
}

type missingSummary struct {
	Header string `json:"header" yaml:"header"`
	Kind   string `json:"kind" yaml:"kind"`
	Diff   string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

type diffReport struct {
	Base     string           `json:"base" yaml:"base"`
	Incoming string           `json:"incoming" yaml:"incoming"`
	Added    []entrySummary   `json:"added" yaml:"added"`
	Missing  []missingSummary `json:"missing,omitempty" yaml:"missing,omitempty"`
}

func runDiff(ctx context.Context, flags diffFlags) error {
	fsys := fs.NewFileSystem()

	base, err := changes.LoadFile(fsys, flags.Base)
	if err != nil {
		return err
	}
	incoming, err := changes.LoadFile(fsys, flags.Incoming)
	if err != nil {
		return err
	}

	report := diffReport{Base: flags.Base, Incoming: flags.Incoming}

	added, diffErr := merging.Diff(base, incoming)
	cErr := merging.GetConflictError(diffErr)
	if diffErr != nil && cErr == nil {
		return diffErr
	}

	report.Added = lo.Map(added, func(e changes.Entry, _ int) entrySummary {
		return entrySummary{Header: e.Header(), Date: e.Timestamp()}
	})
	if cErr != nil {
		report.Missing = lo.Map(cErr.Explain(), func(ex merging.Explanation, _ int) missingSummary {
			return missingSummary{Header: ex.Missing.Header(), Kind: string(ex.Kind), Diff: ex.Diff}
		})
	}

	if err := writeReport(outputFrom(ctx), flags.Format, report, report.printText); err != nil {
		return err
	}

	return diffErr
}

func (r diffReport) printText(w io.Writer) error {
	if len(r.Added) == 0 && len(r.Missing) == 0 {
		_, err := fmt.Fprintln(w, charm.Dimmed.Render("no changes"))
		return err
	}

	for _, e := range r.Added {
		if _, err := fmt.Fprintln(w, charm.Added.Render("+ "+e.Header)); err != nil {
			return err
		}
	}
	for _, m := range r.Missing {
		if _, err := fmt.Fprintln(w, charm.Removed.Render(fmt.Sprintf("- %s (%s)", m.Header, m.Kind))); err != nil {
			return err
		}
		if m.Diff != "" {
			if _, err := fmt.Fprintln(w, styleDiff(m.Diff)); err != nil {
				return err
			}
		}
	}

	return nil
}

// writeReport encodes report as json or yaml, or hands over to printText for text.
func writeReport(w io.Writer, format string, report any, printText func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return printText(w)
	}
}

// styleDiff colors the "- " and "+ " lines of a line diff.
func styleDiff(diff string) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "- "):
			lines[i] = charm.Removed.Render(line)
		case strings.HasPrefix(line, "+ "):
			lines[i] = charm.Added.Render(line)
		default:
			lines[i] = charm.Dimmed.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
