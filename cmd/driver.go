package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aaptel/rpm-changes-merger/internal/charm"
	"github.com/aaptel/rpm-changes-merger/internal/config"
	"github.com/aaptel/rpm-changes-merger/internal/fs"
	"github.com/aaptel/rpm-changes-merger/internal/git"
	"github.com/aaptel/rpm-changes-merger/internal/log"
	"github.com/aaptel/rpm-changes-merger/internal/model"
	"github.com/aaptel/rpm-changes-merger/internal/model/flag"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	driverDescription = "RPM .changes merge driver"
	driverCommand     = "rpm-changes-merger merge --base %O --incoming %A --incoming %B --out %A"
	attributesFile    = ".gitattributes"
)

var driverCmd = &model.CommandGroup{
	Usage: "driver",
	Short: "Manage the git merge driver registration",
	Commands: []model.Command{
		installCmd,
		driverStatusCmd,
	},
}

type installFlags struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

var installCmd = &model.ExecutableCommand[installFlags]{
	Usage: "install",
	Short: "Register the merge driver in the current git repository",
	Long: fmt.Sprintf(`Register the merge driver in the repository's local git config and route matching
files to it through %s:

  [merge "<name>"]
      name = %s
      driver = %s`, attributesFile, driverDescription, driverCommand),
	Run:            runInstall,
	RunInteractive: runInstallInteractive,
	Flags: []flag.Flag{
		flag.StringFlag{
			Name:        "name",
			Shorthand:   "n",
			Description: "name of the merge driver in git config, defaults to the driver_name setting",
		},
		flag.StringFlag{
			Name:        "pattern",
			Shorthand:   "p",
			Description: "gitattributes pattern of the files to merge, defaults to the attributes_pattern setting",
		},
	},
}

type driverStatusFlags struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
}

var driverStatusCmd = &model.ExecutableCommand[driverStatusFlags]{
	Usage: "status",
	Short: "Show whether the merge driver is registered in the current git repository",
	Run:   runDriverStatus,
	Flags: []flag.Flag{
		flag.StringFlag{
			Name:        "name",
			Shorthand:   "n",
			Description: "name of the merge driver in git config, defaults to the driver_name setting",
		},
		flag.StringFlag{
			Name:        "pattern",
			Shorthand:   "p",
			Description: "gitattributes pattern of the files to merge, defaults to the attributes_pattern setting",
		},
	},
}

func openRepository() (*git.Repository, error) {
	repo, err := git.NewLocalRepository(".")
	if err != nil {
		return nil, err
	}
	if repo.IsNil() || repo.Root() == "" {
		return nil, git.ErrNoRepository
	}
	return repo, nil
}

func driverSettings(name, pattern string) (string, string) {
	return lo.Ternary(name != "", name, config.GetDriverName()),
		lo.Ternary(pattern != "", pattern, config.GetAttributesPattern())
}

func runInstallInteractive(ctx context.Context, flags installFlags) error {
	flags.Name, flags.Pattern = driverSettings(flags.Name, flags.Pattern)

	confirmed := true
	if err := charm.RunForm(
		charm.NewInputPrompt("Which files should the merge driver handle?", "A .gitattributes pattern, e.g. *.changes", &flags.Pattern),
		charm.NewBranchPrompt(fmt.Sprintf("Register the merge driver %q?", flags.Name), &confirmed),
	); err != nil {
		return err
	}

	if !confirmed {
		log.From(ctx).Info("Nothing was changed")
		return nil
	}

	return runInstall(ctx, flags)
}

func runInstall(ctx context.Context, flags installFlags) error {
	l := log.From(ctx)
	name, pattern := driverSettings(flags.Name, flags.Pattern)

	if strings.TrimSpace(pattern) == "" || strings.ContainsAny(pattern, " \t\n") {
		return fmt.Errorf("invalid gitattributes pattern %q", pattern)
	}

	repo, err := openRepository()
	if err != nil {
		return err
	}

	if err := repo.SetMergeDriver(git.MergeDriver{
		Name:        name,
		Description: driverDescription,
		Driver:      driverCommand,
	}); err != nil {
		return err
	}
	l.Success("Registered the merge driver in git config", zap.String("name", name))

	path := filepath.Join(repo.Root(), attributesFile)
	added, err := ensureMergeAttribute(fs.NewFileSystem(), path, pattern, name)
	if err != nil {
		return err
	}
	if added {
		l.Successf("Added %q to %s", attributeLine(pattern, name), attributesFile)
	} else {
		l.Infof("%s already routes %s to the merge driver", attributesFile, pattern)
	}

	return nil
}

func runDriverStatus(ctx context.Context, flags driverStatusFlags) error {
	l := log.From(ctx)
	name, pattern := driverSettings(flags.Name, flags.Pattern)

	repo, err := openRepository()
	if err != nil {
		return err
	}

	driver, err := repo.GetMergeDriver(name)
	if err != nil {
		return err
	}

	attributes, err := readAttributes(fs.NewFileSystem(), filepath.Join(repo.Root(), attributesFile))
	if err != nil {
		return err
	}
	routed := hasMergeAttribute(attributes, pattern, name)

	out := outputFrom(ctx)
	if driver == nil {
		fmt.Fprintln(out, charm.Warning.Render(fmt.Sprintf("merge driver %q is not registered", name)))
	} else {
		fmt.Fprintln(out, charm.Success.Render(fmt.Sprintf("merge driver %q is registered", name)))
		fmt.Fprintln(out, charm.Dimmed.Render("  driver = "+driver.Driver))
		if driver.Driver != driverCommand {
			l.Warn("The registered driver command differs from the one install writes", zap.String("expected", driverCommand))
		}
	}

	if routed {
		fmt.Fprintln(out, charm.Success.Render(fmt.Sprintf("%s routes %s to %q", attributesFile, pattern, name)))
	} else {
		fmt.Fprintln(out, charm.Warning.Render(fmt.Sprintf("%s does not route %s to %q", attributesFile, pattern, name)))
	}

	return nil
}

func attributeLine(pattern, name string) string {
	return pattern + " merge=" + name
}

func readAttributes(fsys *fs.FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

func hasMergeAttribute(attributes []byte, pattern, name string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(attributes))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 1 && fields[0] == pattern && slices.Contains(fields[1:], "merge="+name) {
			return true
		}
	}
	return false
}

// ensureMergeAttribute appends "<pattern> merge=<name>" to the attributes file unless an
// equivalent line exists. It reports whether the file was changed.
func ensureMergeAttribute(fsys *fs.FileSystem, path, pattern, name string) (bool, error) {
	data, err := readAttributes(fsys, path)
	if err != nil {
		return false, err
	}
	if hasMergeAttribute(data, pattern, name) {
		return false, nil
	}

	line := attributeLine(pattern, name) + "\n"
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		line = "\n" + line
	}

	f, err := fsys.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, errors.Wrapf(err, "failed to open %s", path)
	}

	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return false, errors.Wrapf(err, "failed to write %s", path)
	}

	return true, f.Close()
}
