package flag

import (
	"github.com/spf13/cobra"
)

// StringArrayFlag is a repeatable flag whose values are never split on commas, which
// suits file paths.
type StringArrayFlag struct {
	Name, Shorthand, Description string
	Required, Hidden             bool
	DefaultValue                 []string
	AutocompleteFileExtensions   []string
}

func (f StringArrayFlag) Init(cmd *cobra.Command) error {
	fullDescription := f.Description + " (repeatable)"

	cmd.Flags().StringArrayP(f.Name, f.Shorthand, f.DefaultValue, fullDescription)
	if err := setRequiredAndHidden(cmd, f.Name, f.Required, f.Hidden); err != nil {
		return err
	}
	if len(f.AutocompleteFileExtensions) > 0 {
		if err := cmd.MarkFlagFilename(f.Name, f.AutocompleteFileExtensions...); err != nil {
			return err
		}
	}
	return nil
}

func (f StringArrayFlag) GetName() string {
	return f.Name
}

func (f StringArrayFlag) ParseValue(v string) (interface{}, error) {
	return parseList(v)
}
