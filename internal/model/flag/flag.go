package flag

import (
	"encoding/csv"
	"strings"

	"github.com/spf13/cobra"
)

type Flag interface {
	Init(cmd *cobra.Command) error
	GetName() string
	ParseValue(v string) (interface{}, error)
}

func setRequiredAndHidden(cmd *cobra.Command, name string, required, hidden bool) error {
	if required {
		if err := cmd.MarkFlagRequired(name); err != nil {
			return err
		}
	}
	if hidden {
		if err := cmd.Flags().MarkHidden(name); err != nil {
			return err
		}
	}

	return nil
}

// parseList parses the "[a,b]" rendering pflag uses for array values.
func parseList(v string) ([]string, error) {
	v = strings.TrimPrefix(strings.TrimSuffix(v, "]"), "[")

	if v == "" {
		return []string{}, nil
	}

	csvReader := csv.NewReader(strings.NewReader(v))
	return csvReader.Read()
}

// Verify that the flag types implement the Flag interface
var _ = []Flag{
	&StringFlag{},
	&BooleanFlag{},
	&EnumFlag{},
	&StringArrayFlag{},
}
