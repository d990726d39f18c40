package utils

import (
	"os"

	"golang.org/x/term"
)

// FlagsToIgnore are handled by cobra or the root command rather than the flags struct
// of an executable command.
var FlagsToIgnore = []string{"help", "version", "logLevel"}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
