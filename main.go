package main

import (
	"github.com/aaptel/rpm-changes-merger/cmd"
)

var version = "0.0.1"

func main() {
	cmd.Execute(version)
}
