package main

import (
	"github.com/driftlabs/driftsync/internal/cli"
)

func main() {
	_ = cli.Execute()
}
