package main

import (
	"os"

	"github.com/plugmgr/plugmgr/internal/cli"
)

// Overridden with -ldflags "-X main.version=..." by the release build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(cli.Run(cli.BuildInfo{Version: version, Commit: commit, Date: date}))
}
