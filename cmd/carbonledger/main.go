// Command carbonledger is the CLI entrypoint for the embodied-carbon
// calculation engine.
package main

import (
	"os"

	"github.com/greenbim/carbonledger/internal/cli"
	"github.com/greenbim/carbonledger/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the result to an exit code:
// 0 for a complete report (even at 0% completeness), 1 for a structural
// failure. Cobra has already printed the error by the time run returns.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
